package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseTerms(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantDisplay []string
		wantKeys    []string
		wantErr     bool
	}{
		{
			name:        "default list",
			input:       DefaultTerms,
			wantDisplay: []string{"um", "uh", "like"},
			wantKeys:    []string{"um", "uh", "like"},
		},
		{
			name:        "casing preserved for display",
			input:       "Um,  You Know ",
			wantDisplay: []string{"Um", "You Know"},
			wantKeys:    []string{"um", "you know"},
		},
		{
			name:        "empty entries dropped",
			input:       "um,, ,uh,",
			wantDisplay: []string{"um", "uh"},
			wantKeys:    []string{"um", "uh"},
		},
		{
			name:        "duplicates kept for display",
			input:       "um, Um, um",
			wantDisplay: []string{"um", "Um", "um"},
			wantKeys:    []string{"um"},
		},
		{
			name:    "only whitespace",
			input:   " , ,  ",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseTerms(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTerms() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrNoValidTerms) {
					t.Errorf("ParseTerms() error = %v, want ErrNoValidTerms", err)
				}
				return
			}

			var display []string
			for _, term := range spec.Terms() {
				display = append(display, term.Display)
			}
			if !reflect.DeepEqual(display, tt.wantDisplay) {
				t.Errorf("display = %v, want %v", display, tt.wantDisplay)
			}
			if !reflect.DeepEqual(spec.Keys(), tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", spec.Keys(), tt.wantKeys)
			}
		})
	}
}

func TestTermSpec_String(t *testing.T) {
	spec, err := NewTermSpec([]string{" Um", "you know ", ""})
	if err != nil {
		t.Fatalf("NewTermSpec() error = %v", err)
	}
	if got := spec.String(); got != "Um, you know" {
		t.Errorf("String() = %q, want %q", got, "Um, you know")
	}
	if spec.Len() != 2 {
		t.Errorf("Len() = %d, want 2", spec.Len())
	}
}

func TestFoldTerm(t *testing.T) {
	if got := FoldTerm("  YOU Know "); got != "you know" {
		t.Errorf("FoldTerm() = %q, want %q", got, "you know")
	}
	if got := FoldTerm("НУ"); got != "ну" {
		t.Errorf("FoldTerm() = %q, want %q", got, "ну")
	}
	if got := FoldTerm("ΟΔΟΣ ΣΑΣ"); got != "οδος σας" {
		t.Errorf("FoldTerm() = %q, want %q", got, "οδος σας")
	}
}
