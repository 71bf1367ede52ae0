package domain

import (
	"errors"
	"testing"
)

func TestParseMediaSource(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		url      string
		wantKind SourceKind
		wantErr  bool
	}{
		{"file only", "/tmp/talk.mp4", "", SourceLocal, false},
		{"url only", "", "https://example.com/talk.mp4", SourceRemote, false},
		{"file wins over url", "/tmp/talk.mp4", "https://example.com/talk.mp4", SourceLocal, false},
		{"whitespace trimmed", "  ", " https://example.com/a.mp4 ", SourceRemote, false},
		{"neither", "", "", 0, true},
		{"blank values", "  ", "\t", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ParseMediaSource(tt.file, tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMediaSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrMissingInput) {
					t.Errorf("error = %v, want ErrMissingInput", err)
				}
				if !src.IsZero() {
					t.Errorf("source should be zero on error")
				}
				return
			}
			if src.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", src.Kind(), tt.wantKind)
			}
		})
	}
}

func TestMediaSource_Accessors(t *testing.T) {
	local := LocalSource("/videos/a.mp4")
	if local.Path() != "/videos/a.mp4" || local.URL() != "" {
		t.Errorf("local accessors = (%q, %q)", local.Path(), local.URL())
	}

	remote := RemoteSource("https://example.com/a.mp4")
	if remote.URL() != "https://example.com/a.mp4" || remote.Path() != "" {
		t.Errorf("remote accessors = (%q, %q)", remote.Path(), remote.URL())
	}

	var zero MediaSource
	if !zero.IsZero() {
		t.Error("zero MediaSource should report IsZero")
	}
	if zero.String() != "<none>" {
		t.Errorf("zero String() = %q", zero.String())
	}
}

func TestValidateRemoteURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.com/video.mp4", false},
		{"http://localhost:8080/v", false},
		{"ftp://files.example.com/v.mkv", false},
		{"example.com/video.mp4", true},
		{"/local/path.mp4", true},
		{"https://", true},
		{"://bad", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ValidateRemoteURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRemoteURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("error = %v, want ErrInvalidURL", err)
			}
		})
	}
}

func TestLooksLikeURL(t *testing.T) {
	if !LooksLikeURL("https://youtu.be/x") {
		t.Error("https URL not recognized")
	}
	if LooksLikeURL("./clip.mp4") {
		t.Error("relative path treated as URL")
	}
}
