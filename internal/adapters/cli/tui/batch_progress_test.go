package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		current, total int
		width          int
		want           string
	}{
		{0, 10, 10, "[          ]"},
		{5, 10, 10, "[=====>    ]"},
		{10, 10, 10, "[==========]"},
		{3, 10, 10, "[==>       ]"},
		{1, 0, 4, "[    ]"},
	}

	for _, tt := range tests {
		got := renderProgressBar(tt.current, tt.total, tt.width)
		if got != tt.want {
			t.Errorf("renderProgressBar(%d, %d, %d) = %q, want %q",
				tt.current, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestBatchProgress(t *testing.T) {
	var buf bytes.Buffer
	bp := NewBatchProgress(&buf, 3, false)

	bp.AddResult(BatchResult{Source: "a.mp4", Success: true, Duration: 2 * time.Second, Total: 7})
	bp.AddResult(BatchResult{Source: "b.mp4", Success: false, ErrMsg: "Video has no audio track."})
	bp.Complete()

	out := buf.String()
	for _, want := range []string{
		"Analyzing 2/3 videos",
		"✓ a.mp4 (2.0s) 7 parasite words",
		"✗ b.mp4: Video has no audio track.",
		"Batch complete: 1/3 succeeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBatchProgress_Quiet(t *testing.T) {
	var buf bytes.Buffer
	bp := NewBatchProgress(&buf, 1, true)
	bp.AddResult(BatchResult{Source: "a.mp4", Success: true})
	bp.Complete()

	if buf.Len() != 0 {
		t.Errorf("quiet progress wrote %q", buf.String())
	}
}
