package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, []string{"Downloading", "Extracting audio", "Transcribing"}, false)

	p.Advance(0)
	p.UpdateProgress(512, 1024)
	p.Advance(1)
	p.Advance(2)
	p.Fail("engine crashed")

	steps := p.Steps()
	if steps[0].Status != StepComplete || steps[1].Status != StepComplete {
		t.Errorf("first steps should be complete: %+v", steps)
	}
	if steps[2].Status != StepError || steps[2].Error != "engine crashed" {
		t.Errorf("last step = %+v, want failed", steps[2])
	}
	if !strings.Contains(buf.String(), "[3/3] Transcribing... ✗ engine crashed") {
		t.Errorf("output missing failure line:\n%s", buf.String())
	}
}

func TestProgressDisplay_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressDisplay(&buf, []string{"Transcribing"}, true)
	p.Advance(0)
	p.Finish()

	if buf.Len() != 0 {
		t.Errorf("quiet display wrote %q", buf.String())
	}
	if p.Steps()[0].Status != StepComplete {
		t.Error("quiet display should still track state")
	}
}
