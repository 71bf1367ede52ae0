package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devbush/paralyze/internal/domain"
)

func sourceStrings(sources []domain.MediaSource) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Kind().String() + ":" + s.String()
	}
	return out
}

func TestParseInputFile(t *testing.T) {
	t.Run("parses file with comments, blank lines, URLs and paths", func(t *testing.T) {
		content := `# This is a comment
https://cdn.example.com/talks/keynote.mp4
  ./videos/standup.mov

# Another comment
/abs/path/demo.mkv
`
		filePath := filepath.Join(t.TempDir(), "input.txt")
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		sources, err := ParseInputFile(filePath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			"remote:https://cdn.example.com/talks/keynote.mp4",
			"local:./videos/standup.mov",
			"local:/abs/path/demo.mkv",
		}
		got := sourceStrings(sources)
		if len(got) != len(expected) {
			t.Fatalf("expected %d sources, got %d: %v", len(expected), len(got), got)
		}
		for i := range got {
			if got[i] != expected[i] {
				t.Errorf("source[%d] = %q, want %q", i, got[i], expected[i])
			}
		}
	})

	t.Run("returns error for nonexistent file", func(t *testing.T) {
		_, err := ParseInputFile("/nonexistent/path/file.txt")
		if err == nil {
			t.Error("expected error for nonexistent file, got nil")
		}
	})
}

func TestCollectInputs(t *testing.T) {
	t.Run("combines args and file with deduplication", func(t *testing.T) {
		content := `a.mp4
https://example.com/b.mp4
c.mp4
`
		filePath := filepath.Join(t.TempDir(), "input.txt")
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		args := []string{"a.mp4", "https://example.com/new.mp4", "  "}

		sources, err := CollectInputs(args, filePath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			"local:a.mp4",
			"remote:https://example.com/new.mp4",
			"remote:https://example.com/b.mp4",
			"local:c.mp4",
		}
		got := sourceStrings(sources)
		if len(got) != len(expected) {
			t.Fatalf("expected %d sources, got %d: %v", len(expected), len(got), got)
		}
		for i := range got {
			if got[i] != expected[i] {
				t.Errorf("source[%d] = %q, want %q", i, got[i], expected[i])
			}
		}
	})

	t.Run("works with args only when filePath is empty", func(t *testing.T) {
		sources, err := CollectInputs([]string{"x.mp4", "x.mp4"}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sources) != 1 {
			t.Fatalf("expected 1 source, got %v", sourceStrings(sources))
		}
	})
}
