package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/devbush/paralyze/internal/domain"
)

// ParseSource turns a command-line argument into a media source
func ParseSource(input string) domain.MediaSource {
	input = strings.TrimSpace(input)
	if domain.LooksLikeURL(input) {
		return domain.RemoteSource(input)
	}
	return domain.LocalSource(input)
}

// ParseInputFile reads a file containing paths or URLs, one per line.
// Blank lines and lines starting with # are ignored.
func ParseInputFile(path string) ([]domain.MediaSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sources []domain.MediaSource
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sources = append(sources, ParseSource(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

// CollectInputs combines CLI arguments and file input, deduplicating.
// Args are processed first, then file entries, in order of first appearance.
func CollectInputs(args []string, filePath string) ([]domain.MediaSource, error) {
	seen := make(map[string]bool)
	var sources []domain.MediaSource

	add := func(src domain.MediaSource) {
		if src.IsZero() || seen[src.String()] {
			return
		}
		seen[src.String()] = true
		sources = append(sources, src)
	}

	for _, arg := range args {
		add(ParseSource(arg))
	}

	if filePath != "" {
		fileSources, err := ParseInputFile(filePath)
		if err != nil {
			return nil, err
		}
		for _, src := range fileSources {
			add(src)
		}
	}

	return sources, nil
}
