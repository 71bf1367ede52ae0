package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

// MediaAcquirer resolves a MediaSource to a file on local disk
type MediaAcquirer struct {
	fetcher ports.MediaFetcher
}

// NewMediaAcquirer creates an acquirer. fetcher may be nil when only local
// files are expected.
func NewMediaAcquirer(fetcher ports.MediaFetcher) *MediaAcquirer {
	return &MediaAcquirer{fetcher: fetcher}
}

// Acquire returns a local path for src. Local paths are returned unchanged;
// remote URLs are downloaded into destDir with a single attempt.
func (a *MediaAcquirer) Acquire(ctx context.Context, src domain.MediaSource, destDir string) (string, error) {
	switch src.Kind() {
	case domain.SourceLocal:
		if strings.TrimSpace(src.Path()) == "" {
			return "", fmt.Errorf("%w: empty file path", domain.ErrMissingInput)
		}
		return src.Path(), nil

	case domain.SourceRemote:
		u, err := domain.ValidateRemoteURL(src.URL())
		if err != nil {
			return "", err
		}
		if a.fetcher == nil {
			return "", fmt.Errorf("%w: no fetcher configured", domain.ErrDownloadFailed)
		}

		result, err := a.fetcher.Fetch(ctx, u, destDir)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err)
		}
		if result == nil || result.Path == "" {
			return "", fmt.Errorf("%w: %s returned no file", domain.ErrDownloadFailed, a.fetcher.Name())
		}
		if !within(destDir, result.Path) {
			return "", fmt.Errorf("%w: %s wrote outside the workspace", domain.ErrDownloadFailed, a.fetcher.Name())
		}
		return result.Path, nil

	default:
		return "", errors.Join(domain.ErrMissingInput, errors.New("no media source"))
	}
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
