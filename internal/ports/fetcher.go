package ports

import (
	"context"
	"net/url"
)

// FetchResult describes a remote media file saved locally.
type FetchResult struct {
	Path  string // local file inside the destination directory
	Size  int64  // bytes written, 0 when unknown
	Title string // optional title reported by the source
}

// MediaFetcher downloads remote media into a caller-owned directory.
// Implementations make a single attempt and never write outside destDir.
type MediaFetcher interface {
	// Name identifies the fetcher in logs and config ("http", "ytdlp").
	Name() string

	// Fetch downloads u into destDir.
	Fetch(ctx context.Context, u *url.URL, destDir string) (*FetchResult, error)
}
