package application

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/domain"
)

func TestMediaAcquirer_Local(t *testing.T) {
	fetcher := &fakeFetcher{fs: afero.NewMemMapFs()}
	a := NewMediaAcquirer(fetcher)

	got, err := a.Acquire(context.Background(), domain.LocalSource("/videos/talk.mp4"), "/work")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != "/videos/talk.mp4" {
		t.Errorf("Acquire() = %s, want the path unchanged", got)
	}
	if fetcher.callCount() != 0 {
		t.Error("local source must not be fetched")
	}
}

func TestMediaAcquirer_Remote(t *testing.T) {
	fs := afero.NewMemMapFs()
	fetcher := &fakeFetcher{fs: fs}
	a := NewMediaAcquirer(fetcher)

	got, err := a.Acquire(context.Background(), domain.RemoteSource("https://example.com/v.mp4"), "/work")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if got != "/work/source.mp4" {
		t.Errorf("Acquire() = %s", got)
	}
	if fetcher.lastDir != "/work" {
		t.Errorf("fetch destination = %s, want /work", fetcher.lastDir)
	}
}

func TestMediaAcquirer_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       domain.MediaSource
		fetcher   *fakeFetcher
		want      error
		wantFetch bool
	}{
		{"zero source", domain.MediaSource{}, &fakeFetcher{}, domain.ErrMissingInput, false},
		{"blank local", domain.LocalSource("   "), &fakeFetcher{}, domain.ErrMissingInput, false},
		{"relative url", domain.RemoteSource("example.com/video.mp4"), &fakeFetcher{}, domain.ErrInvalidURL, false},
		{"no host", domain.RemoteSource("https:///video.mp4"), &fakeFetcher{}, domain.ErrInvalidURL, false},
		{"transport error", domain.RemoteSource("https://example.com/v.mp4"), &fakeFetcher{err: errors.New("dial tcp: no such host")}, domain.ErrDownloadFailed, true},
		{"escapes workspace", domain.RemoteSource("https://example.com/v.mp4"), &fakeFetcher{outside: true}, domain.ErrDownloadFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fetcher.fs = afero.NewMemMapFs()
			a := NewMediaAcquirer(tt.fetcher)

			_, err := a.Acquire(context.Background(), tt.src, "/work")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Acquire() error = %v, want %v", err, tt.want)
			}
			if got := tt.fetcher.callCount() > 0; got != tt.wantFetch {
				t.Errorf("fetched = %v, want %v", got, tt.wantFetch)
			}
		})
	}
}

func TestMediaAcquirer_NoFetcher(t *testing.T) {
	a := NewMediaAcquirer(nil)
	_, err := a.Acquire(context.Background(), domain.RemoteSource("https://example.com/v.mp4"), "/work")
	if !errors.Is(err, domain.ErrDownloadFailed) {
		t.Errorf("Acquire() error = %v, want ErrDownloadFailed", err)
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/work", "/work/source.mp4", true},
		{"/work", "/work/sub/source.mp4", true},
		{"/work", "/work", false},
		{"/work", "/work/../etc/passwd", false},
		{"/work", "/workshop/file", false},
		{"/work", "/etc/passwd", false},
	}
	for _, tt := range tests {
		if got := within(tt.dir, tt.path); got != tt.want {
			t.Errorf("within(%s, %s) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}
