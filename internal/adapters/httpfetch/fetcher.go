package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/ports"
)

// Fetcher implements ports.MediaFetcher with a single HTTP GET
type Fetcher struct {
	fs     afero.Fs
	client *http.Client
}

// NewFetcher creates an HTTP fetcher writing through fs. A zero timeout
// means no client timeout.
func NewFetcher(fs afero.Fs, timeout time.Duration) *Fetcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Fetcher{
		fs:     fs,
		client: &http.Client{Timeout: timeout},
	}
}

// WithClient replaces the HTTP client (for testing)
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

func (f *Fetcher) Name() string { return "http" }

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)

// destName picks the local file name, keeping a plausible extension so
// demuxers can use it as a hint.
func destName(u *url.URL) string {
	ext := path.Ext(u.Path)
	if !extPattern.MatchString(ext) {
		ext = ".media"
	}
	return "source" + ext
}

// Fetch downloads u in one attempt. Progress goes to the callback carried
// by ctx (ports.WithProgress), if any.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL, destDir string) (*ports.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	destPath := filepath.Join(destDir, destName(u))
	out, err := f.fs.Create(destPath)
	if err != nil {
		return nil, err
	}

	// Track success to clean up partial downloads on failure
	success := false
	defer func() {
		out.Close()
		if !success {
			f.fs.Remove(destPath)
		}
	}()

	pw := &progressWriter{writer: out, total: resp.ContentLength, progress: ports.ProgressFrom(ctx)}
	written, err := io.Copy(pw, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return nil, fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength)
	}
	if written == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if err := out.Close(); err != nil {
		return nil, err
	}

	success = true
	return &ports.FetchResult{Path: destPath, Size: written}, nil
}

type progressWriter struct {
	writer     io.Writer
	total      int64
	downloaded int64
	progress   ports.ProgressFunc
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.downloaded += int64(n)
	if pw.progress != nil {
		pw.progress(pw.downloaded, pw.total)
	}
	return n, err
}

// Ensure Fetcher implements interface
var _ ports.MediaFetcher = (*Fetcher)(nil)
