package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/devbush/paralyze/internal/config"
	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

// CommandRunner executes a binary and returns its stdout
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Downloader implements ports.MediaFetcher using yt-dlp, for page URLs that
// are not direct media links (YouTube, Instagram, ...).
type Downloader struct {
	binPath string
	run     CommandRunner
}

// NewDownloader creates a new yt-dlp downloader. binPath may be empty to
// search the bundled bin directory and PATH.
func NewDownloader(binPath string) *Downloader {
	return &Downloader{binPath: binPath, run: runCommand}
}

// WithCommandRunner sets a custom command runner (for testing)
func (d *Downloader) WithCommandRunner(run CommandRunner) *Downloader {
	d.run = run
	return d
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return output, nil
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "yt-dlp.exe"
	}
	return "yt-dlp"
}

func (d *Downloader) findBinary() string {
	// Check bundled location first
	bundled := filepath.Join(config.BinDir(), binaryName())
	if _, err := os.Stat(bundled); err == nil {
		return bundled
	}

	// Check system PATH
	if path, err := exec.LookPath(binaryName()); err == nil {
		return path
	}

	return ""
}

func (d *Downloader) GetBinaryPath() string {
	if d.binPath != "" {
		return d.binPath
	}
	d.binPath = d.findBinary()
	return d.binPath
}

func (d *Downloader) IsAvailable() bool {
	return d.GetBinaryPath() != ""
}

func (d *Downloader) Name() string { return "ytdlp" }

func buildArgs(u *url.URL, destDir string) []string {
	return []string{
		"--no-warnings",
		"--no-playlist",
		"--print-json",
		"-f", "bestaudio/best",
		"-o", filepath.Join(destDir, "source.%(ext)s"),
		u.String(),
	}
}

// Fetch downloads the media behind a page URL into destDir
func (d *Downloader) Fetch(ctx context.Context, u *url.URL, destDir string) (*ports.FetchResult, error) {
	binPath := d.GetBinaryPath()
	if binPath == "" {
		return nil, domain.ErrYtDlpNotFound
	}

	output, err := d.run(ctx, binPath, buildArgs(u, destDir)...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	var info struct {
		Title              string `json:"title"`
		Ext                string `json:"ext"`
		FilesizeApprox     int64  `json:"filesize_approx"`
		RequestedDownloads []struct {
			Filepath string `json:"filepath"`
		} `json:"requested_downloads"`
	}

	if err := json.Unmarshal(output, &info); err != nil {
		// Try to find the downloaded file anyway
		matches, _ := filepath.Glob(filepath.Join(destDir, "source.*"))
		if len(matches) > 0 {
			return &ports.FetchResult{Path: matches[0]}, nil
		}
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	mediaPath := filepath.Join(destDir, "source."+info.Ext)
	if len(info.RequestedDownloads) > 0 && info.RequestedDownloads[0].Filepath != "" {
		mediaPath = info.RequestedDownloads[0].Filepath
	}

	// yt-dlp must not escape the destination directory
	rel, err := filepath.Rel(destDir, mediaPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("yt-dlp wrote outside destination: %s", mediaPath)
	}

	return &ports.FetchResult{
		Path:  mediaPath,
		Size:  info.FilesizeApprox,
		Title: info.Title,
	}, nil
}

func (d *Downloader) Install(ctx context.Context, progress func(downloaded, total int64)) error {
	binDir := config.BinDir()
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return err
	}

	downloadURL := d.getDownloadURL()
	destPath := filepath.Join(binDir, binaryName())

	// Use context-aware HTTP request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download yt-dlp: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download yt-dlp: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	// Track success to clean up partial downloads on failure
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(destPath)
		}
	}()

	total := resp.ContentLength
	var downloaded int64

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	// Make executable on Unix
	if runtime.GOOS != "windows" {
		if err := os.Chmod(destPath, 0755); err != nil {
			return err
		}
	}

	success = true
	d.binPath = destPath
	return nil
}

func (d *Downloader) getDownloadURL() string {
	base := "https://github.com/yt-dlp/yt-dlp/releases/latest/download/"

	switch runtime.GOOS {
	case "windows":
		return base + "yt-dlp.exe"
	case "darwin":
		return base + "yt-dlp_macos"
	default:
		return base + "yt-dlp"
	}
}

func (d *Downloader) Update(ctx context.Context) error {
	binPath := d.GetBinaryPath()
	if binPath == "" {
		return domain.ErrYtDlpNotFound
	}

	_, err := d.run(ctx, binPath, "-U")
	return err
}

// Ensure Downloader implements interface
var _ ports.MediaFetcher = (*Downloader)(nil)
