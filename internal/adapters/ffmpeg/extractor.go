package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

// AudioFileName is the name of the extracted WAV inside the destination directory
const AudioFileName = "audio.wav"

// CommandRunner executes a binary and returns its combined output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Extractor implements ports.AudioExtractor with ffprobe and ffmpeg.
// Output is mono 16 kHz signed 16-bit PCM, the input format whisper expects.
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	run         CommandRunner
}

// NewExtractor creates an extractor. Empty paths resolve ffmpeg and ffprobe
// from PATH at run time.
func NewExtractor(ffmpegPath, ffprobePath string) *Extractor {
	return &Extractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		run:         runCommand,
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func (e *Extractor) WithCommandRunner(run CommandRunner) *Extractor {
	e.run = run
	return e
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFFmpegNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func binaryName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func (e *Extractor) ffmpegBinary() string {
	if e.ffmpegPath != "" {
		return e.ffmpegPath
	}
	return binaryName("ffmpeg")
}

func (e *Extractor) ffprobeBinary() string {
	if e.ffprobePath != "" {
		return e.ffprobePath
	}
	return binaryName("ffprobe")
}

// FFmpegPath returns the resolved ffmpeg binary, or "" when not installed
func (e *Extractor) FFmpegPath() string {
	path, err := exec.LookPath(e.ffmpegBinary())
	if err != nil {
		return ""
	}
	return path
}

// FFprobePath returns the resolved ffprobe binary, or "" when not installed
func (e *Extractor) FFprobePath() string {
	path, err := exec.LookPath(e.ffprobeBinary())
	if err != nil {
		return ""
	}
	return path
}

func buildExtractArgs(source string, audioIndex int, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:%d", audioIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// Extract writes the first audio stream of videoPath to destDir/audio.wav
func (e *Extractor) Extract(ctx context.Context, videoPath string, destDir string) (*ports.AudioArtifact, error) {
	if strings.TrimSpace(videoPath) == "" {
		return nil, fmt.Errorf("%w: empty video path", domain.ErrExtractionFailed)
	}

	probe, err := e.Inspect(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	if probe.AudioStreamCount() == 0 {
		return nil, domain.ErrNoAudioTrack
	}
	audioIndex := probe.FirstAudioStream()

	dest := filepath.Join(destDir, AudioFileName)
	if _, err := e.run(ctx, e.ffmpegBinary(), buildExtractArgs(videoPath, audioIndex, dest)...); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("%w: ffmpeg extract: %w", domain.ErrExtractionFailed, err)
	}

	artifact, err := InspectWAV(dest)
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	artifact.SourceDuration = time.Duration(probe.DurationSeconds() * float64(time.Second))
	return artifact, nil
}

// Ensure Extractor implements interface
var _ ports.AudioExtractor = (*Extractor)(nil)
