package ports

import (
	"context"
	"time"
)

// AudioArtifact is a PCM WAV file produced for one pipeline invocation.
type AudioArtifact struct {
	Path       string
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	// SourceDuration is the container duration reported by ffprobe, zero
	// when unknown.
	SourceDuration time.Duration
}

// AudioExtractor turns a video container into a canonical WAV file.
type AudioExtractor interface {
	// Extract writes the audio track of videoPath into destDir and returns it.
	// It fails with domain.ErrNoAudioTrack when the container has no audio stream
	// and with domain.ErrExtractionFailed for any decode or demux error.
	Extract(ctx context.Context, videoPath string, destDir string) (*AudioArtifact, error)
}
