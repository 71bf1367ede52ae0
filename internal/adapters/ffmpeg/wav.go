package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/devbush/paralyze/internal/ports"
)

// InspectWAV validates a PCM WAV file and reads its format
func InspectWAV(path string) (*ports.AudioArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("output is not a valid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("read wav data chunk: %w", err)
	}

	artifact := &ports.AudioArtifact{
		Path:       path,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	bytesPerSec := artifact.SampleRate * artifact.Channels * artifact.BitDepth / 8
	if bytesPerSec > 0 {
		artifact.Duration = time.Duration(float64(dec.PCMSize) / float64(bytesPerSec) * float64(time.Second))
	}
	return artifact, nil
}
