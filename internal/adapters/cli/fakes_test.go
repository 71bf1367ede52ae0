package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/application"
	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/logging"
	"github.com/devbush/paralyze/internal/ports"
)

type staticModel struct {
	key  string
	text string
}

func (m staticModel) Key() string { return m.key }

func (m staticModel) Transcribe(ctx context.Context, audioPath string) (*domain.Transcript, error) {
	return &domain.Transcript{Text: m.text, Model: m.key}, nil
}

type staticEngine struct{ text string }

func (e staticEngine) Name() string { return "static" }

func (e staticEngine) Load(ctx context.Context, key string) (ports.Model, error) {
	return staticModel{key: key, text: e.text}, nil
}

// silentExtractor fails for videos whose name contains "silent"
type silentExtractor struct{ fs afero.Fs }

func (x silentExtractor) Extract(ctx context.Context, videoPath, destDir string) (*ports.AudioArtifact, error) {
	if strings.Contains(videoPath, "silent") {
		return nil, domain.ErrNoAudioTrack
	}
	if videoPath == "" {
		return nil, errors.New("no video")
	}
	dest := filepath.Join(destDir, "audio.wav")
	if err := afero.WriteFile(x.fs, dest, []byte("RIFF"), 0644); err != nil {
		return nil, err
	}
	return &ports.AudioArtifact{Path: dest, SampleRate: 16000, Channels: 1, BitDepth: 16}, nil
}

func newTestAnalyzer(text string) *application.AnalyzeService {
	fs := afero.NewMemMapFs()
	registry := application.NewModelRegistry(staticEngine{text: text}, logging.NewNop())
	return application.NewAnalyzeService(
		fs,
		application.NewMediaAcquirer(nil),
		silentExtractor{fs: fs},
		application.NewTranscriptionService(registry),
		logging.NewNop(),
	).WithTempDir("/tmp/paralyze-cli-test")
}
