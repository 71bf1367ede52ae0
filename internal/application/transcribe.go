package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/devbush/paralyze/internal/domain"
)

// TranscriptionService turns an audio file into text using cached models
type TranscriptionService struct {
	registry *ModelRegistry
}

// NewTranscriptionService creates a transcription service over registry
func NewTranscriptionService(registry *ModelRegistry) *TranscriptionService {
	return &TranscriptionService{registry: registry}
}

// Transcribe runs the model selected by modelKey on audioPath. An unknown
// key fails with ErrInvalidModel before any model is built; every other
// failure is wrapped in ErrTranscriptionFailed.
func (s *TranscriptionService) Transcribe(ctx context.Context, audioPath, modelKey string) (*domain.Transcript, error) {
	key, err := domain.ParseModelKey(modelKey)
	if err != nil {
		return nil, err
	}

	model, err := s.registry.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidModel) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading %s model: %w", domain.ErrTranscriptionFailed, key, err)
	}

	transcript, err := model.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranscriptionFailed, err)
	}
	if transcript == nil {
		return nil, fmt.Errorf("%w: engine returned no transcript", domain.ErrTranscriptionFailed)
	}
	return transcript, nil
}

// GetTranscript returns only the transcript text
func (s *TranscriptionService) GetTranscript(ctx context.Context, audioPath, modelKey string) (string, error) {
	transcript, err := s.Transcribe(ctx, audioPath, modelKey)
	if err != nil {
		return "", err
	}
	return transcript.ToText(), nil
}
