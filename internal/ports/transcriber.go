package ports

import (
	"context"

	"github.com/devbush/paralyze/internal/domain"
)

// ModelInfo describes a model tier and its local state
type ModelInfo struct {
	Name        string
	Size        int64 // bytes, approximate
	Description string
	Downloaded  bool
}

// Model is a loaded speech-to-text model. It is immutable once built and
// safe for concurrent use.
type Model interface {
	// Key returns the model tier this handle was built for
	Key() string

	// Transcribe converts an audio file to text
	Transcribe(ctx context.Context, audioPath string) (*domain.Transcript, error)
}

// Engine builds models. Loading is expensive; callers cache the result.
type Engine interface {
	// Name identifies the backend ("whisper", "openai")
	Name() string

	// Load constructs the model for a tier
	Load(ctx context.Context, key string) (Model, error)
}

// ModelManager is implemented by engines that keep model files on disk
type ModelManager interface {
	// AvailableModels returns list of available models
	AvailableModels() []ModelInfo

	// IsModelDownloaded checks if a model is available locally
	IsModelDownloaded(model string) bool

	// DownloadModel downloads a model with progress callback
	DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error

	// DeleteModel removes a downloaded model
	DeleteModel(model string) error
}
