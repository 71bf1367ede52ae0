// Package openai transcribes audio through the OpenAI audio API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

// Options configures the hosted engine
type Options struct {
	APIKey   string
	BaseURL  string
	Model    string // API model name, e.g. whisper-1
	Language string
}

// Engine implements ports.Engine against the OpenAI transcription endpoint.
// The tier key only selects the cache slot; the API model comes from Options.
type Engine struct {
	client   *openai.Client
	model    string
	language string
}

// NewEngine builds a client. An API key is required.
func NewEngine(opts Options) (*Engine, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai backend requires OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	model := opts.Model
	if model == "" {
		model = openai.Whisper1
	}

	language := opts.Language
	if language == "auto" {
		language = ""
	}

	return &Engine{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}, nil
}

func (e *Engine) Name() string { return "openai" }

func (e *Engine) Load(_ context.Context, key string) (ports.Model, error) {
	if !domain.IsValidModel(key) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidModel, key)
	}
	return &model{key: key, engine: e}, nil
}

type model struct {
	key    string
	engine *Engine
}

func (m *model) Key() string { return m.key }

func (m *model) Transcribe(ctx context.Context, audioPath string) (*domain.Transcript, error) {
	resp, err := m.engine.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    m.engine.model,
		FilePath: audioPath,
		Language: m.engine.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	segments := make([]domain.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{Start: seg.Start, End: seg.End, Text: text})
	}

	language := resp.Language
	if language == "" {
		language = "auto"
	}

	return &domain.Transcript{
		Text:          strings.TrimSpace(resp.Text),
		Segments:      segments,
		Model:         m.key,
		Language:      language,
		TranscribedAt: time.Now(),
	}, nil
}

// Ensure Engine implements interface
var _ ports.Engine = (*Engine)(nil)
