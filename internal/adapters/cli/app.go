package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/adapters/ffmpeg"
	"github.com/devbush/paralyze/internal/adapters/httpfetch"
	"github.com/devbush/paralyze/internal/adapters/openai"
	"github.com/devbush/paralyze/internal/adapters/whisper"
	"github.com/devbush/paralyze/internal/adapters/ytdlp"
	"github.com/devbush/paralyze/internal/application"
	"github.com/devbush/paralyze/internal/config"
	"github.com/devbush/paralyze/internal/logging"
	"github.com/devbush/paralyze/internal/ports"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	Logger *slog.Logger
	FS     afero.Fs

	YtDlp     *ytdlp.Downloader
	Fetcher   ports.MediaFetcher
	Extractor *ffmpeg.Extractor
	Whisper   *whisper.Engine
	Engine    ports.Engine

	Registry    *application.ModelRegistry
	Transcriber *application.TranscriptionService
	Acquirer    *application.MediaAcquirer
	Analyzer    *application.AnalyzeService
}

// AppOptions carries command-line overrides applied on top of the config
type AppOptions struct {
	LogLevel  string
	LogOutput io.Writer
	Backend   string
	Fetcher   string
	Language  string
}

// NewApp loads configuration and wires up all dependencies
func NewApp(opts AppOptions) (*App, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Transcribe.Backend = opts.Backend
	}
	if opts.Fetcher != "" {
		cfg.Acquire.Fetcher = opts.Fetcher
	}
	if opts.Language != "" {
		cfg.Transcribe.Language = opts.Language
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return newAppFromConfig(cfg, opts)
}

func newAppFromConfig(cfg *config.Config, opts AppOptions) (*App, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Output: out})
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.GetAcquireTimeout()
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	downloader := ytdlp.NewDownloader(cfg.Paths.YtDlp)

	var fetcher ports.MediaFetcher
	switch cfg.Acquire.Fetcher {
	case "ytdlp":
		fetcher = downloader
	default:
		fetcher = httpfetch.NewFetcher(fs, timeout)
	}

	extractor := ffmpeg.NewExtractor(cfg.Paths.FFmpeg, cfg.Paths.FFprobe)

	whisperEngine := whisper.NewEngine(whisper.Options{
		ModelsDir:    config.ModelsDir(),
		BinPath:      cfg.Paths.Whisper,
		Language:     cfg.Transcribe.Language,
		Threads:      cfg.Transcribe.Threads,
		AutoDownload: cfg.Transcribe.AutoDownload,
	})

	var engine ports.Engine = whisperEngine
	if cfg.Transcribe.Backend == "openai" {
		oa, err := openai.NewEngine(openai.Options{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.Model,
			Language: cfg.Transcribe.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("transcribe.backend openai: %w", err)
		}
		engine = oa
	}

	registry := application.NewModelRegistry(engine, logger)
	transcriber := application.NewTranscriptionService(registry)
	acquirer := application.NewMediaAcquirer(fetcher)
	analyzer := application.NewAnalyzeService(fs, acquirer, extractor, transcriber, logger).
		WithTempDir(cfg.Paths.TempDir)

	return &App{
		Config:      cfg,
		Logger:      logger,
		FS:          fs,
		YtDlp:       downloader,
		Fetcher:     fetcher,
		Extractor:   extractor,
		Whisper:     whisperEngine,
		Engine:      engine,
		Registry:    registry,
		Transcriber: transcriber,
		Acquirer:    acquirer,
		Analyzer:    analyzer,
	}, nil
}

// Models returns the model manager for the configured backend, or nil when
// the backend keeps no local model files
func (a *App) Models() ports.ModelManager {
	if a.Config.Transcribe.Backend == "whisper" {
		return a.Whisper
	}
	return nil
}

var globalApp *App

// GetApp returns the global app instance, creating it if needed
func GetApp() (*App, error) {
	if globalApp == nil {
		app, err := NewApp(globalAppOptions())
		if err != nil {
			return nil, err
		}
		globalApp = app
	}
	return globalApp, nil
}
