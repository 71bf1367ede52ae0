package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/logging"
	"github.com/devbush/paralyze/internal/ports"
)

// Request is one analyze invocation. Source wins when set; otherwise File
// and URL are normalized, a non-empty File taking precedence.
type Request struct {
	Source domain.MediaSource
	File   string
	URL    string
	Terms  string // comma separated
	Model  string // empty selects domain.DefaultModel

	// Observer is told about each stage this run enters
	Observer StageObserver
	// Progress receives byte counts for downloads made on behalf of this
	// run: the media fetch and any automatic model download.
	Progress ports.ProgressFunc
}

// StageTiming records how long a stage took
type StageTiming struct {
	Stage   Stage
	Elapsed time.Duration
}

// Result is a completed analysis
type Result struct {
	RequestID  string
	Model      string
	Source     domain.MediaSource
	Terms      *domain.TermSpec
	Report     *domain.CountReport
	Transcript *domain.Transcript
	Audio      *ports.AudioArtifact
	Timings    []StageTiming
}

// Text renders the plain-text report
func (r *Result) Text() string {
	return r.Report.Format(r.Terms, r.Model)
}

// StageObserver is told when a run enters a stage
type StageObserver func(requestID string, stage Stage)

// AnalyzeService runs the acquire, extract, transcribe and count pipeline.
// Runs are independent and may execute concurrently; they share only the
// model registry behind the transcription service.
type AnalyzeService struct {
	fs          afero.Fs
	tempDir     string
	acquirer    *MediaAcquirer
	extractor   ports.AudioExtractor
	transcriber *TranscriptionService
	logger      *slog.Logger
	newID       func() string
}

// NewAnalyzeService creates the pipeline. fs must be the filesystem the
// fetcher and extractor write to.
func NewAnalyzeService(
	fs afero.Fs,
	acquirer *MediaAcquirer,
	extractor ports.AudioExtractor,
	transcriber *TranscriptionService,
	logger *slog.Logger,
) *AnalyzeService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AnalyzeService{
		fs:          fs,
		acquirer:    acquirer,
		extractor:   extractor,
		transcriber: transcriber,
		logger:      logging.Component(logger, "analyze"),
		newID:       uuid.NewString,
	}
}

// WithTempDir sets the parent of per-run workspaces ("" is the system temp dir)
func (s *AnalyzeService) WithTempDir(dir string) *AnalyzeService {
	s.tempDir = dir
	return s
}

// Analyze runs the pipeline and returns either the report text or a
// single-line explanation, never both.
func (s *AnalyzeService) Analyze(ctx context.Context, req Request) string {
	result, err := s.Run(ctx, req)
	if err != nil {
		return UserMessage(err)
	}
	return result.Text()
}

// Run executes the pipeline. Any failure is returned as a *StageError.
// The workspace is removed before Run returns on every path.
func (s *AnalyzeService) Run(ctx context.Context, req Request) (result *Result, err error) {
	id := s.newID()
	logger := s.logger.With(slog.String(logging.FieldRequestID, id))
	ctx = ports.WithProgress(ctx, req.Progress)
	notify := func(stage Stage) {
		if req.Observer != nil {
			req.Observer(id, stage)
		}
	}

	stage := StageValidate
	started := time.Now()
	var timings []StageTiming

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic",
				slog.String(logging.FieldStage, string(stage)),
				slog.Any("panic", r),
			)
			result = nil
			err = &StageError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
	}()

	enter := func(next Stage) {
		now := time.Now()
		timings = append(timings, StageTiming{Stage: stage, Elapsed: now.Sub(started)})
		stage, started = next, now
		logger.Debug("stage started", slog.String(logging.FieldStage, string(stage)))
		notify(stage)
	}
	fail := func(cause error) error {
		stageErr := &StageError{Stage: stage, Err: cause}
		logger.Info("analysis failed",
			slog.String(logging.FieldStage, string(stage)),
			slog.Any("error", cause),
		)
		return stageErr
	}

	notify(stage)
	src, terms, model, verr := s.validate(req, logger)
	if verr != nil {
		return nil, fail(verr)
	}
	logger = logger.With(
		slog.String(logging.FieldSource, src.String()),
		slog.String(logging.FieldModel, model),
	)

	enter(StageAcquire)
	ws, werr := NewWorkspace(s.fs, s.tempDir, shortID(id))
	if werr != nil {
		return nil, fail(fmt.Errorf("%w: create workspace: %w", ErrInternal, werr))
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			logger.Warn("workspace cleanup failed", slog.String("dir", ws.Dir()), slog.Any("error", cerr))
		}
	}()

	videoPath, aerr := s.acquirer.Acquire(ctx, src, ws.Dir())
	if aerr != nil {
		return nil, fail(aerr)
	}

	enter(StageExtract)
	audio, eerr := s.extractor.Extract(ctx, videoPath, ws.Dir())
	if eerr != nil {
		return nil, fail(eerr)
	}
	logger.Debug("audio extracted",
		slog.String("path", audio.Path),
		slog.Duration("duration", audio.Duration),
		slog.Duration("source_duration", audio.SourceDuration),
		slog.Int("sample_rate", audio.SampleRate),
	)

	enter(StageTranscribe)
	transcript, terr := s.transcriber.Transcribe(ctx, audio.Path, model)
	if terr != nil {
		return nil, fail(terr)
	}

	enter(StageCount)
	report := domain.Count(transcript.ToText(), terms)

	enter(StageDone)
	logger.Info("analysis complete",
		slog.Int("terms", terms.Len()),
		slog.Int("total", report.Total()),
		slog.Int("transcript_words", transcript.WordCount()),
	)

	return &Result{
		RequestID:  id,
		Model:      model,
		Source:     src,
		Terms:      terms,
		Report:     report,
		Transcript: transcript,
		Audio:      audio,
		Timings:    timings,
	}, nil
}

// validate checks the request without touching the filesystem or network
func (s *AnalyzeService) validate(req Request, logger *slog.Logger) (domain.MediaSource, *domain.TermSpec, string, error) {
	src := req.Source
	if src.IsZero() {
		var err error
		src, err = domain.ParseMediaSource(req.File, req.URL)
		if err != nil {
			return domain.MediaSource{}, nil, "", err
		}
		if src.Kind() == domain.SourceLocal && strings.TrimSpace(req.URL) != "" {
			logger.Warn("both file and URL given, using the file", slog.String("url", req.URL))
		}
	}

	terms, err := domain.ParseTerms(req.Terms)
	if err != nil {
		return domain.MediaSource{}, nil, "", err
	}

	model, err := domain.ParseModelKey(req.Model)
	if err != nil {
		return domain.MediaSource{}, nil, "", err
	}

	return src, terms, model, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
