package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/devbush/paralyze/internal/config"
	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

const defaultModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Model sizes in bytes (approximate)
var modelSizes = map[string]int64{
	"tiny":   75 * 1024 * 1024,
	"base":   142 * 1024 * 1024,
	"small":  466 * 1024 * 1024,
	"medium": 1500 * 1024 * 1024,
}

// CommandRunner executes a binary and returns its combined output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures the whisper.cpp engine
type Options struct {
	ModelsDir    string
	BinPath      string // explicit whisper.cpp binary, searched for when empty
	Language     string
	Threads      int
	AutoDownload bool
}

// Engine implements ports.Engine and ports.ModelManager using the whisper.cpp CLI
type Engine struct {
	opts         Options
	client       *http.Client
	run          CommandRunner
	modelBaseURL string
}

// NewEngine creates a whisper.cpp engine
func NewEngine(opts Options) *Engine {
	if opts.ModelsDir == "" {
		opts.ModelsDir = config.ModelsDir()
	}
	return &Engine{
		opts:         opts,
		client:       http.DefaultClient,
		run:          runCommand,
		modelBaseURL: defaultModelBaseURL,
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func (e *Engine) WithCommandRunner(run CommandRunner) *Engine {
	e.run = run
	return e
}

// WithHTTPClient replaces the client used for model downloads
func (e *Engine) WithHTTPClient(client *http.Client) *Engine {
	e.client = client
	return e
}

// WithModelBaseURL points model downloads at a mirror
func (e *Engine) WithModelBaseURL(base string) *Engine {
	e.modelBaseURL = strings.TrimRight(base, "/")
	return e
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if len(msg) > 500 {
			msg = msg[len(msg)-500:]
		}
		return nil, fmt.Errorf("%w: %s", err, msg)
	}
	return output, nil
}

func (e *Engine) Name() string { return "whisper" }

func (e *Engine) modelURL(name string) string {
	return fmt.Sprintf("%s/ggml-%s.bin", e.modelBaseURL, name)
}

func (e *Engine) modelPath(name string) string {
	return filepath.Join(e.opts.ModelsDir, fmt.Sprintf("ggml-%s.bin", name))
}

// Load validates the tier, locates the whisper.cpp binary and makes sure
// the model file is on disk. An automatic download reports to the progress
// callback carried by ctx.
func (e *Engine) Load(ctx context.Context, key string) (ports.Model, error) {
	if !domain.IsValidModel(key) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidModel, key)
	}

	bin := e.findWhisperBinary()
	if bin == "" {
		return nil, fmt.Errorf("%w (install whisper.cpp or set paths.whisper)", domain.ErrWhisperNotFound)
	}

	if !e.IsModelDownloaded(key) {
		if !e.opts.AutoDownload {
			return nil, fmt.Errorf("%w: %s (run 'paralyze model download %s')", domain.ErrModelNotFound, key, key)
		}
		if err := e.DownloadModel(ctx, key, ports.ProgressFrom(ctx)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrModelNotFound, key, err)
		}
	}

	return &model{
		key:       key,
		bin:       bin,
		modelPath: e.modelPath(key),
		language:  e.opts.Language,
		threads:   e.opts.Threads,
		run:       e.run,
	}, nil
}

func (e *Engine) AvailableModels() []ports.ModelInfo {
	models := make([]ports.ModelInfo, 0, len(domain.ModelTiers))
	for _, tier := range domain.ModelTiers {
		models = append(models, ports.ModelInfo{
			Name:        tier.Key,
			Size:        modelSizes[tier.Key],
			Description: tier.Description,
			Downloaded:  e.IsModelDownloaded(tier.Key),
		})
	}
	return models
}

func (e *Engine) IsModelDownloaded(model string) bool {
	info, err := os.Stat(e.modelPath(model))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// DownloadModel fetches a ggml model. A file lock next to the model keeps
// concurrent processes from downloading the same file twice.
func (e *Engine) DownloadModel(ctx context.Context, model string, progress func(downloaded, total int64)) error {
	if !domain.IsValidModel(model) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidModel, model)
	}

	if err := os.MkdirAll(e.opts.ModelsDir, 0755); err != nil {
		return err
	}

	destPath := e.modelPath(model)
	lock := flock.New(destPath + ".lock")
	locked, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire model lock: %w", err)
	}
	if !locked {
		return errors.New("acquire model lock: timed out")
	}
	defer func() { _ = lock.Unlock() }()

	// Another process may have finished while we waited
	if e.IsModelDownloaded(model) {
		return nil
	}

	return e.download(ctx, e.modelURL(model), destPath, progress)
}

func (e *Engine) download(ctx context.Context, url, destPath string, progress func(downloaded, total int64)) error {
	tempPath := destPath + ".tmp"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download model: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	// Track success to clean up partial downloads on failure
	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(tempPath)
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

	if downloaded == 0 {
		return errors.New("failed to download model: empty response")
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return err
	}

	success = true
	return nil
}

func (e *Engine) DeleteModel(model string) error {
	return os.Remove(e.modelPath(model))
}

// BinaryPath returns the whisper.cpp binary that Load would use, or ""
func (e *Engine) BinaryPath() string {
	return e.findWhisperBinary()
}

func (e *Engine) findWhisperBinary() string {
	if e.opts.BinPath != "" {
		if _, err := os.Stat(e.opts.BinPath); err == nil {
			return e.opts.BinPath
		}
		if path, err := exec.LookPath(e.opts.BinPath); err == nil {
			return path
		}
		return ""
	}

	names := []string{"whisper-cli", "whisper", "whisper-cpp", "main"}
	if runtime.GOOS == "windows" {
		for i := range names {
			names[i] += ".exe"
		}
	}

	// Check bundled location
	for _, name := range names {
		bundled := filepath.Join(config.BinDir(), name)
		if _, err := os.Stat(bundled); err == nil {
			return bundled
		}
	}

	// Check PATH
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// model is an immutable handle to one ggml model file
type model struct {
	key       string
	bin       string
	modelPath string
	language  string
	threads   int
	run       CommandRunner
}

func (m *model) Key() string { return m.key }

func (m *model) args(audioPath, outputBase string) []string {
	args := []string{
		"-m", m.modelPath,
		"-f", audioPath,
		"-of", outputBase,
		"-oj", // JSON output
		"-np", // no progress prints
	}
	if m.language != "" {
		args = append(args, "-l", m.language)
	}
	if m.threads > 0 {
		args = append(args, "-t", strconv.Itoa(m.threads))
	}
	return args
}

// Transcribe runs whisper.cpp on a 16 kHz WAV. The JSON output is written
// next to the audio file and removed afterwards.
func (m *model) Transcribe(ctx context.Context, audioPath string) (*domain.Transcript, error) {
	outputBase := filepath.Join(filepath.Dir(audioPath), "transcript")
	jsonPath := outputBase + ".json"
	defer os.Remove(jsonPath)

	if _, err := m.run(ctx, m.bin, m.args(audioPath, outputBase)...); err != nil {
		return nil, fmt.Errorf("whisper.cpp: %w", err)
	}

	return parseWhisperJSON(jsonPath, m.key, m.language)
}

func parseWhisperJSON(path, model, language string) (*domain.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var output struct {
		Result struct {
			Language string `json:"language"`
		} `json:"result"`
		Transcription []struct {
			Timestamps struct {
				From string `json:"from"`
				To   string `json:"to"`
			} `json:"timestamps"`
			Text string `json:"text"`
		} `json:"transcription"`
	}

	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	var segments []domain.Segment
	var fullText strings.Builder

	for _, item := range output.Transcription {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}

		segments = append(segments, domain.Segment{
			Start: parseTimestamp(item.Timestamps.From),
			End:   parseTimestamp(item.Timestamps.To),
			Text:  text,
		})

		if fullText.Len() > 0 {
			fullText.WriteString(" ")
		}
		fullText.WriteString(text)
	}

	if output.Result.Language != "" {
		language = output.Result.Language
	}
	if language == "" {
		language = "auto"
	}

	return &domain.Transcript{
		Text:          fullText.String(),
		Segments:      segments,
		Model:         model,
		Language:      language,
		TranscribedAt: time.Now(),
	}, nil
}

var timestampRegex = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)

func parseTimestamp(ts string) float64 {
	matches := timestampRegex.FindStringSubmatch(ts)
	if len(matches) != 5 {
		return 0
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])
	millis, _ := strconv.Atoi(matches[4])

	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

// Ensure Engine implements interfaces
var (
	_ ports.Engine       = (*Engine)(nil)
	_ ports.ModelManager = (*Engine)(nil)
)
