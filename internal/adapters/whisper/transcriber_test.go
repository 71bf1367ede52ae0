package whisper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

const sampleOutput = `{
  "result": {"language": "en"},
  "transcription": [
    {"timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"}, "text": " Um, so like,"},
    {"timestamps": {"from": "00:00:02,500", "to": "00:00:04,000"}, "text": "  "},
    {"timestamps": {"from": "00:00:04,000", "to": "00:00:06,120"}, "text": " uh, you know."}
  ]
}`

// fakeBinary creates an executable-looking file and returns its path
func fakeBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whisper-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to create fake binary: %v", err)
	}
	return path
}

func writeModel(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "ggml-"+name+".bin"), []byte("fake model"), 0644); err != nil {
		t.Fatalf("failed to create test model file: %v", err)
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestAvailableModels(t *testing.T) {
	e := NewEngine(Options{ModelsDir: t.TempDir()})
	models := e.AvailableModels()

	if len(models) != len(domain.ModelTiers) {
		t.Fatalf("AvailableModels() returned %d models, want %d", len(models), len(domain.ModelTiers))
	}
	for i, m := range models {
		if m.Name != domain.ModelTiers[i].Key {
			t.Errorf("models[%d] = %s, want %s", i, m.Name, domain.ModelTiers[i].Key)
		}
		if m.Size == 0 {
			t.Errorf("%s model has zero size", m.Name)
		}
		if m.Downloaded {
			t.Errorf("%s should not be downloaded in an empty dir", m.Name)
		}
	}
}

func TestAvailableModelsDownloadedStatus(t *testing.T) {
	tmpDir := t.TempDir()
	e := NewEngine(Options{ModelsDir: tmpDir})
	writeModel(t, tmpDir, "tiny")

	for _, m := range e.AvailableModels() {
		if got, want := m.Downloaded, m.Name == "tiny"; got != want {
			t.Errorf("%s Downloaded = %v, want %v", m.Name, got, want)
		}
	}
}

func TestModelURLAllModels(t *testing.T) {
	e := NewEngine(Options{ModelsDir: t.TempDir()})
	for _, key := range domain.ModelKeys() {
		t.Run(key, func(t *testing.T) {
			want := "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-" + key + ".bin"
			if got := e.modelURL(key); got != want {
				t.Errorf("modelURL(%s) = %s, want %s", key, got, want)
			}
		})
	}
}

func TestModelPath(t *testing.T) {
	tmpDir := t.TempDir()
	e := NewEngine(Options{ModelsDir: tmpDir})

	if got, want := e.modelPath("small"), filepath.Join(tmpDir, "ggml-small.bin"); got != want {
		t.Errorf("modelPath(small) = %s, want %s", got, want)
	}
}

func TestNewEngineDefaultModelsDir(t *testing.T) {
	e := NewEngine(Options{})
	if e.opts.ModelsDir == "" {
		t.Error("ModelsDir should not be empty when using default")
	}
}

func TestDeleteModel(t *testing.T) {
	tmpDir := t.TempDir()
	e := NewEngine(Options{ModelsDir: tmpDir})
	writeModel(t, tmpDir, "small")

	if !e.IsModelDownloaded("small") {
		t.Fatal("model should exist before deletion")
	}
	if err := e.DeleteModel("small"); err != nil {
		t.Errorf("DeleteModel() returned error: %v", err)
	}
	if e.IsModelDownloaded("small") {
		t.Error("model should not exist after deletion")
	}
	if err := e.DeleteModel("small"); err == nil {
		t.Error("DeleteModel() should return error for non-existent model")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"00:00:00,000", 0.0},
		{"00:00:01,500", 1.5},
		{"00:01:00,000", 60.0},
		{"01:30:45,123", 5445.123},
		{"00:00:00.500", 0.5},
		{"invalid", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := parseTimestamp(tt.input); result != tt.expected {
				t.Errorf("parseTimestamp(%s) = %f, want %f", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoad_InvalidModel(t *testing.T) {
	e := NewEngine(Options{ModelsDir: t.TempDir(), BinPath: fakeBinary(t)})

	for _, key := range []string{"large", "", "Small"} {
		if _, err := e.Load(context.Background(), key); !errors.Is(err, domain.ErrInvalidModel) {
			t.Errorf("Load(%q) error = %v, want ErrInvalidModel", key, err)
		}
	}
}

func TestLoad_BinaryMissing(t *testing.T) {
	e := NewEngine(Options{
		ModelsDir: t.TempDir(),
		BinPath:   filepath.Join(t.TempDir(), "does-not-exist"),
	})

	_, err := e.Load(context.Background(), "tiny")
	if !errors.Is(err, domain.ErrWhisperNotFound) {
		t.Errorf("Load() error = %v, want ErrWhisperNotFound", err)
	}
}

func TestLoad_ModelMissingWithoutAutoDownload(t *testing.T) {
	e := NewEngine(Options{ModelsDir: t.TempDir(), BinPath: fakeBinary(t)})

	_, err := e.Load(context.Background(), "tiny")
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Errorf("Load() error = %v, want ErrModelNotFound", err)
	}
}

func TestLoad_AutoDownload(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/ggml-base.bin" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ggml model bytes"))
	}))
	defer srv.Close()

	modelsDir := t.TempDir()
	var reported []int64
	e := NewEngine(Options{ModelsDir: modelsDir, BinPath: fakeBinary(t), AutoDownload: true}).
		WithHTTPClient(srv.Client()).
		WithModelBaseURL(srv.URL)
	ctx := ports.WithProgress(context.Background(), func(downloaded, _ int64) {
		reported = append(reported, downloaded)
	})

	m, err := e.Load(ctx, "base")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Key() != "base" {
		t.Errorf("Key() = %s, want base", m.Key())
	}
	if !e.IsModelDownloaded("base") {
		t.Error("model should be on disk after Load")
	}
	if len(reported) == 0 {
		t.Error("progress callback never called")
	}

	// Second load reuses the file
	if _, err := e.Load(context.Background(), "base"); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(modelsDir, "ggml-base.bin.tmp")); !os.IsNotExist(err) {
		t.Error("temporary download file should be gone")
	}
}

func TestDownloadModel_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"empty body", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			modelsDir := t.TempDir()
			e := NewEngine(Options{ModelsDir: modelsDir}).
				WithHTTPClient(srv.Client()).
				WithModelBaseURL(srv.URL)

			if err := e.DownloadModel(context.Background(), "tiny", nil); err == nil {
				t.Fatal("DownloadModel() should fail")
			}
			if e.IsModelDownloaded("tiny") {
				t.Error("failed download must not leave a model behind")
			}
			if _, err := os.Stat(filepath.Join(modelsDir, "ggml-tiny.bin.tmp")); !os.IsNotExist(err) {
				t.Error("partial download should be removed")
			}
		})
	}
}

func TestDownloadModelUnknown(t *testing.T) {
	e := NewEngine(Options{ModelsDir: t.TempDir()})

	err := e.DownloadModel(context.Background(), "unknown-model", nil)
	if !errors.Is(err, domain.ErrInvalidModel) {
		t.Errorf("DownloadModel() error = %v, want ErrInvalidModel", err)
	}
}

func TestTranscribe(t *testing.T) {
	modelsDir := t.TempDir()
	writeModel(t, modelsDir, "small")
	workDir := t.TempDir()
	audio := filepath.Join(workDir, "audio.wav")

	var gotArgs []string
	runner := func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		out := argAfter(args, "-of") + ".json"
		return nil, os.WriteFile(out, []byte(sampleOutput), 0644)
	}

	e := NewEngine(Options{ModelsDir: modelsDir, BinPath: fakeBinary(t), Language: "auto", Threads: 4}).
		WithCommandRunner(runner)

	m, err := e.Load(context.Background(), "small")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tr, err := m.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if tr.Text != "Um, so like, uh, you know." {
		t.Errorf("Text = %q", tr.Text)
	}
	if len(tr.Segments) != 2 {
		t.Errorf("got %d segments, want 2 (blank segment dropped)", len(tr.Segments))
	}
	if tr.Language != "en" || tr.Model != "small" {
		t.Errorf("Language/Model = %s/%s, want en/small", tr.Language, tr.Model)
	}

	if argAfter(gotArgs, "-f") != audio {
		t.Errorf("-f = %s, want %s", argAfter(gotArgs, "-f"), audio)
	}
	if argAfter(gotArgs, "-m") != filepath.Join(modelsDir, "ggml-small.bin") {
		t.Errorf("-m = %s", argAfter(gotArgs, "-m"))
	}
	if argAfter(gotArgs, "-t") != "4" || argAfter(gotArgs, "-l") != "auto" {
		t.Errorf("args = %v, want -t 4 -l auto", gotArgs)
	}
	if !strings.HasPrefix(argAfter(gotArgs, "-of"), workDir) {
		t.Errorf("output written outside the audio directory: %s", argAfter(gotArgs, "-of"))
	}
	if _, err := os.Stat(filepath.Join(workDir, "transcript.json")); !os.IsNotExist(err) {
		t.Error("JSON output should be removed after parsing")
	}
}

func TestTranscribe_RunnerFailure(t *testing.T) {
	modelsDir := t.TempDir()
	writeModel(t, modelsDir, "tiny")

	e := NewEngine(Options{ModelsDir: modelsDir, BinPath: fakeBinary(t)}).
		WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("exit status 3")
		})

	m, err := e.Load(context.Background(), "tiny")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := m.Transcribe(context.Background(), filepath.Join(t.TempDir(), "audio.wav")); err == nil {
		t.Error("Transcribe() should fail when whisper.cpp fails")
	}
}

func TestTranscribe_MalformedOutput(t *testing.T) {
	modelsDir := t.TempDir()
	writeModel(t, modelsDir, "tiny")

	e := NewEngine(Options{ModelsDir: modelsDir, BinPath: fakeBinary(t)}).
		WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
			return nil, os.WriteFile(argAfter(args, "-of")+".json", []byte("{not json"), 0644)
		})

	m, err := e.Load(context.Background(), "tiny")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := m.Transcribe(context.Background(), filepath.Join(t.TempDir(), "audio.wav")); err == nil {
		t.Error("Transcribe() should fail on malformed JSON")
	}
}
