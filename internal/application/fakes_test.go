package application

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

// fakeModel returns a fixed transcript
type fakeModel struct {
	key   string
	text  string
	err   error
	calls atomic.Int32
}

func (m *fakeModel) Key() string { return m.key }

func (m *fakeModel) Transcribe(ctx context.Context, audioPath string) (*domain.Transcript, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Transcript{Text: m.text, Model: m.key, Language: "en", TranscribedAt: time.Now()}, nil
}

// fakeEngine counts constructions. failures makes the first N loads fail.
type fakeEngine struct {
	text     string
	failures int32
	delay    time.Duration
	modelErr error

	mu     sync.Mutex
	loads  map[string]int
	models map[string]*fakeModel
	total  atomic.Int32
}

func newFakeEngine(text string) *fakeEngine {
	return &fakeEngine{text: text, loads: map[string]int{}, models: map[string]*fakeModel{}}
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Load(ctx context.Context, key string) (ports.Model, error) {
	n := e.total.Add(1)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if n <= e.failures {
		return nil, errors.New("model weights corrupt")
	}
	if progress := ports.ProgressFrom(ctx); progress != nil {
		progress(100, 100)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads[key]++
	m := &fakeModel{key: key, text: e.text, err: e.modelErr}
	e.models[key] = m
	return m, nil
}

func (e *fakeEngine) loadCount(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads[key]
}

func (e *fakeEngine) transcribeCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, m := range e.models {
		total += int(m.calls.Load())
	}
	return total
}

// fakeFetcher writes a small file through fs
type fakeFetcher struct {
	fs      afero.Fs
	err     error
	outside bool

	mu      sync.Mutex
	calls   int
	lastDir string
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, u *url.URL, destDir string) (*ports.FetchResult, error) {
	f.mu.Lock()
	f.calls++
	f.lastDir = destDir
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.outside {
		return &ports.FetchResult{Path: "/etc/passwd"}, nil
	}
	path := filepath.Join(destDir, "source.mp4")
	if err := afero.WriteFile(f.fs, path, []byte("video"), 0644); err != nil {
		return nil, err
	}
	if progress := ports.ProgressFrom(ctx); progress != nil {
		progress(5, 5)
	}
	return &ports.FetchResult{Path: path, Size: 5}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeExtractor writes audio.wav through fs
type fakeExtractor struct {
	fs    afero.Fs
	err   error
	panic bool

	mu       sync.Mutex
	calls    int
	lastPath string
}

func (x *fakeExtractor) Extract(ctx context.Context, videoPath, destDir string) (*ports.AudioArtifact, error) {
	x.mu.Lock()
	x.calls++
	x.lastPath = videoPath
	x.mu.Unlock()

	if x.panic {
		panic("decoder exploded")
	}
	if x.err != nil {
		return nil, x.err
	}
	path := filepath.Join(destDir, "audio.wav")
	if err := afero.WriteFile(x.fs, path, []byte("RIFF"), 0644); err != nil {
		return nil, err
	}
	return &ports.AudioArtifact{Path: path, SampleRate: 16000, Channels: 1, BitDepth: 16, Duration: 10 * time.Second}, nil
}

func (x *fakeExtractor) callCount() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.calls
}
