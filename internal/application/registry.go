package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/logging"
	"github.com/devbush/paralyze/internal/ports"
)

// ModelRegistry is the process-wide cache of loaded models. Each key is
// built at most once; entries are never evicted. A failed build leaves no
// entry behind, so a later call retries.
type ModelRegistry struct {
	engine ports.Engine
	logger *slog.Logger

	mu     sync.RWMutex
	models map[string]ports.Model
	group  singleflight.Group
}

// NewModelRegistry creates an empty registry backed by engine
func NewModelRegistry(engine ports.Engine, logger *slog.Logger) *ModelRegistry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ModelRegistry{
		engine: engine,
		logger: logging.Component(logger, "model-registry"),
		models: make(map[string]ports.Model),
	}
}

// Get returns the model for key, building it on first use. Concurrent
// callers for the same key wait for the single in-flight build. A caller
// whose ctx ends stops waiting; the build itself is detached from any one
// caller's cancellation and still completes for the others.
func (r *ModelRegistry) Get(ctx context.Context, key string) (ports.Model, error) {
	if !domain.IsValidModel(key) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidModel, key)
	}

	if m, ok := r.lookup(key); ok {
		return m, nil
	}

	ch := r.group.DoChan(key, func() (any, error) {
		// A build that finished between lookup and Do already stored the model
		if m, ok := r.lookup(key); ok {
			return m, nil
		}

		start := time.Now()
		r.logger.Info("loading model",
			slog.String(logging.FieldModel, key),
			slog.String("engine", r.engine.Name()),
		)

		m, err := r.engine.Load(context.WithoutCancel(ctx), key)
		if err != nil {
			r.logger.Warn("model load failed",
				slog.String(logging.FieldModel, key),
				slog.Any("error", err),
			)
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("engine %s returned no model for %s", r.engine.Name(), key)
		}

		r.mu.Lock()
		r.models[key] = m
		r.mu.Unlock()

		r.logger.Info("model ready",
			slog.String(logging.FieldModel, key),
			slog.Duration("elapsed", time.Since(start)),
		)
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ports.Model), nil
	}
}

func (r *ModelRegistry) lookup(key string) (ports.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[key]
	return m, ok
}

// Loaded returns the keys of the models built so far, sorted
func (r *ModelRegistry) Loaded() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.models))
	for k := range r.models {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
