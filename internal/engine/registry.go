package engine

import (
	"context"
	"sync"
	"time"

	"ocrtool/internal/logger"
)

// Config carries the construction parameters shared by all engines. Each
// adapter encapsulates its backend's idiosyncratic parameters beyond these.
type Config struct {
	// Language is the recognition language for the sidecar backends.
	Language string

	// TesseractLanguage is the traineddata language code for Tesseract.
	TesseractLanguage string

	// PaddleURL, EasyOCRURL and SuryaURL are the base URLs of the model
	// servers. An empty URL means the engine is not configured.
	PaddleURL  string
	EasyOCRURL string
	SuryaURL   string

	// RequestTimeout bounds one recognition request to a model server.
	RequestTimeout time.Duration

	// ProbeTimeout bounds the availability probe of a model server.
	ProbeTimeout time.Duration
}

// builderFunc constructs an engine handle. The accelerator flag tells the
// backend whether a GPU was detected; backends that cannot use one ignore it.
type builderFunc func(ctx context.Context, cfg Config, accelerator bool) (Engine, error)

func defaultBuilders() map[ID]builderFunc {
	return map[ID]builderFunc{
		Paddle:    newPaddleEngine,
		EasyOCR:   newEasyOCREngine,
		Surya:     newSuryaEngine,
		Tesseract: newTesseractEngine,
	}
}

// Registry lazily constructs and caches engine handles, one per engine
// identifier per process. Handles are read-only after construction; the
// lazy-construction path is guarded so that two callers racing to construct
// the same engine produce exactly one live handle.
//
// Construction failures are not cached: a Get after a failed attempt probes
// and constructs again, so an engine that is merely slow to become ready
// (e.g. its model server is still starting) can succeed later.
type Registry struct {
	cfg      Config
	builders map[ID]builderFunc

	mu      sync.Mutex
	handles map[ID]Engine

	accelOnce  sync.Once
	accel      bool
	accelProbe func() bool
}

// NewRegistry creates a registry with the standard engine constructors.
func NewRegistry(cfg Config) *Registry {
	return newRegistryWithBuilders(cfg, defaultBuilders())
}

func newRegistryWithBuilders(cfg Config, builders map[ID]builderFunc) *Registry {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	return &Registry{
		cfg:        cfg,
		builders:   builders,
		handles:    make(map[ID]Engine),
		accelProbe: detectAccelerator,
	}
}

// Get returns the cached handle for id, constructing it on first use.
// The first successful construction may download models or warm up a model
// server and can take much longer than subsequent calls.
func (r *Registry) Get(ctx context.Context, id ID) (Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[id]; ok {
		return h, nil
	}

	build, ok := r.builders[id]
	if !ok {
		return nil, NewEngineError("Get", id, ErrUnknownEngine, "")
	}

	log := logger.WithComponent("engine-registry")
	start := time.Now()
	h, err := build(ctx, r.cfg, r.HasAccelerator())
	if err != nil {
		log.Debug().
			Str("engine", string(id)).
			Err(err).
			Msg("Engine construction failed, will retry on next request")
		return nil, err
	}

	log.Info().
		Str("engine", string(id)).
		Bool("accelerator", r.accel).
		Dur("init_time", time.Since(start)).
		Msg("Engine initialized")

	r.handles[id] = h
	return h, nil
}

// HasAccelerator reports whether a GPU was detected. The probe runs at most
// once per process and its result is shared across all engines.
func (r *Registry) HasAccelerator() bool {
	r.accelOnce.Do(func() {
		r.accel = r.accelProbe()
	})
	return r.accel
}

// Close releases every constructed handle. Called at process teardown.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for id, h := range r.handles {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = NewEngineError("Close", id, err, "")
		}
		delete(r.handles, id)
	}
	return firstErr
}
