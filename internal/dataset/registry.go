package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Registry holds the active Catalog. Readers call Current without locking;
// Reload swaps in a new snapshot and leaves the old one untouched, so a
// caller holding the old pointer keeps a consistent view.
type Registry struct {
	source Source
	name   string
	logger *slog.Logger
	now    func() time.Time // injectable for deterministic tests

	current atomic.Pointer[Catalog]

	mu      sync.Mutex // serializes reloads and guards hooks
	version int64
	hooks   []func(*Catalog)
}

// NewRegistry creates an empty Registry for source. name labels the source in
// catalog summaries and events (a file path or "postgres").
func NewRegistry(source Source, name string, logger *slog.Logger) *Registry {
	return &Registry{
		source: source,
		name:   name,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the active catalog, or nil before the first successful load.
func (r *Registry) Current() *Catalog {
	return r.current.Load()
}

// OnLoad registers fn to run after every successful load.
func (r *Registry) OnLoad(fn func(*Catalog)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Reload loads the source and activates the result. On failure the previous
// catalog stays active.
func (r *Registry) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.source.Load(ctx)
	if err != nil {
		r.logger.Error("dataset reload failed, keeping previous catalog", "source", r.name, "error", err)
		return fmt.Errorf("load dataset: %w", err)
	}

	r.version++
	cat := newCatalog(r.version, r.name, r.now(), records)
	r.current.Store(cat)

	r.logger.Info("dataset loaded",
		"source", r.name,
		"version", cat.Version,
		"records", cat.Len(),
		"min_yield", cat.Limits.MinYield,
		"max_yield", cat.Limits.MaxYield,
	)

	for _, fn := range r.hooks {
		fn(cat)
	}
	return nil
}
