package docsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcpcontext/docsearch/internal/indexing"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by a Provider after Close.
var ErrClosed = errors.New("docsearch: provider closed")

// Loader produces a freshly built engine.
type Loader func(ctx context.Context) (Engine, error)

// generation is one built engine plus the searches currently using it.
type generation struct {
	engine  Engine
	docs    uint64
	builtAt time.Time

	// searches hold mu for reading; retiring takes it for writing so the
	// engine is closed only once they have drained.
	mu     sync.RWMutex
	closed bool
}

func (g *generation) retire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return g.engine.Close()
}

// Provider builds the engine on first use and shares it between callers.
type Provider struct {
	loader Loader
	logger *slog.Logger

	current atomic.Pointer[generation]
	group   singleflight.Group

	// refreshMu serializes Rebuild and Close
	refreshMu sync.Mutex
	closed    atomic.Bool
	retiring  sync.WaitGroup
	builds    atomic.Int64
}

// NewProvider creates a Provider. Nothing is built until the first query.
func NewProvider(loader Loader, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		loader: loader,
		logger: logger.With("component", "provider"),
	}
}

// Status describes the cached engine.
type Status struct {
	Built     bool      `json:"built"`
	Documents uint64    `json:"documents"`
	BuiltAt   time.Time `json:"built_at,omitzero"`
	Builds    int64     `json:"builds"`
}

// Status reports whether an engine is cached and how many builds have run.
func (p *Provider) Status() Status {
	s := Status{Builds: p.builds.Load()}
	if g := p.current.Load(); g != nil {
		s.Built = true
		s.Documents = g.docs
		s.BuiltAt = g.builtAt
	}
	return s
}

// Engine returns the cached engine, building it if needed. A later Rebuild
// may close the returned engine; use Search for queries.
func (p *Provider) Engine(ctx context.Context) (Engine, error) {
	g, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return g.engine, nil
}

// Search runs q against the cached engine, building it on first use.
func (p *Provider) Search(ctx context.Context, q indexing.Query) ([]indexing.Hit, error) {
	for {
		g, err := p.ensure(ctx)
		if err != nil {
			return nil, err
		}

		g.mu.RLock()
		if g.closed {
			// Swapped out between load and lock; pick up the replacement.
			g.mu.RUnlock()
			continue
		}
		hits, err := g.engine.Search(ctx, q)
		g.mu.RUnlock()
		return hits, err
	}
}

// ensure returns the current generation. Concurrent callers that find none
// share a single build; a failed build is not remembered.
func (p *Provider) ensure(ctx context.Context) (*generation, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if g := p.current.Load(); g != nil {
		return g, nil
	}

	v, err, shared := p.group.Do("build", func() (interface{}, error) {
		// Another build may have finished while we waited to enter Do.
		if g := p.current.Load(); g != nil {
			return g, nil
		}

		p.logger.Info("index not initialized, building now")
		g, err := p.build(ctx)
		if err != nil {
			return nil, err
		}

		if !p.current.CompareAndSwap(nil, g) {
			// A concurrent Rebuild won; keep its engine.
			p.discard(g)
			if cur := p.current.Load(); cur != nil {
				return cur, nil
			}
			return nil, ErrClosed
		}
		if p.closed.Load() {
			p.current.CompareAndSwap(g, nil)
			p.discard(g)
			return nil, ErrClosed
		}
		return g, nil
	})
	if err != nil {
		if shared {
			p.logger.Debug("shared build failed", "error", err)
		}
		return nil, err
	}
	return v.(*generation), nil
}

// discard retires a generation no caller will ever see.
func (p *Provider) discard(g *generation) {
	if err := g.retire(); err != nil {
		p.logger.Warn("error closing unused index", "error", err)
	}
}

func (p *Provider) build(ctx context.Context) (*generation, error) {
	start := time.Now()
	p.builds.Add(1)

	engine, err := p.loader(ctx)
	if err != nil {
		p.logger.Error("index build failed", "error", err)
		return nil, err
	}

	count, err := engine.DocCount()
	if err != nil {
		if cerr := engine.Close(); cerr != nil {
			p.logger.Warn("error closing index", "error", cerr)
		}
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	p.logger.Info("index ready",
		"documents", count,
		"duration", time.Since(start).Round(time.Millisecond))
	return &generation{engine: engine, docs: count, builtAt: time.Now()}, nil
}

// Rebuild builds a new engine and swaps it in. The previous engine is closed
// in the background once its in-flight searches finish. On failure the
// current engine stays in place.
func (p *Provider) Rebuild(ctx context.Context) (Status, error) {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	if p.closed.Load() {
		return Status{}, ErrClosed
	}

	start := time.Now()
	g, err := p.build(ctx)
	if err != nil {
		return p.Status(), err
	}

	old := p.current.Swap(g)
	if old != nil {
		p.retiring.Add(1)
		go func() {
			defer p.retiring.Done()
			waitStart := time.Now()
			if err := old.retire(); err != nil {
				p.logger.Warn("error closing old index", "error", err)
				return
			}
			p.logger.Debug("old index closed", "waited", time.Since(waitStart).Round(time.Millisecond))
		}()
	}

	p.logger.Info("index swap completed", "duration", time.Since(start).Round(time.Millisecond))
	return p.Status(), nil
}

// Close releases the cached engine after in-flight searches finish.
// Subsequent calls return ErrClosed.
func (p *Provider) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	var err error
	if g := p.current.Swap(nil); g != nil {
		err = g.retire()
	}
	p.retiring.Wait()
	return err
}
