// Package cache provides the process-wide metadata cache: a lazily
// populated, atomically swapped holder for the immutable metadata graph.
// There is no ambient global instance; callers construct a Cache and pass it
// to consumers, which keeps independent graphs possible in tests.
package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/modelforge-dev/modelforge/internal/graph"
	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// Loader builds a fresh, validated graph from the declared model set.
// It is invoked on first access and after invalidation.
type Loader func() (*graph.Graph, error)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// Cache holds the current metadata graph. Readers share the same immutable
// graph instance without locking; a rebuild either fully replaces the cached
// reference or fails and leaves the previous graph in place. Readers in
// flight keep the reference they already obtained.
type Cache struct {
	loader Loader
	logger *zap.Logger

	current atomic.Pointer[graph.Graph]
	buildMu sync.Mutex // serializes build/invalidate, never held by readers
}

// New creates an empty cache. The graph is built on first access.
func New(loader Loader, opts ...Option) *Cache {
	c := &Cache{
		loader: loader,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Graph returns the cached graph, building it on first access. A failed
// build caches nothing: the next call retries rather than returning a stale
// or empty graph.
func (c *Cache) Graph() (*graph.Graph, error) {
	if g := c.current.Load(); g != nil {
		return g, nil
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	// Another caller may have built while we waited.
	if g := c.current.Load(); g != nil {
		return g, nil
	}

	g, err := c.loader()
	if err != nil {
		c.logger.Warn("metadata graph build failed", zap.Error(err))
		return nil, err
	}

	c.current.Store(g)
	c.logger.Info("metadata graph published",
		zap.String("build_id", g.BuildID()),
		zap.Int("models", g.Len()))
	return g, nil
}

// Model returns one model's metadata from the cached graph.
func (c *Cache) Model(id metadata.ModelID) (*metadata.ModelMetadata, error) {
	g, err := c.Graph()
	if err != nil {
		return nil, err
	}
	model, ok := g.Model(id)
	if !ok {
		return nil, fmt.Errorf("model %q is not declared", id)
	}
	return model, nil
}

// Invalidate drops the cached graph; the next access rebuilds it. The graph
// is a single immutable unit, so invalidating any model identity (or all of
// them) drops the whole graph. Readers holding the old reference keep it.
func (c *Cache) Invalidate(ids ...metadata.ModelID) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	old := c.current.Swap(nil)
	if old == nil {
		return
	}
	fields := []zap.Field{zap.String("build_id", old.BuildID())}
	if len(ids) > 0 {
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = string(id)
		}
		fields = append(fields, zap.Strings("models", names))
	}
	c.logger.Info("metadata graph invalidated", fields...)
}

// Rebuild builds a new graph and swaps it in atomically. On failure the
// previous graph stays published and keeps serving readers.
func (c *Cache) Rebuild() error {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	g, err := c.loader()
	if err != nil {
		c.logger.Warn("metadata graph rebuild failed, previous graph retained", zap.Error(err))
		return err
	}

	c.current.Store(g)
	c.logger.Info("metadata graph rebuilt",
		zap.String("build_id", g.BuildID()),
		zap.Int("models", g.Len()))
	return nil
}

// Populated reports whether a graph is currently published.
func (c *Cache) Populated() bool {
	return c.current.Load() != nil
}
