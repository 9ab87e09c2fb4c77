package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"trendpulse/internal/infrastructure"
	"trendpulse/pkg/contracts/domain"
)

// DatasetLoader builds a dataset from scratch.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// CacheStats is a point-in-time view of the cache counters.
type CacheStats struct {
	Cached        bool      `json:"cached"`
	Generation    uint64    `json:"generation"`
	Hits          uint64    `json:"hits"`
	Misses        uint64    `json:"misses"`
	Loads         uint64    `json:"loads"`
	Invalidations uint64    `json:"invalidations"`
	LoadedAt      time.Time `json:"loaded_at,omitempty"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
}

// DatasetCache holds the most recently loaded dataset until it is
// invalidated. Concurrent misses share one load.
//
// Every Invalidate bumps the generation; a load that started under an older
// generation is handed to its callers but never stored.
type DatasetCache struct {
	loader  DatasetLoader
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	mu         sync.RWMutex
	dataset    *domain.Dataset
	generation uint64

	group singleflight.Group

	hits          atomic.Uint64
	misses        atomic.Uint64
	loads         atomic.Uint64
	invalidations atomic.Uint64
}

// NewDatasetCache creates an empty cache backed by loader. metrics may be nil.
func NewDatasetCache(loader DatasetLoader, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetCache{
		loader:  loader,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_cache")),
	}
}

// Get returns the cached dataset, loading it first if necessary. Waiting
// callers give up when ctx is done; the shared load itself carries on.
func (c *DatasetCache) Get(ctx context.Context) (*domain.Dataset, error) {
	c.mu.RLock()
	ds, gen := c.dataset, c.generation
	c.mu.RUnlock()

	if ds != nil {
		c.hits.Add(1)
		infrastructure.RecordCacheLookup(ctx, c.metrics, true)
		return ds, nil
	}

	c.misses.Add(1)
	infrastructure.RecordCacheLookup(ctx, c.metrics, false)

	ch := c.group.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return c.populate(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Dataset), nil
	}
}

func (c *DatasetCache) populate(ctx context.Context, gen uint64) (*domain.Dataset, error) {
	ds, err := c.loader.Load(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "dataset load failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	c.loads.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		c.logger.InfoContext(ctx, "discarding dataset loaded before invalidation",
			slog.Uint64("loaded_generation", gen),
			slog.Uint64("current_generation", c.generation))
		return ds, nil
	}
	c.dataset = ds
	return ds, nil
}

// Invalidate drops the cached dataset; the next Get reloads.
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	c.dataset = nil
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.invalidations.Add(1)
	infrastructure.RecordCacheInvalidation(context.Background(), c.metrics)
	c.logger.Info("dataset cache invalidated", slog.Uint64("generation", gen))
}

// Reload invalidates the cache and loads a fresh dataset.
func (c *DatasetCache) Reload(ctx context.Context) (*domain.Dataset, error) {
	c.Invalidate()
	return c.Get(ctx)
}

// Peek returns the cached dataset without loading.
func (c *DatasetCache) Peek() (*domain.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataset, c.dataset != nil
}

// Stats returns the current counters.
func (c *DatasetCache) Stats() CacheStats {
	c.mu.RLock()
	stats := CacheStats{
		Cached:     c.dataset != nil,
		Generation: c.generation,
	}
	if c.dataset != nil {
		stats.LoadedAt = c.dataset.LoadedAt
		stats.Fingerprint = c.dataset.Fingerprint
	}
	c.mu.RUnlock()

	stats.Hits = c.hits.Load()
	stats.Misses = c.misses.Load()
	stats.Loads = c.loads.Load()
	stats.Invalidations = c.invalidations.Load()
	return stats
}
