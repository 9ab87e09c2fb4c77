package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/shared/testutil"
	"trendpulse/pkg/contracts/domain"
)

func emptyDataset() *domain.Dataset {
	return &domain.Dataset{LoadedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func TestDatasetCacheGet(t *testing.T) {
	loader := &stubLoader{dataset: emptyDataset()}
	cache := NewDatasetCache(loader, nil, nil)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), loader.calls.Load())

	stats := cache.Stats()
	assert.True(t, stats.Cached)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Loads)
	assert.Equal(t, "fp-1", stats.Fingerprint)
}

func TestDatasetCacheInvalidate(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := &stubLoader{dataset: emptyDataset()}
	cache := NewDatasetCache(loader, nil, logger)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	cache.Invalidate()
	_, cached := cache.Peek()
	assert.False(t, cached)

	second, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, int32(2), loader.calls.Load())

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Invalidations)
	assert.Equal(t, uint64(1), stats.Generation)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "dataset cache invalidated")
}

func TestDatasetCacheReload(t *testing.T) {
	loader := &stubLoader{dataset: emptyDataset()}
	cache := NewDatasetCache(loader, nil, nil)

	ds, err := cache.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fp-1", ds.Fingerprint)

	ds, err = cache.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fp-2", ds.Fingerprint)
}

func TestDatasetCacheConcurrentMissesLoadOnce(t *testing.T) {
	loader := &stubLoader{
		dataset: emptyDataset(),
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	cache := NewDatasetCache(loader, nil, nil)

	const callers = 20
	var wg sync.WaitGroup
	results := make([]*domain.Dataset, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}

	<-loader.started
	time.Sleep(20 * time.Millisecond)
	close(loader.gate)
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestDatasetCacheStaleLoadIsNotStored(t *testing.T) {
	loader := &stubLoader{
		dataset: emptyDataset(),
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	cache := NewDatasetCache(loader, nil, nil)

	done := make(chan *domain.Dataset)
	go func() {
		ds, err := cache.Get(context.Background())
		assert.NoError(t, err)
		done <- ds
	}()

	<-loader.started
	cache.Invalidate()
	close(loader.gate)

	stale := <-done
	assert.Equal(t, "fp-1", stale.Fingerprint)

	_, cached := cache.Peek()
	assert.False(t, cached, "a load started before Invalidate must not be cached")

	fresh, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fp-2", fresh.Fingerprint)
}

func TestDatasetCacheLoadError(t *testing.T) {
	loadErr := errors.New("disk on fire")
	loader := &stubLoader{dataset: emptyDataset(), err: loadErr}
	cache := NewDatasetCache(loader, nil, nil)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	_, cached := cache.Peek()
	assert.False(t, cached)

	_, err = cache.Get(context.Background())
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestDatasetCacheCallerCancellation(t *testing.T) {
	loader := &stubLoader{
		dataset: emptyDataset(),
		gate:    make(chan struct{}),
		started: make(chan struct{}),
	}
	cache := NewDatasetCache(loader, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() {
		_, err := cache.Get(ctx)
		errc <- err
	}()

	<-loader.started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	// The shared load still completes and populates the cache.
	close(loader.gate)
	ds, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fp-1", ds.Fingerprint)
	assert.Equal(t, int32(1), loader.calls.Load())
}
