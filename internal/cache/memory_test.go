package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestMemoryCache(t *testing.T, maxEntries int, ttl time.Duration) (*memoryCache, *fakeClock) {
	t.Helper()

	cfg := &config.CacheConfig{
		Enabled:    true,
		Type:       config.StoreMemory,
		MaxEntries: maxEntries,
		TTL:        config.Duration(ttl),
	}
	c := newMemoryCache(cfg, observability.NopLogger())
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.Now
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestMemoryCache(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tableau:1:structure", []byte(`{"data":[]}`), 0))

	got, err := c.Get(ctx, "tableau:1:structure")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"data":[]}`), got)

	_, err = c.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Size)
	assert.InDelta(t, 50.0, stats.HitRate(), 0.001)
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	c, clock := newTestMemoryCache(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "default", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "short", []byte("b"), 10*time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("c"), -1))

	clock.Advance(30 * time.Second)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	ok, err := c.Exists(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Hour)
	ok, err = c.Exists(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), got)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c, _ := newTestMemoryCache(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	for _, key := range []string{"a", "c"} {
		_, err := c.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}

func TestMemoryCache_OverwriteAndDelete(t *testing.T) {
	t.Parallel()

	c, _ := newTestMemoryCache(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("old"), 0))
	require.NoError(t, c.Set(ctx, "k", []byte("new"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, int64(1), c.Stats().Size)

	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Sweep(t *testing.T) {
	t.Parallel()

	c, clock := newTestMemoryCache(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Second))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	clock.Advance(time.Minute)
	assert.Equal(t, 2, c.sweep())
	assert.Equal(t, int64(1), c.Stats().Size)
}

func TestMemoryCache_DefaultsAndClose(t *testing.T) {
	t.Parallel()

	c, _ := newTestMemoryCache(t, 0, time.Minute)
	assert.Equal(t, defaultMaxEntries, c.maxEntries)

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, int64(0), c.Stats().Size)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	t.Parallel()

	c, _ := newTestMemoryCache(t, 50, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (worker*100+j)%80)
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().Size, int64(50))
}
