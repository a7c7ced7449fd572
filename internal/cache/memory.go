package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/statportal/internal/config"
	"github.com/vyrodovalexey/statportal/internal/observability"
)

const (
	backendMemory = "memory"

	// defaultMaxEntries bounds the memory cache when the configuration does not.
	defaultMaxEntries = 500

	cleanupInterval = time.Minute
)

// memoryCache is an LRU cache bounded by entry count.
type memoryCache struct {
	logger     observability.Logger
	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List

	hits   atomic.Int64
	misses atomic.Int64

	stopCh    chan struct{}
	closeOnce sync.Once
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func newMemoryCache(cfg *config.CacheConfig, logger observability.Logger) *memoryCache {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	c := &memoryCache{
		logger:     logger,
		maxEntries: maxEntries,
		defaultTTL: cfg.TTL.Duration(),
		now:        time.Now,
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		stopCh:     make(chan struct{}),
	}

	go c.cleanupLoop()

	logger.Info("memory cache initialized",
		observability.Int("maxEntries", maxEntries),
		observability.Duration("defaultTTL", c.defaultTTL))

	return c
}

// Get returns the entry for key and marks it most recently used.
func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, span, done := startOp(ctx, backendMemory, "get", key)
	defer done()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if ok {
		entry := elem.Value.(*memoryEntry)
		if !entry.expired(c.now()) {
			c.lru.MoveToFront(elem)
			c.hits.Add(1)
			recordHit(span, backendMemory, len(entry.value))
			return entry.value, nil
		}
		c.remove(elem)
	}

	c.misses.Add(1)
	recordMiss(span, backendMemory)
	return nil, ErrCacheMiss
}

// Set stores value and evicts the least recently used entries over capacity.
func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, _, done := startOp(ctx, backendMemory, "set", key)
	defer done()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	entry := &memoryEntry{key: key, value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.lru.PushFront(entry)
	for c.lru.Len() > c.maxEntries {
		c.remove(c.lru.Back())
		GetCacheMetrics().evictionsTotal.WithLabelValues(backendMemory).Inc()
	}
	GetCacheMetrics().sizeGauge.WithLabelValues(backendMemory).Set(float64(c.lru.Len()))

	c.logger.Debug("cache set",
		observability.String("key", key),
		observability.Duration("ttl", ttl))
	return nil
}

// Delete removes key if present.
func (c *memoryCache) Delete(ctx context.Context, key string) error {
	_, _, done := startOp(ctx, backendMemory, "delete", key)
	defer done()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	return nil
}

// Exists reports whether key holds an unexpired entry. It does not touch
// the LRU order.
func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, _, done := startOp(ctx, backendMemory, "exists", key)
	defer done()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false, nil
	}
	if elem.Value.(*memoryEntry).expired(c.now()) {
		c.remove(elem)
		return false, nil
	}
	return true, nil
}

// Close stops the sweeper and drops every entry.
func (c *memoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
	GetCacheMetrics().sizeGauge.WithLabelValues(backendMemory).Set(0)

	c.logger.Info("memory cache closed")
	return nil
}

// Stats returns cache statistics.
func (c *memoryCache) Stats() CacheStats {
	c.mu.Lock()
	size := int64(c.lru.Len())
	c.mu.Unlock()

	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// remove must be called with c.mu held.
func (c *memoryCache) remove(elem *list.Element) {
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*memoryEntry).key)
}

func (c *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

// sweep removes expired entries.
func (c *memoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).expired(now) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}

	if removed > 0 {
		GetCacheMetrics().sizeGauge.WithLabelValues(backendMemory).Set(float64(c.lru.Len()))
		c.logger.Debug("cache sweep completed", observability.Int("removed", removed))
	}
	return removed
}
