// Package cache stores upstream table payloads between requests.
//
// Two backends implement Cache:
//
//   - memory: an LRU bounded by entry count with per-entry TTL
//   - redis: a shared store using go-redis, with retried operations
//
// Every operation is traced with OpenTelemetry and counted in the
// statportal_cache_* Prometheus metrics.
//
//	c, err := cache.New(&cfg.Cache, cache.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	raw, err := cache.GetOrLoad(ctx, c, cache.StructureKey(42), 0, fetch)
//
// All implementations are safe for concurrent use.
package cache
