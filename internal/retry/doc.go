// Package retry runs operations with exponential backoff and jitter.
//
// It is used for the Redis-backed cache and session stores, where a dropped
// connection is worth a few quick retries:
//
//	err := retry.Do(ctx, cfg, func() error {
//	    return client.Set(ctx, key, value, ttl).Err()
//	}, &retry.Options{Operation: "session_set"})
package retry
