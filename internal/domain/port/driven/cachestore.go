package driven

import (
	"context"
	"time"
)

// CacheStore is the driven port for the expiring local key-value cache.
//
// The cache prioritizes availability over durability: when the persistent
// backend fails, operations silently continue against an in-memory fallback
// and Degraded flips to true. Callers never need to branch on the backend
// state.
type CacheStore interface {
	// Set stores value under key. ttl == 0 means the entry never expires.
	// An error is returned only when both the persistent backend and the
	// in-memory fallback failed.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get unmarshals the cached value into dest and reports whether a live
	// value was found. Expired entries are removed as a side effect and
	// reported as missing; malformed entries are treated as misses.
	Get(ctx context.Context, key string, dest any) bool

	// Remove deletes the entry for key, if any.
	Remove(ctx context.Context, key string) error

	// Clear removes every entry under the application's own namespace
	// prefix. Unrelated keys sharing the underlying store are untouched.
	Clear(ctx context.Context) error

	// Degraded reports whether the persistent backend has been detected
	// unavailable and the cache is running purely in memory. Diagnostic only.
	Degraded() bool
}
