// Package cachemanager provides TTL caching for expensive lookups,
// primarily the card list the board reloads after every mutation.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is the storage behind a read-through cache. Implementations
// must be safe for concurrent use; drop handlers invalidate entries from
// goroutines outside the update loop.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
