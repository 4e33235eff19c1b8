package cache

import (
	"context"
	"time"
)

// Cache is a plain byte-oriented k/v store with per-key expiration. Payloads
// are stored and returned verbatim so a cached recommendation set round-trips
// byte-identical.
//
// Error contract:
// - Get returns sentinel.ErrNotFound (wrapped) for a missing or expired key;
//   any other error means the cache backend failed and callers decide whether
//   to treat that as a miss
// - Set and Delete return infrastructure errors wrapped with context
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
