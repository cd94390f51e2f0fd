// Package cache memoizes rendered documents.
//
// Rendering is deterministic: the same schema, roster group and options
// always produce the same bytes. A [Cache] stores those bytes under a key
// derived from every input ([Keyer]), so a repeated print request for the
// same room is served without composing the document again.
//
// Three backends are provided:
//
//   - [NullCache]: stores nothing. The default.
//   - [FileCache]: JSON entries under a directory, for the CLI.
//   - [RedisCache]: a shared Redis instance, for server deployments with
//     several replicas.
//
// Entries carry a TTL; a zero TTL never expires.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
