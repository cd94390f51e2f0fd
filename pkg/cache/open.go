package cache

import (
	"context"
	"fmt"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendNone  Backend = "none"
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
)

// Options select and configure a backend.
type Options struct {
	Backend Backend
	Dir     string // file backend
	Redis   RedisConfig
}

// Open creates the cache named by opts.Backend. An empty backend is
// BackendNone.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis cache at %s: %w", opts.Redis.Addr, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
