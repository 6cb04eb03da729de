package cache

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// WithFs sets a custom filesystem for the cache.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	c, err := cache.Open(".scancache", cache.WithFs(afero.NewMemMapFs()))
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) {
		c.fs = fs
	}
}

// WithHashFunc sets a custom hash constructor for the cache.
// The default is the 64-bit FNV-1a digest. Any hash.Hash64 constructor
// works, e.g. one returning xxhash.New() for very large inputs.
//
// Note: changing the hash function will invalidate existing cache
// entries, since both validity tokens and disk filenames derive from it.
func WithHashFunc(hashFunc HashFunc) Option {
	return func(c *Cache) {
		c.hashFunc = hashFunc
	}
}

// WithNowFunc sets a custom time function for the cache.
// This is primarily useful for testing with deterministic timestamps.
func WithNowFunc(nowFunc NowFunc) Option {
	return func(c *Cache) {
		c.nowFunc = nowFunc
	}
}

// WithLogger sets the logger used for degraded-path reporting, such as
// disk entries that cannot be served. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics plugs in an observability backend.
// Defaults to NoopMetrics.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithShards sets the memory tier shard count. Values are rounded up to
// the next power of two; zero or negative picks a default from hardware
// parallelism.
func WithShards(count int) Option {
	return func(c *Cache) {
		c.shards = count
	}
}

// WithMaxSourceSize caps how many bytes of a source file Get and Put
// will read for hashing. Oversized files fail with ErrTooLarge.
func WithMaxSourceSize(limit int64) Option {
	return func(c *Cache) {
		c.maxSourceSize = limit
	}
}

// WithMaxEntrySize caps how large a disk cache entry may be before it
// is treated as corrupt on read.
func WithMaxEntrySize(limit int64) Option {
	return func(c *Cache) {
		c.maxEntrySize = limit
	}
}

// WithTTL records the configured entry lifetime. The cache never applies
// it on Get or Put; it is surfaced through TTL so callers can drive
// Prune explicitly.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}
