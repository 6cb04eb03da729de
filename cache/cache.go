// Package cache implements a two-tier content-addressed cache mapping
// source files to previously extracted utility class lists.
//
// The memory tier serves repeat lookups within one process; the disk
// tier persists entries across runs under a configured cache directory.
// Both tiers are keyed by file path; validity is decided by a 64-bit
// content hash, so metadata noise (mtime, permissions) never causes a
// false invalidation and any content change always does.
package cache

import (
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mkonda/scancache/internal/hashutil"
)

// Cache is the two-tier scan result cache.
// All methods are safe for concurrent use by multiple goroutines.
type Cache struct {
	dir           string
	fs            afero.Fs
	hashFunc      HashFunc
	nowFunc       NowFunc
	logger        *zap.Logger
	metrics       Metrics
	shards        int
	maxSourceSize int64
	maxEntrySize  int64
	ttl           time.Duration

	memory *memoryTier
	disk   *diskTier
}

// HashFunc defines a function that creates a new 64-bit hash instance.
// Get and Put construct a fresh instance per hashed input.
type HashFunc func() hash.Hash64

// NowFunc defines a function that returns the current time.
type NowFunc func() time.Time

// Option defines a function that configures a Cache.
type Option func(*Cache)

// Read limits applied when no option overrides them. Source files are
// hashed in full on every lookup, so the cap bounds what a pathological
// input can cost; disk entries are far smaller than their sources.
const (
	DefaultMaxSourceSize = 10 << 20
	DefaultMaxEntrySize  = 1 << 20
)

// hashBufferSize is the chunk size for streaming source files into the
// content hash.
const hashBufferSize = 32 * 1024

// hashBuffers is a pool of byte slices used for file I/O during hashing.
var hashBuffers = sync.Pool{
	New: func() any {
		buffer := make([]byte, hashBufferSize)
		return &buffer
	},
}

// Open creates a cache rooted at the given directory.
// The directory itself is created lazily on the first Put, so opening a
// cache never touches the filesystem.
func Open(dir string, options ...Option) (*Cache, error) {
	c := &Cache{
		dir:           dir,
		fs:            afero.NewOsFs(),
		hashFunc:      defaultHashFunc,
		nowFunc:       time.Now,
		logger:        zap.NewNop(),
		metrics:       NoopMetrics{},
		maxSourceSize: DefaultMaxSourceSize,
		maxEntrySize:  DefaultMaxEntrySize,
	}

	// Apply options
	for _, option := range options {
		option(c)
	}

	if c.maxSourceSize <= 0 {
		return nil, fmt.Errorf("source size limit must be positive, got %d", c.maxSourceSize)
	}
	if c.maxEntrySize <= 0 {
		return nil, fmt.Errorf("entry size limit must be positive, got %d", c.maxEntrySize)
	}

	c.memory = newMemoryTier(c.shards)
	c.disk = &diskTier{
		fs:           c.fs,
		dir:          dir,
		maxEntrySize: c.maxEntrySize,
	}

	return c, nil
}

// OpenTemp creates an in-memory cache for testing.
func OpenTemp() *Cache {
	c, err := Open(".scancache", WithFs(afero.NewMemMapFs()))
	if err != nil {
		panic(fmt.Sprintf("failed to create temp cache: %v", err))
	}
	return c
}

// Get retrieves the cached class list for a path.
// Returns (classes, nil) on cache hit.
// Returns (nil, ErrCacheMiss) if neither tier holds a usable entry.
// Returns (nil, error) if the source file itself cannot be hashed; a
// missing or oversized source is a caller problem, not a miss.
//
// A memory entry is served only when its stored hash matches the file's
// current content hash; a mismatch is a miss, because the disk entry
// written by the same Put is just as stale. Disk entries carry no hash
// field, so an entry surviving from an earlier run is served without
// re-validation until a Put or Delete replaces it.
func (c *Cache) Get(path string) ([]string, error) {
	contentHash, err := c.hashSource(path)
	if err != nil {
		return nil, err
	}

	// Memory tier: hit requires a hash match. A mismatch proves the
	// file changed after the entry was stored, so the lookup stops here
	// instead of laundering the stale disk twin back into the build.
	if e, ok := c.memory.get(path); ok {
		if e.hash == contentHash {
			c.metrics.Hit(TierMemory)
			return e.classList(), nil
		}
		c.metrics.Invalidated()
		c.metrics.Miss()
		return nil, ErrCacheMiss
	}

	// Disk tier: unreadable entries degrade to a miss so a damaged
	// cache directory costs a recomputation, not a failed build.
	classes, err := c.disk.read(c.hashPath(path))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("disk cache entry unusable, treating as miss",
				zap.String("path", path),
				zap.Error(err))
		}
		c.metrics.Miss()
		return nil, ErrCacheMiss
	}

	c.metrics.Hit(TierDisk)
	return classes, nil
}

// Put stores the class list for a path in both tiers.
// The memory tier receives a copy of classes together with the file's
// current content hash and a timestamp, replacing any prior entry. The
// disk tier is written afterwards; a disk failure returns an error
// wrapping ErrWriteFailed but does not roll back the memory tier, which
// is authoritative within a process lifetime.
func (c *Cache) Put(path string, classes []string) error {
	contentHash, err := c.hashSource(path)
	if err != nil {
		return err
	}

	c.memory.put(path, entry{
		classes:   append([]string(nil), classes...),
		hash:      contentHash,
		createdAt: c.now(),
	})

	if err := c.disk.write(c.hashPath(path), classes); err != nil {
		return fmt.Errorf("failed to store cache entry for %s: %w: %w", path, ErrWriteFailed, err)
	}

	c.metrics.Put()
	c.metrics.Size(c.memory.len())
	return nil
}

// Clear removes all entries from both tiers.
// An already-absent cache directory counts as success, so calling Clear
// twice in a row is safe.
func (c *Cache) Clear() error {
	c.memory.clear()
	c.metrics.Size(0)

	if err := c.disk.clear(); err != nil {
		return err
	}
	return nil
}

// Has reports whether a usable entry exists for the path.
// Returns false on any error, including unreadable sources.
func (c *Cache) Has(path string) bool {
	_, err := c.Get(path)
	return err == nil
}

// Delete removes the entry for a path from both tiers.
func (c *Cache) Delete(path string) error {
	c.memory.remove(path)
	c.metrics.Size(c.memory.len())

	if err := c.disk.remove(c.hashPath(path)); err != nil {
		return err
	}
	return nil
}

// Len returns the number of entries resident in the memory tier.
func (c *Cache) Len() int {
	return c.memory.len()
}

// TTL returns the configured entry lifetime, zero when unset.
// The cache itself never enforces it; see Prune.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Stats represents cache statistics, computed over the disk tier.
type Stats struct {
	Entries     int           // Total number of disk entries
	TotalSize   int64         // Total size of all disk entries in bytes
	OldestEntry time.Duration // Age of the oldest entry
	NewestEntry time.Duration // Age of the newest entry
}

// Stats returns statistics about the disk tier. Entry ages derive from
// file modification times, since the entry format carries no timestamp.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{}
	var oldest, newest time.Time

	err := c.disk.walk(func(name string, info os.FileInfo) error {
		stats.Entries++
		stats.TotalSize += info.Size()

		// Track oldest and newest
		mod := info.ModTime()
		if oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if newest.IsZero() || mod.After(newest) {
			newest = mod
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to collect cache stats: %w", err)
	}

	now := c.now()
	if !oldest.IsZero() {
		stats.OldestEntry = now.Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestEntry = now.Sub(newest)
	}

	return stats, nil
}

// Prune removes entries older than the given duration.
// Returns the number of disk entries removed. Disk entries age by file
// modification time; memory entries age by creation time and are swept
// in the same pass. The two tiers are pruned independently because a
// disk filename cannot be mapped back to its path.
func (c *Cache) Prune(olderThan time.Duration) (int, error) {
	cutoff := c.now().Add(-olderThan)
	c.memory.prune(cutoff)
	c.metrics.Size(c.memory.len())

	var toRemove []string
	err := c.disk.walk(func(name string, info os.FileInfo) error {
		if info.ModTime().Before(cutoff) {
			toRemove = append(toRemove, name)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan cache directory: %w", err)
	}

	// Remove entries
	count := 0
	for _, name := range toRemove {
		if err := c.fs.Remove(name); err != nil {
			return count, fmt.Errorf("failed to remove entry %s: %w", name, err)
		}
		count++
	}

	return count, nil
}

// hashSource streams a source file through a fresh hash and returns its
// content hash. Files beyond the size limit fail with an error wrapping
// ErrTooLarge instead of being truncated; unreadable files propagate the
// underlying error. Neither case falls back to a cache miss.
func (c *Cache) hashSource(path string) (uint64, error) {
	info, err := c.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", path, err)
	}
	if info.Size() > c.maxSourceSize {
		return 0, fmt.Errorf("source file %s is %d bytes (limit %d): %w",
			path, info.Size(), c.maxSourceSize, ErrTooLarge)
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read source file %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := hashBuffers.Get().(*[]byte)
	defer hashBuffers.Put(bufPtr)

	h := c.newHash()
	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return 0, fmt.Errorf("failed to read source file %s: %w", path, err)
	}
	return h.Sum64(), nil
}

// hashPath derives the disk slot hash for a path.
func (c *Cache) hashPath(path string) uint64 {
	h := c.newHash()
	_, _ = io.WriteString(h, path)
	return h.Sum64()
}

// newHash creates a new hash instance.
func (c *Cache) newHash() hash.Hash64 {
	return c.hashFunc()
}

// defaultHashFunc returns the default hash function (FNV-1a 64).
func defaultHashFunc() hash.Hash64 {
	return hashutil.New()
}

// now returns the current time.
func (c *Cache) now() time.Time {
	return c.nowFunc()
}
