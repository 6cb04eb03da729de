package cache

import (
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// memoryTier is the in-process entry store. It is sharded so that scan
// workers hitting disjoint paths do not serialize on a single lock.
// Shard selection uses xxHash over the path; the shard count is always
// a power of two so the index reduces to a mask.
type memoryTier struct {
	shards []*memShard
	mask   uint64
}

type memShard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// newMemoryTier builds a tier with the requested shard count.
// count <= 0 picks a default based on hardware parallelism; any other
// value is rounded up to the next power of two.
func newMemoryTier(count int) *memoryTier {
	if count <= 0 {
		count = defaultShardCount()
	} else {
		count = int(nextPow2(uint64(count)))
	}

	shards := make([]*memShard, count)
	for i := range shards {
		shards[i] = &memShard{entries: make(map[string]entry)}
	}
	return &memoryTier{
		shards: shards,
		mask:   uint64(count - 1),
	}
}

func (m *memoryTier) shardFor(path string) *memShard {
	return m.shards[xxhash.Sum64String(path)&m.mask]
}

func (m *memoryTier) get(path string) (entry, bool) {
	s := m.shardFor(path)
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[path]
	return e, ok
}

func (m *memoryTier) put(path string, e entry) {
	s := m.shardFor(path)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[path] = e
}

func (m *memoryTier) remove(path string) {
	s := m.shardFor(path)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, path)
}

func (m *memoryTier) clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.entries = make(map[string]entry)
		s.mu.Unlock()
	}
}

func (m *memoryTier) len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// prune drops every entry created before the cutoff and returns the
// number removed.
func (m *memoryTier) prune(cutoff time.Time) int {
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for path, e := range s.entries {
			if e.createdAt.Before(cutoff) {
				delete(s.entries, path)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// defaultShardCount picks a practical shard count from CPU parallelism:
// nextPow2(2*GOMAXPROCS) clamped to [1..256].
func defaultShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(nextPow2(uint64(p * 2)))
	if n > 256 {
		n = 256
	}
	return n
}

// nextPow2 returns the smallest power of two >= x.
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x + 1
}
