package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type scratch struct {
	classes []string
	dirty   bool
}

func newScratchPool(destroyed *[]*scratch) *Pool[scratch] {
	var mu sync.Mutex
	return NewPool(
		func() *scratch {
			return &scratch{classes: make([]string, 0, 8)}
		},
		func(s *scratch) {
			s.classes = s.classes[:0]
			s.dirty = false
		},
		func(s *scratch) {
			if destroyed != nil {
				mu.Lock()
				*destroyed = append(*destroyed, s)
				mu.Unlock()
			}
		},
	)
}

func TestPoolReusesReleasedInstance(t *testing.T) {
	p := newScratchPool(nil)

	first := p.Acquire()
	p.Release(first)
	second := p.Acquire()

	assert.Same(t, first, second, "a released instance must be reused")
	assert.Equal(t, 1, p.Size())
}

func TestPoolConstructsWhenEmpty(t *testing.T) {
	p := newScratchPool(nil)

	first := p.Acquire()
	second := p.Acquire()

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, p.Size())
}

func TestPoolResetRunsOnRelease(t *testing.T) {
	p := newScratchPool(nil)

	s := p.Acquire()
	s.classes = append(s.classes, "flex", "grid")
	s.dirty = true
	p.Release(s)

	reused := p.Acquire()
	require.Same(t, s, reused)
	assert.Empty(t, reused.classes)
	assert.False(t, reused.dirty)
}

func TestPoolCloseDestroysAllInstances(t *testing.T) {
	var destroyed []*scratch
	p := newScratchPool(&destroyed)

	held := p.Acquire()
	released := p.Acquire()
	p.Release(released)

	p.Close()

	// Both the available instance and the one still held by the caller
	// are destroyed through the registry.
	require.Len(t, destroyed, 2)
	assert.Contains(t, destroyed, held)
	assert.Contains(t, destroyed, released)
	assert.Equal(t, 0, p.Size())
}

func TestPoolCloseIdempotent(t *testing.T) {
	var destroyed []*scratch
	p := newScratchPool(&destroyed)

	p.Acquire()
	p.Close()
	p.Close()

	assert.Len(t, destroyed, 1, "a second Close must not destroy again")
}

func TestPoolReleaseAfterClose(t *testing.T) {
	var destroyed []*scratch
	p := newScratchPool(&destroyed)

	held := p.Acquire()
	p.Close()
	require.Len(t, destroyed, 1)

	// The registry sweep already destroyed the instance; a late Release
	// must not destroy it again or resurrect it.
	p.Release(held)
	assert.Len(t, destroyed, 1)
	assert.Equal(t, 0, p.Size())
}

func TestPoolAcquireAfterClosePanics(t *testing.T) {
	p := newScratchPool(nil)
	p.Close()

	assert.Panics(t, func() { p.Acquire() })
}

func TestPoolStats(t *testing.T) {
	p := newScratchPool(nil)

	a := p.Acquire()
	p.Release(a)
	p.Acquire()
	p.Acquire()

	stats := p.Stats()
	assert.Equal(t, int64(3), stats.Acquires)
	assert.Equal(t, int64(1), stats.Releases)
	assert.Equal(t, int64(2), stats.News)
	assert.InDelta(t, 1.0/3.0, stats.HitRate(), 1e-9)
}

func TestPoolStatsEmpty(t *testing.T) {
	p := newScratchPool(nil)

	assert.Zero(t, p.Stats().HitRate())
}

func TestPoolConcurrent(t *testing.T) {
	var destroyed []*scratch
	p := newScratchPool(&destroyed)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				s := p.Acquire()
				s.classes = append(s.classes, "flex")
				p.Release(s)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	constructed := p.Size()
	stats := p.Stats()
	assert.Equal(t, int64(constructed), stats.News)
	assert.Equal(t, int64(8*200), stats.Acquires)

	p.Close()
	assert.Len(t, destroyed, constructed, "Close must destroy exactly the constructed instances")
}
