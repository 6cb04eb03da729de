package mempool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool. Acquire hands out a recycled instance
// when one is available and constructs a new one otherwise; Release
// returns an instance for reuse. Unlike sync.Pool, every object the
// pool ever constructed stays reachable through an owned registry, so
// Close can run the destructor over all of them, including instances
// sitting in the free list and instances still held by callers.
//
// All methods are safe for concurrent use.
type Pool[T any] struct {
	mu        sync.Mutex
	available []*T
	registry  []*T
	closed    bool

	newFunc     func() *T
	resetFunc   func(*T)
	destroyFunc func(*T)

	// Metrics
	acquires atomic.Int64
	releases atomic.Int64
	news     atomic.Int64
}

// NewPool creates an object pool.
// newFunc constructs instances and must not be nil. resetFunc, if
// non-nil, runs on every Release before the instance re-enters the free
// list. destroyFunc, if non-nil, runs once per constructed instance
// during Close.
func NewPool[T any](newFunc func() *T, resetFunc, destroyFunc func(*T)) *Pool[T] {
	if newFunc == nil {
		panic("mempool: newFunc must not be nil")
	}
	return &Pool[T]{
		newFunc:     newFunc,
		resetFunc:   resetFunc,
		destroyFunc: destroyFunc,
	}
}

// Acquire returns a ready-to-use instance, reusing a released one when
// available. Ownership transfers to the caller until Release.
// Acquire panics if the pool has been closed.
func (p *Pool[T]) Acquire() *T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		panic("mempool: acquire on closed pool")
	}

	p.acquires.Add(1)
	if n := len(p.available); n > 0 {
		obj := p.available[n-1]
		p.available = p.available[:n-1]
		return obj
	}

	// Constructed under the lock so Close can never miss a new
	// instance when sweeping the registry.
	p.news.Add(1)
	obj := p.newFunc()
	p.registry = append(p.registry, obj)
	return obj
}

// Release returns an instance to the pool for reuse. After Close,
// Release is a no-op: the registry sweep has already destroyed the
// instance.
func (p *Pool[T]) Release(obj *T) {
	if obj == nil {
		return
	}

	p.releases.Add(1)
	if p.resetFunc != nil {
		p.resetFunc(obj)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.available = append(p.available, obj)
}

// Close destroys every instance the pool ever constructed, regardless
// of whether it is currently available or still held by a caller.
// Closing twice is safe.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.destroyFunc != nil {
		for _, obj := range p.registry {
			p.destroyFunc(obj)
		}
	}
	p.registry = nil
	p.available = nil
}

// Size returns the number of live constructed instances.
func (p *Pool[T]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.registry)
}

// Stats returns pool statistics.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Acquires: p.acquires.Load(),
		Releases: p.releases.Load(),
		News:     p.news.Load(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Acquires int64 `json:"acquires"`
	Releases int64 `json:"releases"`
	News     int64 `json:"news"`
}

// HitRate returns the share of acquires served without constructing.
func (s PoolStats) HitRate() float64 {
	if s.Acquires == 0 {
		return 0
	}
	return float64(s.Acquires-s.News) / float64(s.Acquires)
}
