// Package intern deduplicates repeated strings so that equal content
// shares one canonical backing allocation.
//
// Utility class scans see the same class names and path fragments
// thousands of times across files; interning them collapses those
// repeats to one allocation each and makes equality checks on interned
// strings degenerate to pointer comparison.
package intern

import "sync"

// Pool owns all interned storage for its lifetime. Strings handed out
// stay valid until the pool itself is released; callers must never
// assume ownership transfer.
// All methods are safe for concurrent use.
type Pool struct {
	mu      sync.RWMutex
	strings map[string]string
}

// NewPool creates an empty interning pool.
func NewPool() *Pool {
	return &Pool{
		strings: make(map[string]string),
	}
}

// Intern returns the canonical instance of s, registering it on first
// sight. Two Intern calls with equal content return the same backing
// storage.
func (p *Pool) Intern(s string) string {
	p.mu.RLock()
	canonical, ok := p.strings[s]
	p.mu.RUnlock()
	if ok {
		return canonical
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-check: another goroutine may have interned s since the read
	// lock was dropped.
	if canonical, ok := p.strings[s]; ok {
		return canonical
	}
	p.strings[s] = s
	return s
}

// InternBytes returns the canonical string for the byte content of b.
// The fast path looks up without copying; only first-time content is
// copied into pool-owned storage.
func (p *Pool) InternBytes(b []byte) string {
	p.mu.RLock()
	canonical, ok := p.strings[string(b)]
	p.mu.RUnlock()
	if ok {
		return canonical
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if canonical, ok := p.strings[string(b)]; ok {
		return canonical
	}
	s := string(b)
	p.strings[s] = s
	return s
}

// Contains reports whether equal content has been interned before.
func (p *Pool) Contains(s string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.strings[s]
	return ok
}

// Len returns the number of distinct strings in the pool.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.strings)
}
