// Package mempool provides the allocation substrate for scan cycles:
// an arena for short-lived scratch memory reclaimed in bulk between
// cycles, and an object pool that recycles instances and owns their
// final destruction.
package mempool

import "sync"

// DefaultBlockSize is the arena block granularity when none is given.
const DefaultBlockSize = 64 << 10

// Arena is a bump allocator for per-cycle scratch memory. Allocations
// are handed out from fixed-size blocks; Reset reclaims everything at
// once while retaining the blocks, so steady-state cycles allocate
// nothing new.
//
// Slices returned by Alloc are valid only until the next Reset.
// All methods are safe for concurrent use.
type Arena struct {
	mu        sync.Mutex
	blockSize int
	blocks    [][]byte
	active    int
	off       int
	allocated int
	oversize  [][]byte
}

// NewArena creates an arena with the given block size.
// A size <= 0 picks DefaultBlockSize.
func NewArena(blockSize int) *Arena {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{blockSize: blockSize}
}

// Alloc returns a slice of n bytes from the arena.
// Requests larger than the block size get a dedicated allocation that
// is released to the garbage collector on Reset instead of being
// retained. Memory reused after a Reset is not re-zeroed.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.allocated += n

	if n > a.blockSize {
		b := make([]byte, n)
		a.oversize = append(a.oversize, b)
		return b
	}

	if len(a.blocks) == 0 {
		a.blocks = append(a.blocks, make([]byte, a.blockSize))
	}
	if a.off+n > a.blockSize {
		a.active++
		a.off = 0
		if a.active == len(a.blocks) {
			a.blocks = append(a.blocks, make([]byte, a.blockSize))
		}
	}

	block := a.blocks[a.active]
	p := block[a.off : a.off+n : a.off+n]
	a.off += n
	return p
}

// Copy places a copy of b into the arena and returns it.
func (a *Arena) Copy(b []byte) []byte {
	p := a.Alloc(len(b))
	copy(p, b)
	return p
}

// CopyString places a copy of s into the arena and returns it as bytes.
func (a *Arena) CopyString(s string) []byte {
	p := a.Alloc(len(s))
	copy(p, s)
	return p
}

// Reset reclaims every allocation at once. Fixed-size blocks are
// retained for the next cycle; oversize allocations are dropped.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active = 0
	a.off = 0
	a.allocated = 0
	a.oversize = nil
}

// Len returns the number of bytes allocated since the last Reset.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.allocated
}

// Cap returns the total block capacity retained across resets.
func (a *Arena) Cap() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.blocks) * a.blockSize
}
