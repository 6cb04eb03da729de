package cache

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestNextPow2(t *testing.T) {
	tests := []struct {
		in   uint64
		want uint64
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{7, 8},
		{8, 8},
		{9, 16},
		{255, 256},
	}

	for _, tt := range tests {
		if got := nextPow2(tt.in); got != tt.want {
			t.Fatalf("nextPow2(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestMemoryTierShardCount(t *testing.T) {
	// Explicit counts round up to the next power of two.
	if got := len(newMemoryTier(3).shards); got != 4 {
		t.Fatalf("Expected 4 shards, got %d", got)
	}
	if got := len(newMemoryTier(8).shards); got != 8 {
		t.Fatalf("Expected 8 shards, got %d", got)
	}

	// Zero picks a hardware-derived default, still a power of two.
	n := len(newMemoryTier(0).shards)
	if n < 1 || n&(n-1) != 0 {
		t.Fatalf("Default shard count must be a positive power of two, got %d", n)
	}
}

func TestMemoryTierPutGetRemove(t *testing.T) {
	m := newMemoryTier(4)

	e := entry{classes: []string{"flex"}, hash: 7}
	m.put("/src/a.html", e)

	got, ok := m.get("/src/a.html")
	if !ok || got.hash != 7 {
		t.Fatalf("Expected stored entry, got ok=%v entry=%+v", ok, got)
	}

	if _, ok := m.get("/src/missing.html"); ok {
		t.Fatal("Expected no entry for unknown path")
	}

	m.remove("/src/a.html")
	if _, ok := m.get("/src/a.html"); ok {
		t.Fatal("Expected entry gone after remove")
	}
}

func TestMemoryTierReplace(t *testing.T) {
	m := newMemoryTier(4)

	m.put("/src/a.html", entry{hash: 1})
	m.put("/src/a.html", entry{hash: 2})

	got, ok := m.get("/src/a.html")
	if !ok || got.hash != 2 {
		t.Fatalf("Expected replaced entry with hash 2, got ok=%v entry=%+v", ok, got)
	}
	if m.len() != 1 {
		t.Fatalf("Expected 1 entry after replace, got %d", m.len())
	}
}

func TestMemoryTierClearAndLen(t *testing.T) {
	m := newMemoryTier(4)

	for i := 0; i < 10; i++ {
		m.put(fmt.Sprintf("/src/file%d.html", i), entry{hash: uint64(i)})
	}
	if m.len() != 10 {
		t.Fatalf("Expected 10 entries, got %d", m.len())
	}

	m.clear()
	if m.len() != 0 {
		t.Fatalf("Expected 0 entries after clear, got %d", m.len())
	}
}

func TestMemoryTierPrune(t *testing.T) {
	m := newMemoryTier(4)
	base := fixedNowFunc()

	m.put("/src/old.html", entry{createdAt: base.Add(-2 * time.Hour)})
	m.put("/src/fresh.html", entry{createdAt: base})

	removed := m.prune(base.Add(-time.Hour))
	if removed != 1 {
		t.Fatalf("Expected 1 pruned entry, got %d", removed)
	}
	if _, ok := m.get("/src/old.html"); ok {
		t.Fatal("Old entry must be pruned")
	}
	if _, ok := m.get("/src/fresh.html"); !ok {
		t.Fatal("Fresh entry must survive prune")
	}
}

func TestMemoryTierConcurrent(t *testing.T) {
	m := newMemoryTier(0)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				path := fmt.Sprintf("/src/w%d-f%d.html", w, i)
				m.put(path, entry{hash: uint64(i)})
				if got, ok := m.get(path); !ok || got.hash != uint64(i) {
					return fmt.Errorf("lost entry for %s", path)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent access failed: %v", err)
	}
	if m.len() != 800 {
		t.Fatalf("Expected 800 entries, got %d", m.len())
	}
}
