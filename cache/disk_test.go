package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/mkonda/scancache/internal/hashutil"
)

func newTestDiskTier(maxEntrySize int64) (*diskTier, afero.Fs) {
	memFs := afero.NewMemMapFs()
	return &diskTier{
		fs:           memFs,
		dir:          "/cache",
		maxEntrySize: maxEntrySize,
	}, memFs
}

func TestDiskTierEntryPath(t *testing.T) {
	d, _ := newTestDiskTier(DefaultMaxEntrySize)

	pathHash := hashutil.Sum64String("src/index.html")
	name := d.entryPath(pathHash)

	if filepath.Dir(name) != "/cache" {
		t.Fatalf("Entry must live in the cache directory, got %s", name)
	}
	base := filepath.Base(name)
	if !strings.HasSuffix(base, cacheFileExt) {
		t.Fatalf("Entry name must end in %s, got %s", cacheFileExt, base)
	}
	if base != hashutil.Filename(pathHash)+cacheFileExt {
		t.Fatalf("Entry name must derive from the path hash, got %s", base)
	}

	// Same hash, same name.
	if d.entryPath(pathHash) != name {
		t.Fatal("Entry path must be deterministic")
	}
}

func TestDiskTierReadMissing(t *testing.T) {
	d, _ := newTestDiskTier(DefaultMaxEntrySize)

	_, err := d.read(42)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss for absent entry, got %v", err)
	}
}

func TestDiskTierWriteRead(t *testing.T) {
	d, memFs := newTestDiskTier(DefaultMaxEntrySize)

	classes := []string{"flex", "items-center"}
	if err := d.write(42, classes); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}

	// The cache directory is created by the write.
	if exists, _ := afero.DirExists(memFs, "/cache"); !exists {
		t.Fatal("Write must create the cache directory")
	}

	got, err := d.read(42)
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	if len(got) != 2 || got[0] != "flex" || got[1] != "items-center" {
		t.Fatalf("Expected [flex items-center], got %v", got)
	}
}

func TestDiskTierOversizedEntry(t *testing.T) {
	d, memFs := newTestDiskTier(4)

	name := d.entryPath(42)
	if err := afero.WriteFile(memFs, name, []byte("oversized\n"), 0644); err != nil {
		t.Fatalf("Failed to plant entry: %v", err)
	}

	_, err := d.read(42)
	if !errors.Is(err, ErrEntryCorrupt) {
		t.Fatalf("Expected ErrEntryCorrupt for oversized entry, got %v", err)
	}
}

func TestDiskTierRemove(t *testing.T) {
	d, memFs := newTestDiskTier(DefaultMaxEntrySize)

	if err := d.write(42, []string{"flex"}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := d.remove(42); err != nil {
		t.Fatalf("Failed to remove entry: %v", err)
	}
	if exists, _ := afero.Exists(memFs, d.entryPath(42)); exists {
		t.Fatal("Entry must be gone after remove")
	}

	// Removing an absent entry is success.
	if err := d.remove(42); err != nil {
		t.Fatalf("Second remove failed: %v", err)
	}
}

func TestDiskTierWalkAbsentDir(t *testing.T) {
	d, _ := newTestDiskTier(DefaultMaxEntrySize)

	calls := 0
	err := d.walk(func(string, os.FileInfo) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Walk over absent directory failed: %v", err)
	}
	if calls != 0 {
		t.Fatalf("Expected no walk callbacks, got %d", calls)
	}
}

func TestDiskTierWalkSkipsForeignFiles(t *testing.T) {
	d, memFs := newTestDiskTier(DefaultMaxEntrySize)

	if err := d.write(1, []string{"flex"}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := d.write(2, []string{"grid"}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := afero.WriteFile(memFs, "/cache/README.txt", []byte("not an entry"), 0644); err != nil {
		t.Fatalf("Failed to plant foreign file: %v", err)
	}

	var seen []string
	err := d.walk(func(name string, _ os.FileInfo) error {
		seen = append(seen, filepath.Base(name))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("Expected 2 entries walked, got %v", seen)
	}
	for _, name := range seen {
		if !strings.HasSuffix(name, cacheFileExt) {
			t.Fatalf("Walked a foreign file: %s", name)
		}
	}
}
