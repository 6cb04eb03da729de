package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/mkonda/scancache/internal/hashutil"
)

// cacheFileExt is the suffix of every disk tier entry.
const cacheFileExt = ".cache"

// diskTier stores one file per cached path under the cache directory,
// named by the hash of the path. The directory is created lazily on the
// first write, so a cache that never stores anything leaves no trace on
// disk.
type diskTier struct {
	fs           afero.Fs
	dir          string
	maxEntrySize int64
}

// entryPath returns the disk location for a path hash.
func (d *diskTier) entryPath(pathHash uint64) string {
	return filepath.Join(d.dir, hashutil.Filename(pathHash)+cacheFileExt)
}

// read loads and parses the entry for a path hash.
// Returns ErrCacheMiss if no entry exists, ErrEntryCorrupt if the entry
// exceeds the size limit, and the underlying error for I/O failures.
func (d *diskTier) read(pathHash uint64) ([]string, error) {
	name := d.entryPath(pathHash)

	info, err := d.fs.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to stat cache entry: %w", err)
	}
	if info.Size() > d.maxEntrySize {
		return nil, fmt.Errorf("cache entry %s is %d bytes (limit %d): %w",
			filepath.Base(name), info.Size(), d.maxEntrySize, ErrEntryCorrupt)
	}

	data, err := afero.ReadFile(d.fs, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return decodeClasses(data), nil
}

// write durably stores the class list for a path hash, creating the
// cache directory if absent.
func (d *diskTier) write(pathHash uint64, classes []string) error {
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := afero.WriteFile(d.fs, d.entryPath(pathHash), encodeClasses(classes), 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// remove deletes the entry for a path hash. An absent entry is success.
func (d *diskTier) remove(pathHash uint64) error {
	if err := d.fs.Remove(d.entryPath(pathHash)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// clear removes the entire cache directory tree. An absent directory is
// success, so clearing twice in a row is safe.
func (d *diskTier) clear() error {
	if err := d.fs.RemoveAll(d.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	return nil
}

// walk calls fn for every entry file in the cache directory.
// An absent directory walks zero entries.
func (d *diskTier) walk(fn func(name string, info os.FileInfo) error) error {
	exists, err := afero.DirExists(d.fs, d.dir)
	if err != nil {
		return fmt.Errorf("failed to check cache directory: %w", err)
	}
	if !exists {
		return nil
	}

	return afero.Walk(d.fs, d.dir, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(name, cacheFileExt) {
			return nil
		}
		return fn(name, info)
	})
}
