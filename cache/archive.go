package cache

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ExportArchive streams every disk tier entry into a zstd-compressed
// tar archive. The archive holds flat entry files only, so it can be
// restored into any cache directory, e.g. to carry warm state between
// CI runs.
func (c *Cache) ExportArchive(w io.Writer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}
	tw := tar.NewWriter(enc)

	err = c.disk.walk(func(name string, info os.FileInfo) error {
		hdr := &tar.Header{
			Name:    filepath.Base(name),
			Mode:    0o644,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("failed to write archive header: %w", err)
		}

		f, err := c.fs.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open cache entry: %w", err)
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("failed to archive cache entry %s: %w", hdr.Name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize compressor: %w", err)
	}
	return nil
}

// ImportArchive restores disk tier entries from an archive produced by
// ExportArchive. Archive entries overwrite entries already on disk.
// Members that are not flat entry files, or that exceed the entry size
// limit, are skipped with a log line rather than failing the import.
func (c *Cache) ImportArchive(r io.Reader) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create decompressor: %w", err)
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		// Flatten member names so a crafted archive cannot write
		// outside the cache directory.
		name := filepath.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(name, cacheFileExt) {
			c.logger.Warn("skipping foreign archive member", zap.String("name", hdr.Name))
			continue
		}
		if hdr.Size > c.maxEntrySize {
			c.logger.Warn("skipping oversized archive member",
				zap.String("name", name),
				zap.Int64("size", hdr.Size))
			continue
		}

		if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("failed to read archive member %s: %w", name, err)
		}
		if err := afero.WriteFile(c.fs, filepath.Join(c.dir, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to restore cache entry %s: %w", name, err)
		}
	}

	return nil
}
