/*
Package scancache provides an incremental scan cache for utility-class
extraction tools.

It keeps the class names extracted from template files between runs, so a
rebuild only pays the extraction cost for files whose content actually
changed.

# Overview

scancache is built for scanners in the style of utility-first CSS tooling:
a build walks hundreds or thousands of template files, pulls candidate
class names out of each one, and repeats that on every rebuild even though
most files are untouched. scancache makes the repeat runs cheap by caching
the extracted class list per file and validating it against a content hash
of the source.

# Core Architecture

The cache has two tiers:

  - a sharded in-memory tier for hits within a process lifetime
  - a disk tier under a cache directory, one file per source path, so
    results survive process restarts

Every stored entry remembers the FNV-1a hash of the source content it was
computed from. On lookup the current source is hashed first; a memory
entry whose stored hash no longer matches makes the lookup a miss, which
is what keeps the cache content-based rather than timestamp-based.

Around the cache, the package bundles the allocation helpers a scanner
needs on hot paths: a string interning pool that collapses repeated class
names to one allocation, an arena for short-lived scan buffers, a generic
object pool, and a fixed-size worker pool that fans file scans out across
goroutines.

# Basic Usage

Wiring up a session and scanning a few files:

	cfg := config.Default()
	cfg.Cache.Dir = ".scancache"

	sess, err := scancache.NewSession(cfg)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer sess.Close()

	c, err := sess.OpenCache()
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}

	sc := scanner.New(sess, c, scanner.WithExtractor(extractClasses))
	res, err := sc.Scan(ctx, []string{"src/index.html", "src/app.html"})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	fmt.Printf("%d hits, %d misses\n", res.Hits, res.Misses)

The cache can also be used on its own:

	c, err := cache.Open(".scancache")
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}

	classes, err := c.Get("src/index.html")
	if errors.Is(err, cache.ErrCacheMiss) {
		classes = extract("src/index.html")
		if err := c.Put("src/index.html", classes); err != nil {
			log.Printf("Warning: failed to cache result: %v", err)
		}
	}

# Disk Format

The disk tier stores one file per source path:

	.scancache/
	└── [16 hex chars of the path hash].cache

Each file holds the extracted class names, one per line. The flat layout
keeps entries greppable and trivially portable; ExportArchive and
ImportArchive move a whole directory as a zstd-compressed tarball for CI
cache transfer.

# Configuration Options

The cache accepts functional options:

	c, err := cache.Open(".scancache",
		cache.WithFs(memFs),
		cache.WithHashFunc(func() hash.Hash64 { return xxhash.New() }),
		cache.WithShards(32),
	)

Process-level configuration (directory, worker count, log level) loads
from YAML with SCANCACHE_* environment overrides via the config package.

# Error Handling

The cache package defines sentinel errors:

  - ErrCacheMiss: the path has no valid entry, extract and Put
  - ErrTooLarge: the source file exceeds the configured size cap
  - ErrWriteFailed: the disk tier rejected a store

Always branch on ErrCacheMiss rather than treating every error as a miss;
an unreadable source file is reported as its own error so callers do not
silently rescan files they cannot read anyway.
*/
package scancache
