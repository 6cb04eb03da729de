package cache

import "errors"

// Sentinel errors
var (
	// ErrCacheMiss is returned when no valid entry exists for a path.
	ErrCacheMiss = errors.New("cache miss")

	// ErrTooLarge is returned when a source file exceeds the configured
	// read limit. Oversized files fail instead of being truncated.
	ErrTooLarge = errors.New("file too large")

	// ErrWriteFailed marks disk tier failures during Put: directory
	// creation, file creation, or the write itself.
	ErrWriteFailed = errors.New("cache write failed")

	// ErrEntryCorrupt marks a disk entry that exists but cannot be
	// served, e.g. because it exceeds the entry size limit. Get treats
	// such entries as a miss; the sentinel surfaces only in logs and in
	// direct disk tier access.
	ErrEntryCorrupt = errors.New("cache entry corrupt")
)
