// Package scanner drives incremental class extraction over a set of
// source files, using the tiered cache to skip files whose content has
// not changed since the last run.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mkonda/scancache"
	"github.com/mkonda/scancache/cache"
	"github.com/mkonda/scancache/workerpool"
)

// ExtractFunc pulls candidate class names out of one file's content.
type ExtractFunc func(path string, content []byte) []string

// FileResult is the outcome of scanning a single file.
type FileResult struct {
	// Path is the source path as submitted.
	Path string
	// Classes are the extracted class names, interned into the session
	// pool.
	Classes []string
	// FromCache reports whether Classes came from the cache.
	FromCache bool
	// Err is set when the file could not be scanned at all.
	Err error
}

// Result is the outcome of one Scan call. Files is ordered like the
// submitted paths.
type Result struct {
	Files    []FileResult
	Hits     int
	Misses   int
	Errors   int
	Duration time.Duration
}

// Scanner scans batches of files, fanning the per-file work out across a
// worker pool.
type Scanner struct {
	sess    *scancache.Session
	cache   *cache.Cache
	fs      afero.Fs
	logger  *zap.Logger
	extract ExtractFunc
	workers int
	enabled bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtractor replaces the default extraction function.
func WithExtractor(fn ExtractFunc) Option {
	return func(s *Scanner) {
		s.extract = fn
	}
}

// WithWorkers overrides the worker count from the session configuration.
// Zero or negative picks the detected hardware parallelism.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = n
	}
}

// New builds a Scanner over the session and cache. The cache may be nil
// only when the session configuration disables caching.
func New(sess *scancache.Session, c *cache.Cache, options ...Option) *Scanner {
	cfg := sess.Config()
	s := &Scanner{
		sess:    sess,
		cache:   c,
		fs:      sess.Fs(),
		logger:  sess.Logger(),
		extract: DefaultExtract,
		workers: cfg.Scanner.Workers,
		enabled: cfg.Cache.Enabled && c != nil,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Scan processes the given paths and returns per-file results in
// submission order. Per-file failures land in FileResult.Err and do not
// abort the batch. When ctx is cancelled Scan stops submitting new
// files, lets the queued ones drain, and returns the partial result
// together with the context error.
func (s *Scanner) Scan(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()

	res := &Result{
		Files: make([]FileResult, len(paths)),
	}
	var hits, misses, errCount atomic.Int64

	pool := workerpool.New(s.workers)
	defer pool.Shutdown()

	cancelled := -1
	for i, path := range paths {
		if ctx.Err() != nil {
			cancelled = i
			break
		}

		out := &res.Files[i]
		out.Path = path
		job := func() {
			s.scanOne(out, &hits, &misses, &errCount)
		}
		if err := pool.Submit(job); err != nil {
			out.Err = err
			errCount.Add(1)
		}
	}
	pool.Wait()

	if cancelled >= 0 {
		for i := cancelled; i < len(paths); i++ {
			res.Files[i].Path = paths[i]
			res.Files[i].Err = ctx.Err()
			errCount.Add(1)
		}
	}

	res.Hits = int(hits.Load())
	res.Misses = int(misses.Load())
	res.Errors = int(errCount.Load())
	res.Duration = time.Since(start)

	s.logger.Debug("scan finished",
		zap.Int("files", len(paths)),
		zap.Int("hits", res.Hits),
		zap.Int("misses", res.Misses),
		zap.Int("errors", res.Errors),
		zap.Duration("duration", res.Duration),
	)

	if cancelled >= 0 {
		return res, ctx.Err()
	}
	return res, nil
}

// scanOne fills in the result slot for a single file. Each job owns its
// slot, so only the counters need synchronization.
func (s *Scanner) scanOne(out *FileResult, hits, misses, errCount *atomic.Int64) {
	cacheable := s.enabled

	if s.enabled {
		classes, err := s.cache.Get(out.Path)
		switch {
		case err == nil:
			out.Classes = s.internAll(classes)
			out.FromCache = true
			hits.Add(1)
			return
		case errors.Is(err, cache.ErrCacheMiss):
			// Fall through to extraction.
		case errors.Is(err, cache.ErrTooLarge):
			// Still worth scanning, just not worth caching.
			cacheable = false
		default:
			out.Err = err
			errCount.Add(1)
			return
		}
	}

	content, err := afero.ReadFile(s.fs, out.Path)
	if err != nil {
		out.Err = fmt.Errorf("failed to read %s: %w", out.Path, err)
		errCount.Add(1)
		return
	}

	classes := s.extract(out.Path, content)
	if cacheable {
		if err := s.cache.Put(out.Path, classes); err != nil {
			s.logger.Warn("failed to cache scan result",
				zap.String("path", out.Path),
				zap.Error(err),
			)
		}
	}

	out.Classes = s.internAll(classes)
	misses.Add(1)
}

// internAll funnels class names through the session interner so repeated
// names share one backing string across files.
func (s *Scanner) internAll(classes []string) []string {
	if len(classes) == 0 {
		return classes
	}
	interner := s.sess.Interner()
	out := make([]string, len(classes))
	for i, cls := range classes {
		out[i] = interner.Intern(cls)
	}
	return out
}
