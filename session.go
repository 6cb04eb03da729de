package scancache

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mkonda/scancache/cache"
	"github.com/mkonda/scancache/config"
	"github.com/mkonda/scancache/intern"
	"github.com/mkonda/scancache/mempool"
)

// Session bundles the shared state of one scanning process: the logger,
// the string interner, the arena pool and the configuration. Everything a
// scan needs hangs off a Session instead of package-level singletons, so
// two sessions in one process never share mutable state.
type Session struct {
	id       string
	cfg      config.Config
	fs       afero.Fs
	logger   *zap.Logger
	ownsLog  bool
	metrics  cache.Metrics
	interner *intern.Pool
	arenas   *mempool.Pool[mempool.Arena]
	closed   atomic.Bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionFs sets the filesystem used by caches opened through the
// session. Defaults to the OS filesystem.
func WithSessionFs(fs afero.Fs) SessionOption {
	return func(s *Session) {
		s.fs = fs
	}
}

// WithSessionLogger replaces the logger built from the configuration.
// The session does not sync a caller-provided logger on Close.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSessionMetrics sets the metrics sink passed to caches opened
// through the session. Defaults to a no-op sink.
func WithSessionMetrics(m cache.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession validates the configuration and builds a Session.
func NewSession(cfg config.Config, options ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		metrics:  cache.NoopMetrics{},
		interner: intern.NewPool(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.logger == nil {
		logger, err := buildLogger(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		s.logger = logger
		s.ownsLog = true
	}

	s.arenas = mempool.NewPool(
		func() *mempool.Arena { return mempool.NewArena(0) },
		func(a *mempool.Arena) { a.Reset() },
		nil,
	)

	s.logger.Debug("session started", zap.String("session_id", s.id))
	return s, nil
}

// ID returns the unique identifier of this session.
func (s *Session) ID() string {
	return s.id
}

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger {
	return s.logger
}

// Interner returns the session string interning pool.
func (s *Session) Interner() *intern.Pool {
	return s.interner
}

// Fs returns the filesystem the session and its caches operate on.
func (s *Session) Fs() afero.Fs {
	return s.fs
}

// Metrics returns the metrics sink caches opened through the session use.
func (s *Session) Metrics() cache.Metrics {
	return s.metrics
}

// Config returns the configuration the session was built from.
func (s *Session) Config() config.Config {
	return s.cfg
}

// AcquireArena takes an arena from the session pool. Pair it with
// ReleaseArena once the scan buffers are dead.
func (s *Session) AcquireArena() *mempool.Arena {
	return s.arenas.Acquire()
}

// ReleaseArena resets the arena and returns it to the pool.
func (s *Session) ReleaseArena(a *mempool.Arena) {
	s.arenas.Release(a)
}

// OpenCache opens the tiered cache described by the session
// configuration, wired to the session filesystem, logger and metrics.
func (s *Session) OpenCache() (*cache.Cache, error) {
	return cache.Open(s.cfg.Cache.Dir,
		cache.WithFs(s.fs),
		cache.WithLogger(s.logger),
		cache.WithMetrics(s.metrics),
		cache.WithShards(s.cfg.Cache.Shards),
		cache.WithMaxSourceSize(s.cfg.Cache.MaxSourceSize),
		cache.WithMaxEntrySize(s.cfg.Cache.MaxEntrySize),
		cache.WithTTL(s.cfg.Cache.TTL),
	)
}

// Close releases the arena pool and syncs the logger if the session built
// it. Close is idempotent; using the session after Close is invalid.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Debug("session closed", zap.String("session_id", s.id))
	s.arenas.Close()
	if s.ownsLog {
		_ = s.logger.Sync()
	}
	return nil
}

// buildLogger constructs a zap logger from the log configuration.
func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapConfig.Build()
}
