// Package config loads scan cache configuration from YAML with
// environment overrides. Precedence: built-in defaults, then the YAML
// file, then SCANCACHE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SCANCACHE"

// Config is the complete configuration.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Scanner ScannerConfig `yaml:"scanner"`
	Log     LogConfig     `yaml:"log"`
}

// CacheConfig configures the tiered cache.
type CacheConfig struct {
	// Dir is the disk tier directory.
	Dir string `yaml:"dir"`
	// Enabled toggles cache use during scans. Disabled scans always
	// extract from scratch.
	Enabled bool `yaml:"enabled"`
	// TTL is the declared entry lifetime. The cache never applies it on
	// its own; it is the cutoff callers feed to Prune.
	TTL time.Duration `yaml:"ttl"`
	// MaxSourceSize caps source file reads during hashing.
	MaxSourceSize int64 `yaml:"max_source_size"`
	// MaxEntrySize caps disk entry reads.
	MaxEntrySize int64 `yaml:"max_entry_size"`
	// Shards sets the memory tier shard count; 0 picks a default from
	// hardware parallelism.
	Shards int `yaml:"shards"`
}

// ScannerConfig configures the scan driver.
type ScannerConfig struct {
	// Workers is the worker pool size; 0 picks the detected hardware
	// parallelism.
	Workers int `yaml:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn or error.
	Level string `yaml:"level"`
	// Format: json or console.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Dir:           ".scancache",
			Enabled:       true,
			TTL:           0,
			MaxSourceSize: 10 << 20,
			MaxEntrySize:  1 << 20,
			Shards:        0,
		},
		Scanner: ScannerConfig{
			Workers: 0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from the given YAML file and applies
// environment overrides. An empty path skips the file and uses the
// defaults as base.
func Load(path string) (Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS is Load over an explicit filesystem, for testing.
func LoadFS(fs afero.Fs, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir must not be empty")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxSourceSize <= 0 {
		return fmt.Errorf("cache.max_source_size must be positive, got %d", c.Cache.MaxSourceSize)
	}
	if c.Cache.MaxEntrySize <= 0 {
		return fmt.Errorf("cache.max_entry_size must be positive, got %d", c.Cache.MaxEntrySize)
	}
	if c.Cache.Shards < 0 {
		return fmt.Errorf("cache.shards must not be negative, got %d", c.Cache.Shards)
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner.workers must not be negative, got %d", c.Scanner.Workers)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	return nil
}

// applyEnv overrides fields from SCANCACHE_* variables.
func applyEnv(cfg *Config) error {
	if v, ok := lookup("CACHE_DIR"); ok {
		cfg.Cache.Dir = v
	}
	if v, ok := lookup("CACHE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s_CACHE_ENABLED: %w", EnvPrefix, err)
		}
		cfg.Cache.Enabled = b
	}
	if v, ok := lookup("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s_CACHE_TTL: %w", EnvPrefix, err)
		}
		cfg.Cache.TTL = d
	}
	if v, ok := lookup("CACHE_MAX_SOURCE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s_CACHE_MAX_SOURCE_SIZE: %w", EnvPrefix, err)
		}
		cfg.Cache.MaxSourceSize = n
	}
	if v, ok := lookup("CACHE_MAX_ENTRY_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s_CACHE_MAX_ENTRY_SIZE: %w", EnvPrefix, err)
		}
		cfg.Cache.MaxEntrySize = n
	}
	if v, ok := lookup("CACHE_SHARDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s_CACHE_SHARDS: %w", EnvPrefix, err)
		}
		cfg.Cache.Shards = n
	}
	if v, ok := lookup("SCANNER_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s_SCANNER_WORKERS: %w", EnvPrefix, err)
		}
		cfg.Scanner.Workers = n
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	return nil
}

func lookup(suffix string) (string, bool) {
	return os.LookupEnv(EnvPrefix + "_" + suffix)
}
