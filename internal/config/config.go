package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Batch tuning
	BatchSize      int
	MinBatchSize   int
	MaxBatchSize   int
	Concurrency    int
	MinConcurrency int
	MaxConcurrency int
	TargetMemoryMB float64

	// Caching
	CacheBackend    string // "memory" or "redis"
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisTimeout    time.Duration

	// Rate limiting (0 RPS disables the dispatch throttle)
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		BatchSize:       DefaultBatchSize,
		MinBatchSize:    DefaultMinBatchSize,
		MaxBatchSize:    DefaultMaxBatchSize,
		Concurrency:     DefaultConcurrency,
		MinConcurrency:  DefaultMinConcurrency,
		MaxConcurrency:  DefaultMaxConcurrency,
		TargetMemoryMB:  DefaultTargetMemoryMB,
		CacheBackend:    DefaultCacheBackend,
		CacheTTL:        DefaultCacheTTL,
		CacheMaxEntries: DefaultCacheEntries,
		RedisAddr:       DefaultRedisAddr,
		RedisTimeout:    DefaultRedisTimeout,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("BATCH_CACHE_BACKEND"); v != "" {
		cfg.CacheBackend = v
	}
	if v := os.Getenv("BATCH_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("BATCH_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("BATCH_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("BATCH_TARGET_MEMORY_MB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TargetMemoryMB = f
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("batch-size"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.BatchSize = n
			}
		}
		if f := cmd.Flags().Lookup("concurrency"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.Concurrency = n
			}
		}
		if f := cmd.Flags().Lookup("cache-ttl"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.CacheTTL = d
				}
			}
		}
		if f := cmd.Flags().Lookup("rate-limit"); f != nil {
			if rps, err := strconv.ParseFloat(f.Value.String(), 64); err == nil && rps > 0 {
				cfg.RateLimitRPS = rps
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
