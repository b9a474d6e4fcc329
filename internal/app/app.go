// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/batch/internal/cache"
	"github.com/law-makers/batch/internal/config"
	"github.com/law-makers/batch/internal/engine"
	"github.com/law-makers/batch/internal/metrics"
	"github.com/law-makers/batch/internal/ratelimit"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	Metrics     *metrics.Collector
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the result cache (in-memory or Redis, per config)
//   - Creates the per-kind rate limiter when dispatch throttling is enabled
//   - Creates the in-memory metrics collector
//
// If any step fails, an error is returned and no resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Create cache
	var resultCache cache.Cache
	switch cfg.CacheBackend {
	case "redis":
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTimeout)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		resultCache = rc
		logger.Debug().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	default:
		resultCache = cache.NewMemoryCache(cfg.CacheMaxEntries)
		logger.Debug().
			Int("max_entries", cfg.CacheMaxEntries).
			Msg("Memory cache initialized")
	}

	// Create rate limiter only when throttling is requested
	var limiter ratelimit.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.NewKindLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		logger.Debug().
			Float64("rps", cfg.RateLimitRPS).
			Int("burst", cfg.RateLimitBurst).
			Msg("Rate limiter initialized")
	}

	collector := metrics.NewCollector()

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       resultCache,
		RateLimiter: limiter,
		Metrics:     collector,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// ProcessorOptions builds the engine options from the wired dependencies.
// Commands instantiate the generic processor themselves because the
// payload and result types depend on the workload.
func (a *Application) ProcessorOptions() engine.ProcessorOptions {
	return engine.ProcessorOptions{
		BatchSize:      a.Config.BatchSize,
		MinBatchSize:   a.Config.MinBatchSize,
		MaxBatchSize:   a.Config.MaxBatchSize,
		Concurrency:    a.Config.Concurrency,
		MinConcurrency: a.Config.MinConcurrency,
		MaxConcurrency: a.Config.MaxConcurrency,
		TargetMemoryMB: a.Config.TargetMemoryMB,
		Cache:          a.Cache,
		CacheTTL:       a.Config.CacheTTL,
		Limiter:        a.RateLimiter,
		Metrics:        a.Metrics,
	}
}

// Close gracefully shuts down the application and all its resources.
//
// Any errors during shutdown are logged but do not prevent other
// shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Cache != nil {
		a.Cache.Close()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
