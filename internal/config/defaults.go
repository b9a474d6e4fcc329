package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultBatchSize      = 50
	DefaultMinBatchSize   = 5
	DefaultMaxBatchSize   = 500
	DefaultConcurrency    = 10
	DefaultMinConcurrency = 1
	DefaultMaxConcurrency = 50
	DefaultTargetMemoryMB = 2048.0
	DefaultCacheTTL       = 1 * time.Hour
	DefaultCacheEntries   = 10000
	DefaultCacheBackend   = "memory"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTimeout   = 5 * time.Second
	DefaultRateLimitRPS   = 0.0 // 0 disables dispatch throttling
	DefaultRateLimitBurst = 50
)
