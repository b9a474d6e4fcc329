package config

import "fmt"

func validate(c *Config) error {
	if c.MinBatchSize <= 0 || c.MaxBatchSize < c.MinBatchSize {
		return fmt.Errorf("batch size bounds must satisfy 0 < min <= max")
	}
	if c.MinConcurrency <= 0 || c.MaxConcurrency < c.MinConcurrency {
		return fmt.Errorf("concurrency bounds must satisfy 0 < min <= max")
	}
	if c.TargetMemoryMB <= 0 {
		return fmt.Errorf("target memory must be > 0")
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("cache backend must be memory or redis, got %q", c.CacheBackend)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be > 0")
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be > 0")
	}
	return nil
}
