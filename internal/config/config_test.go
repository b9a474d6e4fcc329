package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.TargetMemoryMB != DefaultTargetMemoryMB {
		t.Errorf("TargetMemoryMB = %v, want %v", cfg.TargetMemoryMB, DefaultTargetMemoryMB)
	}
	if cfg.CacheBackend != "memory" {
		t.Errorf("CacheBackend = %q, want memory", cfg.CacheBackend)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BATCH_CACHE_BACKEND", "redis")
	t.Setenv("BATCH_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("BATCH_TARGET_MEMORY_MB", "4096")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CacheBackend != "redis" {
		t.Errorf("CacheBackend = %q, want redis", cfg.CacheBackend)
	}
	if cfg.RedisAddr != "redis.internal:6380" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.TargetMemoryMB != 4096 {
		t.Errorf("TargetMemoryMB = %v, want 4096", cfg.TargetMemoryMB)
	}
}

func TestValidateRejectsBadBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min batch size", func(c *Config) { c.MinBatchSize = 0 }},
		{"max below min batch", func(c *Config) { c.MaxBatchSize = c.MinBatchSize - 1 }},
		{"zero min concurrency", func(c *Config) { c.MinConcurrency = 0 }},
		{"negative target memory", func(c *Config) { c.TargetMemoryMB = -1 }},
		{"unknown cache backend", func(c *Config) { c.CacheBackend = "memcached" }},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(nil)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
