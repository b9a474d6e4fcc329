package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	if err := c.Set("k1", "v1", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok := c.Get("k1")
	if !ok {
		t.Fatal("expected hit for k1")
	}
	if v != "v1" {
		t.Errorf("Get() = %v, want v1", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	c.Set("short", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	c := NewMemoryCache(2)
	defer c.Close()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Get("a") // a is now most recently used
	c.Set("c", 3, time.Minute)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted as least recently used")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestMemoryCacheUpdateExisting(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	c.Set("k", "old", time.Minute)
	c.Set("k", "new", time.Minute)

	v, ok := c.Get("k")
	if !ok || v != "new" {
		t.Errorf("Get() = %v, %v; want new, true", v, ok)
	}
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	c.Set("k", "v", time.Minute)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected empty cache after Clear")
	}
}

func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(10)
	defer c.Close()

	c.Set("k", "v", time.Minute)
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats["hits"].(uint64) != 2 {
		t.Errorf("hits = %v, want 2", stats["hits"])
	}
	if stats["misses"].(uint64) != 1 {
		t.Errorf("misses = %v, want 1", stats["misses"])
	}
}

func TestKeyFormat(t *testing.T) {
	key := Key("job_42", map[string]string{"doc": "a.pdf"})
	want := "job_result_job_42_"
	if len(key) != len(want)+16 {
		t.Errorf("key %q has unexpected length", key)
	}
	if key[:len(want)] != want {
		t.Errorf("key %q does not start with %q", key, want)
	}
}

func TestKeyChangesWithPayload(t *testing.T) {
	k1 := Key("job_1", "payload_a")
	k2 := Key("job_1", "payload_b")
	if k1 == k2 {
		t.Error("different payloads must produce different keys")
	}
	if k1 != Key("job_1", "payload_a") {
		t.Error("key must be deterministic for identical payloads")
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(100)
	defer c.Close()

	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", i%10)
				c.Set(key, w, time.Minute)
				c.Get(key)
			}
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}
}
