// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache defines the get/set capability the batch engine consumes for
// job-result caching. The engine treats it as opaque; implementations
// must be safe for concurrent use by jobs executing within a chunk.
//
// Shipped implementations:
//   - MemoryCache: in-memory cache with LRU eviction and TTL expiry
//   - RedisCache: Redis-backed cache for sharing results across processes
type Cache interface {
	// Get retrieves a cached value by key.
	// Returns the value and a boolean indicating if the key was found.
	Get(key string) (any, bool)

	// Set stores a value with the specified TTL.
	// If the key already exists, it is updated.
	Set(key string, value any, ttl time.Duration) error

	// Delete removes a cached value by key.
	// Should not error if the key doesn't exist.
	Delete(key string) error

	// Clear removes all cached values.
	Clear() error

	// Close performs cleanup and stops background goroutines.
	Close()
}

// Key builds the engine's cache key for a job: the job ID combined
// with an FNV-1a hash of the JSON-encoded payload, so a resubmitted
// job with a changed payload never sees a stale result.
func Key(jobID string, payload any) string {
	h := fnv.New64a()
	if raw, err := json.Marshal(payload); err == nil {
		h.Write(raw)
	}
	return "job_result_" + jobID + "_" + hex16(h.Sum64())
}

func hex16(v uint64) string {
	const digits = "0123456789abcdef"
	var b [16]byte
	for i := 15; i >= 0; i-- {
		b[i] = digits[v&0xf]
		v >>= 4
	}
	return string(b[:])
}

// cacheEntry holds a cached value with expiry metadata
type cacheEntry struct {
	Value     any
	ExpiresAt time.Time
	Key       string // For LRU tracking
}

// MemoryCache implements in-memory result caching with LRU eviction.
// Entry count is bounded because job-result payloads are opaque and
// their byte size cannot be estimated reliably.
type MemoryCache struct {
	store      map[string]*list.Element // Map key to list element
	lruList    *list.List               // Doubly-linked list for LRU ordering
	mu         sync.Mutex
	maxEntries int
	ctx        context.Context
	cancel     context.CancelFunc
	hits       uint64
	misses     uint64
}

// NewMemoryCache creates a new in-memory cache with LRU eviction.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &MemoryCache{
		store:      make(map[string]*list.Element),
		lruList:    list.New(),
		maxEntries: maxEntries,
		ctx:        ctx,
		cancel:     cancel,
	}

	// Start background cleanup routine with context
	go c.cleanupExpired()

	return c
}

// Get retrieves a cached value, moving the entry to the front of the
// LRU list on a hit. Expired entries count as misses.
func (mc *MemoryCache) Get(key string) (any, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.removeElement(element)
		mc.mu.Unlock()
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Value, true
}

// Set stores a value with TTL, evicting the least recently used
// entries when the cache is full.
func (mc *MemoryCache) Set(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		entry := &cacheEntry{
			Value:     value,
			ExpiresAt: time.Now().Add(ttl),
			Key:       key,
		}
		element.Value = entry
		mc.lruList.MoveToFront(element)

		log.Debug().
			Str("key", key).
			Dur("ttl", ttl).
			Msg("Updated cache entry")

		return nil
	}

	for mc.lruList.Len() >= mc.maxEntries {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
	}
	element := mc.lruList.PushFront(entry)
	mc.store[key] = element

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Msg("Cached result")

	return nil
}

// Delete removes a cached value
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
		log.Debug().Str("key", key).Msg("Deleted from cache")
	}

	return nil
}

// Clear removes all cached values
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.hits = 0
	mc.misses = 0

	log.Debug().Msg("Cache cleared")
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
	log.Debug().Msg("Cache closed")
}

// removeElement must be called with the lock held.
func (mc *MemoryCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
}

// evictLRU removes the least recently used entry (lock must be held).
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	entry := element.Value.(*cacheEntry)
	mc.removeElement(element)
	log.Debug().Str("key", entry.Key).Msg("Evicted from cache (LRU)")
}

// cleanupExpired periodically removes expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()

			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)
				if now.After(entry.ExpiresAt) {
					mc.removeElement(element)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			log.Debug().Msg("Cache cleanup routine stopped")
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"max_entries": mc.maxEntries,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}
