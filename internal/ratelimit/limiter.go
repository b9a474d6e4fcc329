// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for rate limiting implementations.
//
// The engine can be configured with a limiter to throttle job dispatch
// per job kind, typically to avoid overwhelming a downstream service
// that processFn calls into.
type RateLimiter interface {
	// Wait blocks until a job of the given kind can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, kind string) error

	// Allow checks if a job of the given kind can proceed immediately
	// without blocking. Returns true if allowed, false otherwise.
	Allow(kind string) bool

	// Reserve reserves a token for the given kind.
	// Returns a Reservation that can be used to get the delay and allow/cancel.
	Reserve(kind string) *rate.Reservation
}

// KindLimiter provides per-kind rate limiting using the token bucket
// algorithm. Jobs with an empty kind share a single default bucket.
type KindLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perKind  rate.Limit // Jobs per second per kind
	burst    int        // Burst capacity
}

// NewKindLimiter creates a new rate limiter with the specified per-kind rate
func NewKindLimiter(jobsPerSecond float64, burst int) *KindLimiter {
	if jobsPerSecond <= 0 {
		jobsPerSecond = 100.0 // Default: 100 jobs/sec per kind
	}
	if burst <= 0 {
		burst = 50 // Default burst: 50 jobs
	}

	return &KindLimiter{
		limiters: make(map[string]*rate.Limiter),
		perKind:  rate.Limit(jobsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until a job of the given kind can proceed according to rate limits
func (kl *KindLimiter) Wait(ctx context.Context, kind string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return kl.getLimiter(kind).Wait(ctx)
}

// Allow checks if a job can proceed immediately without blocking
func (kl *KindLimiter) Allow(kind string) bool {
	return kl.getLimiter(kind).Allow()
}

// Reserve reserves a token for the given kind and returns a Reservation
func (kl *KindLimiter) Reserve(kind string) *rate.Reservation {
	return kl.getLimiter(kind).Reserve()
}

// getLimiter returns or creates a rate limiter for the given kind
func (kl *KindLimiter) getLimiter(kind string) *rate.Limiter {
	kl.mu.RLock()
	limiter, exists := kl.limiters[kind]
	kl.mu.RUnlock()

	if exists {
		return limiter
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := kl.limiters[kind]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(kl.perKind, kl.burst)
	kl.limiters[kind] = limiter

	return limiter
}

// SetLimit updates the rate limit for a specific kind
func (kl *KindLimiter) SetLimit(kind string, jobsPerSecond float64, burst int) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if limiter, exists := kl.limiters[kind]; exists {
		limiter.SetLimit(rate.Limit(jobsPerSecond))
		limiter.SetBurst(burst)
	} else {
		kl.limiters[kind] = rate.NewLimiter(rate.Limit(jobsPerSecond), burst)
	}
}
