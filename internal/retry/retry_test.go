package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type permanentErr struct{}

func (permanentErr) Error() string   { return "permanent failure" }
func (permanentErr) Permanent() bool { return true }

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("WithRetry failed: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		attempts++
		return permanentErr{}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry of permanent errors)", attempts)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := WithRetry(context.Background(), fastConfig(), func() error {
		attempts++
		return boom
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped original error, got %v", err)
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig()
	cfg.InitialBackoff = time.Second

	err := WithRetry(ctx, cfg, func() error {
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateBackoffCapped(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second, Multiplier: 2.0}

	if got := calculateBackoff(0, cfg); got != time.Second {
		t.Errorf("attempt 0 backoff = %v, want 1s", got)
	}
	if got := calculateBackoff(1, cfg); got != 2*time.Second {
		t.Errorf("attempt 1 backoff = %v, want 2s", got)
	}
	if got := calculateBackoff(10, cfg); got != 4*time.Second {
		t.Errorf("attempt 10 backoff = %v, want capped at 4s", got)
	}
}
