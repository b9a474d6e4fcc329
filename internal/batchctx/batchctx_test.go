package batchctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBatchContextRoundTrip(t *testing.T) {
	ctx := WithBatchContext(context.Background(), "batch_123_10")

	bc := GetBatchContext(ctx)
	if bc.BatchID != "batch_123_10" {
		t.Errorf("BatchID = %q, want batch_123_10", bc.BatchID)
	}
	if bc.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}
}

func TestGetBatchContextFallback(t *testing.T) {
	bc := GetBatchContext(context.Background())
	if bc.BatchID != "unknown" {
		t.Errorf("BatchID = %q, want unknown", bc.BatchID)
	}
}

func TestBatchErrorWrapsCause(t *testing.T) {
	ctx := WithBatchContext(context.Background(), "batch_9_1")
	cause := errors.New("downstream unavailable")

	err := NewBatchError(ctx, cause)
	if !strings.Contains(err.Error(), "batch_9_1") {
		t.Errorf("error %q should mention the batch id", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}
