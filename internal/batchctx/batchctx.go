// Package batchctx carries per-batch identity through the context
// passed into job processing functions, so downstream logging can
// correlate work with the batch that dispatched it.
package batchctx

import (
	"context"
	"fmt"
	"time"
)

type key int

const batchKey key = 0

// BatchContext identifies the batch a job is executing under.
type BatchContext struct {
	BatchID   string
	StartTime time.Time
}

// WithBatchContext attaches batch identity to ctx.
func WithBatchContext(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchKey, &BatchContext{
		BatchID:   batchID,
		StartTime: time.Now(),
	})
}

// GetBatchContext extracts batch identity from ctx, falling back to a
// placeholder when the job was not dispatched by the engine.
func GetBatchContext(ctx context.Context) *BatchContext {
	if bc, ok := ctx.Value(batchKey).(*BatchContext); ok {
		return bc
	}
	return &BatchContext{
		BatchID:   "unknown",
		StartTime: time.Now(),
	}
}

// BatchError wraps an error with the batch it occurred under
type BatchError struct {
	BatchID string
	Err     error
}

// Error implements the error interface
func (e *BatchError) Error() string {
	return fmt.Sprintf("[%s] %v", e.BatchID, e.Err)
}

// Unwrap returns the underlying error
func (e *BatchError) Unwrap() error {
	return e.Err
}

// NewBatchError creates a new BatchError from context
func NewBatchError(ctx context.Context, err error) error {
	bc := GetBatchContext(ctx)
	return &BatchError{
		BatchID: bc.BatchID,
		Err:     err,
	}
}
