package engine

import (
	"context"

	"github.com/law-makers/batch/pkg/models"
)

// ProcessFunc is the caller-supplied transform for a single job. It is
// invoked exactly once per job attempt; the engine never re-invokes it.
// The context carries batch identity (see batchctx) and any deadline
// the caller wants enforced must be implemented inside the function
// and surfaced as a normal error.
type ProcessFunc[T, R any] func(ctx context.Context, job models.Job[T]) (R, error)

// ProgressFunc receives progress once per completed chunk.
type ProgressFunc func(p models.Progress)
