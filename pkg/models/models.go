package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job represents one unit of caller work submitted to the engine.
// The payload is opaque: the engine transports it but never inspects it.
//
// Timestamps, the retry counter and LastError are owned by the engine
// while the job is being processed; callers must not mutate a Job after
// submission until its JobResult has been produced.
type Job[T any] struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind,omitempty"`
	Payload     T             `json:"payload"`
	Priority    int           `json:"priority,omitempty"`
	RetryCount  int           `json:"retry_count"`
	MaxRetries  int           `json:"max_retries"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   time.Time     `json:"started_at,omitzero"`
	CompletedAt time.Time     `json:"completed_at,omitzero"`
	LastError   string        `json:"last_error,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// NewJob creates a Job with a generated ID and creation timestamp.
func NewJob[T any](payload T) Job[T] {
	return Job[T]{
		ID:         uuid.NewString(),
		Payload:    payload,
		MaxRetries: 3,
		CreatedAt:  time.Now(),
	}
}

// Retryable reports whether the caller may resubmit this job.
// The engine itself never auto-retries; resubmission is a caller decision.
func (j Job[T]) Retryable() bool {
	return j.RetryCount < j.MaxRetries
}

// JobResult is the per-job outcome, produced exactly once per attempt.
// A failed processFn is captured here rather than propagated.
type JobResult[R any] struct {
	JobID     string        `json:"job_id"`
	Success   bool          `json:"success"`
	Value     R             `json:"value,omitempty"`
	Error     string        `json:"error,omitempty"`
	FromCache bool          `json:"from_cache"`
	Duration  time.Duration `json:"duration"`
}

// Rating is a qualitative label derived from throughput thresholds.
type Rating string

const (
	RatingExcellent  Rating = "excellent"
	RatingGood       Rating = "good"
	RatingAcceptable Rating = "acceptable"
	RatingPoor       Rating = "poor"
	RatingCritical   Rating = "critical"
	RatingFailed     Rating = "failed"
)

// ClassifyThroughput maps jobs/second onto a Rating.
// Thresholds encode the design target of sustaining 500 jobs/second
// (1000 jobs in under 2 seconds).
func ClassifyThroughput(jobsPerSecond float64) Rating {
	switch {
	case jobsPerSecond >= 500:
		return RatingExcellent
	case jobsPerSecond >= 300:
		return RatingGood
	case jobsPerSecond >= 150:
		return RatingAcceptable
	case jobsPerSecond >= 50:
		return RatingPoor
	default:
		return RatingCritical
	}
}

// MaxErrorSummaries bounds BatchResult.Errors.
const MaxErrorSummaries = 10

// BatchResult summarises one call to the batch entry point.
// Immutable once created. Errors holds at most the first
// MaxErrorSummaries per-job error summaries to bound response size.
type BatchResult struct {
	BatchID        string        `json:"batch_id"`
	TotalJobs      int           `json:"total_jobs"`
	SuccessfulJobs int           `json:"successful_jobs"`
	FailedJobs     int           `json:"failed_jobs"`
	Duration       time.Duration `json:"duration"`
	Throughput     float64       `json:"throughput"`
	PeakMemoryMB   float64       `json:"peak_memory_mb"`
	BatchSize      int           `json:"batch_size"`
	Concurrency    int           `json:"concurrency"`
	CacheHitRate   float64       `json:"cache_hit_rate"`
	Rating         Rating        `json:"rating"`
	Errors         []string      `json:"errors,omitempty"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// BatchID derives the batch identifier from submission time and job count.
func BatchID(submittedAt time.Time, jobCount int) string {
	return fmt.Sprintf("batch_%d_%d", submittedAt.Unix(), jobCount)
}

// Progress is delivered to the optional progress callback once per chunk.
type Progress struct {
	BatchID     string  `json:"batch_id"`
	Processed   int     `json:"processed"`
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"`
	Concurrency int     `json:"concurrency"`
	BatchSize   int     `json:"batch_size"`
}
