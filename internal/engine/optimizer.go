// internal/engine/optimizer.go
package engine

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Complexity describes the expected cost of individual jobs in an
// upcoming workload.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// loadProfile is a base (batchSize, concurrency) pair for a job-count
// bracket.
type loadProfile struct {
	maxJobs     int
	batchSize   int
	concurrency int
}

// loadProfiles is evaluated in order; the last entry is the open-ended
// bracket for large workloads.
var loadProfiles = []loadProfile{
	{maxJobs: 100, batchSize: 10, concurrency: 5},
	{maxJobs: 500, batchSize: 25, concurrency: 8},
	{maxJobs: 1000, batchSize: 50, concurrency: 12},
	{maxJobs: math.MaxInt, batchSize: 100, concurrency: 20},
}

// Tuner pre-configures the processor's batch size and concurrency for
// an expected workload, and derives qualitative advice from the
// accumulated batch history afterwards.
type Tuner[T, R any] struct {
	processor *Processor[T, R]
	actions   []string
}

// NewTuner creates a Tuner bound to the given processor.
func NewTuner[T, R any](p *Processor[T, R]) *Tuner[T, R] {
	return &Tuner[T, R]{processor: p}
}

// OptimizeForLoad selects a base size/concurrency pair for the job
// count bracket, scales it by the complexity multiplier, and writes
// the results into the processor's tuning state as the new current
// values.
func (t *Tuner[T, R]) OptimizeForLoad(expectedJobs int, complexity Complexity) {
	var profile loadProfile
	for _, p := range loadProfiles {
		if expectedJobs <= p.maxJobs {
			profile = p
			break
		}
	}

	sizeMul, concMul := 1.0, 1.0
	switch complexity {
	case ComplexityLow:
		sizeMul, concMul = 1.5, 1.3
	case ComplexityHigh:
		sizeMul, concMul = 0.7, 0.8
	}

	size := int(math.Floor(float64(profile.batchSize) * sizeMul))
	concurrency := int(math.Floor(float64(profile.concurrency) * concMul))

	t.processor.BatchSizeOptimizer().SetSize(size)
	t.processor.ConcurrencyManager().SetLevel(concurrency)

	action := fmt.Sprintf("preconfigured for %d %s-complexity jobs: batch_size=%d concurrency=%d",
		expectedJobs, complexity, size, concurrency)
	t.recordAction(action)

	log.Info().
		Int("expected_jobs", expectedJobs).
		Str("complexity", string(complexity)).
		Int("batch_size", size).
		Int("concurrency", concurrency).
		Msg("Tuned for expected load")
}

// maxRecentActions bounds the action tail returned by Recommendations.
const maxRecentActions = 5

// Recommendations is qualitative tuning advice derived from history.
type Recommendations struct {
	Advice        []string `json:"advice"`
	RecentActions []string `json:"recent_actions"`
}

// Recommendations inspects the aggregate of all historical batch
// results and emits advice plus the last tuning actions applied.
func (t *Tuner[T, R]) Recommendations() Recommendations {
	stats := t.processor.PerformanceStats()

	var advice []string
	if stats.TotalBatches == 0 {
		advice = append(advice, "no batch history yet; run a batch to collect tuning data")
	} else {
		if stats.AverageThroughput < 200 {
			advice = append(advice, "increase concurrency: average throughput is below 200 jobs/s")
		}
		if stats.AverageCacheHitRate < 30 {
			advice = append(advice, "optimize caching: cache hit rate is below 30%")
		}
		if successRate(stats.TotalSuccessful, stats.TotalJobs) < 95 {
			advice = append(advice, "improve error handling: job success rate is below 95%")
		}
		if len(advice) == 0 {
			advice = append(advice, "performance is within targets; no tuning changes recommended")
		}
	}

	recent := t.actions
	if len(recent) > maxRecentActions {
		recent = recent[len(recent)-maxRecentActions:]
	}

	return Recommendations{
		Advice:        advice,
		RecentActions: append([]string(nil), recent...),
	}
}

func (t *Tuner[T, R]) recordAction(action string) {
	t.actions = append(t.actions, action)
	// Keep a modest tail; only the last few are ever reported.
	if len(t.actions) > 50 {
		t.actions = t.actions[len(t.actions)-50:]
	}
}
