// internal/engine/processor.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/law-makers/batch/internal/batchctx"
	"github.com/law-makers/batch/internal/cache"
	"github.com/law-makers/batch/internal/metrics"
	"github.com/law-makers/batch/internal/monitor"
	"github.com/law-makers/batch/internal/ratelimit"
	"github.com/law-makers/batch/pkg/models"
)

// ProcessorOptions configures a Processor. Zero values fall back to
// the documented defaults.
type ProcessorOptions struct {
	BatchSize      int     // Initial chunk size (default 50)
	MinBatchSize   int     // Default 5
	MaxBatchSize   int     // Default 500
	Concurrency    int     // Initial worker concurrency (default OptimalConcurrency)
	MinConcurrency int     // Default 1
	MaxConcurrency int     // Default 50
	TargetMemoryMB float64 // Memory budget for the tuning loop (default 2048)

	Cache    cache.Cache           // Optional job-result cache
	CacheTTL time.Duration         // TTL for cached results (default 1h)
	Limiter  ratelimit.RateLimiter // Optional per-kind dispatch throttle
	Metrics  metrics.Sink          // Optional metrics sink
}

// Processor orchestrates chunked, concurrency-bounded execution of a
// job list with per-chunk feedback tuning. T is the opaque job payload
// type, R the result type produced by the process function.
type Processor[T, R any] struct {
	concurrency *ConcurrencyManager
	batchSize   *BatchSizeOptimizer
	cache       cache.Cache
	cacheTTL    time.Duration
	limiter     ratelimit.RateLimiter
	metrics     metrics.Sink

	// history is appended by ProcessJobs and read by the query
	// surface, possibly from another goroutine.
	mu      sync.Mutex
	history []models.BatchResult
}

// NewProcessor creates a Processor from options.
func NewProcessor[T, R any](opts ProcessorOptions) *Processor[T, R] {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MinBatchSize <= 0 {
		opts.MinBatchSize = 5
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 500
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = OptimalConcurrency()
	}
	if opts.MinConcurrency <= 0 {
		opts.MinConcurrency = 1
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 50
	}
	if opts.TargetMemoryMB <= 0 {
		opts.TargetMemoryMB = 2048
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NopSink{}
	}

	return &Processor[T, R]{
		concurrency: NewConcurrencyManager(opts.Concurrency, opts.MinConcurrency, opts.MaxConcurrency, opts.TargetMemoryMB),
		batchSize:   NewBatchSizeOptimizer(opts.BatchSize, opts.MinBatchSize, opts.MaxBatchSize, opts.TargetMemoryMB),
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		limiter:     opts.Limiter,
		metrics:     opts.Metrics,
	}
}

// ConcurrencyManager exposes the tuning state for pre-configuration.
func (p *Processor[T, R]) ConcurrencyManager() *ConcurrencyManager {
	return p.concurrency
}

// BatchSizeOptimizer exposes the tuning state for pre-configuration.
func (p *Processor[T, R]) BatchSizeOptimizer() *BatchSizeOptimizer {
	return p.batchSize
}

// batchState is the per-batch accumulator threaded through the chunk
// loop. Keeping it explicit (rather than process-wide) means a failed
// batch can still report whatever completed before the failure.
type batchState struct {
	id          string
	submittedAt time.Time
	total       int
	processed   int
	succeeded   int
	failed      int
	cacheHits   int
	errors      []string
}

func (s *batchState) record(r models.JobResult[any]) {
	s.processed++
	if r.Success {
		s.succeeded++
	} else {
		s.failed++
		if len(s.errors) < models.MaxErrorSummaries {
			s.errors = append(s.errors, fmt.Sprintf("%s: %s", r.JobID, r.Error))
		}
	}
	if r.FromCache {
		s.cacheHits++
	}
}

// ProcessJobs executes the job list and returns a BatchResult. It
// never panics outward: per-job failures become failed JobResults and
// anything escaping the chunk loop itself is recovered into a result
// with rating "failed". Results within a chunk complete in arbitrary
// order; chunks are strictly sequential so the tuning feedback loop
// stays well-defined.
func (p *Processor[T, R]) ProcessJobs(ctx context.Context, jobs []models.Job[T], fn ProcessFunc[T, R], progress ProgressFunc) (result models.BatchResult) {
	if ctx == nil {
		ctx = context.Background()
	}

	submittedAt := time.Now()
	state := &batchState{
		id:          models.BatchID(submittedAt, len(jobs)),
		submittedAt: submittedAt,
		total:       len(jobs),
	}

	mon := monitor.New()
	mon.Start()

	// Batch-level failures degrade the result instead of propagating.
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("batch_id", state.id).
				Interface("panic", r).
				Msg("Batch processing failed")
			result = p.finalize(state, mon, models.RatingFailed,
				append(state.errors, fmt.Sprintf("batch failure: %v", r)))
			p.report(result)
		}
	}()

	log.Info().
		Str("batch_id", state.id).
		Int("jobs", len(jobs)).
		Int("batch_size", p.batchSize.Size()).
		Int("concurrency", p.concurrency.Level()).
		Msg("Batch started")

	if len(jobs) == 0 {
		result = p.finalize(state, mon, "", nil)
		p.report(result)
		return result
	}

	if fn == nil {
		result = p.finalize(state, mon, models.RatingFailed, []string{ErrNoProcessFunc.Error()})
		p.report(result)
		return result
	}

	ctx = batchctx.WithBatchContext(ctx, state.id)

	for start := 0; start < len(jobs); {
		if err := ctx.Err(); err != nil {
			p.failRemaining(state, jobs[start:], err)
			break
		}

		size := p.batchSize.Size()
		end := start + size
		if end > len(jobs) {
			end = len(jobs)
		}
		chunk := jobs[start:end]

		for _, r := range p.processChunk(ctx, chunk, fn) {
			state.record(r)
		}

		snap := mon.Snapshot()
		if p.concurrency.ShouldAdjust() {
			p.concurrency.Adjust(snap)
		}

		elapsed := time.Since(state.submittedAt).Seconds()
		throughput := 0.0
		if elapsed > 0 {
			throughput = float64(state.processed) / elapsed
		}
		p.batchSize.Optimize(throughput, snap.MemoryMB)

		log.Debug().
			Str("batch_id", state.id).
			Int("processed", state.processed).
			Int("total", state.total).
			Float64("throughput", throughput).
			Float64("memory_mb", snap.MemoryMB).
			Msg("Chunk complete")

		if progress != nil {
			progress(models.Progress{
				BatchID:     state.id,
				Processed:   state.processed,
				Total:       state.total,
				SuccessRate: successRate(state.succeeded, state.processed),
				Concurrency: p.concurrency.Level(),
				BatchSize:   p.batchSize.Size(),
			})
		}

		start = end
	}

	result = p.finalize(state, mon, "", state.errors)
	p.report(result)

	log.Info().
		Str("batch_id", state.id).
		Int("successful", result.SuccessfulJobs).
		Int("failed", result.FailedJobs).
		Float64("throughput", result.Throughput).
		Str("rating", string(result.Rating)).
		Msg("Batch complete")

	return result
}

// processChunk runs one chunk with at most the manager's current level
// of jobs in flight, and blocks until every job has reported. Outcomes
// are always collected; a failing job never short-circuits its chunk.
func (p *Processor[T, R]) processChunk(ctx context.Context, chunk []models.Job[T], fn ProcessFunc[T, R]) []models.JobResult[any] {
	sem := semaphore.NewWeighted(int64(p.concurrency.Level()))
	results := make(chan models.JobResult[any], len(chunk))

	var wg sync.WaitGroup
	for i := range chunk {
		wg.Add(1)
		go func(job *models.Job[T]) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results <- models.JobResult[any]{
					JobID:   job.ID,
					Success: false,
					Error:   NewEngineError(ErrCodeCancelled, "job not started", err).Error(),
				}
				return
			}
			defer sem.Release(1)

			results <- p.processSingleJob(ctx, job, fn)
		}(&chunk[i])
	}

	wg.Wait()
	close(results)

	collected := make([]models.JobResult[any], 0, len(chunk))
	for r := range results {
		collected = append(collected, r)
	}
	return collected
}

// processSingleJob executes one job attempt: cache lookup, optional
// rate-limit wait, then the process function. Errors and panics are
// converted into a failed JobResult, never propagated.
func (p *Processor[T, R]) processSingleJob(ctx context.Context, job *models.Job[T], fn ProcessFunc[T, R]) (res models.JobResult[any]) {
	job.StartedAt = time.Now()

	defer func() {
		if r := recover(); r != nil {
			job.RetryCount++
			job.LastError = fmt.Sprintf("panic: %v", r)
			job.CompletedAt = time.Now()
			job.Duration = job.CompletedAt.Sub(job.StartedAt)
			res = models.JobResult[any]{
				JobID:    job.ID,
				Success:  false,
				Error:    job.LastError,
				Duration: job.Duration,
			}
			log.Warn().
				Str("job_id", job.ID).
				Interface("panic", r).
				Msg("Job panicked")
		}
	}()

	var key string
	if p.cache != nil {
		key = cache.Key(job.ID, job.Payload)
		if v, ok := p.cache.Get(key); ok {
			if value, ok := v.(R); ok {
				job.CompletedAt = time.Now()
				job.Duration = job.CompletedAt.Sub(job.StartedAt)
				return models.JobResult[any]{
					JobID:     job.ID,
					Success:   true,
					Value:     value,
					FromCache: true,
					Duration:  job.Duration,
				}
			}
			// Stored value no longer matches the result type; treat
			// as a miss and let the fresh result replace it.
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, job.Kind); err != nil {
			job.RetryCount++
			job.LastError = err.Error()
			return models.JobResult[any]{
				JobID:   job.ID,
				Success: false,
				Error:   NewEngineError(ErrCodeRateLimit, "rate limit wait failed", err).Error(),
			}
		}
	}

	value, err := fn(ctx, *job)
	job.CompletedAt = time.Now()
	job.Duration = job.CompletedAt.Sub(job.StartedAt)

	if err != nil {
		job.RetryCount++
		job.LastError = err.Error()
		return models.JobResult[any]{
			JobID:    job.ID,
			Success:  false,
			Error:    err.Error(),
			Duration: job.Duration,
		}
	}
	job.LastError = ""

	if p.cache != nil {
		if err := p.cache.Set(key, value, p.cacheTTL); err != nil {
			log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to cache result")
		}
	}

	return models.JobResult[any]{
		JobID:    job.ID,
		Success:  true,
		Value:    value,
		Duration: job.Duration,
	}
}

// failRemaining marks jobs that never started as failed so the batch
// invariant successful+failed == total holds under cancellation.
func (p *Processor[T, R]) failRemaining(state *batchState, remaining []models.Job[T], cause error) {
	msg := NewEngineError(ErrCodeCancelled, "batch cancelled before job started", cause).Error()
	for i := range remaining {
		remaining[i].LastError = msg
		state.record(models.JobResult[any]{
			JobID:   remaining[i].ID,
			Success: false,
			Error:   msg,
		})
	}
}

// finalize assembles the immutable BatchResult. An empty rating means
// classify from throughput.
func (p *Processor[T, R]) finalize(state *batchState, mon *monitor.Monitor, rating models.Rating, errs []string) models.BatchResult {
	duration := time.Since(state.submittedAt)

	throughput := 0.0
	if secs := duration.Seconds(); secs > 0 {
		throughput = float64(state.processed) / secs
	}

	if rating == "" {
		rating = models.ClassifyThroughput(throughput)
	}

	cacheHitRate := 0.0
	if state.processed > 0 {
		cacheHitRate = float64(state.cacheHits) / float64(state.processed) * 100
	}

	if len(errs) > models.MaxErrorSummaries {
		errs = errs[:models.MaxErrorSummaries]
	}

	return models.BatchResult{
		BatchID:        state.id,
		TotalJobs:      state.total,
		SuccessfulJobs: state.succeeded,
		FailedJobs:     state.failed + (state.total - state.processed),
		Duration:       duration,
		Throughput:     throughput,
		PeakMemoryMB:   mon.PeakMemoryMB(),
		BatchSize:      p.batchSize.Size(),
		Concurrency:    p.concurrency.Level(),
		CacheHitRate:   cacheHitRate,
		Rating:         rating,
		Errors:         errs,
		CompletedAt:    time.Now(),
	}
}

// report appends to history and emits metrics.
func (p *Processor[T, R]) report(result models.BatchResult) {
	p.mu.Lock()
	p.history = append(p.history, result)
	p.mu.Unlock()

	p.metrics.RecordTimer(metrics.BatchProcessingTime, result.Duration)
	p.metrics.SetGauge(metrics.BatchJobsPerSecond, result.Throughput)
	p.metrics.SetGauge(metrics.BatchSuccessRate, successRate(result.SuccessfulJobs, result.TotalJobs))
	p.metrics.IncrCounter(metrics.BatchProcessed, int64(result.TotalJobs))
}

// History returns a copy of all recorded batch results.
func (p *Processor[T, R]) History() []models.BatchResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.BatchResult, len(p.history))
	copy(out, p.history)
	return out
}

// Stats aggregates all historical batch results.
type Stats struct {
	TotalBatches        int           `json:"total_batches"`
	TotalJobs           int           `json:"total_jobs"`
	TotalSuccessful     int           `json:"total_successful"`
	TotalFailed         int           `json:"total_failed"`
	AverageThroughput   float64       `json:"average_throughput"`
	AverageCacheHitRate float64       `json:"average_cache_hit_rate"`
	MostCommonRating    models.Rating `json:"most_common_rating"`
	TargetAchieved      bool          `json:"target_achieved"`
}

// targetThroughput is the design target the engine is tuned for.
const targetThroughput = 500.0

// PerformanceStats aggregates across all historical BatchResults.
func (p *Processor[T, R]) PerformanceStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{TotalBatches: len(p.history)}
	if len(p.history) == 0 {
		return stats
	}

	ratings := make(map[models.Rating]int)
	var throughputSum, hitRateSum float64
	for _, r := range p.history {
		stats.TotalJobs += r.TotalJobs
		stats.TotalSuccessful += r.SuccessfulJobs
		stats.TotalFailed += r.FailedJobs
		throughputSum += r.Throughput
		hitRateSum += r.CacheHitRate
		ratings[r.Rating]++
	}

	stats.AverageThroughput = throughputSum / float64(len(p.history))
	stats.AverageCacheHitRate = hitRateSum / float64(len(p.history))
	stats.TargetAchieved = stats.AverageThroughput >= targetThroughput

	best := 0
	for rating, n := range ratings {
		if n > best {
			best = n
			stats.MostCommonRating = rating
		}
	}

	return stats
}

func successRate(succeeded, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(succeeded) / float64(total) * 100
}
