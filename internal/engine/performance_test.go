package engine

import (
	"context"
	"testing"

	"github.com/law-makers/batch/internal/cache"
	"github.com/law-makers/batch/pkg/models"
)

// BenchmarkProcessJobs measures end-to-end batch throughput with
// instant jobs, which isolates the engine's own overhead.
func BenchmarkProcessJobs(b *testing.B) {
	p := NewProcessor[int, string](testOptions())
	jobs := makeJobs(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result := p.ProcessJobs(context.Background(), jobs, echoFn, nil)
		if result.FailedJobs != 0 {
			b.Fatalf("unexpected failures: %d", result.FailedJobs)
		}
	}
}

// BenchmarkProcessJobsWithCache measures the cache-hit fast path.
func BenchmarkProcessJobsWithCache(b *testing.B) {
	c := cache.NewMemoryCache(2000)
	defer c.Close()

	opts := testOptions()
	opts.Cache = c
	p := NewProcessor[int, string](opts)
	jobs := makeJobs(1000)

	// Warm the cache so all subsequent runs hit
	p.ProcessJobs(context.Background(), jobs, echoFn, nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		p.ProcessJobs(context.Background(), jobs, echoFn, nil)
	}
}

// BenchmarkProcessSingleJob measures per-job dispatch overhead.
func BenchmarkProcessSingleJob(b *testing.B) {
	p := NewProcessor[int, string](testOptions())
	job := models.Job[int]{ID: "bench", Payload: 1}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		p.processSingleJob(context.Background(), &job, echoFn)
	}
}
