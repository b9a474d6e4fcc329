// Package metrics defines the sink the engine reports into and a
// small in-memory collector for tests and the CLI.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the batch processor.
const (
	BatchProcessingTime = "batch_processing_time"
	BatchJobsPerSecond  = "batch_jobs_per_second"
	BatchSuccessRate    = "batch_success_rate"
	BatchProcessed      = "batch_processed"
)

// Sink receives named counters, gauges and timers from the engine.
// Implementations must be safe for concurrent use.
type Sink interface {
	// IncrCounter adds delta to the named counter.
	IncrCounter(name string, delta int64)

	// SetGauge records the current value of the named gauge.
	SetGauge(name string, value float64)

	// RecordTimer records one observation of the named timer.
	RecordTimer(name string, d time.Duration)
}

// NopSink discards all metrics.
type NopSink struct{}

func (NopSink) IncrCounter(string, int64)         {}
func (NopSink) SetGauge(string, float64)          {}
func (NopSink) RecordTimer(string, time.Duration) {}

// Collector is an in-memory Sink. Timers keep a running total and
// count so an average can be derived.
type Collector struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timerSum map[string]time.Duration
	timerN   map[string]int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timerSum: make(map[string]time.Duration),
		timerN:   make(map[string]int64),
	}
}

func (c *Collector) IncrCounter(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

func (c *Collector) SetGauge(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

func (c *Collector) RecordTimer(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timerSum[name] += d
	c.timerN[name]++
}

// Counter returns the current value of the named counter.
func (c *Collector) Counter(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Gauge returns the last recorded value of the named gauge.
func (c *Collector) Gauge(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gauges[name]
}

// TimerAverage returns the mean observation of the named timer, or
// zero when nothing has been recorded.
func (c *Collector) TimerAverage(name string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.timerN[name]
	if n == 0 {
		return 0
	}
	return c.timerSum[name] / time.Duration(n)
}
