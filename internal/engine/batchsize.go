// internal/engine/batchsize.go
package engine

import (
	"math"

	"github.com/rs/zerolog/log"
)

// throughputWindowSize bounds the rolling throughput history.
const throughputWindowSize = 10

// minSamplesToOptimize is how many throughput samples are needed
// before the optimizer has enough signal to act.
const minSamplesToOptimize = 3

// BatchSizeOptimizer holds the current chunk size and adjusts it from
// a rolling throughput window and the current memory reading. Like the
// ConcurrencyManager it is only ever touched by the sequential chunk
// loop and needs no locking.
type BatchSizeOptimizer struct {
	size           int
	min            int
	max            int
	targetMemoryMB float64
	window         []float64
}

// NewBatchSizeOptimizer creates an optimizer starting at the given
// size, clamped to [min, max].
func NewBatchSizeOptimizer(initial, min, max int, targetMemoryMB float64) *BatchSizeOptimizer {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	o := &BatchSizeOptimizer{
		min:            min,
		max:            max,
		targetMemoryMB: targetMemoryMB,
	}
	o.SetSize(initial)
	return o
}

// Size returns the current batch size.
func (o *BatchSizeOptimizer) Size() int {
	return o.size
}

// SetSize overrides the current size, clamped to the configured bounds.
func (o *BatchSizeOptimizer) SetSize(n int) {
	o.size = clamp(n, o.min, o.max)
}

// Optimize records the throughput sample and returns the size to use
// for the next chunk. With fewer than minSamplesToOptimize samples the
// current size is returned unchanged.
func (o *BatchSizeOptimizer) Optimize(throughput, memoryMB float64) int {
	o.window = append(o.window, throughput)
	if len(o.window) > throughputWindowSize {
		o.window = o.window[len(o.window)-throughputWindowSize:]
	}

	if len(o.window) < minSamplesToOptimize {
		return o.size
	}

	recent := o.window[len(o.window)-3:]
	older := o.window[:len(o.window)-3]

	recentAvg := mean(recent)
	olderAvg := mean(older)

	memRatio := memoryMB / o.targetMemoryMB
	old := o.size

	switch {
	case memRatio > 0.8:
		o.size = clamp(int(math.Floor(float64(o.size)*0.8)), o.min, o.max)
	case recentAvg > olderAvg*1.1 && memRatio < 0.5:
		o.size = clamp(int(math.Floor(float64(o.size)*1.2)), o.min, o.max)
	case recentAvg < olderAvg*0.8:
		o.size = clamp(int(math.Floor(float64(o.size)*0.9)), o.min, o.max)
	}

	if o.size != old {
		log.Debug().
			Int("from", old).
			Int("to", o.size).
			Float64("recent_avg", recentAvg).
			Float64("older_avg", olderAvg).
			Float64("memory_mb", memoryMB).
			Msg("Batch size adjusted")
	}

	return o.size
}

// mean averages samples with a minimum divisor of 1.
func mean(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s
	}
	n := len(samples)
	if n < 1 {
		n = 1
	}
	return sum / float64(n)
}
