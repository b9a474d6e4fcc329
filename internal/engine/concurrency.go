// internal/engine/concurrency.go
package engine

import (
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/batch/internal/monitor"
)

// cooldownChunks is how many chunks an adjustment is suppressed for
// after any concurrency change. Hysteresis prevents oscillation from
// noisy per-chunk measurements.
const cooldownChunks = 5

// snapshotHistorySize bounds the rolling snapshot history.
const snapshotHistorySize = 20

// ConcurrencyManager holds the current worker-concurrency level and
// adjusts it from performance snapshots. State is mutated only by the
// processor's sequential chunk loop, so no locking is required.
type ConcurrencyManager struct {
	level          int
	min            int
	max            int
	targetMemoryMB float64
	cooldown       int
	history        []monitor.Snapshot
}

// NewConcurrencyManager creates a manager starting at the given level,
// clamped to [min, max].
func NewConcurrencyManager(initial, min, max int, targetMemoryMB float64) *ConcurrencyManager {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	m := &ConcurrencyManager{
		min:            min,
		max:            max,
		targetMemoryMB: targetMemoryMB,
	}
	m.SetLevel(initial)
	return m
}

// Level returns the current concurrency level.
func (m *ConcurrencyManager) Level() int {
	return m.level
}

// SetLevel overrides the current level, clamped to the configured bounds.
func (m *ConcurrencyManager) SetLevel(n int) {
	m.level = clamp(n, m.min, m.max)
}

// ShouldAdjust reports whether an adjustment may be applied this chunk.
// While a cooldown is active it returns false and decrements the counter.
func (m *ConcurrencyManager) ShouldAdjust() bool {
	if m.cooldown > 0 {
		m.cooldown--
		return false
	}
	return true
}

// Adjust applies the adjustment decision table to the given snapshot
// and returns the (possibly unchanged) level. Evaluated in order, first
// match wins:
//
//  1. memory >= 90% of target: decrease by 2
//  2. CPU >= 85%: decrease by 1
//  3. memory < 70% of target and CPU < 60% and below max: increase by 1
//  4. otherwise: no change
//
// Any change starts a cooldown of cooldownChunks chunks.
func (m *ConcurrencyManager) Adjust(snap monitor.Snapshot) int {
	m.history = append(m.history, snap)
	if len(m.history) > snapshotHistorySize {
		m.history = m.history[len(m.history)-snapshotHistorySize:]
	}

	memRatio := snap.MemoryMB / m.targetMemoryMB
	old := m.level

	switch {
	case memRatio >= 0.9:
		m.level = clamp(m.level-2, m.min, m.max)
	case snap.CPUPercent >= 85:
		m.level = clamp(m.level-1, m.min, m.max)
	case memRatio < 0.7 && snap.CPUPercent < 60 && m.level < m.max:
		m.level = clamp(m.level+1, m.min, m.max)
	}

	if m.level != old {
		m.cooldown = cooldownChunks
		log.Debug().
			Int("from", old).
			Int("to", m.level).
			Float64("memory_mb", snap.MemoryMB).
			Float64("cpu_pct", snap.CPUPercent).
			Msg("Concurrency adjusted")
	}

	return m.level
}

// OptimalConcurrency calculates a starting concurrency level based on
// CPU count and available memory, for callers with no better estimate.
func OptimalConcurrency() int {
	numCPU := runtime.NumCPU()

	// For I/O bound jobs, use 2-4x CPU count
	optimal := numCPU * 3

	// Cap based on available memory
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	availMB := (ms.Sys - ms.Alloc) / 1024 / 1024

	// Assume ~20MB headroom per concurrently executing job
	maxByMemory := int(availMB / 20)

	if optimal < numCPU {
		optimal = numCPU
	}
	if optimal > 50 {
		optimal = 50
	}

	if maxByMemory > 0 && maxByMemory < optimal {
		return maxByMemory
	}
	return optimal
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
