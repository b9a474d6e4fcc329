// Package monitor samples wall-clock time, process memory and CPU
// utilization on demand. Readings are best-effort: when the OS query
// fails the last known good value is returned instead of an error.
package monitor

import (
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

// Snapshot is an immutable point-in-time performance reading.
type Snapshot struct {
	Elapsed        time.Duration `json:"elapsed"`
	MemoryMB       float64       `json:"memory_mb"`
	PeakMemoryMB   float64       `json:"peak_memory_mb"`
	MemoryGrowthMB float64       `json:"memory_growth_mb"`
	CPUPercent     float64       `json:"cpu_percent"`
}

// Monitor produces Snapshots. The only mutable state it holds is the
// running peak memory and the previous CPU-time reading used to derive
// a utilization percentage between snapshots.
type Monitor struct {
	startTime   time.Time
	startMemMB  float64
	peakMemMB   float64
	lastCPUTime time.Duration
	lastCPUWall time.Time
	lastCPUPct  float64
}

// New creates a Monitor. Call Start before taking snapshots.
func New() *Monitor {
	return &Monitor{}
}

// Start captures the baseline time and memory reading.
func (m *Monitor) Start() {
	now := time.Now()
	mem := readMemoryMB()

	m.startTime = now
	m.startMemMB = mem
	m.peakMemMB = mem
	m.lastCPUWall = now
	if cpuTime, ok := readCPUTime(); ok {
		m.lastCPUTime = cpuTime
	}

	log.Debug().
		Float64("memory_mb", mem).
		Msg("Performance monitor started")
}

// Snapshot returns the current reading and updates the running peak.
func (m *Monitor) Snapshot() Snapshot {
	now := time.Now()
	mem := readMemoryMB()
	if mem > m.peakMemMB {
		m.peakMemMB = mem
	}

	return Snapshot{
		Elapsed:        now.Sub(m.startTime),
		MemoryMB:       mem,
		PeakMemoryMB:   m.peakMemMB,
		MemoryGrowthMB: mem - m.startMemMB,
		CPUPercent:     m.cpuPercent(now),
	}
}

// PeakMemoryMB returns the highest memory reading observed so far.
func (m *Monitor) PeakMemoryMB() float64 {
	return m.peakMemMB
}

// cpuPercent derives process CPU utilization from the CPU-time delta
// since the previous snapshot, normalised by core count. When the OS
// query fails the last good percentage is reused.
func (m *Monitor) cpuPercent(now time.Time) float64 {
	cpuTime, ok := readCPUTime()
	if !ok {
		return m.lastCPUPct
	}

	wall := now.Sub(m.lastCPUWall)
	if wall <= 0 {
		return m.lastCPUPct
	}

	busy := cpuTime - m.lastCPUTime
	pct := float64(busy) / (float64(wall) * float64(runtime.NumCPU())) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	m.lastCPUTime = cpuTime
	m.lastCPUWall = now
	m.lastCPUPct = pct
	return pct
}

// readMemoryMB returns the current heap allocation in megabytes.
func readMemoryMB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.Alloc) / 1024 / 1024
}
