package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()

	c.IncrCounter(BatchProcessed, 100)
	c.IncrCounter(BatchProcessed, 50)

	if got := c.Counter(BatchProcessed); got != 150 {
		t.Errorf("Counter() = %d, want 150", got)
	}
}

func TestCollectorGauges(t *testing.T) {
	c := NewCollector()

	c.SetGauge(BatchJobsPerSecond, 420.5)
	c.SetGauge(BatchJobsPerSecond, 610.0)

	if got := c.Gauge(BatchJobsPerSecond); got != 610.0 {
		t.Errorf("Gauge() = %v, want last written 610.0", got)
	}
}

func TestCollectorTimerAverage(t *testing.T) {
	c := NewCollector()

	c.RecordTimer(BatchProcessingTime, 100*time.Millisecond)
	c.RecordTimer(BatchProcessingTime, 300*time.Millisecond)

	if got := c.TimerAverage(BatchProcessingTime); got != 200*time.Millisecond {
		t.Errorf("TimerAverage() = %v, want 200ms", got)
	}
	if got := c.TimerAverage("unknown"); got != 0 {
		t.Errorf("TimerAverage(unknown) = %v, want 0", got)
	}
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.IncrCounter(BatchProcessed, 1)
				c.SetGauge(BatchSuccessRate, float64(i))
				c.RecordTimer(BatchProcessingTime, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := c.Counter(BatchProcessed); got != 1000 {
		t.Errorf("Counter() = %d, want 1000", got)
	}
}
