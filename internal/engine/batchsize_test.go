package engine

import "testing"

const target = 2048.0

func TestOptimizeNoOpWithFewSamples(t *testing.T) {
	o := NewBatchSizeOptimizer(50, 5, 500, target)

	// Even under heavy memory pressure, two samples are not enough signal
	if got := o.Optimize(100, target*0.95); got != 50 {
		t.Errorf("Optimize() after 1 sample = %d, want 50", got)
	}
	if got := o.Optimize(100, target*0.95); got != 50 {
		t.Errorf("Optimize() after 2 samples = %d, want 50", got)
	}
}

func TestOptimizeShrinksOnMemoryPressure(t *testing.T) {
	o := NewBatchSizeOptimizer(100, 5, 500, target)

	o.Optimize(100, 100)
	o.Optimize(100, 100)
	// Third sample crosses the 80% memory threshold: 100*0.8 = 80
	if got := o.Optimize(100, target*0.85); got != 80 {
		t.Errorf("Optimize() = %d, want 80", got)
	}
}

func TestOptimizeGrowsOnImprovingThroughput(t *testing.T) {
	o := NewBatchSizeOptimizer(50, 5, 500, target)

	// Six samples: older window averages 100, recent averages 200
	for i := 0; i < 3; i++ {
		o.Optimize(100, 100)
	}
	o.Optimize(200, 100)
	o.Optimize(200, 100)
	before := o.Size()
	got := o.Optimize(200, 100)

	want := int(float64(before) * 1.2)
	if got != want {
		t.Errorf("Optimize() = %d, want %d (grown from %d)", got, want, before)
	}
}

func TestOptimizeShrinksOnDegradingThroughput(t *testing.T) {
	o := NewBatchSizeOptimizer(100, 5, 500, target)

	// Force stable older window, then a collapse. Memory is kept above
	// 50% of target so the growth rule cannot fire first.
	for i := 0; i < 5; i++ {
		o.Optimize(200, target*0.6)
	}
	o.Optimize(100, target*0.6)
	o.Optimize(100, target*0.6)
	before := o.Size()
	got := o.Optimize(100, target*0.6)

	want := int(float64(before) * 0.9)
	if got != want {
		t.Errorf("Optimize() = %d, want %d (shrunk from %d)", got, want, before)
	}
}

func TestOptimizeRespectsBounds(t *testing.T) {
	o := NewBatchSizeOptimizer(10, 8, 12, target)

	// Repeated memory pressure can never push below the minimum
	for i := 0; i < 10; i++ {
		if got := o.Optimize(100, target*0.9); got < 8 || got > 12 {
			t.Fatalf("iteration %d: size %d out of bounds [8,12]", i, got)
		}
	}
	if o.Size() != 8 {
		t.Errorf("Size() = %d, want pinned at minimum 8", o.Size())
	}
}

func TestSetSizeClamps(t *testing.T) {
	o := NewBatchSizeOptimizer(50, 5, 500, target)

	o.SetSize(1000)
	if o.Size() != 500 {
		t.Errorf("Size() = %d, want 500", o.Size())
	}
	o.SetSize(1)
	if o.Size() != 5 {
		t.Errorf("Size() = %d, want 5", o.Size())
	}
}
