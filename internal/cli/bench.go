// internal/cli/bench.go
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/batch/internal/engine"
	"github.com/law-makers/batch/internal/metrics"
	"github.com/law-makers/batch/internal/ui"
	"github.com/law-makers/batch/pkg/models"
)

var (
	benchJobs   int
	benchRounds int
	benchDelay  time.Duration
)

// benchCmd runs the same workload repeatedly so the feedback loop has
// history to tune against, then prints the aggregate statistics.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the engine across repeated batches",
	Example: `  # Five rounds of 2000 jobs each
  batch bench --jobs=2000 --rounds=5`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchJobs, "jobs", 1000, "Jobs per round")
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 3, "Number of rounds to run")
	benchCmd.Flags().DurationVar(&benchDelay, "job-delay", 0, "Simulated processing time per job")
}

func runBench(cmd *cobra.Command, args []string) error {
	a := GetApp()

	processor := engine.NewProcessor[int, string](a.ProcessorOptions())
	tuner := engine.NewTuner(processor)
	tuner.OptimizeForLoad(benchJobs, engine.ComplexityMedium)

	processFn := func(ctx context.Context, job models.Job[int]) (string, error) {
		if benchDelay > 0 {
			time.Sleep(benchDelay)
		}
		return fmt.Sprintf("processed_%d", job.Payload), nil
	}

	for round := 1; round <= benchRounds; round++ {
		result := processor.ProcessJobs(cmd.Context(), syntheticJobs(benchJobs, 1), processFn, nil)
		fmt.Printf("round %d: %.1f jobs/s (%s), size=%d concurrency=%d\n",
			round, result.Throughput, result.Rating, result.BatchSize, result.Concurrency)
	}

	stats := processor.PerformanceStats()
	fmt.Printf("\n%s\n", ui.Bold("Aggregate"))
	fmt.Printf("  Batches:           %d (%d jobs)\n", stats.TotalBatches, stats.TotalJobs)
	fmt.Printf("  Avg throughput:    %.1f jobs/s\n", stats.AverageThroughput)
	fmt.Printf("  Most common rating: %s\n", stats.MostCommonRating)
	if stats.TargetAchieved {
		fmt.Printf("  %s\n", ui.Success("Target of 500 jobs/s achieved"))
	} else {
		fmt.Printf("  %s\n", ui.Warn("Target of 500 jobs/s not achieved"))
	}
	fmt.Printf("  Avg batch time:    %s\n", a.Metrics.TimerAverage(metrics.BatchProcessingTime).Round(time.Millisecond))

	for _, advice := range tuner.Recommendations().Advice {
		fmt.Printf("  hint: %s\n", advice)
	}

	return nil
}
