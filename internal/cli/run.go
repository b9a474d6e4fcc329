// internal/cli/run.go
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/batch/internal/engine"
	"github.com/law-makers/batch/internal/retry"
	"github.com/law-makers/batch/internal/ui"
	"github.com/law-makers/batch/internal/utils/output"
	"github.com/law-makers/batch/pkg/models"
)

var (
	runJobs       int
	runComplexity string
	runFailRate   float64
	runJobDelay   time.Duration
	runKinds      int
	runReport     string
	runRetry      bool
)

// runCmd executes a synthetic workload through the engine.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a synthetic batch workload",
	Long: `Run executes a configurable synthetic workload through the adaptive
batch engine and prints the resulting batch report. Useful for sizing
batch-size and concurrency settings against a target machine.`,
	Example: `  # 1000 instant jobs with default tuning
  batch run

  # A heavier profile: 5000 jobs, 2ms each, 2% failures
  batch run --jobs=5000 --job-delay=2ms --fail-rate=0.02 --complexity=high

  # Export the report
  batch run --report=report.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runJobs, "jobs", 1000, "Number of synthetic jobs to submit")
	runCmd.Flags().StringVar(&runComplexity, "complexity", "medium", "Expected job complexity: low, medium, or high")
	runCmd.Flags().Float64Var(&runFailRate, "fail-rate", 0, "Fraction of jobs that fail (0.0-1.0)")
	runCmd.Flags().DurationVar(&runJobDelay, "job-delay", 0, "Simulated processing time per job")
	runCmd.Flags().IntVar(&runKinds, "kinds", 1, "Number of distinct job kinds to spread jobs across")
	runCmd.Flags().StringVar(&runReport, "report", "", "File path to save the report (.json, .csv or .md)")
	runCmd.Flags().BoolVar(&runRetry, "retry-failed", false, "Resubmit failed jobs with backoff until their retry limits are spent")
}

func runRun(cmd *cobra.Command, args []string) error {
	a := GetApp()

	processor := engine.NewProcessor[int, string](a.ProcessorOptions())
	tuner := engine.NewTuner(processor)
	tuner.OptimizeForLoad(runJobs, engine.Complexity(runComplexity))

	jobs := syntheticJobs(runJobs, runKinds)

	failEvery := 0
	if runFailRate > 0 {
		failEvery = int(1 / runFailRate)
	}

	processFn := func(ctx context.Context, job models.Job[int]) (string, error) {
		if runJobDelay > 0 {
			time.Sleep(runJobDelay)
		}
		if failEvery > 0 && job.Payload%failEvery == failEvery-1 {
			return "", fmt.Errorf("synthetic failure for job %d", job.Payload)
		}
		return fmt.Sprintf("processed_%d", job.Payload), nil
	}

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)

	result := processor.ProcessJobs(cmd.Context(), jobs, processFn, func(p models.Progress) {
		_ = bar.Set(p.Processed)
	})
	_ = bar.Finish()

	printResult(result)

	if runRetry && result.FailedJobs > 0 {
		resubmitFailed(cmd.Context(), processor, jobs, processFn)
	}

	if runReport != "" {
		rec := tuner.Recommendations()
		report := &output.Report{
			Result:        result,
			Stats:         processor.PerformanceStats(),
			Advice:        rec.Advice,
			RecentActions: rec.RecentActions,
		}
		if err := saveReport(report, processor.History(), runReport); err != nil {
			return err
		}
		fmt.Printf("Report saved to %s\n", runReport)
	}

	return nil
}

// resubmitFailed re-runs jobs that failed and still have retry budget,
// backing off between rounds. Resubmission is a caller decision; the
// engine itself never re-invokes a process function.
func resubmitFailed(ctx context.Context, processor *engine.Processor[int, string], jobs []models.Job[int], processFn engine.ProcessFunc[int, string]) {
	remaining := failedRetryable(jobs)
	if len(remaining) == 0 {
		return
	}

	err := retry.WithRetry(ctx, retry.DefaultConfig(), func() error {
		result := processor.ProcessJobs(ctx, remaining, processFn, nil)
		fmt.Printf("resubmitted %d jobs: %d recovered, %d still failing\n",
			result.TotalJobs, result.SuccessfulJobs, result.FailedJobs)

		remaining = failedRetryable(remaining)
		if len(remaining) > 0 {
			return fmt.Errorf("%d jobs still failing", len(remaining))
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("Some jobs exhausted their retry budget")
	}
}

func failedRetryable(jobs []models.Job[int]) []models.Job[int] {
	var out []models.Job[int]
	for _, j := range jobs {
		if j.LastError != "" && j.Retryable() {
			out = append(out, j)
		}
	}
	return out
}

// syntheticJobs builds the workload, spreading jobs across kinds.
func syntheticJobs(n, kinds int) []models.Job[int] {
	if kinds < 1 {
		kinds = 1
	}
	jobs := make([]models.Job[int], n)
	for i := 0; i < n; i++ {
		job := models.NewJob(i)
		job.Kind = fmt.Sprintf("kind_%d", i%kinds)
		jobs[i] = job
	}
	return jobs
}

func printResult(r models.BatchResult) {
	fmt.Printf("\n%s\n", ui.Bold("Batch "+r.BatchID))
	fmt.Printf("  Jobs:        %d total, %s, %s\n",
		r.TotalJobs,
		ui.Success(fmt.Sprintf("%d ok", r.SuccessfulJobs)),
		ui.Error(fmt.Sprintf("%d failed", r.FailedJobs)))
	fmt.Printf("  Duration:    %s\n", r.Duration.Round(time.Millisecond))
	fmt.Printf("  Throughput:  %.1f jobs/s (%s)\n", r.Throughput, ratingLabel(r.Rating))
	fmt.Printf("  Peak memory: %.1f MB\n", r.PeakMemoryMB)
	fmt.Printf("  Final size/concurrency: %d/%d\n", r.BatchSize, r.Concurrency)
	if r.CacheHitRate > 0 {
		fmt.Printf("  Cache hits:  %.1f%%\n", r.CacheHitRate)
	}
	for _, e := range r.Errors {
		fmt.Printf("  %s %s\n", ui.Error("error:"), e)
	}
}

func ratingLabel(rating models.Rating) string {
	switch rating {
	case models.RatingExcellent, models.RatingGood:
		return ui.Success(string(rating))
	case models.RatingAcceptable:
		return ui.Info(string(rating))
	default:
		return ui.Error(string(rating))
	}
}

func saveReport(report *output.Report, history []models.BatchResult, path string) error {
	switch filepath.Ext(path) {
	case ".json":
		return output.SaveJSON(report, path)
	case ".csv":
		return output.SaveCSV(history, path)
	case ".md":
		return output.SaveMarkdown(report, path)
	default:
		log.Warn().Str("path", path).Msg("Unknown report extension, defaulting to JSON")
		return output.SaveJSON(report, path)
	}
}
