package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/law-makers/batch/pkg/models"
)

// SaveMarkdown writes a human-readable batch report to filepath.
func SaveMarkdown(report *Report, filepath string) error {
	var b strings.Builder

	r := report.Result
	fmt.Fprintf(&b, "# Batch Report %s\n\n", r.BatchID)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total jobs | %d |\n", r.TotalJobs)
	fmt.Fprintf(&b, "| Successful | %d |\n", r.SuccessfulJobs)
	fmt.Fprintf(&b, "| Failed | %d |\n", r.FailedJobs)
	fmt.Fprintf(&b, "| Duration | %s |\n", r.Duration)
	fmt.Fprintf(&b, "| Throughput | %.2f jobs/s |\n", r.Throughput)
	fmt.Fprintf(&b, "| Peak memory | %.2f MB |\n", r.PeakMemoryMB)
	fmt.Fprintf(&b, "| Final batch size | %d |\n", r.BatchSize)
	fmt.Fprintf(&b, "| Final concurrency | %d |\n", r.Concurrency)
	fmt.Fprintf(&b, "| Cache hit rate | %.1f%% |\n", r.CacheHitRate)
	fmt.Fprintf(&b, "| Rating | %s |\n", r.Rating)

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n## Errors (first %d)\n\n", models.MaxErrorSummaries)
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}

	if len(report.Advice) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, a := range report.Advice {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}

	if len(report.RecentActions) > 0 {
		b.WriteString("\n## Recent tuning actions\n\n")
		for _, a := range report.RecentActions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}

	return os.WriteFile(filepath, []byte(b.String()), 0644)
}
