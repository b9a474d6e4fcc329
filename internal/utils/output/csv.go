package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/law-makers/batch/pkg/models"
)

// SaveCSV writes one row per batch result to a CSV file.
func SaveCSV(results []models.BatchResult, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"batch_id", "total_jobs", "successful_jobs", "failed_jobs",
		"duration_ms", "throughput", "peak_memory_mb",
		"batch_size", "concurrency", "cache_hit_rate", "rating",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.BatchID,
			fmt.Sprintf("%d", r.TotalJobs),
			fmt.Sprintf("%d", r.SuccessfulJobs),
			fmt.Sprintf("%d", r.FailedJobs),
			fmt.Sprintf("%d", r.Duration.Milliseconds()),
			fmt.Sprintf("%.2f", r.Throughput),
			fmt.Sprintf("%.2f", r.PeakMemoryMB),
			fmt.Sprintf("%d", r.BatchSize),
			fmt.Sprintf("%d", r.Concurrency),
			fmt.Sprintf("%.2f", r.CacheHitRate),
			string(r.Rating),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}
