package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/batch/pkg/models"
)

func sampleResult() models.BatchResult {
	return models.BatchResult{
		BatchID:        "batch_1700000000_100",
		TotalJobs:      100,
		SuccessfulJobs: 97,
		FailedJobs:     3,
		Duration:       1200 * time.Millisecond,
		Throughput:     83.3,
		PeakMemoryMB:   64.5,
		BatchSize:      50,
		Concurrency:    10,
		CacheHitRate:   12.0,
		Rating:         models.RatingPoor,
		Errors:         []string{"job_3: boom"},
		CompletedAt:    time.Now(),
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	report := &Report{Result: sampleResult(), Advice: []string{"increase concurrency"}}
	if err := SaveJSON(report, path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Result.BatchID != "batch_1700000000_100" {
		t.Errorf("BatchID = %q after round trip", decoded.Result.BatchID)
	}
	if decoded.Result.SuccessfulJobs != 97 {
		t.Errorf("SuccessfulJobs = %d, want 97", decoded.Result.SuccessfulJobs)
	}
}

func TestSaveCSVRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")

	history := []models.BatchResult{sampleResult(), sampleResult()}
	if err := SaveCSV(history, path); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(rows) != 3 { // header + 2 results
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "batch_id" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "100" {
		t.Errorf("total_jobs cell = %q, want 100", rows[1][1])
	}
}

func TestSaveMarkdownSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	report := &Report{
		Result:        sampleResult(),
		Advice:        []string{"optimize caching"},
		RecentActions: []string{"preconfigured for 100 medium-complexity jobs"},
	}
	if err := SaveMarkdown(report, path); err != nil {
		t.Fatalf("SaveMarkdown failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	content := string(raw)

	for _, want := range []string{
		"# Batch Report batch_1700000000_100",
		"## Errors",
		"## Recommendations",
		"optimize caching",
		"## Recent tuning actions",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
