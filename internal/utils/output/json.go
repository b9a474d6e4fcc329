package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/batch/pkg/models"
)

// Report bundles a batch result with the aggregate stats and advice
// current at the time it was written.
type Report struct {
	Result        models.BatchResult `json:"result"`
	Stats         any                `json:"stats,omitempty"`
	Advice        []string           `json:"advice,omitempty"`
	RecentActions []string           `json:"recent_actions,omitempty"`
}

// SaveJSON writes an indented JSON export of the report to filepath.
func SaveJSON(report *Report, filepath string) error {
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
