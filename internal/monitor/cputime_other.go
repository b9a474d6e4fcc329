//go:build !unix

package monitor

import "time"

// readCPUTime is unavailable on this platform; the monitor falls back
// to the last known good CPU percentage.
func readCPUTime() (time.Duration, bool) {
	return 0, false
}
