// Package util holds formatting helpers for user-facing error details.
package util

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count with binary units, e.g. "5.0 MB".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	const units = "KMGTPEZY"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration renders a wait time rounded to the second, e.g. "14m30s" or "1h5m".
// Negative durations read as "0s".
func FormatDuration(duration time.Duration) string {
	duration = max(duration.Round(time.Second), 0)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		return fmt.Sprintf("%dm%ds", int(duration.Minutes()), int(duration.Seconds())%60)
	}

	return fmt.Sprintf("%dh%dm", int(duration.Hours()), int(duration.Minutes())%60)
}
