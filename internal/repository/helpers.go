package repository

import (
	"time"
)

// timeLayout is RFC3339 with fixed nanosecond width, so stored UTC times sort
// lexically in SQLite
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseTime parses a time string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime formats t as RFC3339 in UTC
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
