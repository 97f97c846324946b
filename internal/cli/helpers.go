package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDurationArg accepts Go duration syntax ("25m", "1h30m") or a bare
// number of seconds. Sign is preserved so the countdown can reject negatives.
func parseDurationArg(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return secs, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use e.g. 25m, 90s or 1500", s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("invalid duration %q: must be whole seconds", s)
	}
	return int64(d / time.Second), nil
}

// formatDuration formats seconds in a human-readable way
func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// truncate shortens s to max runes, marking the cut with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
