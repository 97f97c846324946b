package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/andy/focusclock/internal/domain"
)

// formatMinutes formats a duration as "Xh Ym" or "Ym"
func formatMinutes(d time.Duration) string {
	total := int(d.Minutes())
	h, m := total/60, total%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// progressBar renders fraction (0..1) as a bar of the given width
func progressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// stateBadge renders the run state label
func stateBadge(s domain.RunState) string {
	label := strings.ToUpper(string(s))
	switch s {
	case domain.RunStateRunning:
		return stateRunningStyle.Render(label)
	case domain.RunStatePaused:
		return statePausedStyle.Render(label)
	case domain.RunStateCompleted:
		return stateCompletedStyle.Render(label)
	default:
		return stateIdleStyle.Render(label)
	}
}
