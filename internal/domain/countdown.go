package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxDurationSeconds is the longest countdown whose deadline fits in a
// time.Duration
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStatePaused    RunState = "paused"
	RunStateCompleted RunState = "completed"
)

// ParseRunState converts a stored state name back to a RunState
func ParseRunState(s string) (RunState, error) {
	switch RunState(s) {
	case RunStateIdle, RunStateRunning, RunStatePaused, RunStateCompleted:
		return RunState(s), nil
	}
	return "", fmt.Errorf("unknown run state %q", s)
}

// Snapshot is the persisted form of a countdown. It never carries a deadline:
// deadlines are meaningless across process restarts, so a running countdown is
// stored as its remaining seconds plus the instant they were measured.
type Snapshot struct {
	CountdownID        string   `yaml:"countdown_id"`
	Label              string   `yaml:"label,omitempty"`
	DurationSeconds    int64    `yaml:"duration_seconds"`
	RemainingSeconds   int64    `yaml:"remaining_seconds"`
	RunState           RunState `yaml:"run_state"`
	SavedAtEpochMillis int64    `yaml:"saved_at_epoch_millis"`
}

// SavedAt returns the snapshot timestamp
func (s *Snapshot) SavedAt() time.Time {
	return time.UnixMilli(s.SavedAtEpochMillis)
}

// RemainingAt returns the remaining seconds as of now. Only running snapshots
// lose time while stored.
func (s *Snapshot) RemainingAt(now time.Time) int64 {
	if s.RunState != RunStateRunning {
		return s.RemainingSeconds
	}
	remaining := min(s.RemainingSeconds, MaxDurationSeconds)
	deadline := s.SavedAt().Add(time.Duration(remaining) * time.Second)
	return CeilSeconds(deadline.Sub(now))
}

// Status is a point-in-time view of a countdown
type Status struct {
	CountdownID string
	Label       string
	Duration    int64
	Remaining   int64
	State       RunState
	Deadline    *time.Time
}

// Progress returns the completed fraction in [0, 1]
func (s Status) Progress() float64 {
	if s.Duration <= 0 {
		if s.State == RunStateCompleted {
			return 1
		}
		return 0
	}
	return float64(s.Duration-s.Remaining) / float64(s.Duration)
}

// Completion describes a countdown that reached zero
type Completion struct {
	CountdownID     string
	Label           string
	DurationSeconds int64
	CompletedAt     time.Time
	// CaughtUp is set when completion was detected while restoring a snapshot
	CaughtUp bool
}

// CeilSeconds converts a deadline delta to whole seconds, rounding up so that
// any fraction of a second still counts as one. Non-positive deltas are zero.
func CeilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

// FormatClock renders seconds as MM:SS, or H:MM:SS past an hour
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
