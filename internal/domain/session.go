package domain

import "time"

// Session is a completed countdown kept in the history table
type Session struct {
	ID              int64
	CountdownID     string
	Label           string
	DurationSeconds int64
	CompletedAt     time.Time
	CaughtUp        bool
}

// NewSession builds a history record from a completion
func NewSession(c Completion) *Session {
	return &Session{
		CountdownID:     c.CountdownID,
		Label:           c.Label,
		DurationSeconds: c.DurationSeconds,
		CompletedAt:     c.CompletedAt,
		CaughtUp:        c.CaughtUp,
	}
}

// Duration returns the focused time of the session
func (s *Session) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// SessionSummary aggregates history over a period
type SessionSummary struct {
	Since        time.Time
	Count        int
	TotalSeconds int64
}

// Total returns the summed focus time
func (s SessionSummary) Total() time.Duration {
	return time.Duration(s.TotalSeconds) * time.Second
}
