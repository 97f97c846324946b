package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/focusclock/internal/domain"
	"github.com/andy/focusclock/internal/repository"
)

// DaySummary is the focus time logged on one calendar day
type DaySummary struct {
	Date         time.Time
	Count        int
	TotalSeconds int64
}

// SessionService records and aggregates completed countdowns
type SessionService interface {
	// Record stores a completion in the history
	Record(ctx context.Context, c domain.Completion) (*domain.Session, error)

	// List returns recent sessions, newest first
	List(ctx context.Context, limit int) ([]*domain.Session, error)

	// Summary totals sessions completed since the given time
	Summary(ctx context.Context, since time.Time) (domain.SessionSummary, error)

	// Daily groups sessions since the given time by local calendar day
	Daily(ctx context.Context, since time.Time) ([]DaySummary, error)

	// Clear wipes the history
	Clear(ctx context.Context) error
}

type sessionService struct {
	sessionRepo repository.SessionRepository
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo}
}

func (s *sessionService) Record(ctx context.Context, c domain.Completion) (*domain.Session, error) {
	if c.CountdownID == "" {
		return nil, fmt.Errorf("cannot record session without countdown ID")
	}
	session := domain.NewSession(c)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	return s.sessionRepo.List(ctx, limit)
}

func (s *sessionService) Summary(ctx context.Context, since time.Time) (domain.SessionSummary, error) {
	sessions, err := s.sessionRepo.Since(ctx, since)
	if err != nil {
		return domain.SessionSummary{}, err
	}

	summary := domain.SessionSummary{Since: since}
	for _, sess := range sessions {
		summary.Count++
		summary.TotalSeconds += sess.DurationSeconds
	}
	return summary, nil
}

func (s *sessionService) Daily(ctx context.Context, since time.Time) ([]DaySummary, error) {
	sessions, err := s.sessionRepo.Since(ctx, since)
	if err != nil {
		return nil, err
	}

	// Sessions arrive oldest first, so days come out in order
	var days []DaySummary
	for _, sess := range sessions {
		local := sess.CompletedAt.Local()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
		if len(days) == 0 || !days[len(days)-1].Date.Equal(day) {
			days = append(days, DaySummary{Date: day})
		}
		days[len(days)-1].Count++
		days[len(days)-1].TotalSeconds += sess.DurationSeconds
	}
	return days, nil
}

func (s *sessionService) Clear(ctx context.Context) error {
	return s.sessionRepo.DeleteAll(ctx)
}
