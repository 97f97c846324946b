package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andy/focusclock/internal/db"
	"github.com/andy/focusclock/internal/domain"
)

// SessionRepo is a SQLite implementation of SessionRepository
type SessionRepo struct {
	db *db.DB
}

// NewSessionRepo creates a new SessionRepo
func NewSessionRepo(database *db.DB) *SessionRepo {
	return &SessionRepo{db: database}
}

// Create inserts a completed session
func (r *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	if session.DurationSeconds < 0 {
		return fmt.Errorf("invalid session: negative duration %d", session.DurationSeconds)
	}

	query := `
		INSERT INTO sessions (countdown_id, label, duration_seconds, completed_at, caught_up)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		session.CountdownID,
		session.Label,
		session.DurationSeconds,
		formatTime(session.CompletedAt),
		boolToInt(session.CaughtUp),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get session ID: %w", err)
	}

	session.ID = id
	return nil
}

// List returns the most recent sessions, newest first. A limit <= 0 returns all.
func (r *SessionRepo) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	query := `
		SELECT id, countdown_id, label, duration_seconds, completed_at, caught_up
		FROM sessions
		ORDER BY completed_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// Since returns sessions completed at or after since, oldest first
func (r *SessionRepo) Since(ctx context.Context, since time.Time) ([]*domain.Session, error) {
	query := `
		SELECT id, countdown_id, label, duration_seconds, completed_at, caught_up
		FROM sessions
		WHERE completed_at >= ?
		ORDER BY completed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// DeleteAll wipes the session history
func (r *SessionRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		s := &domain.Session{}
		var label sql.NullString
		var completedAt string
		var caughtUp int

		if err := rows.Scan(&s.ID, &s.CountdownID, &label, &s.DurationSeconds, &completedAt, &caughtUp); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		t, err := parseTime(completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		s.CompletedAt = t
		s.Label = label.String
		s.CaughtUp = caughtUp != 0

		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}
