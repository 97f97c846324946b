package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/focusclock/internal/db"
	"github.com/andy/focusclock/internal/domain"
)

// SnapshotRepo is a SQLite implementation of SnapshotRepository
type SnapshotRepo struct {
	db *db.DB
}

// NewSnapshotRepo creates a new SnapshotRepo
func NewSnapshotRepo(database *db.DB) *SnapshotRepo {
	return &SnapshotRepo{db: database}
}

// Load retrieves the saved snapshot, or returns nil if there is none
func (r *SnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	query := `
		SELECT countdown_id, label, duration_seconds, remaining_seconds, run_state, saved_at_ms
		FROM countdown_snapshot
		WHERE id = 1
	`

	snap := &domain.Snapshot{}
	var label sql.NullString
	var state string

	err := r.db.QueryRowContext(ctx, query).Scan(
		&snap.CountdownID,
		&label,
		&snap.DurationSeconds,
		&snap.RemainingSeconds,
		&state,
		&snap.SavedAtEpochMillis,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Nothing saved
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if snap.RunState, err = domain.ParseRunState(state); err != nil {
		return nil, fmt.Errorf("failed to parse run_state: %w", err)
	}
	snap.Label = label.String

	return snap, nil
}

// Save stores the snapshot (insert or replace)
func (r *SnapshotRepo) Save(ctx context.Context, snap *domain.Snapshot) error {
	query := `
		INSERT OR REPLACE INTO countdown_snapshot
			(id, countdown_id, label, duration_seconds, remaining_seconds, run_state, saved_at_ms)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.CountdownID,
		snap.Label,
		snap.DurationSeconds,
		snap.RemainingSeconds,
		string(snap.RunState),
		snap.SavedAtEpochMillis,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Clear removes the saved snapshot
func (r *SnapshotRepo) Clear(ctx context.Context) error {
	query := "DELETE FROM countdown_snapshot WHERE id = 1"

	_, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	return nil
}
