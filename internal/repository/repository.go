package repository

import (
	"context"
	"time"

	"github.com/andy/focusclock/internal/domain"
)

// SnapshotRepository persists the countdown snapshot (singleton)
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *domain.Snapshot) error // Atomic replace
	Load(ctx context.Context) (*domain.Snapshot, error)        // Returns nil if nothing saved
	Clear(ctx context.Context) error
}

// SessionRepository manages completed countdown history
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	List(ctx context.Context, limit int) ([]*domain.Session, error) // Newest first
	Since(ctx context.Context, since time.Time) ([]*domain.Session, error)
	DeleteAll(ctx context.Context) error
}
