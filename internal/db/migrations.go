package db

import (
	"fmt"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
-- Countdown snapshot (singleton, survives process restarts)
CREATE TABLE countdown_snapshot (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    countdown_id TEXT NOT NULL,
    label TEXT,
    duration_seconds INTEGER NOT NULL CHECK (duration_seconds >= 0),
    remaining_seconds INTEGER NOT NULL CHECK (remaining_seconds >= 0),
    run_state TEXT NOT NULL,
    saved_at_ms INTEGER NOT NULL
);

-- Completed countdowns
CREATE TABLE sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    countdown_id TEXT NOT NULL,
    label TEXT,
    duration_seconds INTEGER NOT NULL,
    completed_at TEXT NOT NULL,
    caught_up INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_sessions_completed ON sessions(completed_at);

-- A countdown completes at most once
CREATE UNIQUE INDEX idx_sessions_countdown ON sessions(countdown_id);
`,
	},
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations() error {
	// Ensure schema_version table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Apply pending migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := tx.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}
