package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/andy/focusclock/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileSnapshotRepo stores the snapshot as a YAML file. Writes go to a temp
// file in the same directory and are renamed into place, so readers never see
// a partial snapshot.
type FileSnapshotRepo struct {
	mu   sync.Mutex
	path string
}

// NewFileSnapshotRepo creates a FileSnapshotRepo backed by path
func NewFileSnapshotRepo(path string) *FileSnapshotRepo {
	return &FileSnapshotRepo{path: path}
}

// Path returns the snapshot file location
func (r *FileSnapshotRepo) Path() string {
	return r.path
}

// Save writes the snapshot atomically
func (r *FileSnapshotRepo) Save(ctx context.Context, snap *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot, or returns nil if the file does not exist
func (r *FileSnapshotRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap := &domain.Snapshot{}
	if err := yaml.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if _, err := domain.ParseRunState(string(snap.RunState)); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return snap, nil
}

// Clear removes the snapshot file
func (r *FileSnapshotRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
