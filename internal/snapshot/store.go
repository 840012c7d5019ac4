package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// FileStore keeps the latest snapshot in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

// Save replaces the stored snapshot.
func (s *FileStore) Save(_ context.Context, snap Snapshot) error {
	return Write(s.path, snap)
}

// Load reads the stored snapshot. Returns ErrNotFound when the file is missing.
func (s *FileStore) Load(_ context.Context) (Snapshot, error) {
	snap, err := Read(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, fmt.Errorf("%s: %w", s.path, ErrNotFound)
	}
	return snap, err
}
