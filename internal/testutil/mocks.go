package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/udisondev/walkersim/internal/snapshot"
)

// ErrSimulated is returned by a MemoryStore with FailSave set.
var ErrSimulated = errors.New("simulated save failure")

// MemoryStore: in-memory хранилище снапшотов для unit тестов.
// Не требует файловой системы или PostgreSQL.
type MemoryStore struct {
	mu    sync.Mutex
	snap  *snapshot.Snapshot
	saves int

	// FailSave makes Save return ErrSimulated.
	FailSave bool
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores a copy of snap.
func (m *MemoryStore) Save(_ context.Context, snap snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave {
		return ErrSimulated
	}

	cp := snap
	cp.Header.Version = snapshot.Version
	cp.Header.Walkers = len(snap.Walkers)
	cp.Rand = slices.Clone(snap.Rand)
	cp.Spawners = slices.Clone(snap.Spawners)
	cp.Walkers = slices.Clone(snap.Walkers)
	m.snap = &cp
	m.saves++
	return nil
}

// Load returns the last saved snapshot or snapshot.ErrNotFound.
func (m *MemoryStore) Load(_ context.Context) (snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap == nil {
		return snapshot.Snapshot{}, snapshot.ErrNotFound
	}
	return *m.snap, nil
}

// Saves returns number of successful saves.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
