package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/walkersim/internal/snapshot"
)

// SnapshotStore saves and loads the whole simulation atomically.
type SnapshotStore struct {
	pool     *pgxpool.Pool
	walkers  *WalkerRepository
	spawners *SpawnerRepository
}

// NewSnapshotStore creates a new store.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{
		pool:     pool,
		walkers:  NewWalkerRepository(pool),
		spawners: NewSpawnerRepository(pool),
	}
}

// Walkers returns the walker repository.
func (s *SnapshotStore) Walkers() *WalkerRepository { return s.walkers }

// Save stores snap in a single transaction: either all of it is saved or none.
func (s *SnapshotStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for snapshot: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "tick", snap.Header.Tick, "error", err)
		}
	}()

	if err := s.walkers.SaveAllTx(ctx, tx, snap.Walkers); err != nil {
		return fmt.Errorf("saving walkers: %w", err)
	}
	if err := s.spawners.SaveAllTx(ctx, tx, snap.Spawners); err != nil {
		return fmt.Errorf("saving spawners: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sim_state (id, tick, seed, rand_state, saved_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			tick = EXCLUDED.tick,
			seed = EXCLUDED.seed,
			rand_state = EXCLUDED.rand_state,
			saved_at = EXCLUDED.saved_at
	`, int64(snap.Header.Tick), int64(snap.Seed), snap.Rand)
	if err != nil {
		return fmt.Errorf("saving sim state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.Debug("snapshot saved to database",
		"tick", snap.Header.Tick,
		"walkers", len(snap.Walkers),
		"spawners", len(snap.Spawners))
	return nil
}

// Load reads the stored simulation.
// Returns snapshot.ErrNotFound when nothing was saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (snapshot.Snapshot, error) {
	var (
		snap    snapshot.Snapshot
		tick    int64
		seed    int64
		savedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT tick, seed, rand_state, saved_at FROM sim_state WHERE id = 1`,
	).Scan(&tick, &seed, &snap.Rand, &savedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, fmt.Errorf("sim state: %w", snapshot.ErrNotFound)
	}
	if err != nil {
		return snap, fmt.Errorf("loading sim state: %w", err)
	}

	snap.Header = snapshot.Header{
		Version: snapshot.Version,
		Tick:    uint64(tick),
		SavedAt: savedAt,
	}
	snap.Seed = uint64(seed)

	if snap.Walkers, err = s.walkers.LoadAll(ctx); err != nil {
		return snap, err
	}
	if snap.Spawners, err = s.spawners.LoadAll(ctx); err != nil {
		return snap, err
	}
	snap.Header.Walkers = len(snap.Walkers)
	return snap, nil
}
