package db_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/walkersim/internal/db"
	"github.com/udisondev/walkersim/internal/snapshot"
	"github.com/udisondev/walkersim/internal/spawn"
	"github.com/udisondev/walkersim/internal/testutil"
	"github.com/udisondev/walkersim/internal/walker"
)

func TestSnapshotStore_Empty(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.Context(t, 30*time.Second)

	_, err := db.NewSnapshotStore(pool).Load(ctx)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.Context(t, 30*time.Second)
	store := db.NewSnapshotStore(pool)

	w := walkingRecord(uuid.New())
	snap := snapshot.Snapshot{
		Header: snapshot.Header{Tick: 77},
		Seed:   9,
		Rand:   []byte{9, 8, 7},
		Spawners: []spawn.Record{
			{Name: "farm", Cooldown: 0.5, Walkers: []uuid.UUID{w.ID}},
			{Name: "market"},
		},
		Walkers: []walker.Record{w},
	}
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), got.Header.Tick)
	assert.Equal(t, 1, got.Header.Walkers)
	assert.Equal(t, uint64(9), got.Seed)
	assert.Equal(t, []byte{9, 8, 7}, got.Rand)
	assert.Equal(t, snap.Walkers, got.Walkers)

	require.Len(t, got.Spawners, 2)
	assert.Equal(t, snap.Spawners[0], got.Spawners[0])
	assert.Equal(t, "market", got.Spawners[1].Name)
	assert.Empty(t, got.Spawners[1].Walkers)

	// overwrite keeps a single state row
	snap.Header.Tick = 78
	snap.Walkers = nil
	require.NoError(t, store.Save(ctx, snap))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(78), got.Header.Tick)
	assert.Empty(t, got.Walkers)
}

func TestSnapshotStore_SaveIsAtomic(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.Context(t, 30*time.Second)
	store := db.NewSnapshotStore(pool)

	first := snapshot.Snapshot{Walkers: []walker.Record{roamingRecord()}}
	require.NoError(t, store.Save(ctx, first))

	broken := snapshot.Snapshot{
		Walkers:  []walker.Record{roamingRecord(), roamingRecord()},
		Spawners: []spawn.Record{{Name: "dup"}, {Name: "dup"}},
	}
	assert.Error(t, store.Save(ctx, broken))

	got, err := store.Walkers().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "failed save leaves previous state")
	assert.Equal(t, first.Walkers[0].ID, got[0].ID)
}
