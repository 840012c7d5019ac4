package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
	"github.com/udisondev/walkersim/internal/spawn"
	"github.com/udisondev/walkersim/internal/walker"
)

func sampleSnapshot() Snapshot {
	walkerID := uuid.New()
	return Snapshot{
		Header: Header{Tick: 1200, SavedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Seed:   7,
		Rand:   []byte{1, 2, 3},
		Spawners: []spawn.Record{
			{Name: "farm", Cooldown: 1.5, Walkers: []uuid.UUID{walkerID}},
		},
		Walkers: []walker.Record{
			{
				ID:       walkerID,
				Speed:    2,
				Cell:     model.NewGridPoint(1, 0),
				Position: model.Vec3{X: 1.4, Y: 0.5},
				IsMoving: true,
				Walk: &walker.PathFollowRecord{
					Path: path.Record{
						IsPointPath: true,
						Points:      []model.GridPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
					},
					SegmentIndex:        1,
					DistanceIntoSegment: 0.4,
				},
			},
		},
	}
}

func TestWriteRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "walkers.snap")
	want := sampleSnapshot()

	require.NoError(t, Write(p, want))

	got, err := Read(p)
	require.NoError(t, err)

	assert.Equal(t, Version, got.Header.Version)
	assert.Equal(t, uint64(1200), got.Header.Tick)
	assert.Equal(t, 1, got.Header.Walkers)
	assert.True(t, want.Header.SavedAt.Equal(got.Header.SavedAt))

	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.Rand, got.Rand)
	assert.Equal(t, want.Spawners, got.Spawners)
	assert.Equal(t, want.Walkers, got.Walkers)

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is gone after rename")
}

func TestWriteReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "walkers.snap")

	first := sampleSnapshot()
	require.NoError(t, Write(p, first))

	second := sampleSnapshot()
	second.Header.Tick = 5000
	second.Walkers = nil
	require.NoError(t, Write(p, second))

	h, err := ReadHeader(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), h.Tick)
	assert.Equal(t, 0, h.Walkers)
}

func TestEncodeSetsSavedAt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Snapshot{}))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.False(t, got.Header.SavedAt.IsZero())
	assert.Empty(t, got.Walkers)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("not zstd", func(t *testing.T) {
		_, err := Decode(bytes.NewReader([]byte("plain text\n{}")))
		assert.Error(t, err)
	})

	t.Run("future version", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = enc.Write([]byte(`{"version":99}` + "\n{}"))
		require.NoError(t, err)
		require.NoError(t, enc.Close())

		_, err = Decode(&buf)
		assert.ErrorIs(t, err, ErrVersion)
	})

	t.Run("truncated body", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = enc.Write([]byte(`{"version":1}` + "\n{\"walkers\": ["))
		require.NoError(t, err)
		require.NoError(t, enc.Close())

		_, err = Decode(&buf)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "absent.snap"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "walkers.snap"))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, sampleSnapshot()))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Walkers, 1)
}
