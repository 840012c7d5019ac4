package spawn

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/walker"
	"github.com/udisondev/walkersim/internal/world"
)

type fakeRegistrar struct {
	events  []string
	walkers map[uuid.UUID]*walker.Walker
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{walkers: make(map[uuid.UUID]*walker.Walker)}
}

func (r *fakeRegistrar) Register(w *walker.Walker) {
	r.events = append(r.events, "register")
	r.walkers[w.ID()] = w
}

func (r *fakeRegistrar) Unregister(id uuid.UUID) {
	r.events = append(r.events, "unregister")
	delete(r.walkers, id)
}

func setupSpawner(t *testing.T, cfg Config) (*Spawner, *fakeRegistrar, *FreeListPool) {
	t.Helper()
	env := &walker.Env{Homes: world.NewRegistry()}
	reg := newFakeRegistrar()
	pool := NewFreeListPool(env, 1, 8)
	if cfg.Name == "" {
		cfg.Name = "test"
	}
	return NewSpawner(cfg, pool, reg), reg, pool
}

func TestSpawnerNotInitialized(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: 1})

	_, err := s.Spawn()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, s.Integrate(walker.New(nil, 1)), ErrNotInitialized)
}

func TestSpawnerSpawn(t *testing.T) {
	home := uuid.New()
	s, reg, _ := setupSpawner(t, Config{
		MaxCount: 2,
		Cell:     model.NewGridPoint(3, 4),
		Speed:    2.5,
		Movement: model.Movement{Type: model.PathTypeRoad},
	})
	s.Initialize(home, nil, nil)

	w, err := s.Spawn()
	require.NoError(t, err)
	assert.Equal(t, model.NewGridPoint(3, 4), w.CurrentCell())
	assert.Equal(t, model.Vec3{X: 3, Y: 4}, w.Position())
	assert.Equal(t, 2.5, w.Speed())
	assert.Equal(t, model.PathTypeRoad, w.Movement().Type)
	assert.Equal(t, home, w.Home().ID())
	assert.Contains(t, reg.walkers, w.ID())
	assert.Equal(t, 1, s.Count())
}

func TestSpawnerCapacity(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: 2})
	s.Initialize(uuid.Nil, nil, nil)

	assert.True(t, s.HasCapacity())
	_, err := s.Spawn()
	require.NoError(t, err)
	_, err = s.Spawn()
	require.NoError(t, err)

	assert.False(t, s.HasCapacity())
	_, err = s.Spawn()
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.ErrorIs(t, s.Integrate(walker.New(nil, 1)), ErrNoCapacity)
	assert.Equal(t, 2, s.Count())
}

func TestSpawnerUnlimited(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: Unlimited})
	s.Initialize(uuid.Nil, nil, nil)

	for range 50 {
		_, err := s.Spawn()
		require.NoError(t, err)
	}
	assert.True(t, s.HasCapacity())
	assert.Equal(t, 50, s.Count())
}

func TestSpawnerZeroCapacity(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: 0})
	s.Initialize(uuid.Nil, nil, nil)

	_, err := s.Spawn()
	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestSpawnerRejected(t *testing.T) {
	s, reg, pool := setupSpawner(t, Config{MaxCount: 3})
	allow := false
	s.Initialize(uuid.Nil, func() bool { return allow }, nil)

	_, err := s.Spawn()
	assert.ErrorIs(t, err, ErrRejected)
	assert.Empty(t, reg.events)
	created, _ := pool.Stats()
	assert.Zero(t, created, "rejected spawn does not touch the pool")

	allow = true
	_, err = s.Spawn()
	assert.NoError(t, err)
}

func TestSpawnerFinishOrder(t *testing.T) {
	s, reg, pool := setupSpawner(t, Config{MaxCount: 1})

	var finishedIDs []uuid.UUID
	s.Initialize(uuid.Nil, nil, func(w *walker.Walker) {
		reg.events = append(reg.events, "finished")
		assert.NotContains(t, reg.walkers, w.ID(), "deregistered before the callback")
		assert.Zero(t, pool.Idle(), "returned to the pool after the callback")
		finishedIDs = append(finishedIDs, w.ID())
	})

	w, err := s.Spawn()
	require.NoError(t, err)
	id := w.ID()

	w.Finish()
	w.Finish()

	assert.Equal(t, []string{"register", "unregister", "finished"}, reg.events)
	assert.Equal(t, []uuid.UUID{id}, finishedIDs)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 1, pool.Idle())
	assert.True(t, s.HasCapacity())
}

func TestSpawnerReusesPooledWalker(t *testing.T) {
	home := uuid.New()
	s, _, pool := setupSpawner(t, Config{MaxCount: 1, Cell: model.NewGridPoint(1, 1)})
	s.Initialize(home, nil, nil)

	first, err := s.Spawn()
	require.NoError(t, err)
	firstID := first.ID()
	first.Wait(10, nil)
	first.Finish()

	second, err := s.Spawn()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NotEqual(t, firstID, second.ID(), "pooled walker gets a new identity")
	assert.Equal(t, model.ModeIdle, second.Mode())
	assert.False(t, second.IsFinished())
	assert.Equal(t, home, second.Home().ID())

	created, reused := pool.Stats()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, reused)
}

func TestSpawnerOnSpawned(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: 1})
	s.Initialize(uuid.Nil, nil, nil)
	s.OnSpawned(func(w *walker.Walker) { w.Wait(1, nil) })

	w, err := s.Spawn()
	require.NoError(t, err)
	assert.Equal(t, model.ModeWaiting, w.Mode())

	// the default finished handler ends the walker's life
	w.Advance(0.5)
	assert.Equal(t, 1, s.Count())
	w.Advance(0.5)
	assert.Equal(t, 0, s.Count())
}

func TestSpawnerIntegrate(t *testing.T) {
	env := &walker.Env{Homes: world.NewRegistry()}
	spawnerHome := uuid.New()
	s, reg, _ := setupSpawner(t, Config{MaxCount: 3})
	s.Initialize(spawnerHome, nil, nil)

	ran := false
	s.OnSpawned(func(*walker.Walker) { ran = true })

	homeless := walker.New(env, 1)
	require.NoError(t, s.Integrate(homeless))
	assert.Equal(t, spawnerHome, homeless.Home().ID())

	ownHome := uuid.New()
	housed := walker.New(env, 1)
	housed.SetHome(ownHome)
	require.NoError(t, s.Integrate(housed))
	assert.Equal(t, ownHome, housed.Home().ID())

	require.NoError(t, s.Integrate(housed), "integrating twice is a no-op")
	assert.Equal(t, 2, s.Count())
	assert.Len(t, reg.walkers, 2)
	assert.False(t, ran, "integrated walkers keep their own behavior")
	assert.Len(t, s.Walkers(), 2)

	housed.Finish()
	assert.Equal(t, 1, s.Count())
}

func TestSpawnerTickCycle(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: 2, Interval: 2})
	s.Initialize(uuid.Nil, nil, nil)

	s.Tick(0.5)
	assert.Equal(t, 1, s.Count(), "first spawn is immediate")

	for range 3 {
		s.Tick(0.5)
	}
	assert.Equal(t, 1, s.Count())
	s.Tick(0.5)
	assert.Equal(t, 2, s.Count())

	// cooldown holds while full
	for range 10 {
		s.Tick(0.5)
	}
	assert.Equal(t, 2.0, s.Cooldown())

	s.Walkers()[0].Finish()
	for range 3 {
		s.Tick(0.5)
	}
	assert.Equal(t, 1, s.Count())
	s.Tick(0.5)
	assert.Equal(t, 2, s.Count())
}

func TestSpawnerManualOnly(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{MaxCount: 2})
	s.Initialize(uuid.Nil, nil, nil)

	for range 100 {
		s.Tick(1)
	}
	assert.Equal(t, 0, s.Count())
}

func TestSpawnerRecord(t *testing.T) {
	s, _, _ := setupSpawner(t, Config{Name: "farm", MaxCount: 3, Interval: 5})
	s.Initialize(uuid.Nil, nil, nil)

	s.Tick(1)
	s.Tick(1)
	_, err := s.Spawn()
	require.NoError(t, err)

	rec := s.Record()
	assert.Equal(t, "farm", rec.Name)
	assert.Equal(t, 4.0, rec.Cooldown)
	require.Len(t, rec.Walkers, 2)
	assert.Negative(t, bytes.Compare(rec.Walkers[0][:], rec.Walkers[1][:]), "ids are sorted")

	restored, _, _ := setupSpawner(t, Config{Name: "farm", MaxCount: 3, Interval: 5})
	restored.Initialize(uuid.Nil, nil, nil)
	restored.Restore(rec)
	assert.Equal(t, 4.0, restored.Cooldown())
}
