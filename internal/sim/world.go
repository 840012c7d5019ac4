package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/action"
	"github.com/udisondev/walkersim/internal/config"
	"github.com/udisondev/walkersim/internal/geo"
	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/snapshot"
	"github.com/udisondev/walkersim/internal/spawn"
	"github.com/udisondev/walkersim/internal/walker"
	"github.com/udisondev/walkersim/internal/world"
)

// Process keys used by spawner behaviors.
const (
	ProcessRoam   = "roam"
	ProcessErrand = "errand"
)

const defaultPoolLimit = 64

// Store persists snapshots. Implemented by snapshot.FileStore and db.SnapshotStore.
type Store interface {
	Save(ctx context.Context, snap snapshot.Snapshot) error
	Load(ctx context.Context) (snapshot.Snapshot, error)
}

// World wires the grid, homes, spawners and the tick loop together.
type World struct {
	cfg config.Simulation

	grid    *geo.Grid
	homes   *world.Registry
	homeIDs map[string]uuid.UUID
	env     *walker.Env
	pcg     *rand.PCG

	ticks    *TickManager
	spawners *spawn.Manager
	pool     *spawn.FreeListPool
	stores   []Store

	despawned atomic.Int64
}

// HomeID returns the stable id of the home with the given name.
// Ids survive restarts, so snapshots keep pointing at the same homes.
func HomeID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("walkersim:home:"+name))
}

// NewWorld builds a world from cfg. Stores are tried in order by Load
// and all written by Save.
func NewWorld(cfg config.Simulation, stores ...Store) (*World, error) {
	g, err := BuildGrid(cfg.Grid)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	w := &World{
		cfg:      cfg,
		grid:     g,
		homes:    world.NewRegistry(),
		homeIDs:  make(map[string]uuid.UUID, len(cfg.Homes)),
		pcg:      rand.NewPCG(cfg.Seed, cfg.Seed),
		ticks:    NewTickManager(cfg.TickRate),
		spawners: spawn.NewManager(),
		stores:   stores,
	}

	for _, h := range cfg.Homes {
		id := HomeID(h.Name)
		if err := w.homes.Add(world.NewHome(id, h.Name, cell(h.Entrance))); err != nil {
			return nil, fmt.Errorf("adding home %s: %w", h.Name, err)
		}
		w.homeIDs[h.Name] = id
	}

	w.env = &walker.Env{
		Space:          g.Space(),
		Paths:          g,
		Neighbors:      g,
		Homes:          w.homes,
		Actions:        walker.NewActionRegistry(),
		Rand:           rand.New(w.pcg),
		MaxWaitSeconds: cfg.Walker.MaxWaitSeconds,
	}
	action.Register(w.env.Actions)

	w.pool = spawn.NewFreeListPool(w.env, cfg.Walker.Speed, poolLimit(cfg.Spawners))

	for _, e := range cfg.Spawners {
		if err := w.addSpawner(e); err != nil {
			return nil, err
		}
	}
	w.ticks.AddPhase(w.spawners.TickAll)

	slog.Info("world created",
		"grid", fmt.Sprintf("%dx%d", g.Width(), g.Height()),
		"links", g.LinkCount(),
		"homes", w.homes.Count(),
		"spawners", w.spawners.Count())

	return w, nil
}

func (w *World) addSpawner(e config.SpawnerEntry) error {
	scfg, err := spawn.ConfigFromEntry(e, w.cfg.Walker)
	if err != nil {
		return fmt.Errorf("spawner %s: %w", e.Name, err)
	}

	s := spawn.NewSpawner(scfg, w.pool, w.ticks)
	s.Initialize(w.homeIDs[e.Home], nil, func(*walker.Walker) { w.despawned.Add(1) })
	s.OnSpawned(w.behavior(e))

	if err := w.spawners.Add(s); err != nil {
		return fmt.Errorf("adding spawner: %w", err)
	}
	return nil
}

// behavior returns the process a freshly spawned walker runs.
func (w *World) behavior(e config.SpawnerEntry) func(*walker.Walker) {
	switch e.Behavior {
	case config.BehaviorErrand:
		targets := make([]model.GridPoint, 0, len(e.Targets))
		for _, t := range e.Targets {
			targets = append(targets, cell(t))
		}
		return func(wk *walker.Walker) {
			wk.StartProcess([]walker.Action{
				&action.WalkTo{Targets: targets},
				&action.Wait{Seconds: w.cfg.Walker.Delay},
				&action.ReturnHome{},
			}, ProcessErrand)
		}
	default:
		roam := w.cfg.Roam
		return func(wk *walker.Walker) {
			wk.StartProcess([]walker.Action{
				&action.Roam{MaxMemory: roam.Memory, MaxSteps: roam.Steps},
				&action.ReturnHome{},
			}, ProcessRoam)
		}
	}
}

// poolLimit keeps as many idle walkers as spawners can hold at once.
func poolLimit(entries []config.SpawnerEntry) int {
	limit := 0
	for _, e := range entries {
		if e.MaxCount < 0 {
			return defaultPoolLimit
		}
		limit += e.MaxCount
	}
	return limit
}

// Grid returns the host grid.
func (w *World) Grid() *geo.Grid { return w.grid }

// Homes returns the home registry.
func (w *World) Homes() *world.Registry { return w.homes }

// Env returns the collaborators shared by all walkers.
func (w *World) Env() *walker.Env { return w.env }

// Ticks returns the tick manager driving the world.
func (w *World) Ticks() *TickManager { return w.ticks }

// Spawners returns the spawner manager.
func (w *World) Spawners() *spawn.Manager { return w.spawners }

// Pool returns the walker pool.
func (w *World) Pool() *spawn.FreeListPool { return w.pool }

// Despawned returns number of walkers finished since start.
func (w *World) Despawned() int64 { return w.despawned.Load() }

// RemoveHome destroys a home. Walkers bound to it vanish when they try to
// return.
func (w *World) RemoveHome(name string) bool {
	id, ok := w.homeIDs[name]
	if !ok {
		return false
	}
	w.homes.Remove(id)
	delete(w.homeIDs, name)
	return true
}

// Step runs one tick of the configured rate. Intended for tests and tools
// that drive the world without Start.
func (w *World) Step() {
	w.ticks.TickAll(w.ticks.Rate().Seconds())
}

// Walkers returns registered walkers sorted by id. Call between ticks.
func (w *World) Walkers() []*walker.Walker {
	var out []*walker.Walker
	for _, s := range w.spawners.Spawners() {
		out = append(out, s.Walkers()...)
	}
	sortWalkers(out)
	return out
}
