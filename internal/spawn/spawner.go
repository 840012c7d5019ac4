package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/walker"
)

// Unlimited disables the population cap.
const Unlimited = -1

var (
	// ErrNotInitialized is returned by Spawn and Integrate before Initialize.
	ErrNotInitialized = errors.New("spawner not initialized")
	// ErrNoCapacity is returned when the spawner is at its maximum count.
	ErrNoCapacity = errors.New("spawner at capacity")
	// ErrRejected is returned when the onSpawning predicate vetoes a spawn.
	ErrRejected = errors.New("spawn rejected")
)

// Registrar is the scheduling collaborator that ticks walkers.
type Registrar interface {
	Register(w *walker.Walker)
	Unregister(id uuid.UUID)
}

// Pool hands out walkers and takes them back after they finish.
type Pool interface {
	Get() *walker.Walker
	Put(w *walker.Walker)
}

// Config describes the walkers a spawner produces.
type Config struct {
	Name     string
	MaxCount int     // Unlimited for no cap
	Interval float64 // seconds between automatic spawns, 0 = manual only
	Cell     model.GridPoint
	Speed    float64
	Delay    float64
	Movement model.Movement
}

// Spawner is a bounded-population walker factory.
// Spawn, Integrate and Tick run on the tick goroutine; Count is safe anywhere.
type Spawner struct {
	cfg       Config
	pool      Pool
	registrar Registrar

	home        uuid.UUID
	onSpawning  func() bool
	onFinished  func(*walker.Walker)
	onSpawned   func(*walker.Walker)
	initialized bool

	mu     sync.Mutex
	active map[uuid.UUID]*walker.Walker
	count  atomic.Int32

	cooldown float64
}

// NewSpawner creates a spawner. Initialize must be called before use.
func NewSpawner(cfg Config, pool Pool, registrar Registrar) *Spawner {
	return &Spawner{
		cfg:       cfg,
		pool:      pool,
		registrar: registrar,
		active:    make(map[uuid.UUID]*walker.Walker),
	}
}

// Initialize binds the spawner to home. onSpawning may veto a spawn;
// onFinished runs once per walker after it has been deregistered and
// before it goes back to the pool. Both may be nil.
func (s *Spawner) Initialize(home uuid.UUID, onSpawning func() bool, onFinished func(*walker.Walker)) {
	s.home = home
	s.onSpawning = onSpawning
	s.onFinished = onFinished
	s.initialized = true
}

// OnSpawned sets the behavior started on every freshly spawned walker.
// Integrated walkers do not run it; they continue their restored state.
func (s *Spawner) OnSpawned(fn func(*walker.Walker)) { s.onSpawned = fn }

// Name returns spawner name.
func (s *Spawner) Name() string { return s.cfg.Name }

// Config returns the spawner configuration.
func (s *Spawner) Config() Config { return s.cfg }

// Home returns the home id walkers are bound to.
func (s *Spawner) Home() uuid.UUID { return s.home }

// Count returns number of active walkers.
func (s *Spawner) Count() int { return int(s.count.Load()) }

// HasCapacity reports whether another walker may be spawned.
func (s *Spawner) HasCapacity() bool {
	if s.cfg.MaxCount == Unlimited {
		return true
	}
	return s.Count() < s.cfg.MaxCount
}

// Spawn creates a walker at the spawn cell and registers it.
func (s *Spawner) Spawn() (*walker.Walker, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if !s.HasCapacity() {
		return nil, fmt.Errorf("spawner %s (%d/%d): %w", s.cfg.Name, s.Count(), s.cfg.MaxCount, ErrNoCapacity)
	}
	if s.onSpawning != nil && !s.onSpawning() {
		return nil, fmt.Errorf("spawner %s: %w", s.cfg.Name, ErrRejected)
	}

	w := s.pool.Get()
	w.SetSpeed(s.cfg.Speed)
	w.SetDelay(s.cfg.Delay)
	w.SetMovement(s.cfg.Movement)
	w.Place(s.cfg.Cell)

	if err := s.Integrate(w); err != nil {
		s.pool.Put(w)
		return nil, err
	}

	slog.Debug("walker spawned",
		"spawner", s.cfg.Name,
		"walkerID", w.ID(),
		"cell", s.cfg.Cell,
		"count", s.Count())

	if s.onSpawned != nil {
		s.onSpawned(w)
	}
	return w, nil
}

// Integrate adopts an existing walker, e.g. one restored from a snapshot.
// Walkers without a home are bound to the spawner's home.
func (s *Spawner) Integrate(w *walker.Walker) error {
	if !s.initialized {
		return ErrNotInitialized
	}

	s.mu.Lock()
	if _, exists := s.active[w.ID()]; exists {
		s.mu.Unlock()
		return nil
	}
	if s.cfg.MaxCount != Unlimited && len(s.active) >= s.cfg.MaxCount {
		s.mu.Unlock()
		return fmt.Errorf("spawner %s integrating %s: %w", s.cfg.Name, w.ID(), ErrNoCapacity)
	}
	s.active[w.ID()] = w
	s.count.Add(1)
	s.mu.Unlock()

	if w.Home().IsEmpty() && s.home != uuid.Nil {
		w.SetHome(s.home)
	}
	w.SetFinishHandler(s.walkerFinished)

	if s.registrar != nil {
		s.registrar.Register(w)
	}
	return nil
}

// Walkers returns active walkers in no particular order.
func (s *Spawner) Walkers() []*walker.Walker {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*walker.Walker, 0, len(s.active))
	for _, w := range s.active {
		out = append(out, w)
	}
	return out
}

// Tick runs the automatic spawn cycle. The cooldown only runs down while
// the spawner has capacity, so a freed slot is refilled one interval later.
func (s *Spawner) Tick(dt float64) {
	if s.cfg.Interval <= 0 || !s.initialized {
		return
	}
	if !s.HasCapacity() {
		return
	}

	s.cooldown -= dt
	if s.cooldown > 0 {
		return
	}
	s.cooldown = s.cfg.Interval

	if _, err := s.Spawn(); err != nil {
		slog.Debug("cyclic spawn skipped", "spawner", s.cfg.Name, "error", err)
	}
}

// Cooldown returns seconds until the next automatic spawn.
func (s *Spawner) Cooldown() float64 { return s.cooldown }

// walkerFinished removes w exactly once: deregister, notify, return to pool.
func (s *Spawner) walkerFinished(w *walker.Walker) {
	id := w.ID()

	s.mu.Lock()
	if _, ok := s.active[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	s.count.Add(-1)
	s.mu.Unlock()

	if s.registrar != nil {
		s.registrar.Unregister(id)
	}
	if s.onFinished != nil {
		s.onFinished(w)
	}

	slog.Debug("walker despawned", "spawner", s.cfg.Name, "walkerID", id, "count", s.Count())

	s.pool.Put(w)
}
