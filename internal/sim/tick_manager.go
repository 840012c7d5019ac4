package sim

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/walker"
)

// DefaultTickRate is used when a TickManager is created with a non-positive rate.
const DefaultTickRate = 100 * time.Millisecond

// TickManager advances all registered walkers once per tick.
// Walkers may be registered and unregistered from inside a tick: each tick
// iterates a copy of the registration list and skips walkers removed
// meanwhile. Walkers registered during a tick start advancing on the next one.
type TickManager struct {
	rate time.Duration

	mu      sync.Mutex
	walkers map[uuid.UUID]registration
	order   []*walker.Walker // registration order
	epoch   uint64           // incremented when a tick starts

	// tickMu serializes ticks with Do.
	tickMu sync.Mutex
	phases []func(dt float64)

	tick        atomic.Uint64
	walkerCount atomic.Int32 // cached count of walkers (O(1) access)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTickManager creates a tick manager running at rate.
func NewTickManager(rate time.Duration) *TickManager {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &TickManager{
		rate:    rate,
		walkers: make(map[uuid.UUID]registration),
		stopCh:  make(chan struct{}),
	}
}

// Rate returns the tick interval.
func (m *TickManager) Rate() time.Duration { return m.rate }

// AddPhase runs fn at the start of every tick, before walkers advance.
// Phases run in the order they were added. Not safe during Start.
func (m *TickManager) AddPhase(fn func(dt float64)) {
	m.phases = append(m.phases, fn)
}

// Register implements spawn.Registrar.
func (m *TickManager) Register(w *walker.Walker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.walkers[w.ID()]; exists {
		return
	}
	m.walkers[w.ID()] = registration{walker: w, epoch: m.epoch}
	m.order = append(m.order, w)
	m.walkerCount.Add(1)

	if IsDebugEnabled() {
		slog.Debug("walker registered", "walkerID", w.ID(), "cell", w.CurrentCell())
	}
}

// Unregister implements spawn.Registrar.
func (m *TickManager) Unregister(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.walkers[id]
	if !ok {
		return
	}
	delete(m.walkers, id)
	m.order = slices.DeleteFunc(m.order, func(x *walker.Walker) bool { return x == reg.walker })
	m.walkerCount.Add(-1)

	if IsDebugEnabled() {
		slog.Debug("walker unregistered", "walkerID", id)
	}
}

// Count returns number of registered walkers (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.walkerCount.Load())
}

// Walker returns registered walker by id.
func (m *TickManager) Walker(id uuid.UUID) (*walker.Walker, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.walkers[id]
	return reg.walker, ok
}

// Walkers returns registered walkers in the order they advance.
func (m *TickManager) Walkers() []*walker.Walker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

// Tick returns number of completed ticks.
func (m *TickManager) Tick() uint64 { return m.tick.Load() }

// SetTick sets the tick counter, e.g. after restoring a snapshot.
func (m *TickManager) SetTick(n uint64) { m.tick.Store(n) }

// TickAll runs one simulation step of dt seconds.
func (m *TickManager) TickAll(dt float64) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.mu.Unlock()

	for _, phase := range m.phases {
		phase(dt)
	}

	m.mu.Lock()
	batch := slices.Clone(m.order)
	m.mu.Unlock()

	count := 0
	for _, w := range batch {
		if !m.ready(w, epoch) {
			continue
		}
		w.Advance(dt)
		count++
	}

	n := m.tick.Add(1)
	if count > 0 && IsDebugEnabled() {
		slog.Debug("tick completed", "tick", n, "walkers", count)
	}
}

// Do runs fn between ticks. Walkers are not safe to read while a tick runs.
func (m *TickManager) Do(fn func()) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	fn()
}

// Start runs the tick loop (blocks until context is canceled or Stop is called).
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.rate)
	defer ticker.Stop()

	dt := m.rate.Seconds()
	slog.Info("tick manager started", "interval", m.rate, "walkers", m.Count())

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping", "tick", m.Tick())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped", "tick", m.Tick())
			return nil

		case <-ticker.C:
			m.TickAll(dt)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

type registration struct {
	walker *walker.Walker
	epoch  uint64
}

// ready reports whether w is registered under its current id since before
// the tick with the given epoch. A pooled walker reused mid-tick carries a
// new registration and waits for the next tick.
func (m *TickManager) ready(w *walker.Walker, epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.walkers[w.ID()]
	return ok && reg.walker == w && reg.epoch < epoch
}
