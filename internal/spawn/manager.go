package spawn

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Manager owns all spawners of a simulation.
type Manager struct {
	spawners     sync.Map // name → *Spawner
	spawnerCount atomic.Int32
}

// NewManager creates empty spawn manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add registers spawner. Names are unique.
func (m *Manager) Add(s *Spawner) error {
	if _, loaded := m.spawners.LoadOrStore(s.Name(), s); loaded {
		return fmt.Errorf("spawner %q already registered", s.Name())
	}
	m.spawnerCount.Add(1)

	slog.Debug("spawner registered",
		"spawner", s.Name(),
		"maxCount", s.Config().MaxCount,
		"interval", s.Config().Interval)
	return nil
}

// Get returns spawner by name.
func (m *Manager) Get(name string) (*Spawner, bool) {
	value, ok := m.spawners.Load(name)
	if !ok {
		return nil, false
	}
	return value.(*Spawner), true
}

// Count returns number of spawners (O(1) cached count).
func (m *Manager) Count() int {
	return int(m.spawnerCount.Load())
}

// Spawners returns all spawners sorted by name.
func (m *Manager) Spawners() []*Spawner {
	out := make([]*Spawner, 0, m.Count())
	m.spawners.Range(func(_, value any) bool {
		out = append(out, value.(*Spawner))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// TickAll runs the spawn cycle of every spawner in name order.
func (m *Manager) TickAll(dt float64) {
	for _, s := range m.Spawners() {
		s.Tick(dt)
	}
}

// SpawnAll fills every spawner up to its maximum count.
// Unlimited spawners get one walker. Returns number of walkers spawned.
func (m *Manager) SpawnAll() int {
	total := 0
	for _, s := range m.Spawners() {
		want := s.Config().MaxCount - s.Count()
		if s.Config().MaxCount == Unlimited {
			want = 1
		}
		for range want {
			if _, err := s.Spawn(); err != nil {
				slog.Warn("initial spawn failed", "spawner", s.Name(), "error", err)
				break
			}
			total++
		}
	}

	slog.Info("initial spawn completed", "spawners", m.Count(), "walkers", total)
	return total
}

// Records captures every spawner in name order.
func (m *Manager) Records() []Record {
	spawners := m.Spawners()
	out := make([]Record, 0, len(spawners))
	for _, s := range spawners {
		out = append(out, s.Record())
	}
	return out
}

// ActiveCount returns number of active walkers over all spawners.
func (m *Manager) ActiveCount() int {
	total := 0
	m.spawners.Range(func(_, value any) bool {
		total += value.(*Spawner).Count()
		return true
	})
	return total
}
