package spawn

import (
	"slices"

	"github.com/google/uuid"
)

// Record is the persisted state of a spawner.
// Walkers are persisted separately; the spawner keeps only their ids.
type Record struct {
	Name     string      `json:"name"`
	Cooldown float64     `json:"cooldown"`
	Walkers  []uuid.UUID `json:"walkers,omitempty"`
}

// Record captures spawner state. Walker ids are sorted for stable output.
func (s *Spawner) Record() Record {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })

	return Record{
		Name:     s.cfg.Name,
		Cooldown: s.cooldown,
		Walkers:  ids,
	}
}

// Restore applies the persisted cooldown. Walkers are brought back through Integrate.
func (s *Spawner) Restore(rec Record) {
	s.cooldown = rec.Cooldown
}
