package world

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/model"
)

// Home is a structure walkers belong to and return to.
// The engine only needs its identity, its entrance cell and whether it still exists.
type Home struct {
	id       uuid.UUID
	name     string
	entrance model.GridPoint
	removed  atomic.Bool
}

// NewHome creates a home with the given entrance cell.
// A zero id is replaced with a fresh random one.
func NewHome(id uuid.UUID, name string, entrance model.GridPoint) *Home {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Home{id: id, name: name, entrance: entrance}
}

// ID returns stable home identity.
func (h *Home) ID() uuid.UUID { return h.id }

// Name returns display name.
func (h *Home) Name() string { return h.name }

// Entrance returns the cell walkers walk to when returning home.
func (h *Home) Entrance() model.GridPoint { return h.entrance }

// IsAlive reports whether the home has not been removed from its registry.
func (h *Home) IsAlive() bool { return !h.removed.Load() }

// HomeRef is a weak reference to a Home: an id resolved lazily through a registry.
// A ref outlives the home it points to; callers must check Resolve's result.
type HomeRef struct {
	id       uuid.UUID
	registry *Registry
}

// NewHomeRef creates a reference to home id in r.
func NewHomeRef(r *Registry, id uuid.UUID) HomeRef {
	return HomeRef{id: id, registry: r}
}

// ID returns referenced home id (uuid.Nil for an empty ref).
func (ref HomeRef) ID() uuid.UUID { return ref.id }

// IsEmpty reports whether the ref points nowhere.
func (ref HomeRef) IsEmpty() bool { return ref.id == uuid.Nil }

// Resolve returns the home if it still exists.
func (ref HomeRef) Resolve() (*Home, bool) {
	if ref.id == uuid.Nil || ref.registry == nil {
		return nil, false
	}
	h, ok := ref.registry.Get(ref.id)
	if !ok || !h.IsAlive() {
		return nil, false
	}
	return h, true
}

// IsValid reports whether the referenced home still exists.
func (ref HomeRef) IsValid() bool {
	_, ok := ref.Resolve()
	return ok
}
