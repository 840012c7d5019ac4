package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Registry tracks live homes by id.
// Thread-safe: homes are added and removed outside the tick goroutine.
type Registry struct {
	homes     sync.Map // map[uuid.UUID]*Home
	homeCount atomic.Int32
}

// NewRegistry creates an empty home registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers home. Returns error if a home with the same id exists.
func (r *Registry) Add(h *Home) error {
	if _, loaded := r.homes.LoadOrStore(h.ID(), h); loaded {
		return fmt.Errorf("home %s already registered", h.ID())
	}
	r.homeCount.Add(1)
	return nil
}

// Remove unregisters home; existing refs stop resolving.
func (r *Registry) Remove(id uuid.UUID) {
	value, ok := r.homes.LoadAndDelete(id)
	if !ok {
		return
	}
	value.(*Home).removed.Store(true)
	r.homeCount.Add(-1)
}

// Get returns home by id.
func (r *Registry) Get(id uuid.UUID) (*Home, bool) {
	value, ok := r.homes.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*Home), true
}

// Ref returns a weak reference to home id.
func (r *Registry) Ref(id uuid.UUID) HomeRef {
	return NewHomeRef(r, id)
}

// Count returns number of registered homes (O(1) cached count).
func (r *Registry) Count() int {
	return int(r.homeCount.Load())
}

// ForEach calls fn for every registered home until fn returns false.
func (r *Registry) ForEach(fn func(*Home) bool) {
	r.homes.Range(func(_, value any) bool {
		return fn(value.(*Home))
	})
}
