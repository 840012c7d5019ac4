package walker

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ActionFactory returns an empty action ready to be decoded into.
type ActionFactory func() Action

// ActionRegistry maps action kinds to factories so processes can be persisted.
type ActionRegistry struct {
	mu        sync.RWMutex
	factories map[string]ActionFactory
}

// NewActionRegistry creates an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{factories: make(map[string]ActionFactory)}
}

// Register adds factory for kind, replacing any previous one.
func (r *ActionRegistry) Register(kind string, factory ActionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Has reports whether kind is registered.
func (r *ActionRegistry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Encode captures a as a record. Action parameters are stored as JSON.
func (r *ActionRegistry) Encode(a Action) (ActionRecord, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return ActionRecord{}, fmt.Errorf("encoding action %q: %w", a.Kind(), err)
	}
	return ActionRecord{Kind: a.Kind(), Data: data}, nil
}

// Decode rebuilds an action from rec.
// Returns ErrUnknownAction if the kind is not registered.
func (r *ActionRegistry) Decode(rec ActionRecord) (Action, error) {
	r.mu.RLock()
	factory, ok := r.factories[rec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, rec.Kind)
	}

	a := factory()
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, a); err != nil {
			return nil, fmt.Errorf("decoding action %q: %w", rec.Kind, err)
		}
	}
	return a, nil
}
