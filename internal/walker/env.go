package walker

import (
	"errors"
	"math/rand/v2"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
	"github.com/udisondev/walkersim/internal/world"
)

// DefaultMaxWaitSeconds bounds TryWalk retries when Env does not set it.
const DefaultMaxWaitSeconds = 5.0

var (
	// ErrNoPath is returned when a walk is requested without a path.
	ErrNoPath = errors.New("no path")
	// ErrUnknownAction is returned when a persisted action kind is not registered.
	ErrUnknownAction = errors.New("unknown action kind")
)

// Env holds the collaborators walkers read. Walkers never mutate them.
// One Env is shared by all walkers of a simulation.
type Env struct {
	Space     *path.Space
	Paths     path.Provider
	Neighbors path.Neighbors
	Homes     *world.Registry
	Actions   *ActionRegistry

	// Rand drives the random roam choice. nil falls back to the global source.
	Rand *rand.Rand

	// MaxWaitSeconds bounds TryWalk retries.
	MaxWaitSeconds float64
}

func (e *Env) space() *path.Space {
	if e == nil {
		return nil
	}
	return e.Space
}

func (e *Env) maxWait() float64 {
	if e == nil || e.MaxWaitSeconds <= 0 {
		return DefaultMaxWaitSeconds
	}
	return e.MaxWaitSeconds
}

func (e *Env) intN(n int) int {
	if e != nil && e.Rand != nil {
		return e.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (e *Env) homes() *world.Registry {
	if e == nil {
		return nil
	}
	return e.Homes
}

// Hooks are optional notifications a host attaches to a walker.
type Hooks struct {
	// DirectionChanged fires when the walker starts a new segment.
	DirectionChanged func(w *Walker, dir model.Vec3)
	// Moved fires each time the walker reaches a waypoint or roam cell.
	Moved func(w *Walker, cell model.GridPoint)
	// Finished replaces the default finished handler (Finish) used when a
	// mode is started without its own callback.
	Finished func(w *Walker)
	// ProcessFinished replaces the default process completion handler (Finish).
	ProcessFinished func(w *Walker)
}
