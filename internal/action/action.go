// Package action provides the built-in process steps walkers run:
// waiting, walking to targets, roaming and returning home.
package action

import (
	"log/slog"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
	"github.com/udisondev/walkersim/internal/walker"
)

// Action kinds as stored in persisted processes.
const (
	KindWait       = "wait"
	KindWalkTo     = "walk_to"
	KindRoam       = "roam"
	KindReturnHome = "return_home"
)

// Register adds every built-in action to reg.
func Register(reg *walker.ActionRegistry) {
	reg.Register(KindWait, func() walker.Action { return &Wait{} })
	reg.Register(KindWalkTo, func() walker.Action { return &WalkTo{} })
	reg.Register(KindRoam, func() walker.Action { return &Roam{} })
	reg.Register(KindReturnHome, func() walker.Action { return &ReturnHome{} })
}

// Wait keeps the walker in place.
type Wait struct {
	Seconds float64 `json:"seconds"`
}

func (a *Wait) Kind() string { return KindWait }

func (a *Wait) Start(w *walker.Walker) { w.Wait(a.Seconds, w.ProcessAdvancer()) }

func (a *Wait) Continue(w *walker.Walker) {
	if !w.ContinueWait(w.ProcessAdvancer()) {
		a.Start(w)
	}
}

func (a *Wait) Cancel(w *walker.Walker) { w.CancelWait() }

func (a *Wait) End(*walker.Walker) {}

// WalkTo walks to the nearest of Targets, retrying while no path exists.
// If the retry times out the process moves on anyway.
type WalkTo struct {
	Targets []model.GridPoint `json:"targets"`
	Delay   float64           `json:"delay,omitempty"`
}

func (a *WalkTo) Kind() string { return KindWalkTo }

func (a *WalkTo) pathGetter(w *walker.Walker) func() *path.WaypointPath {
	return func() *path.WaypointPath {
		env := w.Env()
		if env == nil || env.Paths == nil || len(a.Targets) == 0 {
			return nil
		}
		return env.Paths.FindPath([]model.GridPoint{w.CurrentCell()}, a.Targets, w.Movement(), nil)
	}
}

func (a *WalkTo) Start(w *walker.Walker) {
	next := w.ProcessAdvancer()
	w.TryWalk(w.CurrentCell(), a.pathGetter(w), a.Delay, nil, next, nil, nil)
}

func (a *WalkTo) Continue(w *walker.Walker) {
	next := w.ProcessAdvancer()
	if !w.ContinueTryWalk(a.pathGetter(w), nil, next, nil, nil) {
		a.Start(w)
	}
}

func (a *WalkTo) Cancel(w *walker.Walker) { w.Cancel() }

func (a *WalkTo) End(*walker.Walker) {}

// Roam wanders around the walker's current cell.
type Roam struct {
	MaxMemory int `json:"max_memory"`
	MaxSteps  int `json:"max_steps"`
}

func (a *Roam) Kind() string { return KindRoam }

func (a *Roam) Start(w *walker.Walker) {
	w.Roam(w.CurrentCell(), a.MaxMemory, a.MaxSteps, w.Movement(), w.ProcessAdvancer(), nil)
}

func (a *Roam) Continue(w *walker.Walker) {
	if !w.ContinueRoam(w.ProcessAdvancer(), nil) {
		a.Start(w)
	}
}

func (a *Roam) Cancel(w *walker.Walker) { w.CancelRoam() }

func (a *Roam) End(*walker.Walker) {}

// ReturnHome walks to the entrance of the walker's home.
// A walker whose home is gone, or that cannot reach it, vanishes.
type ReturnHome struct{}

func (a *ReturnHome) Kind() string { return KindReturnHome }

func (a *ReturnHome) Start(w *walker.Walker) {
	home, ok := w.Home().Resolve()
	if !ok {
		slog.Debug("walker home gone, vanishing", "walkerID", w.ID(), "homeID", w.Home().ID())
		w.Finish()
		return
	}

	if err := w.WalkTo([]model.GridPoint{home.Entrance()}, 0, w.ProcessAdvancer(), nil); err != nil {
		slog.Debug("no path home, vanishing",
			"walkerID", w.ID(),
			"homeID", home.ID(),
			"cell", w.CurrentCell(),
			"error", err)
		w.Finish()
	}
}

func (a *ReturnHome) Continue(w *walker.Walker) {
	if w.ContinueWalk(w.ProcessAdvancer(), nil) {
		return
	}
	a.Start(w)
}

func (a *ReturnHome) Cancel(w *walker.Walker) { w.CancelWalk() }

func (a *ReturnHome) End(*walker.Walker) {}
