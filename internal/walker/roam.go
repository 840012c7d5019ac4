package walker

import (
	"log/slog"
	"slices"

	"github.com/udisondev/walkersim/internal/model"
)

// RoamState tracks undirected wandering between adjacent cells.
type RoamState struct {
	current       model.GridPoint
	next          model.GridPoint
	distanceMoved float64
	stepCount     int
	maxSteps      int
	maxMemory     int
	memory        []model.GridPoint // oldest first
	movement      model.Movement
	canceled      bool

	finished func()
	onMoved  func(model.GridPoint)
}

// Current returns the cell the roamer last reached.
func (s *RoamState) Current() model.GridPoint { return s.current }

// Next returns the cell the roamer is heading to.
func (s *RoamState) Next() model.GridPoint { return s.next }

// DistanceMoved returns distance covered towards Next.
func (s *RoamState) DistanceMoved() float64 { return s.distanceMoved }

// StepCount returns number of cells reached so far.
func (s *RoamState) StepCount() int { return s.stepCount }

// MaxSteps returns the step count that ends the roam.
func (s *RoamState) MaxSteps() int { return s.maxSteps }

// Memory returns a copy of recently visited cells, oldest first.
func (s *RoamState) Memory() []model.GridPoint { return slices.Clone(s.memory) }

// Memorize moves cell to the most recent end of memory and evicts the
// oldest entries beyond maxMemory.
func Memorize(memory []model.GridPoint, cell model.GridPoint, maxMemory int) []model.GridPoint {
	if i := slices.Index(memory, cell); i >= 0 {
		memory = slices.Delete(memory, i, i+1)
	}
	memory = append(memory, cell)
	if maxMemory < 0 {
		maxMemory = 0
	}
	if over := len(memory) - maxMemory; over > 0 {
		memory = slices.Delete(memory, 0, over)
	}
	return memory
}

// SelectRoamCell picks the next roam cell among candidates:
//   - no candidates: stay at current
//   - exactly one never-visited candidate: that one
//   - several never-visited candidates: uniformly random among them
//   - all visited: the one visited longest ago (smallest memory index)
//
// intN returns a uniform int in [0, n).
func SelectRoamCell(current model.GridPoint, candidates, memory []model.GridPoint, intN func(n int) int) model.GridPoint {
	if len(candidates) == 0 {
		return current
	}

	var fresh []model.GridPoint
	for _, c := range candidates {
		if !slices.Contains(memory, c) {
			fresh = append(fresh, c)
		}
	}

	switch len(fresh) {
	case 0:
	case 1:
		return fresh[0]
	default:
		return fresh[intN(len(fresh))]
	}

	best := candidates[0]
	bestIndex := slices.Index(memory, best)
	for _, c := range candidates[1:] {
		if i := slices.Index(memory, c); i < bestIndex {
			best, bestIndex = c, i
		}
	}
	return best
}

// Roam wanders from start for maxSteps cells, preferring cells not among
// the last maxMemory visited. With maxSteps <= 0 the roam ends on the first
// tick without leaving start. finished runs when the roam ends (the generic
// finished handler when nil); onMoved runs at every cell reached.
func (w *Walker) Roam(start model.GridPoint, maxMemory, maxSteps int, movement model.Movement, finished func(), onMoved func(model.GridPoint)) {
	w.clearMovement()

	s := &RoamState{
		current:   start,
		maxSteps:  maxSteps,
		maxMemory: maxMemory,
		movement:  movement,
		finished:  finished,
		onMoved:   onMoved,
	}
	s.memory = Memorize(s.memory, start, maxMemory)

	w.startCell = start
	w.currentCell = start
	w.position = w.cellPosition(start)
	w.roam = s
	w.isMoving = true

	if maxSteps > 0 {
		w.pickNext(s)
	}
}

// CancelRoam requests cancellation of the active roam.
func (w *Walker) CancelRoam() {
	if w.roam != nil {
		w.roam.canceled = true
	}
}

func (w *Walker) pickNext(s *RoamState) {
	var candidates []model.GridPoint
	if w.env != nil && w.env.Neighbors != nil {
		candidates = w.env.Neighbors.Adjacent(s.current, s.movement)
	}
	s.next = SelectRoamCell(s.current, candidates, s.memory, w.env.intN)

	if IsDebugEnabled() {
		slog.Debug("roam next cell",
			"walkerID", w.id,
			"current", s.current,
			"next", s.next,
			"candidates", len(candidates),
			"memory", len(s.memory))
	}

	w.setDirection(w.cellPosition(s.next).Sub(w.cellPosition(s.current)).Normalize())
}

func (w *Walker) roamSegment(s *RoamState) float64 {
	if link, ok := w.env.space().Link(s.current, s.next, s.movement); ok {
		return link.Distance()
	}
	return w.cellPosition(s.current).Distance(w.cellPosition(s.next))
}

func (w *Walker) advanceRoam(dt float64) {
	s := w.roam

	if s.canceled {
		w.endRoam(s, false)
		return
	}
	if s.maxSteps <= 0 {
		w.endRoam(s, true)
		return
	}

	s.distanceMoved += w.speed * dt

	stepped := false
	for {
		segment := w.roamSegment(s)
		if s.distanceMoved < segment || (segment == 0 && stepped) {
			break
		}
		stepped = true
		s.distanceMoved -= segment
		reached := s.next
		w.position = w.cellPosition(reached)

		w.reached(reached, s.onMoved)
		if w.roam != s {
			return
		}

		s.current = reached
		s.stepCount++
		if s.stepCount >= s.maxSteps {
			w.endRoam(s, true)
			return
		}
		s.memory = Memorize(s.memory, s.current, s.maxMemory)
		w.pickNext(s)
	}

	if link, ok := w.env.space().Link(s.current, s.next, s.movement); ok {
		link.AdvancePosition(w, s.distanceMoved, s.current)
		return
	}
	segment := w.roamSegment(s)
	if segment == 0 {
		w.position = w.cellPosition(s.current)
		return
	}
	w.position = model.Lerp(w.cellPosition(s.current), w.cellPosition(s.next), s.distanceMoved/segment)
}

func (w *Walker) endRoam(s *RoamState, atCell bool) {
	if atCell {
		w.position = w.cellPosition(s.current)
		w.currentCell = s.current
	}
	w.roam = nil
	w.isMoving = false
	w.done(s.finished)
}
