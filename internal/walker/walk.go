package walker

import (
	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
)

// PathFollowState tracks progress along a waypoint path.
type PathFollowState struct {
	path                *path.WaypointPath
	segmentIndex        int
	distanceIntoSegment float64
	delay               *WaitTimer // wind-up before motion; nil once moving

	onFinished func()
	onMoved    func(model.GridPoint)
}

// Path returns the path being followed.
func (s *PathFollowState) Path() *path.WaypointPath { return s.path }

// SegmentIndex returns the index of the waypoint the current segment starts at.
func (s *PathFollowState) SegmentIndex() int { return s.segmentIndex }

// DistanceIntoSegment returns distance covered within the current segment.
func (s *PathFollowState) DistanceIntoSegment() float64 { return s.distanceIntoSegment }

// Delay returns the pending wind-up timer, nil once motion started.
func (s *PathFollowState) Delay() *WaitTimer { return s.delay }

// HasEnded reports whether the follower reached the end or was canceled.
func (s *PathFollowState) HasEnded() bool { return s.path.HasEnded(s.segmentIndex) }

// Walk follows p: the walker snaps to the path start, waits delay seconds
// when delay > 0, then moves at its speed until the end. onFinished runs
// when the walk ends naturally or by cancellation (the generic finished
// handler when nil); onMoved runs at every waypoint reached.
// Returns ErrNoPath when p is nil or has no waypoints.
func (w *Walker) Walk(p *path.WaypointPath, delay float64, onFinished func(), onMoved func(model.GridPoint)) error {
	if p == nil || p.Length() == 0 {
		return ErrNoPath
	}
	w.startWalk(p, delay, onFinished, onMoved)
	return nil
}

// WalkTo plans a path from the current cell to the nearest of targets and walks it.
func (w *Walker) WalkTo(targets []model.GridPoint, delay float64, onFinished func(), onMoved func(model.GridPoint)) error {
	if w.env == nil || w.env.Paths == nil {
		return ErrNoPath
	}
	p := w.env.Paths.FindPath([]model.GridPoint{w.currentCell}, targets, w.movement, nil)
	return w.Walk(p, delay, onFinished, onMoved)
}

// CancelWalk requests cancellation of the active walk. The walker stops on
// the next tick at its interpolated position.
func (w *Walker) CancelWalk() {
	if w.walk != nil {
		w.walk.path.Cancel()
	}
}

func (w *Walker) startWalk(p *path.WaypointPath, delay float64, onFinished func(), onMoved func(model.GridPoint)) {
	w.clearMovement()

	w.startCell = p.StartPoint()
	w.currentCell = p.StartPoint()
	w.position = p.StartPosition()
	if p.Length() > 1 {
		w.setDirection(p.GetDirection(0))
	}

	s := &PathFollowState{
		path:       p,
		onFinished: onFinished,
		onMoved:    onMoved,
	}
	if delay > 0 {
		s.delay = NewWaitTimer(delay)
	}
	w.walk = s
	w.isMoving = s.delay == nil
}

func (w *Walker) advanceWalk(dt float64) {
	s := w.walk

	// Cancellation requested before this tick wins over completion.
	if s.path.IsCanceled() {
		w.endWalk(s, false)
		return
	}

	if s.delay != nil {
		s.delay.Advance(dt)
		if s.delay.Done() {
			s.delay = nil
			w.isMoving = true
		}
		return
	}

	if s.path.HasEnded(s.segmentIndex) {
		w.endWalk(s, true)
		return
	}

	w.isMoving = true
	s.distanceIntoSegment += w.speed * dt

	for {
		segment := s.path.GetSegmentDistance(s.segmentIndex)
		if s.distanceIntoSegment < segment {
			break
		}
		s.distanceIntoSegment -= segment
		s.segmentIndex++
		w.position = s.path.GetPosition(s.segmentIndex)

		w.reached(s.path.GetPoint(s.segmentIndex), s.onMoved)
		if w.walk != s {
			// onMoved replaced or dropped the walk
			return
		}

		if s.path.HasEnded(s.segmentIndex) {
			w.endWalk(s, !s.path.IsCanceled())
			return
		}
		w.setDirection(s.path.GetDirection(s.segmentIndex))
	}

	w.placeOnSegment(s)
}

func (w *Walker) placeOnSegment(s *PathFollowState) {
	if link, ok := s.path.GetLink(s.segmentIndex); ok {
		link.AdvancePosition(w, s.distanceIntoSegment, s.path.GetPoint(s.segmentIndex))
		return
	}
	from := s.path.GetPosition(s.segmentIndex)
	to := s.path.GetPosition(s.segmentIndex + 1)
	w.position = model.Lerp(from, to, s.distanceIntoSegment/s.path.GetSegmentDistance(s.segmentIndex))
}

// endWalk clears the walk; atEnd snaps the walker to the last waypoint.
func (w *Walker) endWalk(s *PathFollowState, atEnd bool) {
	if atEnd {
		w.position = s.path.EndPosition()
		w.currentCell = s.path.EndPoint()
	}
	w.walk = nil
	w.isMoving = false
	w.done(s.onFinished)
}
