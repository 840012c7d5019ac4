package walker

import (
	"log/slog"
	"math"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
)

// WaitTimer is a resumable countdown.
// Elapsed grows until it reaches Duration or the timer is canceled.
type WaitTimer struct {
	duration float64
	elapsed  float64
	canceled bool
}

// NewWaitTimer creates a timer that is done after duration seconds.
func NewWaitTimer(duration float64) *WaitTimer {
	return &WaitTimer{duration: duration}
}

// Advance adds dt to elapsed time. Canceled timers do not advance.
func (t *WaitTimer) Advance(dt float64) {
	if t.canceled || dt <= 0 {
		return
	}
	t.elapsed += dt
}

// Done reports whether elapsed reached duration.
func (t *WaitTimer) Done() bool { return t.elapsed >= t.duration }

// Cancel marks the timer canceled; the owner stops it on its next tick.
func (t *WaitTimer) Cancel() { t.canceled = true }

// IsCanceled reports whether Cancel was called.
func (t *WaitTimer) IsCanceled() bool { return t.canceled }

// Duration returns target duration in seconds.
func (t *WaitTimer) Duration() float64 { return t.duration }

// Elapsed returns seconds waited so far.
func (t *WaitTimer) Elapsed() float64 { return t.elapsed }

// Remaining returns seconds left, never negative.
func (t *WaitTimer) Remaining() float64 { return math.Max(0, t.duration-t.elapsed) }

// waitState is the Waiting mode: a plain wait or a TryWalk retry loop.
type waitState struct {
	timer    *WaitTimer
	finished func()
	retry    *retryState
}

// retryState polls for a path once per whole second while the timer runs.
type retryState struct {
	waitCell model.GridPoint
	getter   func() *path.WaypointPath
	delay    float64
	nextPoll float64

	planned  func()
	canceled func()
	onMoved  func(model.GridPoint)
}

// Wait keeps the walker in place for duration seconds, then runs finished
// (the generic finished handler when nil).
func (w *Walker) Wait(duration float64, finished func()) {
	w.clearMovement()
	w.wait = &waitState{timer: NewWaitTimer(duration), finished: finished}
}

// Delay waits for the walker's configured delay.
func (w *Walker) Delay(finished func()) {
	w.Wait(w.delay, finished)
}

// TryWalk plans a walk that may be temporarily blocked.
// pathGetter is polled now and then once per whole second while the walker
// parks at waitCell. When a path appears, planned runs and the walk starts
// with the part of delay not already spent waiting. After the walker's max
// wait the retry gives up and runs canceled (finished when canceled is nil).
func (w *Walker) TryWalk(
	waitCell model.GridPoint,
	pathGetter func() *path.WaypointPath,
	delay float64,
	planned, finished, canceled func(),
	onMoved func(model.GridPoint),
) {
	w.clearMovement()

	if p := pathGetter(); hasWaypoints(p) {
		if planned != nil {
			planned()
		}
		w.startWalk(p, delay, finished, onMoved)
		return
	}

	w.wait = &waitState{
		timer:    NewWaitTimer(w.env.maxWait()),
		finished: finished,
		retry: &retryState{
			waitCell: waitCell,
			getter:   pathGetter,
			delay:    delay,
			nextPoll: 1,
			planned:  planned,
			canceled: canceled,
			onMoved:  onMoved,
		},
	}
	w.park(waitCell)
}

// CancelWait requests cancellation of a running wait or retry.
func (w *Walker) CancelWait() {
	if w.wait != nil {
		w.wait.timer.Cancel()
	}
}

func (w *Walker) park(cell model.GridPoint) {
	w.currentCell = cell
	w.position = w.cellPosition(cell)
	w.isMoving = false
}

func (w *Walker) advanceWait(dt float64) {
	s := w.wait
	if s.timer.IsCanceled() {
		w.wait = nil
		w.done(s.finished)
		return
	}

	s.timer.Advance(dt)

	if s.retry != nil {
		w.advanceRetry(s)
		return
	}

	if s.timer.Done() {
		w.wait = nil
		w.done(s.finished)
	}
}

func (w *Walker) advanceRetry(s *waitState) {
	r := s.retry

	if s.timer.Done() {
		w.wait = nil
		slog.Debug("walk retry timed out",
			"walkerID", w.id,
			"waitCell", r.waitCell,
			"waited", s.timer.Elapsed())
		if r.canceled != nil {
			r.canceled()
			return
		}
		w.done(s.finished)
		return
	}

	if s.timer.Elapsed() < r.nextPoll {
		return
	}
	r.nextPoll = math.Floor(s.timer.Elapsed()) + 1

	p := r.getter()
	if !hasWaypoints(p) {
		w.park(r.waitCell)
		return
	}

	remaining := math.Max(0, r.delay-s.timer.Elapsed())
	w.wait = nil
	if r.planned != nil {
		r.planned()
	}
	w.startWalk(p, remaining, s.finished, r.onMoved)
}

func hasWaypoints(p *path.WaypointPath) bool {
	return p != nil && p.Length() > 0
}
