package walker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
	"github.com/udisondev/walkersim/internal/world"
)

// Record is the flat persisted form of a walker and its active modes.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	HomeID    uuid.UUID       `json:"home_id"`
	Movement  model.Movement  `json:"movement"`
	Speed     float64         `json:"speed"`
	Delay     float64         `json:"delay,omitempty"`
	Cell      model.GridPoint `json:"cell"`
	StartCell model.GridPoint `json:"start_cell"`
	Position  model.Vec3      `json:"position"`
	Direction model.Vec3      `json:"direction"`
	IsMoving  bool            `json:"is_moving"`

	Walk    *PathFollowRecord `json:"walk,omitempty"`
	Roam    *RoamRecord       `json:"roam,omitempty"`
	Wait    *WaitRecord       `json:"wait,omitempty"`
	Process *ProcessRecord    `json:"process,omitempty"`
}

// WaitTimerRecord is the persisted form of a WaitTimer.
type WaitTimerRecord struct {
	Duration float64 `json:"duration"`
	Elapsed  float64 `json:"elapsed"`
	Canceled bool    `json:"canceled,omitempty"`
}

// PathFollowRecord is the persisted form of a PathFollowState.
type PathFollowRecord struct {
	Path                path.Record      `json:"path"`
	SegmentIndex        int              `json:"segment_index"`
	DistanceIntoSegment float64          `json:"distance_into_segment"`
	Delay               *WaitTimerRecord `json:"delay,omitempty"`
}

// RoamRecord is the persisted form of a RoamState.
type RoamRecord struct {
	Current       model.GridPoint   `json:"current"`
	Next          model.GridPoint   `json:"next"`
	DistanceMoved float64           `json:"distance_moved"`
	StepCount     int               `json:"step_count"`
	MaxSteps      int               `json:"max_steps"`
	MaxMemory     int               `json:"max_memory"`
	Memory        []model.GridPoint `json:"memory"`
	Movement      model.Movement    `json:"movement"`
	Canceled      bool              `json:"canceled,omitempty"`
}

// WaitRecord is the persisted form of the Waiting mode.
// Retry is set when the wait is a TryWalk retry loop.
type WaitRecord struct {
	Timer WaitTimerRecord `json:"timer"`
	Retry *RetryRecord    `json:"retry,omitempty"`
}

// RetryRecord holds TryWalk retry progress.
type RetryRecord struct {
	WaitCell model.GridPoint `json:"wait_cell"`
	Delay    float64         `json:"delay"`
	NextPoll float64         `json:"next_poll"`
}

// ProcessRecord is the persisted form of a ProcessState.
type ProcessRecord struct {
	Key     string         `json:"key,omitempty"`
	Index   int            `json:"index"`
	Actions []ActionRecord `json:"actions"`
}

// ActionRecord is one persisted action: its kind and JSON encoded parameters.
type ActionRecord struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

var errNoActionRegistry = errors.New("no action registry")

// Mode returns the mode the walker resumes into.
func (r Record) Mode() model.Mode {
	switch {
	case r.Wait != nil:
		return model.ModeWaiting
	case r.Walk != nil && r.Walk.Delay != nil:
		return model.ModeWaiting
	case r.Walk != nil:
		return model.ModeWalking
	case r.Roam != nil:
		return model.ModeRoaming
	default:
		return model.ModeIdle
	}
}

func timerRecord(t *WaitTimer) WaitTimerRecord {
	return WaitTimerRecord{Duration: t.duration, Elapsed: t.elapsed, Canceled: t.canceled}
}

func timerFromRecord(r WaitTimerRecord) *WaitTimer {
	return &WaitTimer{duration: r.Duration, elapsed: r.Elapsed, canceled: r.Canceled}
}

// Record captures the walker. Callbacks are not captured; owners re-supply
// them through the Continue* methods after Restore.
func (w *Walker) Record() (Record, error) {
	rec := Record{
		ID:        w.id,
		HomeID:    w.home.ID(),
		Movement:  w.movement,
		Speed:     w.speed,
		Delay:     w.delay,
		Cell:      w.currentCell,
		StartCell: w.startCell,
		Position:  w.position,
		Direction: w.direction,
		IsMoving:  w.isMoving,
	}

	if s := w.walk; s != nil {
		rec.Walk = &PathFollowRecord{
			Path:                s.path.Record(),
			SegmentIndex:        s.segmentIndex,
			DistanceIntoSegment: s.distanceIntoSegment,
		}
		if s.delay != nil {
			d := timerRecord(s.delay)
			rec.Walk.Delay = &d
		}
	}

	if s := w.roam; s != nil {
		rec.Roam = &RoamRecord{
			Current:       s.current,
			Next:          s.next,
			DistanceMoved: s.distanceMoved,
			StepCount:     s.stepCount,
			MaxSteps:      s.maxSteps,
			MaxMemory:     s.maxMemory,
			Memory:        s.Memory(),
			Movement:      s.movement,
			Canceled:      s.canceled,
		}
	}

	if s := w.wait; s != nil {
		rec.Wait = &WaitRecord{Timer: timerRecord(s.timer)}
		if r := s.retry; r != nil {
			rec.Wait.Retry = &RetryRecord{WaitCell: r.waitCell, Delay: r.delay, NextPoll: r.nextPoll}
		}
	}

	if s := w.process; s != nil {
		if w.env == nil || w.env.Actions == nil {
			return Record{}, fmt.Errorf("recording process of walker %s: %w", w.id, errNoActionRegistry)
		}
		pr := &ProcessRecord{Key: s.key, Index: s.index, Actions: make([]ActionRecord, 0, len(s.actions))}
		for _, a := range s.actions {
			ar, err := w.env.Actions.Encode(a)
			if err != nil {
				return Record{}, fmt.Errorf("recording process of walker %s: %w", w.id, err)
			}
			pr.Actions = append(pr.Actions, ar)
		}
		rec.Process = pr
	}

	return rec, nil
}

// Restore loads identity, placement and flags from rec and keeps the mode
// records pending. Nothing ticks until the owner calls Resume or the
// Continue* method matching the mode it started before the save.
// A home that no longer exists is logged and left as a dangling ref.
func (w *Walker) Restore(rec Record) {
	w.clearMovement()
	w.process = nil
	w.finished = false

	w.id = rec.ID
	w.home = world.NewHomeRef(w.env.homes(), rec.HomeID)
	w.movement = rec.Movement
	w.speed = rec.Speed
	w.delay = rec.Delay
	w.currentCell = rec.Cell
	w.startCell = rec.StartCell
	w.position = rec.Position
	w.direction = rec.Direction
	w.isMoving = rec.IsMoving

	if rec.HomeID != uuid.Nil && !w.home.IsValid() {
		slog.Warn("restored walker references missing home",
			"walkerID", w.id,
			"homeID", rec.HomeID)
	}

	pending := rec
	w.restored = &pending
}

// Restored returns the pending record left by Restore, nil once consumed.
func (w *Walker) Restored() *Record { return w.restored }

// ContinueWalk resumes a restored walk from its saved segment and offset,
// without the initial snap and direction notification.
// Reports false if no walk was pending.
func (w *Walker) ContinueWalk(onFinished func(), onMoved func(model.GridPoint)) bool {
	if w.restored == nil || w.restored.Walk == nil {
		return false
	}
	r := w.restored.Walk
	w.restored.Walk = nil

	s := &PathFollowState{
		path:                path.FromRecord(w.env.space(), r.Path),
		segmentIndex:        r.SegmentIndex,
		distanceIntoSegment: r.DistanceIntoSegment,
		onFinished:          onFinished,
		onMoved:             onMoved,
	}
	if r.Delay != nil {
		s.delay = timerFromRecord(*r.Delay)
	}

	w.walk = s
	w.roam = nil
	w.wait = nil
	w.isMoving = s.delay == nil
	return true
}

// ContinueRoam resumes a restored roam. Reports false if no roam was pending.
func (w *Walker) ContinueRoam(finished func(), onMoved func(model.GridPoint)) bool {
	if w.restored == nil || w.restored.Roam == nil {
		return false
	}
	r := w.restored.Roam
	w.restored.Roam = nil

	w.roam = &RoamState{
		current:       r.Current,
		next:          r.Next,
		distanceMoved: r.DistanceMoved,
		stepCount:     r.StepCount,
		maxSteps:      r.MaxSteps,
		maxMemory:     r.MaxMemory,
		memory:        append([]model.GridPoint(nil), r.Memory...),
		movement:      r.Movement,
		canceled:      r.Canceled,
		finished:      finished,
		onMoved:       onMoved,
	}
	w.walk = nil
	w.wait = nil
	w.isMoving = true
	return true
}

// ContinueWait resumes a restored plain wait. Reports false if none was pending.
func (w *Walker) ContinueWait(finished func()) bool {
	if w.restored == nil || w.restored.Wait == nil || w.restored.Wait.Retry != nil {
		return false
	}
	r := w.restored.Wait
	w.restored.Wait = nil

	w.wait = &waitState{timer: timerFromRecord(r.Timer), finished: finished}
	w.walk = nil
	w.roam = nil
	w.isMoving = false
	return true
}

// ContinueTryWalk resumes a restored TryWalk: the retry loop when it was
// still waiting for a path, or the walk it had already started.
// Reports false if neither was pending.
func (w *Walker) ContinueTryWalk(
	pathGetter func() *path.WaypointPath,
	planned, finished, canceled func(),
	onMoved func(model.GridPoint),
) bool {
	if w.restored == nil {
		return false
	}
	if r := w.restored.Wait; r != nil && r.Retry != nil {
		w.restored.Wait = nil
		w.wait = &waitState{
			timer:    timerFromRecord(r.Timer),
			finished: finished,
			retry: &retryState{
				waitCell: r.Retry.WaitCell,
				getter:   pathGetter,
				delay:    r.Retry.Delay,
				nextPoll: r.Retry.NextPoll,
				planned:  planned,
				canceled: canceled,
				onMoved:  onMoved,
			},
		}
		w.walk = nil
		w.roam = nil
		w.isMoving = false
		return true
	}
	return w.ContinueWalk(finished, onMoved)
}

// ContinueProcess rebuilds a restored process at its saved index and calls
// Continue on the current action, which re-attaches its movement mode.
// Reports false if no process was pending.
func (w *Walker) ContinueProcess() (bool, error) {
	if w.restored == nil || w.restored.Process == nil {
		return false, nil
	}
	r := w.restored.Process
	w.restored.Process = nil

	if w.env == nil || w.env.Actions == nil {
		return false, fmt.Errorf("continuing process of walker %s: %w", w.id, errNoActionRegistry)
	}
	if r.Index < 0 || r.Index >= len(r.Actions) {
		return false, fmt.Errorf("continuing process of walker %s: index %d out of %d actions", w.id, r.Index, len(r.Actions))
	}

	actions := make([]Action, 0, len(r.Actions))
	for _, ar := range r.Actions {
		a, err := w.env.Actions.Decode(ar)
		if err != nil {
			return false, fmt.Errorf("continuing process of walker %s: %w", w.id, err)
		}
		actions = append(actions, a)
	}

	s := &ProcessState{key: r.Key, actions: actions, index: r.Index}
	w.process = s
	s.Current().Continue(w)
	return true, nil
}

// Resume continues whatever Restore left pending: the process when there
// was one, otherwise a bare movement mode with the generic finished handler.
// Mode records the process did not pick up are dropped.
func (w *Walker) Resume() error {
	if w.restored == nil {
		return nil
	}
	defer func() { w.restored = nil }()

	if w.restored.Process != nil {
		_, err := w.ContinueProcess()
		return err
	}

	switch {
	case w.restored.Walk != nil:
		w.ContinueWalk(nil, nil)
	case w.restored.Roam != nil:
		w.ContinueRoam(nil, nil)
	case w.restored.Wait != nil && w.restored.Wait.Retry == nil:
		w.ContinueWait(nil)
	case w.restored.Wait != nil:
		// a retry loop cannot resume without its path getter
		slog.Warn("dropping restored walk retry without owner",
			"walkerID", w.id,
			"waitCell", w.restored.Wait.Retry.WaitCell)
	}
	return nil
}
