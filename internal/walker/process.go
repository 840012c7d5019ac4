package walker

import (
	"log/slog"
	"slices"
)

// Action is one step of a scripted process.
// The engine never inspects actions; they drive the walker through its
// movement modes and call back into AdvanceProcess when done.
type Action interface {
	// Kind names the action in persisted records.
	Kind() string
	// Start begins the action.
	Start(w *Walker)
	// Continue re-establishes the action after a reload without repeating Start's side effects.
	Continue(w *Walker)
	// Cancel interrupts the action.
	Cancel(w *Walker)
	// End runs when the action completed and the process moves on.
	End(w *Walker)
}

// ProcessState is an ordered list of actions with a cursor.
type ProcessState struct {
	key     string
	actions []Action
	index   int
}

// Key returns the correlation key given to StartProcess.
func (s *ProcessState) Key() string { return s.key }

// Index returns the position of the current action.
func (s *ProcessState) Index() int { return s.index }

// Len returns number of actions.
func (s *ProcessState) Len() int { return len(s.actions) }

// Current returns the running action.
func (s *ProcessState) Current() Action { return s.actions[s.index] }

// Actions returns a copy of the action list.
func (s *ProcessState) Actions() []Action { return slices.Clone(s.actions) }

// StartProcess cancels the active process, installs actions and starts the first one.
// An empty list completes immediately.
func (w *Walker) StartProcess(actions []Action, key string) {
	w.CancelProcess()

	if len(actions) == 0 {
		w.processFinished()
		return
	}

	s := &ProcessState{key: key, actions: slices.Clone(actions)}
	w.process = s

	if IsDebugEnabled() {
		slog.Debug("process started", "walkerID", w.id, "key", key, "actions", len(actions))
	}

	s.actions[0].Start(w)
}

// AdvanceProcess ends the current action and starts the next one.
// After the last action the process is cleared and the process finished
// hook runs (Finish by default).
func (w *Walker) AdvanceProcess() {
	s := w.process
	if s == nil {
		return
	}

	s.Current().End(w)
	if w.process != s {
		// End started another process or finished the walker
		return
	}

	if s.index+1 < len(s.actions) {
		s.index++
		s.Current().Start(w)
		return
	}

	w.process = nil
	w.processFinished()
}

// CancelProcess cancels the current action (End is not called) and drops the process.
func (w *Walker) CancelProcess() {
	s := w.process
	if s == nil {
		return
	}
	w.process = nil
	s.Current().Cancel(w)
}

// ProcessAdvancer returns a callback that advances the process, but only
// while the action current at the time of the call is still running.
// Actions hand it to movement modes as their finished callback so a
// stale mode never advances a newer process.
func (w *Walker) ProcessAdvancer() func() {
	s := w.process
	if s == nil {
		return func() {}
	}
	index := s.index
	return func() {
		if w.process == s && s.index == index {
			w.AdvanceProcess()
		}
	}
}

func (w *Walker) processFinished() {
	if w.hooks.ProcessFinished != nil {
		w.hooks.ProcessFinished(w)
		return
	}
	w.Finish()
}
