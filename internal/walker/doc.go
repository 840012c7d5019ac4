// Package walker implements the walker motion engine: agents that walk
// waypoint paths, roam between adjacent cells, wait on timers and run
// scripted processes made of Actions.
//
// Every in-flight operation is an explicit state object advanced by a
// single call to Walker.Advance per tick, so the whole walker can be
// captured as a Record and resumed later through the Continue* methods.
//
// A Walker is not safe for concurrent use; the tick driver owns it.
package walker
