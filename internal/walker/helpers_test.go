package walker

import (
	"math/rand/v2"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
	"github.com/udisondev/walkersim/internal/world"
)

// fixedNeighbors returns the same candidates for every cell.
type fixedNeighbors []model.GridPoint

func (n fixedNeighbors) Adjacent(model.GridPoint, model.Movement) []model.GridPoint {
	return append([]model.GridPoint(nil), n...)
}

// straightPaths plans a two point path to the first target.
type straightPaths struct{}

func (straightPaths) FindPath(from, to []model.GridPoint, movement model.Movement, _ any) *path.WaypointPath {
	if len(from) == 0 || len(to) == 0 {
		return nil
	}
	return path.NewPointPath(nil, movement, []model.GridPoint{from[0], to[0]})
}

func newTestEnv() *Env {
	env := &Env{
		Homes:   world.NewRegistry(),
		Actions: NewActionRegistry(),
		Paths:   straightPaths{},
		Rand:    rand.New(rand.NewPCG(1, 2)),
	}
	env.Actions.Register(kindTestWait, func() Action { return &testWaitAction{} })
	return env
}

func pointPath(points ...model.GridPoint) *path.WaypointPath {
	return path.NewPointPath(nil, model.Movement{}, points)
}

func pt(x, y int32) model.GridPoint { return model.NewGridPoint(x, y) }

// tickUntil advances w by dt until done reports true or limit ticks ran.
// Returns number of ticks.
func tickUntil(w *Walker, dt float64, limit int, done func() bool) int {
	for i := 1; i <= limit; i++ {
		w.Advance(dt)
		if done() {
			return i
		}
	}
	return -1
}

// recordingAction counts engine calls.
type recordingAction struct {
	name    string
	log     *[]string
	starts  int
	conts   int
	cancels int
	ends    int
}

func (a *recordingAction) Kind() string { return "recording" }

func (a *recordingAction) Start(*Walker) {
	a.starts++
	*a.log = append(*a.log, "start "+a.name)
}

func (a *recordingAction) Continue(*Walker) {
	a.conts++
	*a.log = append(*a.log, "continue "+a.name)
}

func (a *recordingAction) Cancel(*Walker) {
	a.cancels++
	*a.log = append(*a.log, "cancel "+a.name)
}

func (a *recordingAction) End(*Walker) {
	a.ends++
	*a.log = append(*a.log, "end "+a.name)
}

const kindTestWait = "test_wait"

// testWaitAction waits Seconds and advances the process.
type testWaitAction struct {
	Seconds float64 `json:"seconds"`
}

func (a *testWaitAction) Kind() string { return kindTestWait }

func (a *testWaitAction) Start(w *Walker) { w.Wait(a.Seconds, w.ProcessAdvancer()) }

func (a *testWaitAction) Continue(w *Walker) {
	if !w.ContinueWait(w.ProcessAdvancer()) {
		a.Start(w)
	}
}

func (a *testWaitAction) Cancel(w *Walker) { w.CancelWait() }

func (a *testWaitAction) End(*Walker) {}
