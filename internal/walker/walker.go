package walker

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
	"github.com/udisondev/walkersim/internal/world"
)

// Walker is a mobile agent on the grid.
// At most one movement mode (walk, roam, wait) is active at a time;
// a process runs on top of them and drives them through its actions.
type Walker struct {
	id       uuid.UUID
	env      *Env
	home     world.HomeRef
	movement model.Movement
	speed    float64
	delay    float64

	currentCell model.GridPoint
	startCell   model.GridPoint
	position    model.Vec3
	direction   model.Vec3
	isMoving    bool

	walk    *PathFollowState
	roam    *RoamState
	wait    *waitState
	process *ProcessState

	hooks    Hooks
	onFinish func(*Walker)
	finished bool

	restored *Record
}

// New creates a walker with a fresh identity.
// speed is in world units per second.
func New(env *Env, speed float64) *Walker {
	return &Walker{
		id:    uuid.New(),
		env:   env,
		speed: speed,
	}
}

// ID returns stable walker identity.
func (w *Walker) ID() uuid.UUID { return w.id }

// Env returns the collaborators the walker was created with.
func (w *Walker) Env() *Env { return w.env }

// Home returns the weak home reference. Resolve before use.
func (w *Walker) Home() world.HomeRef { return w.home }

// SetHome points the walker at home id (resolved lazily).
func (w *Walker) SetHome(id uuid.UUID) {
	w.home = world.NewHomeRef(w.env.homes(), id)
}

// Movement returns movement class and tag used for planning and roaming.
func (w *Walker) Movement() model.Movement { return w.movement }

// SetMovement sets movement class and tag.
func (w *Walker) SetMovement(m model.Movement) { w.movement = m }

// Speed returns world units per second.
func (w *Walker) Speed() float64 { return w.speed }

// SetSpeed changes walking speed; takes effect on the next tick.
func (w *Walker) SetSpeed(speed float64) { w.speed = speed }

// SetDelay sets the duration used by Delay.
func (w *Walker) SetDelay(seconds float64) { w.delay = seconds }

// SetHooks installs host notifications.
func (w *Walker) SetHooks(h Hooks) { w.hooks = h }

// SetFinishHandler installs the lifecycle callback run once by Finish.
// Spawners use it to deregister the walker and return it to a pool.
func (w *Walker) SetFinishHandler(fn func(*Walker)) { w.onFinish = fn }

// CurrentCell returns the cell the walker last reached.
func (w *Walker) CurrentCell() model.GridPoint { return w.currentCell }

// StartCell returns the origin of the current trip.
func (w *Walker) StartCell() model.GridPoint { return w.startCell }

// Position returns world position.
func (w *Walker) Position() model.Vec3 { return w.position }

// SetPosition moves the walker in world space. Implements path.Mover.
func (w *Walker) SetPosition(pos model.Vec3) { w.position = pos }

// Direction returns the last emitted movement direction.
func (w *Walker) Direction() model.Vec3 { return w.direction }

// IsMoving reports whether the walker is translating this tick.
func (w *Walker) IsMoving() bool { return w.isMoving }

// IsFinished reports whether Finish ran.
func (w *Walker) IsFinished() bool { return w.finished }

// Place snaps the walker to cell without starting any mode.
func (w *Walker) Place(cell model.GridPoint) {
	w.currentCell = cell
	w.startCell = cell
	w.position = w.cellPosition(cell)
}

// Mode returns the active movement mode.
func (w *Walker) Mode() model.Mode {
	switch {
	case w.wait != nil:
		return model.ModeWaiting
	case w.walk != nil && w.walk.delay != nil:
		return model.ModeWaiting
	case w.walk != nil:
		return model.ModeWalking
	case w.roam != nil:
		return model.ModeRoaming
	default:
		return model.ModeIdle
	}
}

// Walking returns the active path follow state (nil when not walking).
func (w *Walker) Walking() *PathFollowState { return w.walk }

// Roaming returns the active roam state (nil when not roaming).
func (w *Walker) Roaming() *RoamState { return w.roam }

// Waiting returns the active wait timer (nil when not waiting).
func (w *Walker) Waiting() *WaitTimer {
	if w.wait == nil {
		return nil
	}
	return w.wait.timer
}

// Process returns the active process (nil when none).
func (w *Walker) Process() *ProcessState { return w.process }

// CurrentPath returns the path being followed, for debug visualization only.
func (w *Walker) CurrentPath() *path.WaypointPath {
	if w.walk == nil {
		return nil
	}
	return w.walk.path
}

// Tick advances the walker by dt seconds. Alias of Advance for tick drivers.
func (w *Walker) Tick(dt float64) { w.Advance(dt) }

// Advance moves the active mode forward by dt seconds.
// Processes do not tick; they advance through their actions' callbacks.
func (w *Walker) Advance(dt float64) {
	if w.finished {
		return
	}
	switch {
	case w.wait != nil:
		w.advanceWait(dt)
	case w.walk != nil:
		w.advanceWalk(dt)
	case w.roam != nil:
		w.advanceRoam(dt)
	}
}

// Cancel requests cancellation of the active movement mode.
// The mode stops on the next tick at the walker's current position.
func (w *Walker) Cancel() {
	switch {
	case w.wait != nil:
		w.wait.timer.Cancel()
	case w.walk != nil:
		w.walk.path.Cancel()
	case w.roam != nil:
		w.roam.canceled = true
	}
}

// Finish ends the walker's life: active modes are dropped, an active process
// is canceled, and the finish handler runs exactly once.
func (w *Walker) Finish() {
	if w.finished {
		return
	}
	w.finished = true
	w.clearMovement()
	w.CancelProcess()

	slog.Debug("walker finished", "walkerID", w.id, "cell", w.currentCell)

	if w.onFinish != nil {
		w.onFinish(w)
	}
}

// Reset prepares a pooled walker for a new life under a new identity.
func (w *Walker) Reset() {
	w.id = uuid.New()
	w.home = world.HomeRef{}
	w.movement = model.Movement{}
	w.currentCell = model.GridPoint{}
	w.startCell = model.GridPoint{}
	w.position = model.Vec3{}
	w.direction = model.Vec3{}
	w.isMoving = false
	w.walk = nil
	w.roam = nil
	w.wait = nil
	w.process = nil
	w.hooks = Hooks{}
	w.onFinish = nil
	w.finished = false
	w.restored = nil
}

// clearMovement drops every movement mode without running callbacks.
func (w *Walker) clearMovement() {
	w.walk = nil
	w.roam = nil
	w.wait = nil
	w.isMoving = false
}

func (w *Walker) cellPosition(cell model.GridPoint) model.Vec3 {
	return w.env.space().CellPosition(cell)
}

func (w *Walker) setDirection(dir model.Vec3) {
	w.direction = dir
	if w.hooks.DirectionChanged != nil {
		w.hooks.DirectionChanged(w, dir)
	}
}

func (w *Walker) reached(cell model.GridPoint, onMoved func(model.GridPoint)) {
	w.currentCell = cell
	if w.hooks.Moved != nil {
		w.hooks.Moved(w, cell)
	}
	if onMoved != nil {
		onMoved(cell)
	}
}

// done runs finished, falling back to the walker's generic finished handler.
func (w *Walker) done(finished func()) {
	if finished != nil {
		finished()
		return
	}
	if w.hooks.Finished != nil {
		w.hooks.Finished(w)
		return
	}
	w.Finish()
}
