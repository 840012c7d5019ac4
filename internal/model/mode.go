package model

// Mode is the active execution mode of a walker.
// Modes are mutually exclusive.
type Mode int32

const (
	// ModeIdle - walker has no active movement state
	ModeIdle Mode = iota
	// ModeWalking - walker follows a waypoint path
	ModeWalking
	// ModeRoaming - walker wanders between adjacent cells
	ModeRoaming
	// ModeWaiting - walker waits on a timer (plain wait, walk delay or walk retry)
	ModeWaiting
)

// String returns human-readable mode name
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeWalking:
		return "WALKING"
	case ModeRoaming:
		return "ROAMING"
	case ModeWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}
