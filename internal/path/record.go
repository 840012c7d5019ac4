package path

import "github.com/udisondev/walkersim/internal/model"

// Record is the flat persisted form of a WaypointPath.
type Record struct {
	IsPointPath bool              `json:"is_point_path"`
	Points      []model.GridPoint `json:"points,omitempty"`
	Positions   []model.Vec3      `json:"positions,omitempty"`
	Movement    model.Movement    `json:"movement"`
	Canceled    bool              `json:"canceled,omitempty"`
}

// Record returns the persisted form of p.
func (p *WaypointPath) Record() Record {
	return Record{
		IsPointPath: p.isPointPath,
		Points:      p.Points(),
		Positions:   p.Positions(),
		Movement:    p.movement,
		Canceled:    p.canceled,
	}
}

// FromRecord rebuilds a path; segment distances are re-measured against space.
func FromRecord(space *Space, r Record) *WaypointPath {
	var p *WaypointPath
	if r.IsPointPath {
		p = NewPointPath(space, r.Movement, r.Points)
	} else {
		p = NewPositionPath(space, r.Positions)
	}
	p.canceled = r.Canceled
	return p
}
