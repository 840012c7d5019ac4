package path

import "github.com/udisondev/walkersim/internal/model"

// WaypointPath is an ordered sequence of grid points or raw world positions.
// It is immutable apart from the cancel flag; new plans create new paths.
type WaypointPath struct {
	space       *Space
	movement    model.Movement
	isPointPath bool
	points      []model.GridPoint
	positions   []model.Vec3
	distances   []float64 // distances[i] is segment i → i+1
	canceled    bool
}

// NewPointPath creates a path through grid cells.
// Segment distances honor links registered in space for the movement.
func NewPointPath(space *Space, movement model.Movement, points []model.GridPoint) *WaypointPath {
	p := &WaypointPath{
		space:       space,
		movement:    movement,
		isPointPath: true,
		points:      append([]model.GridPoint(nil), points...),
	}
	p.measure()
	return p
}

// NewPositionPath creates a path through raw world positions. Links never apply.
func NewPositionPath(space *Space, positions []model.Vec3) *WaypointPath {
	p := &WaypointPath{
		space:     space,
		positions: append([]model.Vec3(nil), positions...),
	}
	p.measure()
	return p
}

func (p *WaypointPath) measure() {
	n := p.Length()
	if n < 2 {
		p.distances = nil
		return
	}
	p.distances = make([]float64, n-1)
	for i := range n - 1 {
		if link, ok := p.linkAt(i); ok {
			p.distances[i] = link.Distance()
			continue
		}
		p.distances[i] = p.GetPosition(i).Distance(p.GetPosition(i + 1))
	}
}

// IsPointPath reports whether the path is made of grid points.
func (p *WaypointPath) IsPointPath() bool {
	return p.isPointPath
}

// Movement returns movement class and tag the path was planned for.
func (p *WaypointPath) Movement() model.Movement {
	return p.movement
}

// Length returns number of waypoints.
func (p *WaypointPath) Length() int {
	if p.isPointPath {
		return len(p.points)
	}
	return len(p.positions)
}

func (p *WaypointPath) clamp(i int) int {
	n := p.Length()
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// GetPoint returns waypoint i as a grid cell; out of range indices are clamped.
func (p *WaypointPath) GetPoint(i int) model.GridPoint {
	if p.Length() == 0 {
		return model.GridPoint{}
	}
	i = p.clamp(i)
	if p.isPointPath {
		return p.points[i]
	}
	return p.space.positions().WorldToGrid(p.positions[i])
}

// GetPosition returns waypoint i in world space; out of range indices are clamped.
func (p *WaypointPath) GetPosition(i int) model.Vec3 {
	if p.Length() == 0 {
		return model.Vec3{}
	}
	i = p.clamp(i)
	if p.isPointPath {
		return p.space.positions().GridToWorldCenter(p.points[i])
	}
	return p.positions[i]
}

// StartPoint returns the first waypoint.
func (p *WaypointPath) StartPoint() model.GridPoint { return p.GetPoint(0) }

// EndPoint returns the last waypoint.
func (p *WaypointPath) EndPoint() model.GridPoint { return p.GetPoint(p.Length() - 1) }

// StartPosition returns the world position of the first waypoint.
func (p *WaypointPath) StartPosition() model.Vec3 { return p.GetPosition(0) }

// EndPosition returns the world position of the last waypoint.
func (p *WaypointPath) EndPosition() model.Vec3 { return p.GetPosition(p.Length() - 1) }

func (p *WaypointPath) linkAt(i int) (Link, bool) {
	if !p.isPointPath || i < 0 || i+1 >= len(p.points) {
		return nil, false
	}
	return p.space.Link(p.points[i], p.points[i+1], p.movement)
}

// GetLink returns the link overriding segment i, if any.
func (p *WaypointPath) GetLink(i int) (Link, bool) {
	return p.linkAt(i)
}

// GetSegmentDistance returns the length of segment i (waypoint i → i+1).
// Degenerate segments and out of range indices yield 0.
func (p *WaypointPath) GetSegmentDistance(i int) float64 {
	if i < 0 || i >= len(p.distances) {
		return 0
	}
	return p.distances[i]
}

// GetDirection returns the unit vector of segment i.
func (p *WaypointPath) GetDirection(i int) model.Vec3 {
	return p.GetPosition(i + 1).Sub(p.GetPosition(i)).Normalize()
}

// TotalDistance returns cumulative length of all segments.
func (p *WaypointPath) TotalDistance() float64 {
	var total float64
	for _, d := range p.distances {
		total += d
	}
	return total
}

// HasEnded reports whether a follower at segment i is done.
func (p *WaypointPath) HasEnded(i int) bool {
	return p.canceled || i >= p.Length()-1
}

// Cancel marks the path canceled. Followers observe it on their next tick.
func (p *WaypointPath) Cancel() {
	p.canceled = true
}

// IsCanceled reports whether Cancel was called.
func (p *WaypointPath) IsCanceled() bool {
	return p.canceled
}

// GetReversed returns a new path with waypoints in reverse order.
func (p *WaypointPath) GetReversed() *WaypointPath {
	if p.isPointPath {
		points := make([]model.GridPoint, len(p.points))
		for i, pt := range p.points {
			points[len(points)-1-i] = pt
		}
		return NewPointPath(p.space, p.movement, points)
	}
	positions := make([]model.Vec3, len(p.positions))
	for i, pos := range p.positions {
		positions[len(positions)-1-i] = pos
	}
	return NewPositionPath(p.space, positions)
}

// Points returns a copy of the grid waypoints (nil for position paths).
func (p *WaypointPath) Points() []model.GridPoint {
	return append([]model.GridPoint(nil), p.points...)
}

// Positions returns a copy of the raw world waypoints (nil for point paths).
func (p *WaypointPath) Positions() []model.Vec3 {
	return append([]model.Vec3(nil), p.positions...)
}
