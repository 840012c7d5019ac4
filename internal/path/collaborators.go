package path

import "github.com/udisondev/walkersim/internal/model"

// GridPositions converts between grid cells and world positions.
type GridPositions interface {
	// GridToWorld returns the world position of the cell origin (corner).
	GridToWorld(cell model.GridPoint) model.Vec3
	// GridToWorldCenter returns the world position of the cell center.
	// Walkers travel between cell centers.
	GridToWorldCenter(cell model.GridPoint) model.Vec3
	// WorldToGrid returns the cell containing pos.
	WorldToGrid(pos model.Vec3) model.GridPoint
}

// Mover is anything a Link can reposition while it traverses a segment.
type Mover interface {
	SetPosition(pos model.Vec3)
}

// Link overrides distance and motion of a single segment
// (teleporters, conveyors, elevators).
type Link interface {
	// Distance is the traversal distance of the segment, replacing the Euclidean one.
	Distance() float64
	// AdvancePosition places m for the given distance moved into the segment starting at from.
	AdvancePosition(m Mover, distanceIntoSegment float64, from model.GridPoint)
}

// LinkRegistry returns the link registered for a segment, if any.
type LinkRegistry interface {
	Link(from, to model.GridPoint, movement model.Movement) (Link, bool)
}

// Provider plans trips.
// FindPath must pick a deterministic target when given multiple destinations
// (nearest by straight-line distance, ties by input order) and return nil
// when no path exists. It is polled by retrying walkers, so it must be cheap.
type Provider interface {
	FindPath(from, to []model.GridPoint, movement model.Movement, pathContext any) *WaypointPath
}

// Neighbors enumerates cells adjacent to cell that a walker of the given
// movement class may step onto.
type Neighbors interface {
	Adjacent(cell model.GridPoint, movement model.Movement) []model.GridPoint
}

// Space bundles the read-only collaborators a path needs to measure itself.
type Space struct {
	Positions GridPositions
	Links     LinkRegistry
}

func (s *Space) positions() GridPositions {
	if s == nil || s.Positions == nil {
		return unitPositions{}
	}
	return s.Positions
}

// Link returns the link registered for the segment, if any. Safe on a nil Space.
func (s *Space) Link(from, to model.GridPoint, movement model.Movement) (Link, bool) {
	if s == nil || s.Links == nil {
		return nil, false
	}
	return s.Links.Link(from, to, movement)
}

// unitPositions maps cell (x, y) to world (x, y, 0); used when no converter is supplied.
type unitPositions struct{}

func (unitPositions) GridToWorld(cell model.GridPoint) model.Vec3 {
	return model.Vec3{X: float64(cell.X), Y: float64(cell.Y)}
}

func (unitPositions) GridToWorldCenter(cell model.GridPoint) model.Vec3 {
	return model.Vec3{X: float64(cell.X), Y: float64(cell.Y)}
}

func (unitPositions) WorldToGrid(pos model.Vec3) model.GridPoint {
	return model.GridPoint{X: int32(roundHalfUp(pos.X)), Y: int32(roundHalfUp(pos.Y))}
}

func roundHalfUp(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v + 0.5))
	}
	return float64(int64(v + 0.5))
}

// CellPosition returns the world position a walker occupies on cell.
// Safe on a nil Space.
func (s *Space) CellPosition(cell model.GridPoint) model.Vec3 {
	return s.positions().GridToWorldCenter(cell)
}
