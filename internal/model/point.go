package model

import (
	"fmt"
	"math"
)

// GridPoint is a cell on the simulation grid.
// Value type, compared with ==.
type GridPoint struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// NewGridPoint creates GridPoint with the given coordinates.
func NewGridPoint(x, y int32) GridPoint {
	return GridPoint{X: x, Y: y}
}

// Add returns the point offset by other.
func (p GridPoint) Add(other GridPoint) GridPoint {
	return GridPoint{X: p.X + other.X, Y: p.Y + other.Y}
}

// DistanceSquared returns squared straight-line distance between two cells (no sqrt).
func (p GridPoint) DistanceSquared(other GridPoint) int64 {
	dx := int64(p.X - other.X)
	dy := int64(p.Y - other.Y)
	return dx*dx + dy*dy
}

// Distance returns straight-line distance in cells.
func (p GridPoint) Distance(other GridPoint) float64 {
	return math.Sqrt(float64(p.DistanceSquared(other)))
}

func (p GridPoint) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Cardinal offsets in N, E, S, W order.
var Cardinals = [4]GridPoint{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}
