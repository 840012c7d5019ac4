package geo

import (
	"fmt"
	"math"
	"slices"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
)

// Grid is a rectangular tile map hosting the walker engine.
// It answers coordinate conversion, adjacency, link and path queries.
// Configure it before the simulation starts; queries never mutate it.
type Grid struct {
	width    int32
	height   int32
	cellSize float64
	origin   model.Vec3
	cells    []byte

	links   map[linkKey]path.Link
	linkOut map[linkFrom][]model.GridPoint // insertion order, for deterministic adjacency
}

type linkKey struct {
	from, to model.GridPoint
	tag      string
}

type linkFrom struct {
	from model.GridPoint
	tag  string
}

// NewGrid creates an open grid of width x height cells.
// cellSize <= 0 falls back to DefaultCellSize.
func NewGrid(width, height int32, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if int64(width)*int64(height) > MaxGridCells {
		return nil, fmt.Errorf("grid %dx%d exceeds %d cells", width, height, MaxGridCells)
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		cells:    make([]byte, int(width)*int(height)),
		links:    make(map[linkKey]path.Link),
		linkOut:  make(map[linkFrom][]model.GridPoint),
	}, nil
}

// Width returns number of columns.
func (g *Grid) Width() int32 { return g.width }

// Height returns number of rows.
func (g *Grid) Height() int32 { return g.height }

// CellSize returns world units per cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// SetOrigin moves the world position of cell (0,0)'s corner.
func (g *Grid) SetOrigin(origin model.Vec3) { g.origin = origin }

// InBounds reports whether cell lies on the grid.
func (g *Grid) InBounds(cell model.GridPoint) bool {
	return cell.X >= 0 && cell.Y >= 0 && cell.X < g.width && cell.Y < g.height
}

func (g *Grid) index(cell model.GridPoint) int {
	return int(cell.Y)*int(g.width) + int(cell.X)
}

func (g *Grid) setFlag(cell model.GridPoint, flag byte, on bool) {
	if !g.InBounds(cell) {
		return
	}
	i := g.index(cell)
	if on {
		g.cells[i] |= flag
	} else {
		g.cells[i] &^= flag
	}
}

func (g *Grid) hasFlag(cell model.GridPoint, flag byte) bool {
	return g.InBounds(cell) && g.cells[g.index(cell)]&flag != 0
}

// SetBlocked marks cell as an obstacle. Out of bounds cells are ignored.
func (g *Grid) SetBlocked(cell model.GridPoint, blocked bool) { g.setFlag(cell, cellBlocked, blocked) }

// SetRoad marks cell as road. Out of bounds cells are ignored.
func (g *Grid) SetRoad(cell model.GridPoint, road bool) { g.setFlag(cell, cellRoad, road) }

// IsBlocked reports whether cell is an obstacle.
func (g *Grid) IsBlocked(cell model.GridPoint) bool { return g.hasFlag(cell, cellBlocked) }

// IsRoad reports whether cell is road.
func (g *Grid) IsRoad(cell model.GridPoint) bool { return g.hasFlag(cell, cellRoad) }

// Passable reports whether a walker of the given movement class may stand on cell.
func (g *Grid) Passable(cell model.GridPoint, movement model.Movement) bool {
	if !g.InBounds(cell) {
		return false
	}
	switch movement.Type {
	case model.PathTypeMapEdge:
		return true
	case model.PathTypeRoad:
		return g.IsRoad(cell) && !g.IsBlocked(cell)
	default:
		return !g.IsBlocked(cell)
	}
}

// GridToWorld returns the world position of the cell's corner.
func (g *Grid) GridToWorld(cell model.GridPoint) model.Vec3 {
	return model.Vec3{
		X: g.origin.X + float64(cell.X)*g.cellSize,
		Y: g.origin.Y + float64(cell.Y)*g.cellSize,
		Z: g.origin.Z,
	}
}

// GridToWorldCenter returns the world position of the cell's center.
func (g *Grid) GridToWorldCenter(cell model.GridPoint) model.Vec3 {
	half := g.cellSize / 2
	return g.GridToWorld(cell).Add(model.Vec3{X: half, Y: half})
}

// WorldToGrid returns the cell containing pos.
func (g *Grid) WorldToGrid(pos model.Vec3) model.GridPoint {
	return model.GridPoint{
		X: int32(math.Floor((pos.X - g.origin.X) / g.cellSize)),
		Y: int32(math.Floor((pos.Y - g.origin.Y) / g.cellSize)),
	}
}

// Adjacent returns cells a walker can step onto from cell:
// passable cardinal neighbours in N, E, S, W order, then link
// destinations for the movement tag in registration order.
func (g *Grid) Adjacent(cell model.GridPoint, movement model.Movement) []model.GridPoint {
	out := make([]model.GridPoint, 0, 4)
	for _, d := range model.Cardinals {
		next := cell.Add(d)
		if g.Passable(next, movement) {
			out = append(out, next)
		}
	}
	for _, to := range g.linkOut[linkFrom{from: cell, tag: movement.Tag}] {
		if !slices.Contains(out, to) {
			out = append(out, to)
		}
	}
	return out
}

// Space bundles the grid as the collaborators paths measure themselves against.
func (g *Grid) Space() *path.Space {
	return &path.Space{Positions: g, Links: g}
}
