package geo

// Grid defaults.
const (
	DefaultCellSize = 1.0
	MaxGridCells    = 4096 * 4096
)

// Cell flags.
const (
	cellBlocked byte = 1 << 0
	cellRoad    byte = 1 << 1
)

// Pathfinding configuration.
const (
	// MaxPathfindIterations bounds the A* open list pops per query.
	// Walkers poll FindPath from TryWalk, so a query must stay cheap.
	MaxPathfindIterations = 7000
)
