package geo

import (
	"container/heap"
	"log/slog"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
)

// FindPath implements path.Provider.
// The target is the one nearest to the first start cell by straight-line
// distance, ties broken by input order. Every passable start cell seeds the
// search. Returns nil when no path exists or MaxPathfindIterations is exceeded.
// pathContext is accepted for hosts that need per-query state; the grid ignores it.
func (g *Grid) FindPath(from, to []model.GridPoint, movement model.Movement, _ any) *path.WaypointPath {
	if len(from) == 0 || len(to) == 0 {
		return nil
	}

	target := NearestTarget(from[0], to)
	if !g.Passable(target, movement) {
		return nil
	}

	for _, start := range from {
		if start == target {
			return path.NewPointPath(g.Space(), movement, []model.GridPoint{target})
		}
	}

	result := g.astar(from, target, movement)
	if result == nil {
		return nil
	}

	points := make([]model.GridPoint, 0, 32)
	for n := result; n != nil; n = n.parent {
		points = append(points, n.cell)
	}

	// Reverse (A* builds path backward)
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return path.NewPointPath(g.Space(), movement, points)
}

// NearestTarget returns the target closest to origin; ties keep input order.
func NearestTarget(origin model.GridPoint, targets []model.GridPoint) model.GridPoint {
	best := targets[0]
	bestDist := origin.DistanceSquared(best)
	for _, t := range targets[1:] {
		if d := origin.DistanceSquared(t); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// gridNode represents a node in the A* search graph.
type gridNode struct {
	cell   model.GridPoint
	parent *gridNode
	gCost  float64 // Actual cost from start
	hCost  float64 // Heuristic cost to target
	fCost  float64 // gCost + hCost
	seq    int     // push order, breaks fCost ties deterministically
	index  int     // heap index
}

// astar runs A* from every passable start cell to target.
func (g *Grid) astar(starts []model.GridPoint, target model.GridPoint, movement model.Movement) *gridNode {
	openList := &nodeHeap{}
	heap.Init(openList)

	best := make(map[model.GridPoint]float64, 256)
	closed := make(map[model.GridPoint]struct{}, 256)
	seq := 0

	for _, s := range starts {
		if !g.Passable(s, movement) {
			continue
		}
		if _, seen := best[s]; seen {
			continue
		}
		n := &gridNode{cell: s, hCost: g.heuristic(s, target), seq: seq}
		n.fCost = n.hCost
		seq++
		best[s] = 0
		heap.Push(openList, n)
	}

	for range MaxPathfindIterations {
		if openList.Len() == 0 {
			return nil
		}

		current := heap.Pop(openList).(*gridNode)
		if current.cell == target {
			return current
		}

		if _, exists := closed[current.cell]; exists {
			continue
		}
		closed[current.cell] = struct{}{}

		for _, next := range g.Adjacent(current.cell, movement) {
			if _, exists := closed[next]; exists {
				continue
			}

			gCost := current.gCost + g.stepCost(current.cell, next, movement)
			if prev, seen := best[next]; seen && prev <= gCost {
				continue
			}
			best[next] = gCost

			node := &gridNode{
				cell:   next,
				parent: current,
				gCost:  gCost,
				hCost:  g.heuristic(next, target),
				seq:    seq,
			}
			node.fCost = node.gCost + node.hCost
			seq++
			heap.Push(openList, node)
		}
	}

	slog.Debug("pathfinding iterations exceeded", "target", target, "movement", movement.Type)
	return nil // Max iterations exceeded
}

// stepCost is the travel distance between adjacent cells, or the link's distance.
func (g *Grid) stepCost(from, to model.GridPoint, movement model.Movement) float64 {
	if link, ok := g.Link(from, to, movement); ok {
		return link.Distance()
	}
	return from.Distance(to) * g.cellSize
}

// heuristic is the straight-line world distance.
// A link may be shorter than the gap it bridges, so grids with links search without one.
func (g *Grid) heuristic(from, to model.GridPoint) float64 {
	if len(g.links) > 0 {
		return 0
	}
	return from.Distance(to) * g.cellSize
}

// nodeHeap implements container/heap for A* open list (min-heap by fCost, then push order).
type nodeHeap []*gridNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].fCost != h[j].fCost {
		return h[i].fCost < h[j].fCost
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)   { n := x.(*gridNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*h = old[:n-1]
	return node
}
