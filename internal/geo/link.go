package geo

import (
	"fmt"

	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
)

// ConstantLink is a segment with a fixed traversal distance and linear
// motion, e.g. a slow ramp or a fast conveyor.
type ConstantLink struct {
	From   model.Vec3
	To     model.Vec3
	Length float64
}

// NewConstantLink creates a linear link between two cell centers of g.
func NewConstantLink(g *Grid, from, to model.GridPoint, length float64) *ConstantLink {
	return &ConstantLink{From: g.GridToWorldCenter(from), To: g.GridToWorldCenter(to), Length: length}
}

// Distance implements path.Link.
func (l *ConstantLink) Distance() float64 { return l.Length }

// AdvancePosition implements path.Link.
func (l *ConstantLink) AdvancePosition(m path.Mover, distanceIntoSegment float64, _ model.GridPoint) {
	if l.Length <= 0 {
		m.SetPosition(l.To)
		return
	}
	m.SetPosition(model.Lerp(l.From, l.To, distanceIntoSegment/l.Length))
}

// TeleportLink keeps the walker at the origin for the whole segment;
// the walker appears at the destination when the segment completes.
type TeleportLink struct {
	From   model.Vec3
	Length float64
}

// NewTeleportLink creates a teleport from cell from of g taking length units of travel.
func NewTeleportLink(g *Grid, from model.GridPoint, length float64) *TeleportLink {
	return &TeleportLink{From: g.GridToWorldCenter(from), Length: length}
}

// Distance implements path.Link.
func (l *TeleportLink) Distance() float64 { return l.Length }

// AdvancePosition implements path.Link.
func (l *TeleportLink) AdvancePosition(m path.Mover, _ float64, _ model.GridPoint) {
	m.SetPosition(l.From)
}

// AddLink registers link for the segment from → to, used by walkers whose
// movement tag equals tag. Links are directional.
func (g *Grid) AddLink(from, to model.GridPoint, tag string, link path.Link) error {
	if !g.InBounds(from) || !g.InBounds(to) {
		return fmt.Errorf("link %s → %s out of grid bounds", from, to)
	}
	if link == nil {
		return fmt.Errorf("link %s → %s is nil", from, to)
	}
	key := linkKey{from: from, to: to, tag: tag}
	if _, exists := g.links[key]; !exists {
		out := linkFrom{from: from, tag: tag}
		g.linkOut[out] = append(g.linkOut[out], to)
	}
	g.links[key] = link
	return nil
}

// Link implements path.LinkRegistry: the link for the exact (from, to, tag) triple.
func (g *Grid) Link(from, to model.GridPoint, movement model.Movement) (path.Link, bool) {
	link, ok := g.links[linkKey{from: from, to: to, tag: movement.Tag}]
	return link, ok
}

// LinkCount returns number of registered links.
func (g *Grid) LinkCount() int { return len(g.links) }
