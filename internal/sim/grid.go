package sim

import (
	"fmt"

	"github.com/udisondev/walkersim/internal/config"
	"github.com/udisondev/walkersim/internal/geo"
	"github.com/udisondev/walkersim/internal/model"
	"github.com/udisondev/walkersim/internal/path"
)

// BuildGrid creates the host grid described by cfg.
// A link without distance uses the straight world distance between its cells.
func BuildGrid(cfg config.GridConfig) (*geo.Grid, error) {
	g, err := geo.NewGrid(cfg.Width, cfg.Height, cfg.CellSize)
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}

	for _, c := range cfg.Blocked {
		g.SetBlocked(cell(c), true)
	}
	for _, c := range cfg.Roads {
		g.SetRoad(cell(c), true)
	}

	for i, l := range cfg.Links {
		from, to := cell(l.From), cell(l.To)
		distance := l.Distance
		if distance <= 0 {
			distance = from.Distance(to) * g.CellSize()
		}

		var link path.Link
		switch l.Kind {
		case config.LinkTeleport:
			link = geo.NewTeleportLink(g, from, distance)
		default:
			link = geo.NewConstantLink(g, from, to, distance)
		}

		if err := g.AddLink(from, to, l.Tag, link); err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
	}

	return g, nil
}

func cell(c config.Cell) model.GridPoint {
	return model.NewGridPoint(c.X(), c.Y())
}
