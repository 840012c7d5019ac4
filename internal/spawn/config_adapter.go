package spawn

import (
	"fmt"

	"github.com/udisondev/walkersim/internal/config"
	"github.com/udisondev/walkersim/internal/model"
)

// ConfigFromEntry converts a spawner entry of the YAML config.
// Walker speed and delay come from the shared walker section.
func ConfigFromEntry(e config.SpawnerEntry, walkers config.WalkerConfig) (Config, error) {
	pathType, err := model.ParsePathType(e.PathType)
	if err != nil {
		return Config{}, fmt.Errorf("spawner %q: %w", e.Name, err)
	}

	maxCount := e.MaxCount
	if maxCount < Unlimited {
		return Config{}, fmt.Errorf("spawner %q: max_count %d", e.Name, e.MaxCount)
	}

	return Config{
		Name:     e.Name,
		MaxCount: maxCount,
		Interval: e.Interval,
		Cell:     model.NewGridPoint(e.Cell.X(), e.Cell.Y()),
		Speed:    walkers.Speed,
		Delay:    walkers.Delay,
		Movement: model.Movement{Type: pathType, Tag: e.Tag},
	}, nil
}
