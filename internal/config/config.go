package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config location used when WALKERSIM_CONFIG is unset.
const DefaultPath = "config/walkersim.yaml"

// PathEnv overrides DefaultPath.
const PathEnv = "WALKERSIM_CONFIG"

// Simulation holds all configuration for the walker simulation.
type Simulation struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Fixed simulation step. Walkers advance by TickRate seconds per tick.
	TickRate time.Duration `yaml:"tick_rate"`
	Seed     uint64        `yaml:"seed"`

	Grid     GridConfig     `yaml:"grid"`
	Walker   WalkerConfig   `yaml:"walker"`
	Roam     RoamConfig     `yaml:"roam"`
	Homes    []HomeEntry    `yaml:"homes"`
	Spawners []SpawnerEntry `yaml:"spawners"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Database DatabaseConfig `yaml:"database"`
}

// Cell is a grid coordinate in config files: [x, y].
type Cell [2]int32

// X returns the column.
func (c Cell) X() int32 { return c[0] }

// Y returns the row.
func (c Cell) Y() int32 { return c[1] }

// GridConfig describes the host tile grid.
type GridConfig struct {
	Width    int32       `yaml:"width"`
	Height   int32       `yaml:"height"`
	CellSize float64     `yaml:"cell_size"`
	Blocked  []Cell      `yaml:"blocked"`
	Roads    []Cell      `yaml:"roads"`
	Links    []LinkEntry `yaml:"links"`
}

// LinkEntry is a directional segment override between two cells.
type LinkEntry struct {
	From     Cell    `yaml:"from"`
	To       Cell    `yaml:"to"`
	Tag      string  `yaml:"tag"`
	Kind     string  `yaml:"kind"` // constant, teleport
	Distance float64 `yaml:"distance"`
}

// WalkerConfig holds defaults applied to spawned walkers.
type WalkerConfig struct {
	Speed          float64 `yaml:"speed"`            // world units per second
	MaxWaitSeconds float64 `yaml:"max_wait_seconds"` // TryWalk retry budget
	Delay          float64 `yaml:"delay"`            // seconds used by Delay
}

// RoamConfig bounds roaming.
type RoamConfig struct {
	Memory int `yaml:"memory"`
	Steps  int `yaml:"steps"`
}

// HomeEntry is a home building walkers return to.
type HomeEntry struct {
	Name     string `yaml:"name"`
	Entrance Cell   `yaml:"entrance"`
}

// SpawnerEntry configures one walker spawner.
type SpawnerEntry struct {
	Name     string  `yaml:"name"`
	Home     string  `yaml:"home"`      // HomeEntry.Name
	MaxCount int     `yaml:"max_count"` // -1 = unlimited
	Interval float64 `yaml:"interval"`  // seconds between automatic spawns, 0 = manual
	Cell     Cell    `yaml:"cell"`
	Behavior string  `yaml:"behavior"` // roam, errand
	Targets  []Cell  `yaml:"targets"`  // errand destinations
	PathType string  `yaml:"path_type"`
	Tag      string  `yaml:"tag"`
}

// SnapshotConfig controls the compressed snapshot file.
type SnapshotConfig struct {
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"interval"` // autosave period, 0 disables autosave
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel: "info",
		TickRate: 100 * time.Millisecond,
		Seed:     1,
		Grid: GridConfig{
			Width:    32,
			Height:   32,
			CellSize: 1,
		},
		Walker: WalkerConfig{
			Speed:          2,
			MaxWaitSeconds: 5,
			Delay:          1,
		},
		Roam: RoamConfig{
			Memory: 8,
			Steps:  24,
		},
		Snapshot: SnapshotConfig{
			Path:     "data/walkers.snap",
			Interval: time.Minute,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "walkersim",
			Password: "walkersim",
			DBName:   "walkersim",
			SSLMode:  "disable",
		},
	}
}

// Path returns the config path, honoring PathEnv.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values the simulation cannot run with.
func (s Simulation) Validate() error {
	var errs []error

	if s.TickRate <= 0 {
		errs = append(errs, errors.New("tick_rate must be positive"))
	}
	if s.Grid.Width <= 0 || s.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", s.Grid.Width, s.Grid.Height))
	}
	if s.Walker.Speed < 0 {
		errs = append(errs, errors.New("walker.speed must not be negative"))
	}
	if s.Roam.Memory < 0 || s.Roam.Steps < 0 {
		errs = append(errs, fmt.Errorf("roam memory %d and steps %d must not be negative", s.Roam.Memory, s.Roam.Steps))
	}

	homes := make(map[string]struct{}, len(s.Homes))
	for _, h := range s.Homes {
		if h.Name == "" {
			errs = append(errs, errors.New("home without name"))
			continue
		}
		if _, dup := homes[h.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate home %q", h.Name))
		}
		homes[h.Name] = struct{}{}
	}

	for _, sp := range s.Spawners {
		if sp.Name == "" {
			errs = append(errs, errors.New("spawner without name"))
		}
		if sp.Home != "" {
			if _, ok := homes[sp.Home]; !ok {
				errs = append(errs, fmt.Errorf("spawner %q: unknown home %q", sp.Name, sp.Home))
			}
		}
		if sp.Interval < 0 {
			errs = append(errs, fmt.Errorf("spawner %q: interval must not be negative", sp.Name))
		}
		switch sp.Behavior {
		case "", BehaviorRoam, BehaviorErrand:
		default:
			errs = append(errs, fmt.Errorf("spawner %q: unknown behavior %q", sp.Name, sp.Behavior))
		}
	}

	for i, l := range s.Grid.Links {
		switch l.Kind {
		case "", LinkConstant, LinkTeleport:
		default:
			errs = append(errs, fmt.Errorf("link %d: unknown kind %q", i, l.Kind))
		}
	}

	return errors.Join(errs...)
}

// Spawner behaviors.
const (
	BehaviorRoam   = "roam"
	BehaviorErrand = "errand"
)

// Link kinds.
const (
	LinkConstant = "constant"
	LinkTeleport = "teleport"
)
