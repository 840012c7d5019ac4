package model

import (
	"fmt"
	"strings"
)

// PathType is the movement class of a walker.
// It decides which cells and edges a walker may traverse.
type PathType int32

const (
	// PathTypeAny - walker may cross any open cell
	PathTypeAny PathType = iota
	// PathTypeRoad - walker is restricted to road cells
	PathTypeRoad
	// PathTypeMapEdge - walker may cross any cell including blocked ones (used for leaving the map)
	PathTypeMapEdge
)

// String returns human-readable path type name
func (t PathType) String() string {
	switch t {
	case PathTypeAny:
		return "ANY"
	case PathTypeRoad:
		return "ROAD"
	case PathTypeMapEdge:
		return "MAP_EDGE"
	default:
		return "UNKNOWN"
	}
}

// Movement bundles the movement class with an opaque tag.
// Tag narrows link lookups (e.g. only "cart" walkers may use a conveyor).
type Movement struct {
	Type PathType `json:"type"`
	Tag  string   `json:"tag,omitempty"`
}

// ParsePathType parses a config name: any, road or map_edge. Empty means any.
func ParsePathType(s string) (PathType, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return PathTypeAny, nil
	case "road":
		return PathTypeRoad, nil
	case "map_edge":
		return PathTypeMapEdge, nil
	default:
		return PathTypeAny, fmt.Errorf("unknown path type %q", s)
	}
}
