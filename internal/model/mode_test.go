package model

import "testing"

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeIdle, "IDLE"},
		{ModeWalking, "WALKING"},
		{ModeRoaming, "ROAMING"},
		{ModeWaiting, "WAITING"},
		{Mode(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.want {
				t.Errorf("Mode.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathTypeString(t *testing.T) {
	tests := []struct {
		pathType PathType
		want     string
	}{
		{PathTypeAny, "ANY"},
		{PathTypeRoad, "ROAD"},
		{PathTypeMapEdge, "MAP_EDGE"},
		{PathType(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.pathType.String(); got != tt.want {
				t.Errorf("PathType.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePathType(t *testing.T) {
	tests := []struct {
		in      string
		want    PathType
		wantErr bool
	}{
		{"", PathTypeAny, false},
		{"any", PathTypeAny, false},
		{"Road", PathTypeRoad, false},
		{"map_edge", PathTypeMapEdge, false},
		{"river", PathTypeAny, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePathType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePathType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePathType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
