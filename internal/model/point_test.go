package model

import (
	"math"
	"testing"
)

func TestGridPoint_DistanceSquared(t *testing.T) {
	tests := []struct {
		name string
		a, b GridPoint
		want int64
	}{
		{"same cell", NewGridPoint(3, 4), NewGridPoint(3, 4), 0},
		{"horizontal", NewGridPoint(0, 0), NewGridPoint(5, 0), 25},
		{"diagonal", NewGridPoint(0, 0), NewGridPoint(3, 4), 25},
		{"negative", NewGridPoint(-1, -1), NewGridPoint(1, 1), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.DistanceSquared(tt.b); got != tt.want {
				t.Errorf("DistanceSquared() = %d, want %d", got, tt.want)
			}
			if got := tt.a.Distance(tt.b); math.Abs(got-math.Sqrt(float64(tt.want))) > 1e-9 {
				t.Errorf("Distance() = %f, want %f", got, math.Sqrt(float64(tt.want)))
			}
		})
	}
}

func TestGridPoint_Add(t *testing.T) {
	got := NewGridPoint(2, 3).Add(Cardinals[1])
	if got != NewGridPoint(3, 3) {
		t.Errorf("Add(east) = %v, want (3,3)", got)
	}
}

func TestGridPoint_String(t *testing.T) {
	if got := NewGridPoint(-2, 7).String(); got != "(-2,7)" {
		t.Errorf("String() = %q, want %q", got, "(-2,7)")
	}
}
