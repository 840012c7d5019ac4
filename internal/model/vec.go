package model

import (
	"fmt"
	"math"
)

// Vec3 is a position or direction in continuous world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Len returns Euclidean length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return o.Sub(v).Len()
}

// Normalize returns unit vector in the direction of v.
// Zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates between a and b; t is clamped to [0, 1].
func Lerp(a, b Vec3, t float64) Vec3 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f,%.3f,%.3f)", v.X, v.Y, v.Z)
}
