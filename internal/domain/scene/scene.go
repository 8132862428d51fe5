// Package scene provides the Scene domain entity and its spatial types.
package scene

import "fmt"

// Vec3 represents a point or size in the shared environment's coordinate system.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Min returns the componentwise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{X: min(v.X, o.X), Y: min(v.Y, o.Y), Z: min(v.Z, o.Z)}
}

// Max returns the componentwise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{X: max(v.X, o.X), Y: max(v.Y, o.Y), Z: max(v.Z, o.Z)}
}

// Add returns the componentwise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale returns v multiplied by f on every axis.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Region is the minimal bounding volume occupied by displayed content:
// a center point plus a symmetric half-extent per axis.
type Region struct {
	Center Vec3 `json:"center"`
	Extent Vec3 `json:"extent"`
}

// RegionFromCorners builds the Region spanning the two opposite corners.
func RegionFromCorners(lo, hi Vec3) Region {
	lo, hi = lo.Min(hi), lo.Max(hi)
	return Region{
		Center: lo.Add(hi).Scale(0.5),
		Extent: hi.Add(lo.Scale(-1)).Scale(0.5),
	}
}

// MinCorner returns the lowest corner of the region.
func (r Region) MinCorner() Vec3 {
	return r.Center.Add(r.Extent.Scale(-1))
}

// MaxCorner returns the highest corner of the region.
func (r Region) MaxCorner() Vec3 {
	return r.Center.Add(r.Extent)
}

// String renders the region for operator logs.
func (r Region) String() string {
	return fmt.Sprintf("center(%.1f,%.1f,%.1f) extent(%.1f,%.1f,%.1f)",
		r.Center.X, r.Center.Y, r.Center.Z, r.Extent.X, r.Extent.Y, r.Extent.Z)
}

// Scene represents a named, pre-authored content snapshot.
// Created once at load time and never mutated afterwards.
type Scene struct {
	Name   string // Scene name (file base name)
	Items  int    // Number of placed items in the snapshot
	Data   []byte // Raw snapshot bytes, passed through to the environment
	Bounds Region // Spatial bounds derived from the snapshot header
}

// Size returns the snapshot payload size in bytes.
func (s *Scene) Size() int {
	return len(s.Data)
}
