package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionFromCorners(t *testing.T) {
	tests := []struct {
		name     string
		lo       Vec3
		hi       Vec3
		expected Region
	}{
		{
			name:     "unit cube at origin",
			lo:       Vec3{X: -1, Y: -1, Z: -1},
			hi:       Vec3{X: 1, Y: 1, Z: 1},
			expected: Region{Center: Vec3{}, Extent: Vec3{X: 1, Y: 1, Z: 1}},
		},
		{
			name:     "offset box",
			lo:       Vec3{X: 10, Y: 20, Z: 30},
			hi:       Vec3{X: 14, Y: 26, Z: 38},
			expected: Region{Center: Vec3{X: 12, Y: 23, Z: 34}, Extent: Vec3{X: 2, Y: 3, Z: 4}},
		},
		{
			name:     "swapped corners are normalized",
			lo:       Vec3{X: 5, Y: 5, Z: 5},
			hi:       Vec3{X: 1, Y: 1, Z: 1},
			expected: Region{Center: Vec3{X: 3, Y: 3, Z: 3}, Extent: Vec3{X: 2, Y: 2, Z: 2}},
		},
		{
			name:     "degenerate single point",
			lo:       Vec3{X: 7, Y: 8, Z: 9},
			hi:       Vec3{X: 7, Y: 8, Z: 9},
			expected: Region{Center: Vec3{X: 7, Y: 8, Z: 9}, Extent: Vec3{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RegionFromCorners(tt.lo, tt.hi))
		})
	}
}

func TestRegion_Corners(t *testing.T) {
	r := Region{Center: Vec3{X: 12, Y: 23, Z: 34}, Extent: Vec3{X: 2, Y: 3, Z: 4}}

	assert.Equal(t, Vec3{X: 10, Y: 20, Z: 30}, r.MinCorner())
	assert.Equal(t, Vec3{X: 14, Y: 26, Z: 38}, r.MaxCorner())

	// Corners round-trip back to the same region.
	assert.Equal(t, r, RegionFromCorners(r.MinCorner(), r.MaxCorner()))
}

func TestVec3_MinMax(t *testing.T) {
	a := Vec3{X: 1, Y: 5, Z: -2}
	b := Vec3{X: 3, Y: 2, Z: -7}

	assert.Equal(t, Vec3{X: 1, Y: 2, Z: -7}, a.Min(b))
	assert.Equal(t, Vec3{X: 3, Y: 5, Z: -2}, a.Max(b))
}

func TestScene_Size(t *testing.T) {
	s := &Scene{Name: "lobby", Data: []byte{0x01, 0x02, 0x03}}
	assert.Equal(t, 3, s.Size())

	empty := &Scene{Name: "void"}
	assert.Equal(t, 0, empty.Size())
}
