package collisions

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used when comparing positions against voxel faces.
const Epsilon = 1.0e-5

// axis indices
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// AABB is an axis-aligned bounding box. Min is the base corner; Max is always
// Min plus the box extent.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB creates a box from its base corner and extent.
func NewAABB(base, extent mgl64.Vec3) AABB {
	return AABB{Min: base, Max: base.Add(extent)}
}

// Extent returns the dimensions of the AABB.
func (a AABB) Extent() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Volume returns the product of the extents.
func (a AABB) Volume() float64 {
	e := a.Extent()
	return e[0] * e[1] * e[2]
}

// Center returns the center point of the AABB.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Intersects returns true if the two AABBs overlap. Touching faces do not count.
func (a AABB) Intersects(b AABB) bool {
	return a.Min[0] < b.Max[0] && a.Max[0] > b.Min[0] &&
		a.Min[1] < b.Max[1] && a.Max[1] > b.Min[1] &&
		a.Min[2] < b.Max[2] && a.Max[2] > b.Min[2]
}

// Translate returns a new AABB moved by d.
func (a AABB) Translate(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

// SetPosition returns a new AABB with the same extent and its base at p.
func (a AABB) SetPosition(p mgl64.Vec3) AABB {
	return a.Translate(p.Sub(a.Min))
}

// Inflate grows the AABB by the given amount in all directions.
func (a AABB) Inflate(by float64) AABB {
	d := mgl64.Vec3{by, by, by}
	return AABB{Min: a.Min.Sub(d), Max: a.Max.Add(d)}
}

// Valid reports whether every coordinate is finite and the extent is positive on all axes.
func (a AABB) Valid() bool {
	for i := range 3 {
		if !finite(a.Min[i]) || !finite(a.Max[i]) || a.Max[i] <= a.Min[i] {
			return false
		}
	}
	return true
}

// VoxelBox returns the unit box occupying voxel (x, y, z).
func VoxelBox(x, y, z int) AABB {
	base := mgl64.Vec3{float64(x), float64(y), float64(z)}
	return AABB{Min: base, Max: base.Add(mgl64.Vec3{1, 1, 1})}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
