package collisions

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RaycastHit is the first solid voxel crossed by a ray.
type RaycastHit struct {
	Voxel [3]int
	Point mgl64.Vec3
	// Distance is measured along the ray from its origin.
	Distance float64
	// Normal is the face of the voxel the ray entered through.
	Normal [3]int
}

// Raycast walks the voxels crossed by the segment from -> to using DDA grid
// traversal and returns the first solid one. The voxel containing the origin
// is tested too.
func Raycast(solid SolidFunc, from, to mgl64.Vec3) (RaycastHit, bool) {
	delta := to.Sub(from)
	dist := delta.Len()
	if dist < Epsilon || !finite(dist) {
		return RaycastHit{}, false
	}
	dir := delta.Mul(1 / dist)

	var voxel, step [3]int
	var tMax, tDelta [3]float64
	for a := range 3 {
		voxel[a] = int(math.Floor(from[a]))
		tMax[a], tDelta[a] = math.Inf(1), math.Inf(1)
		if math.Abs(dir[a]) < 1e-12 {
			continue
		}
		// tMax: distance (in t) to next voxel boundary on each axis
		// tDelta: distance (in t) to traverse a full voxel on each axis
		boundary := float64(voxel[a])
		step[a] = -1
		if dir[a] > 0 {
			boundary++
			step[a] = 1
		}
		tMax[a] = (boundary - from[a]) / dir[a]
		tDelta[a] = float64(step[a]) / dir[a]
	}

	var normal [3]int
	t := 0.0
	maxSteps := int(dist*3) + 3
	for range maxSteps {
		if t > dist {
			break
		}
		if solid(voxel[0], voxel[1], voxel[2]) {
			return RaycastHit{
				Voxel:    voxel,
				Point:    from.Add(dir.Mul(t)),
				Distance: t,
				Normal:   normal,
			}, true
		}

		// advance to next voxel boundary
		a := AxisZ
		if tMax[AxisX] < tMax[AxisY] {
			if tMax[AxisX] < tMax[AxisZ] {
				a = AxisX
			}
		} else if tMax[AxisY] < tMax[AxisZ] {
			a = AxisY
		}
		t = tMax[a]
		voxel[a] += step[a]
		tMax[a] += tDelta[a]
		normal = [3]int{}
		normal[a] = -step[a]
	}

	return RaycastHit{}, false
}

// GroundDistance returns how far the base of box is above the nearest solid
// voxel directly below its center, searching at most maxDepth.
func GroundDistance(solid SolidFunc, box AABB, maxDepth float64) (float64, bool) {
	c := box.Center()
	origin := mgl64.Vec3{c[0], box.Min[1], c[2]}
	hit, ok := Raycast(solid, origin, origin.Sub(mgl64.Vec3{0, maxDepth, 0}))
	if !ok {
		return 0, false
	}
	return hit.Distance, true
}
