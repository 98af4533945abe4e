package collisions

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SolidFunc reports whether the voxel at integer coordinates blocks movement.
type SolidFunc func(x, y, z int) bool

// Hit describes the first solid voxel found while scanning one axis.
type Hit struct {
	Axis  int
	Voxel [3]int
	// Dir is the sign of the movement on Axis, -1 or 1.
	Dir int
	// Edge is the signed distance from the box's leading face to the voxel's near face.
	Edge float64
	// Travel is the displacement requested on Axis when the voxel was found.
	Travel float64
}

// Overlapping reports whether the voxel lies further from the leading face than
// the requested travel, meaning the box started the sweep already inside terrain
// on this axis rather than running into it.
func (h Hit) Overlapping() bool {
	return math.Abs(h.Travel) < math.Abs(h.Edge)
}

// HitFunc is called for every solid voxel found, nearest first. It may modify
// the displacement in place. Returning true ends the scan on the current axis.
type HitFunc func(h Hit, disp *mgl64.Vec3) bool

// SweepResult is the outcome of Collide.
type SweepResult struct {
	// Resting holds, per axis, the direction in which movement was blocked.
	Resting [3]int
	// PreExistingCollision is set when the box was already overlapping terrain.
	PreExistingCollision bool
	// Displacement is the distance actually travelled.
	Displacement mgl64.Vec3
}

// Collided reports whether any axis was blocked.
func (r SweepResult) Collided() bool {
	return r.Resting != [3]int{}
}

// Sweep advances box along disp one axis at a time (X, then Y, then Z),
// stopping each axis at the nearest solid voxel accepted by onHit. The box is
// translated in place after each axis, so later axes scan from the resolved
// position. Returns the displacement actually applied.
func Sweep(solid SolidFunc, box *AABB, disp mgl64.Vec3, onHit HitFunc) mgl64.Vec3 {
	// ortho nesting: X scans (Y, Z), Y scans (Z, X), Z scans (Y, X)
	if finite(disp[0]) && disp[0] != 0 {
		sweepAxis(solid, AxisX, AxisY, AxisZ, box, &disp, onHit)
	} else {
		disp[0] = 0
	}
	if finite(disp[1]) && disp[1] != 0 {
		sweepAxis(solid, AxisY, AxisZ, AxisX, box, &disp, onHit)
	} else {
		disp[1] = 0
	}
	if finite(disp[2]) && disp[2] != 0 {
		sweepAxis(solid, AxisZ, AxisY, AxisX, box, &disp, onHit)
	} else {
		disp[2] = 0
	}
	return disp
}

func sweepAxis(solid SolidFunc, i, j, k int, box *AABB, disp *mgl64.Vec3, onHit HitFunc) {
	dir := -1
	leading := box.Min[i]
	if disp[i] > 0 {
		dir = 1
		leading = box.Max[i]
	}

	iStart := int(math.Floor(leading))
	iEnd := int(math.Floor(leading+disp[i])) + dir
	jStart, jEnd := int(math.Floor(box.Min[j])), ceil(box.Max[j])
	kStart, kEnd := int(math.Floor(box.Min[k])), ceil(box.Max[k])

	var coords [3]int
	var last Hit
	face := math.NaN()
outer:
	for v := iStart; v != iEnd; v += dir {
		coords[i] = v
		for vj := jStart; vj < jEnd; vj++ {
			coords[j] = vj
			for vk := kStart; vk < kEnd; vk++ {
				coords[k] = vk
				if !solid(coords[0], coords[1], coords[2]) {
					continue
				}
				near := float64(v)
				if dir < 0 {
					near++
				}
				last = Hit{Axis: i, Voxel: coords, Dir: dir, Edge: near - leading, Travel: disp[i]}
				face = near
				if onHit(last, disp) {
					break outer
				}
			}
		}
	}

	if !math.IsNaN(face) && disp[i] == last.Edge {
		// clamped to a voxel face: land on it exactly so rounding never leaves
		// the box a hair inside the voxel
		ext := box.Max[i] - box.Min[i]
		if dir > 0 {
			box.Max[i], box.Min[i] = face, face-ext
		} else {
			box.Min[i], box.Max[i] = face, face+ext
		}
		return
	}
	box.Min[i] += disp[i]
	box.Max[i] += disp[i]
}

// Collide sweeps box along disp with the default hit policy: a voxel within
// reach clamps that axis to the voxel face and marks it resting; a voxel
// beyond reach is reported as a pre-existing overlap and does not clamp.
// When slide is false a collision on any axis cancels movement on every other
// axis, including axes swept before the hit.
func Collide(solid SolidFunc, box *AABB, disp mgl64.Vec3, slide bool) SweepResult {
	start := *box
	res := collide(solid, box, disp, slide)
	if slide || !res.Collided() {
		return res
	}

	axis := AxisX
	for res.Resting[axis] == 0 {
		axis++
	}
	moved := res.Displacement
	moved[axis] = 0
	if moved == (mgl64.Vec3{}) {
		return res
	}

	// an earlier axis already moved the box: retry the blocked axis alone
	// from the starting position
	*box = start
	var only mgl64.Vec3
	only[axis] = disp[axis]
	retry := collide(solid, box, only, false)
	retry.PreExistingCollision = retry.PreExistingCollision || res.PreExistingCollision
	return retry
}

func collide(solid SolidFunc, box *AABB, disp mgl64.Vec3, slide bool) SweepResult {
	var res SweepResult
	res.Displacement = Sweep(solid, box, disp, func(h Hit, d *mgl64.Vec3) bool {
		if h.Overlapping() {
			res.PreExistingCollision = true
			return false
		}
		res.Resting[h.Axis] = h.Dir
		d[h.Axis] = h.Edge
		if !slide {
			for a := range 3 {
				if a != h.Axis {
					d[a] = 0
				}
			}
		}
		return true
	})
	return res
}

// SolidUnder reports whether the voxel directly beneath the point (x, y, z) is solid.
func SolidUnder(solid SolidFunc, x, y, z float64) bool {
	return solid(int(math.Floor(x)), int(math.Floor(y-1)), int(math.Floor(z)))
}

// GroundUnder reports whether at least one of the four bottom corners of box,
// shifted by offset and inset by Epsilon, stands above a solid voxel.
func GroundUnder(solid SolidFunc, box AABB, offset mgl64.Vec3) bool {
	minX, maxX := box.Min[0]+offset[0]+Epsilon, box.Max[0]+offset[0]-Epsilon
	minZ, maxZ := box.Min[2]+offset[2]+Epsilon, box.Max[2]+offset[2]-Epsilon
	y := box.Min[1]
	return SolidUnder(solid, minX, y, minZ) ||
		SolidUnder(solid, maxX, y, minZ) ||
		SolidUnder(solid, minX, y, maxZ) ||
		SolidUnder(solid, maxX, y, maxZ)
}

// Overlaps reports whether box intersects any solid voxel.
func Overlaps(solid SolidFunc, box AABB) bool {
	for x := int(math.Floor(box.Min[0])); x < ceil(box.Max[0]); x++ {
		for y := int(math.Floor(box.Min[1])); y < ceil(box.Max[1]); y++ {
			for z := int(math.Floor(box.Min[2])); z < ceil(box.Max[2]); z++ {
				if solid(x, y, z) {
					return true
				}
			}
		}
	}
	return false
}

// ceil rounds up, mapping zero to zero.
func ceil(f float64) int {
	if f == 0 {
		return 0
	}
	return int(math.Ceil(f))
}
