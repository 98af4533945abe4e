package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
)

// tryAutoStep retries a horizontally blocked move one voxel higher. stepBox is
// the box before this tick's sweep and dx the displacement before the fall
// guard touched it. On success the body keeps the raised box and its
// horizontal resting flags come from the raised sweep.
func (w *World) tryAutoStep(b *Body, stepBox collisions.AABB, dx mgl64.Vec3) {
	if b.Resting[collisions.AxisY] >= 0 && !b.InFluid {
		return
	}

	xBlocked := b.Resting[collisions.AxisX] != 0
	zBlocked := b.Resting[collisions.AxisZ] != 0
	if !xBlocked && !zBlocked {
		return
	}

	// only step when heading sufficiently into the obstruction (doorways)
	ratio := math.Abs(dx[0] / dx[2])
	if !xBlocked && ratio > StepCutoff {
		return
	}
	if !zBlocked && ratio < 1/StepCutoff {
		return
	}

	target := stepBox.Min.Add(dx)
	box := stepBox

	// move towards the target until the first horizontal contact
	collisions.Sweep(w.solid, &box, dx, func(h collisions.Hit, d *mgl64.Vec3) bool {
		if h.Overlapping() {
			return false
		}
		if h.Axis == collisions.AxisY {
			d[collisions.AxisY] = 0
			return true
		}
		for a := range 3 {
			if a != h.Axis {
				d[a] = 0
			}
		}
		d[h.Axis] = h.Edge
		return true
	})

	// climb to the top of the next voxel, bailing on any obstruction
	up := math.Floor(box.Min[1]+1+0.001) - box.Min[1]
	blocked := false
	collisions.Sweep(w.solid, &box, mgl64.Vec3{0, up, 0}, func(h collisions.Hit, d *mgl64.Vec3) bool {
		if h.Overlapping() {
			return false
		}
		blocked = true
		return true
	})
	if blocked {
		return
	}

	leftover := target.Sub(box.Min)
	leftover[collisions.AxisY] = 0
	res := collisions.Collide(w.solid, &box, leftover, true)

	// bail unless the raised sweep reached the target on a blocked axis
	xReached := math.Abs(box.Min[0]-target[0]) < collisions.Epsilon
	zReached := math.Abs(box.Min[2]-target[2]) < collisions.Epsilon
	if xBlocked && !xReached && (!zReached || !zBlocked) {
		return
	}
	if zBlocked && (!xReached || !xBlocked) && !zReached {
		return
	}

	// diagonal moves can carry the box past the ledge onto nothing
	if !collisions.GroundUnder(w.solid, box, mgl64.Vec3{}) {
		return
	}

	b.AABB = box
	b.Resting[collisions.AxisX] = res.Resting[collisions.AxisX]
	b.Resting[collisions.AxisZ] = res.Resting[collisions.AxisZ]
	for _, cb := range b.onStep {
		cb()
	}
}
