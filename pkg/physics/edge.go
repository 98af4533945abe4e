package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
)

// preventFallOffEdge zeroes each horizontal component of dx that would leave
// the body with no solid voxel under any footprint corner. It returns the
// provisional resting flags for the suppressed axes.
func (w *World) preventFallOffEdge(b *Body, dx *mgl64.Vec3) [3]int {
	var resting [3]int
	if b.Resting[collisions.AxisY] == 0 || dx[collisions.AxisY] > 0 {
		return resting
	}

	box := b.AABB
	for _, i := range []int{collisions.AxisX, collisions.AxisZ} {
		if dx[i] == 0 {
			continue
		}
		var step mgl64.Vec3
		step[i] = dx[i]

		if !collisions.GroundUnder(w.solid, box, step) {
			resting[i] = int(math.Copysign(1, dx[i]))
			dx[i] = 0
			continue
		}
		if i == collisions.AxisX {
			// test Z from where the X move lands
			resting = collisions.Collide(w.solid, &box, step, b.SlideOnCollision).Resting
		}
	}
	return resting
}
