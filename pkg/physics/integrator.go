package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
)

type outcome int

const (
	outcomeIntegrated outcome = iota
	outcomeStatic
	outcomeAsleep
	outcomeRolledBack
	outcomeNumericFault
)

// iterateBody advances one body by dt seconds.
func (w *World) iterateBody(b *Body, dt float64) outcome {
	oldResting := b.Resting
	start := b.save()

	// bodies with no mass never move
	if b.Mass <= 0 {
		b.Velocity = mgl64.Vec3{}
		b.forces = mgl64.Vec3{}
		b.impulses = mgl64.Vec3{}
		return outcomeStatic
	}

	noGravity := w.Gravity.Dot(w.Gravity) < zeroGravity || b.GravityMultiplier == 0
	if w.asleep(b, dt, noGravity) {
		return outcomeAsleep
	}
	if b.sleepTicks > 0 {
		b.sleepTicks--
	}

	w.applyFluidForces(b)

	if !finiteVec(b.forces) || !finiteVec(b.impulses) || !finiteVec(b.Velocity) {
		return w.numericFault(b, start)
	}

	// semi-implicit euler: a = f/m + g*gmult, v += i/m + a*dt
	a := b.forces.Mul(1 / b.Mass).Add(w.Gravity.Mul(b.GravityMultiplier))
	dv := b.impulses.Mul(1 / b.Mass).Add(a.Mul(dt))
	b.Velocity = b.Velocity.Add(dv)

	if b.Friction != 0 {
		for axis := range 3 {
			w.applyFriction(b, axis, dv, dt)
		}
	}

	// linear drag, body overrides take precedence
	drag := w.AirDrag
	if b.AirDrag >= 0 {
		drag = b.AirDrag
	}
	if b.InFluid {
		drag = w.FluidDrag
		if b.FluidDrag >= 0 {
			drag = b.FluidDrag
		}
		drag *= 1 - (1-b.RatioInFluid)*(1-b.RatioInFluid)
	}
	b.Velocity = b.Velocity.Mul(math.Max(1-drag*dt/b.Mass, 0))

	dx := b.Velocity.Mul(dt)
	if !finiteVec(dx) {
		return w.numericFault(b, start)
	}

	b.forces = mgl64.Vec3{}
	b.impulses = mgl64.Vec3{}

	stepBox := b.AABB
	unguardedDx := dx

	var guardResting [3]int
	if b.PreventFallOffEdge {
		guardResting = w.preventFallOffEdge(b, &dx)
	}

	res := collisions.Collide(w.solid, &b.AABB, dx, b.SlideOnCollision)
	b.Resting = res.Resting
	if res.PreExistingCollision && w.Verbose {
		w.Logger.Printf("[Physics] %s started tick overlapping terrain at %v", b, stepBox.Min)
	}

	if b.AutoStep {
		w.tryAutoStep(b, stepBox, unguardedDx)
	}

	var impact mgl64.Vec3
	for i := range 3 {
		if b.Resting[i] == 0 {
			b.Resting[i] = guardResting[i]
		}
		if b.Resting[i] != 0 {
			// only a newly blocked axis counts as an impact
			if oldResting[i] == 0 {
				impact[i] = -b.Velocity[i]
			}
			b.Velocity[i] = 0
		}
	}

	if mag := impact.Len(); mag > impactEpsilon {
		impulse := impact.Mul(b.Mass)
		for _, cb := range b.onCollide {
			cb(impulse)
		}
		if b.Restitution > 0 && mag > w.MinBounceImpulse {
			b.ApplyImpulse(impulse.Mul(b.Restitution))
		}
	}

	if b.Velocity.Dot(b.Velocity) > restingVelocity {
		b.markActive()
	}

	if w.IsBodyInsideUnloadedBlock != nil && w.IsBodyInsideUnloadedBlock(b) {
		b.restore(start)
		b.RolledBackLastTick = true
		if w.Verbose {
			w.Logger.Printf("[Physics] %s entered unloaded terrain, rolled back to %v", b, start.box.Min)
		}
		return outcomeRolledBack
	}
	b.RolledBackLastTick = false
	return outcomeIntegrated
}

// applyFriction slows movement lateral to axis when the body is pressing
// into a surface on that axis.
func (w *World) applyFriction(b *Body, axis int, dv mgl64.Vec3, dt float64) {
	restDir := b.Resting[axis]
	if !b.AlwaysApplyHorizontalFriction || axis != collisions.AxisY {
		if restDir == 0 || float64(restDir)*dv[axis] <= 0 {
			return
		}
	}

	lateral := b.Velocity
	lateral[axis] = 0
	vCurr := lateral.Len()
	if vCurr < collisions.Epsilon {
		return
	}

	dvMax := math.Abs(b.Friction * w.Gravity[axis] * dt)
	scale := 0.0
	if vCurr > dvMax {
		scale = (vCurr - dvMax) / vCurr
	}
	b.Velocity[(axis+1)%3] *= scale
	b.Velocity[(axis+2)%3] *= scale
}

// asleep reports whether b can skip integration this tick. A body whose wake
// counter has run out only sleeps if it would not fall when integrated.
func (w *World) asleep(b *Body, dt float64, noGravity bool) bool {
	if b.sleepTicks > 0 {
		return false
	}
	// without gravity a body sleeps until a force or impulse wakes it
	if noGravity {
		return true
	}
	box := b.AABB
	fall := w.Gravity.Mul(0.5 * dt * dt * b.GravityMultiplier)
	return collisions.Collide(w.solid, &box, fall, true).Collided()
}

func (w *World) numericFault(b *Body, start bodyState) outcome {
	if w.Debug {
		panic("physics: " + b.String() + ": non-finite velocity, force or impulse")
	}
	w.Logger.Printf("[Physics] %s: non-finite state (v=%v f=%v i=%v), restoring tick-start state",
		b, b.Velocity, b.forces, b.impulses)
	b.restore(start)
	b.Velocity = mgl64.Vec3{}
	b.forces = mgl64.Vec3{}
	b.impulses = mgl64.Vec3{}
	return outcomeNumericFault
}
