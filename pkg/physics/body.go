package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
)

// Body is a rigid axis-aligned box owned by a World.
type Body struct {
	ID   int
	Name string

	AABB collisions.AABB

	// Mass of zero marks the body static; it is never integrated.
	Mass              float64
	Friction          float64
	Restitution       float64
	GravityMultiplier float64

	Velocity mgl64.Vec3

	// Resting holds, per axis, the direction of terrain contact as of the last
	// resolved sweep: -1, 0 or 1.
	Resting      [3]int
	InFluid      bool
	RatioInFluid float64

	AutoStep           bool
	SlideOnCollision   bool
	PreventFallOffEdge bool
	// AlwaysApplyHorizontalFriction applies vertical-axis friction to horizontal
	// movement even while airborne, so air control feels like ground control.
	AlwaysApplyHorizontalFriction bool

	// drag overrides; negative means use the world value
	AirDrag   float64
	FluidDrag float64

	RolledBackLastTick bool

	forces     mgl64.Vec3
	impulses   mgl64.Vec3
	sleepTicks int
	asleep     bool

	world   *World
	removed bool

	onCollide []func(impulse mgl64.Vec3)
	onStep    []func()
}

// BodyOptions configures a body created by World.AddBody.
type BodyOptions struct {
	Name string

	Mass              float64
	Friction          float64
	Restitution       float64
	GravityMultiplier float64

	AutoStep                      bool
	SlideOnCollision              bool
	PreventFallOffEdge            bool
	AlwaysApplyHorizontalFriction bool

	AirDrag   float64
	FluidDrag float64

	Velocity  mgl64.Vec3
	OnCollide func(impulse mgl64.Vec3)
}

// DefaultBodyOptions returns options for a unit-mass body that slides along
// terrain and uses the world's drag.
func DefaultBodyOptions() BodyOptions {
	return BodyOptions{
		Mass:              DefaultMass,
		Friction:          DefaultFriction,
		Restitution:       DefaultRestitution,
		GravityMultiplier: DefaultGravityMultiplier,
		SlideOnCollision:  true,
		AirDrag:           UseWorldDrag,
		FluidDrag:         UseWorldDrag,
	}
}

func (o BodyOptions) validate(box collisions.AABB) error {
	if !box.Valid() {
		return fmt.Errorf("%w: box %v has a non-finite or empty extent", ErrInvalidBody, box)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"mass", o.Mass},
		{"friction", o.Friction},
		{"restitution", o.Restitution},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidBody, f.name, f.v)
		}
	}
	if !finiteVec(o.Velocity) || !finite(o.GravityMultiplier) || !finite(o.AirDrag) || !finite(o.FluidDrag) {
		return fmt.Errorf("%w: non-finite option", ErrInvalidBody)
	}
	return nil
}

func newBody(box collisions.AABB, opts BodyOptions) *Body {
	b := &Body{
		Name:                          opts.Name,
		AABB:                          box,
		Mass:                          opts.Mass,
		Friction:                      opts.Friction,
		Restitution:                   opts.Restitution,
		GravityMultiplier:             opts.GravityMultiplier,
		Velocity:                      opts.Velocity,
		AutoStep:                      opts.AutoStep,
		SlideOnCollision:              opts.SlideOnCollision,
		PreventFallOffEdge:            opts.PreventFallOffEdge,
		AlwaysApplyHorizontalFriction: opts.AlwaysApplyHorizontalFriction,
		AirDrag:                       opts.AirDrag,
		FluidDrag:                     opts.FluidDrag,
		sleepTicks:                    WakeTicks,
	}
	if opts.OnCollide != nil {
		b.OnCollide(opts.OnCollide)
	}
	return b
}

// events

// OnCollide registers a listener fired when the body hits terrain on a
// previously free axis. The argument is the impulse (mass times velocity
// change) of the impact.
func (b *Body) OnCollide(cb func(impulse mgl64.Vec3)) { b.onCollide = append(b.onCollide, cb) }

// OnStep registers a listener fired when the body auto-steps onto a ledge.
func (b *Body) OnStep(cb func()) { b.onStep = append(b.onStep, cb) }

// actions

// SetPosition moves the base corner of the body to p and wakes it.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.assertFinite("position", p)
	b.AABB = b.AABB.SetPosition(p)
	b.markActive()
}

// Wake resets the sleep countdown so the body is integrated again.
func (b *Body) Wake() { b.markActive() }

// Position returns the base corner of the body.
func (b *Body) Position() mgl64.Vec3 { return b.AABB.Min }

// ApplyForce accumulates a force for the next integrated tick.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	b.assertFinite("force", f)
	b.forces = b.forces.Add(f)
	b.markActive()
}

// ApplyImpulse accumulates an impulse for the next integrated tick.
func (b *Body) ApplyImpulse(i mgl64.Vec3) {
	b.assertFinite("impulse", i)
	b.impulses = b.impulses.Add(i)
	b.markActive()
}

// Forces returns the force accumulated since the last integrated tick.
func (b *Body) Forces() mgl64.Vec3 { return b.forces }

// Impulses returns the impulse accumulated since the last integrated tick.
func (b *Body) Impulses() mgl64.Vec3 { return b.impulses }

func (b *Body) AtRestX() int { return b.Resting[collisions.AxisX] }
func (b *Body) AtRestY() int { return b.Resting[collisions.AxisY] }
func (b *Body) AtRestZ() int { return b.Resting[collisions.AxisZ] }

// Static reports whether the body is never integrated.
func (b *Body) Static() bool { return b.Mass <= 0 }

// Asleep reports whether the body skipped integration on its last tick
// because it was resting with an expired wake counter.
func (b *Body) Asleep() bool { return b.asleep }

func (b *Body) markActive() {
	b.sleepTicks = WakeTicks
	b.asleep = false
}

func (b *Body) assertFinite(what string, v mgl64.Vec3) {
	if b.world != nil && b.world.Debug && !finiteVec(v) {
		panic(fmt.Sprintf("physics: body %d: non-finite %s %v", b.ID, what, v))
	}
}

// bodyState is the part of a body restored on rollback.
type bodyState struct {
	box          collisions.AABB
	velocity     mgl64.Vec3
	resting      [3]int
	inFluid      bool
	ratioInFluid float64
	forces       mgl64.Vec3
	impulses     mgl64.Vec3
	sleepTicks   int
}

func (b *Body) save() bodyState {
	return bodyState{
		box:          b.AABB,
		velocity:     b.Velocity,
		resting:      b.Resting,
		inFluid:      b.InFluid,
		ratioInFluid: b.RatioInFluid,
		forces:       b.forces,
		impulses:     b.impulses,
		sleepTicks:   b.sleepTicks,
	}
}

func (b *Body) restore(s bodyState) {
	b.AABB = s.box
	b.Velocity = s.velocity
	b.Resting = s.resting
	b.InFluid = s.inFluid
	b.RatioInFluid = s.ratioInFluid
	b.forces = s.forces
	b.impulses = s.impulses
	b.sleepTicks = s.sleepTicks
}

func (b *Body) String() string {
	if b.Name != "" {
		return fmt.Sprintf("%s#%d", b.Name, b.ID)
	}
	return fmt.Sprintf("body#%d", b.ID)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
