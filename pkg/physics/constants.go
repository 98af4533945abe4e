package physics

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// world defaults
var DefaultGravity = mgl64.Vec3{0, -10, 0}

const (
	DefaultAirDrag          = 0.1
	DefaultFluidDrag        = 0.4
	DefaultFluidDensity     = 2.0
	DefaultMinBounceImpulse = 0.5 // lowest collision impulse that bounces
)

// body defaults
const (
	DefaultMass              = 1.0
	DefaultFriction          = 1.0
	DefaultRestitution       = 0.0
	DefaultGravityMultiplier = 1.0
	UseWorldDrag             = -1.0 // drag override value meaning "use the world's drag"
)

const (
	// WakeTicks is how many ticks a body stays awake after being disturbed.
	WakeTicks = 10

	// StepCutoff is the ratio of horizontal movement components beyond which
	// auto-stepping ignores contact on the minor axis.
	StepCutoff = 4.0

	TicksPerSecond = 20
	TickDuration   = time.Second / TicksPerSecond

	impactEpsilon   = 0.001
	restingVelocity = 1e-5 // squared speed under which a body may fall asleep
	zeroGravity     = 1e-5 // squared gravity length treated as no gravity
)
