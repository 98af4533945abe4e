package physics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
)

var (
	ErrInvalidBody    = errors.New("invalid body")
	ErrInvalidOptions = errors.New("invalid world options")
)

// FluidFunc reports whether the voxel at integer coordinates is fluid.
type FluidFunc func(x, y, z int) bool

// Options are the global simulation parameters of a World.
type Options struct {
	Gravity          mgl64.Vec3
	AirDrag          float64
	FluidDrag        float64
	FluidDensity     float64
	MinBounceImpulse float64
}

// DefaultOptions returns earth-like gravity of 10 m/s² with light air drag.
func DefaultOptions() Options {
	return Options{
		Gravity:          DefaultGravity,
		AirDrag:          DefaultAirDrag,
		FluidDrag:        DefaultFluidDrag,
		FluidDensity:     DefaultFluidDensity,
		MinBounceImpulse: DefaultMinBounceImpulse,
	}
}

func (o Options) validate() error {
	if !finiteVec(o.Gravity) {
		return fmt.Errorf("%w: gravity %v is not finite", ErrInvalidOptions, o.Gravity)
	}
	for name, v := range map[string]float64{
		"air drag":           o.AirDrag,
		"fluid drag":         o.FluidDrag,
		"fluid density":      o.FluidDensity,
		"min bounce impulse": o.MinBounceImpulse,
	} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidOptions, name, v)
		}
	}
	return nil
}

// Stats describes the most recent tick.
type Stats struct {
	Ticks         uint64
	Bodies        int
	Integrated    int
	Asleep        int
	Static        int
	RolledBack    int
	NumericFaults int
}

// World owns a set of bodies and advances them against voxel terrain.
// A World is not safe for concurrent use; callers tick it from one goroutine.
type World struct {
	Options

	// IsBodyInsideUnloadedBlock, when set, is checked after each body is
	// integrated; a true result rolls the body back to its tick-start state.
	IsBodyInsideUnloadedBlock func(b *Body) bool

	Logger  *log.Logger
	Verbose bool
	// Debug turns numeric corruption into a panic instead of a logged rollback.
	Debug bool

	solid collisions.SolidFunc
	fluid FluidFunc

	bodies        []*Body
	nextID        int
	ticking       bool
	pendingAdd    []*Body
	pendingRemove []*Body
	stats         Stats

	onTick []func(dt float64)
}

// New creates a world. solid is required; a nil fluid means no voxel is fluid.
func New(opts Options, solid collisions.SolidFunc, fluid FluidFunc) (*World, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if solid == nil {
		return nil, fmt.Errorf("%w: solid predicate is required", ErrInvalidOptions)
	}
	if fluid == nil {
		fluid = func(x, y, z int) bool { return false }
	}
	return &World{
		Options: opts,
		Logger:  log.New(os.Stdout, "", log.LstdFlags),
		solid:   solid,
		fluid:   fluid,
	}, nil
}

// events

// OnTick registers a listener fired after every tick with its duration in
// seconds. Bodies added or removed by the listener take effect once it returns.
func (w *World) OnTick(cb func(dt float64)) { w.onTick = append(w.onTick, cb) }

// actions

// AddBody creates a body occupying box. Inside a tick the body joins the
// world once the tick completes.
func (w *World) AddBody(box collisions.AABB, opts BodyOptions) (*Body, error) {
	if err := opts.validate(box); err != nil {
		return nil, err
	}
	b := newBody(box, opts)
	w.nextID++
	b.ID = w.nextID
	b.world = w

	if w.ticking {
		w.pendingAdd = append(w.pendingAdd, b)
	} else {
		w.bodies = append(w.bodies, b)
	}
	if w.Verbose {
		w.Logger.Printf("[Physics] added %s at %v", b, box.Min)
	}
	return b, nil
}

// RemoveBody detaches b and drops its listeners. It returns false if b does
// not belong to the world or was already removed. Inside a tick the removal
// takes effect once the tick completes, and b is not integrated further.
func (w *World) RemoveBody(b *Body) bool {
	if b == nil || b.world != w || b.removed {
		return false
	}
	if i := slices.Index(w.pendingAdd, b); i >= 0 {
		w.pendingAdd = slices.Delete(w.pendingAdd, i, i+1)
		w.detach(b)
		return true
	}
	if !slices.Contains(w.bodies, b) {
		return false
	}
	b.removed = true
	if w.ticking {
		w.pendingRemove = append(w.pendingRemove, b)
		return true
	}
	w.bodies = slices.DeleteFunc(w.bodies, func(o *Body) bool { return o == b })
	w.detach(b)
	return true
}

func (w *World) detach(b *Body) {
	b.removed = true
	b.world = nil
	b.onCollide = nil
	b.onStep = nil
	if w.Verbose {
		w.Logger.Printf("[Physics] removed %s", b)
	}
}

// Bodies returns the registered bodies in insertion order.
func (w *World) Bodies() []*Body {
	return slices.Clone(w.bodies)
}

// Stats returns counters for the most recent tick.
func (w *World) Stats() Stats { return w.stats }

// Solid exposes the world's solidity predicate.
func (w *World) Solid(x, y, z int) bool { return w.solid(x, y, z) }

// Fluid exposes the world's fluid predicate.
func (w *World) Fluid(x, y, z int) bool { return w.fluid(x, y, z) }

// Raycast returns the first solid voxel on the segment from -> to.
func (w *World) Raycast(from, to mgl64.Vec3) (collisions.RaycastHit, bool) {
	return collisions.Raycast(w.solid, from, to)
}

// Reset removes every body and clears the counters.
func (w *World) Reset() {
	for _, b := range w.bodies {
		w.detach(b)
	}
	for _, b := range w.pendingAdd {
		w.detach(b)
	}
	w.bodies = nil
	w.pendingAdd = nil
	w.pendingRemove = nil
	w.stats = Stats{}
}

// Tick advances every body by dtMillis milliseconds.
func (w *World) Tick(dtMillis float64) {
	if w.ticking {
		panic("physics: Tick called from inside a tick")
	}
	dt := dtMillis / 1000
	if !finite(dt) || dt < 0 {
		w.Logger.Printf("[Physics] ignoring tick with invalid duration %vms", dtMillis)
		return
	}

	w.ticking = true
	defer func() { w.ticking = false }()

	stats := Stats{Ticks: w.stats.Ticks + 1, Bodies: len(w.bodies)}
	for _, b := range w.bodies {
		if b.removed {
			continue
		}
		out := w.iterateBody(b, dt)
		b.asleep = out == outcomeAsleep
		switch out {
		case outcomeStatic:
			stats.Static++
		case outcomeAsleep:
			stats.Asleep++
		case outcomeIntegrated:
			stats.Integrated++
		case outcomeRolledBack:
			stats.Integrated++
			stats.RolledBack++
		case outcomeNumericFault:
			stats.NumericFaults++
		}
	}
	w.stats = stats

	for _, cb := range w.onTick {
		cb(dt)
	}
	w.flushPending()
}

func (w *World) flushPending() {
	for _, b := range w.pendingRemove {
		w.bodies = slices.DeleteFunc(w.bodies, func(o *Body) bool { return o == b })
		w.detach(b)
	}
	w.pendingRemove = w.pendingRemove[:0]
	w.bodies = append(w.bodies, w.pendingAdd...)
	w.pendingAdd = w.pendingAdd[:0]
}

// Run ticks the world every interval until ctx is cancelled.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = TickDuration
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dtMillis := float64(interval) / float64(time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick(dtMillis)
		}
	}
}
