package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
	"github.com/go-mclib/physics/pkg/physics"
	"github.com/go-mclib/physics/pkg/terrain"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("invalid scene")

// Scene is the YAML description of a world, its terrain and its bodies.
// Omitted world and body keys keep their defaults.
type Scene struct {
	World   WorldDef  `yaml:"world"`
	Terrain []FillDef `yaml:"terrain"`
	Bodies  []BodyDef `yaml:"bodies"`
}

type WorldDef struct {
	Gravity          *[3]float64 `yaml:"gravity,omitempty"`
	AirDrag          *float64    `yaml:"air_drag,omitempty"`
	FluidDrag        *float64    `yaml:"fluid_drag,omitempty"`
	FluidDensity     *float64    `yaml:"fluid_density,omitempty"`
	MinBounceImpulse *float64    `yaml:"min_bounce_impulse,omitempty"`
}

// FillDef sets every voxel between two inclusive corners.
type FillDef struct {
	Kind string `yaml:"kind"`
	Min  [3]int `yaml:"min"`
	Max  [3]int `yaml:"max"`
}

type BodyDef struct {
	Name string     `yaml:"name,omitempty"`
	Base [3]float64 `yaml:"base"`
	Size [3]float64 `yaml:"size"`

	Mass              *float64 `yaml:"mass,omitempty"`
	Friction          *float64 `yaml:"friction,omitempty"`
	Restitution       *float64 `yaml:"restitution,omitempty"`
	GravityMultiplier *float64 `yaml:"gravity_multiplier,omitempty"`
	AirDrag           *float64 `yaml:"air_drag,omitempty"`
	FluidDrag         *float64 `yaml:"fluid_drag,omitempty"`

	AutoStep                      bool  `yaml:"auto_step,omitempty"`
	Slide                         *bool `yaml:"slide,omitempty"`
	PreventFallOffEdge            bool  `yaml:"prevent_fall_off_edge,omitempty"`
	AlwaysApplyHorizontalFriction bool  `yaml:"always_apply_horizontal_friction,omitempty"`

	Velocity [3]float64 `yaml:"velocity,omitempty"`
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return &s, nil
}

// Options returns the world options, defaults filled in for omitted keys.
func (s *Scene) Options() physics.Options {
	opts := physics.DefaultOptions()
	w := s.World
	if w.Gravity != nil {
		opts.Gravity = mgl64.Vec3(*w.Gravity)
	}
	setIf(&opts.AirDrag, w.AirDrag)
	setIf(&opts.FluidDrag, w.FluidDrag)
	setIf(&opts.FluidDensity, w.FluidDensity)
	setIf(&opts.MinBounceImpulse, w.MinBounceImpulse)
	return opts
}

// BodyOptions returns the options for a body definition.
func (d BodyDef) BodyOptions() physics.BodyOptions {
	opts := physics.DefaultBodyOptions()
	opts.Name = d.Name
	setIf(&opts.Mass, d.Mass)
	setIf(&opts.Friction, d.Friction)
	setIf(&opts.Restitution, d.Restitution)
	setIf(&opts.GravityMultiplier, d.GravityMultiplier)
	setIf(&opts.AirDrag, d.AirDrag)
	setIf(&opts.FluidDrag, d.FluidDrag)
	if d.Slide != nil {
		opts.SlideOnCollision = *d.Slide
	}
	opts.AutoStep = d.AutoStep
	opts.PreventFallOffEdge = d.PreventFallOffEdge
	opts.AlwaysApplyHorizontalFriction = d.AlwaysApplyHorizontalFriction
	opts.Velocity = mgl64.Vec3(d.Velocity)
	return opts
}

// Box returns the body's initial bounding box.
func (d BodyDef) Box() collisions.AABB {
	return collisions.NewAABB(mgl64.Vec3(d.Base), mgl64.Vec3(d.Size))
}

// Fill writes the scene terrain into g.
func (s *Scene) Fill(g *terrain.Grid) error {
	for i, f := range s.Terrain {
		kind, err := terrain.ParseKind(f.Kind)
		if err != nil {
			return fmt.Errorf("%w: terrain[%d]: %v", ErrInvalidScene, i, err)
		}
		g.Fill(f.Min, f.Max, kind)
	}
	return nil
}

// Build creates a world over a fresh grid and adds every body of the scene.
func (s *Scene) Build() (*physics.World, *terrain.Grid, error) {
	grid := terrain.NewGrid()
	if err := s.Fill(grid); err != nil {
		return nil, nil, err
	}
	w, err := physics.New(s.Options(), grid.IsSolid, grid.IsFluid)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	for i, d := range s.Bodies {
		if _, err := w.AddBody(d.Box(), d.BodyOptions()); err != nil {
			return nil, nil, fmt.Errorf("%w: bodies[%d] %q: %w", ErrInvalidScene, i, d.Name, err)
		}
	}
	return w, grid, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
