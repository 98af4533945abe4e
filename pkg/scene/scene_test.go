package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/physics"
)

const bounceScene = `
world:
  gravity: [0, -9.81, 0]
  air_drag: 0
terrain:
  - kind: solid
    min: [-4, 0, -4]
    max: [4, 0, 4]
  - kind: fluid
    min: [3, 1, -4]
    max: [4, 2, 4]
bodies:
  - name: ball
    base: [0, 4, 0]
    size: [1, 1, 1]
    restitution: 0.8
  - name: arrow
    base: [-2, 3, 0]
    size: [0.2, 0.2, 0.2]
    slide: false
    velocity: [5, 1, 0]
  - name: pillar
    base: [2, 1, 2]
    size: [1, 2, 1]
    mass: 0
`

func TestParseAndBuild(t *testing.T) {
	s, err := Parse([]byte(bounceScene))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	opts := s.Options()
	if opts.Gravity != (mgl64.Vec3{0, -9.81, 0}) {
		t.Errorf("Gravity = %v", opts.Gravity)
	}
	if opts.AirDrag != 0 {
		t.Errorf("AirDrag = %v, want explicit 0 kept", opts.AirDrag)
	}
	if opts.FluidDensity != physics.DefaultFluidDensity {
		t.Errorf("FluidDensity = %v, want default", opts.FluidDensity)
	}

	w, grid, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !grid.IsSolid(4, 0, -4) || !grid.IsFluid(3, 2, 0) || grid.IsSolid(0, 1, 0) {
		t.Error("terrain not filled as described")
	}

	bodies := w.Bodies()
	if len(bodies) != 3 {
		t.Fatalf("got %d bodies, want 3", len(bodies))
	}
	ball, arrow, pillar := bodies[0], bodies[1], bodies[2]
	if ball.Name != "ball" || ball.Restitution != 0.8 || ball.Mass != physics.DefaultMass {
		t.Errorf("ball = %+v", ball)
	}
	if !ball.SlideOnCollision || arrow.SlideOnCollision {
		t.Errorf("slide flags: ball %v, arrow %v", ball.SlideOnCollision, arrow.SlideOnCollision)
	}
	if arrow.Velocity != (mgl64.Vec3{5, 1, 0}) {
		t.Errorf("arrow velocity = %v", arrow.Velocity)
	}
	if !pillar.Static() {
		t.Error("pillar with mass 0 is not static")
	}
	if pillar.AABB.Max != (mgl64.Vec3{3, 3, 3}) {
		t.Errorf("pillar box = %v", pillar.AABB)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "world:\n  gravty: [0, -10, 0]\n"},
		{"bad vector", "bodies:\n  - base: [1, 2]\n    size: [1, 1, 1]\n"},
		{"not yaml", "world: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, ErrInvalidScene) {
				t.Errorf("err = %v, want ErrInvalidScene", err)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown voxel kind", "terrain:\n  - kind: lava\n    min: [0, 0, 0]\n    max: [1, 1, 1]\n", nil},
		{"negative mass", "bodies:\n  - base: [0, 0, 0]\n    size: [1, 1, 1]\n    mass: -2\n", physics.ErrInvalidBody},
		{"negative drag", "world:\n  air_drag: -1\n", physics.ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, _, err = s.Build()
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("err = %v, want ErrInvalidScene", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want it to wrap %v", err, tt.want)
			}
		})
	}
}

func TestEmptyScene(t *testing.T) {
	s, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if s.Options() != physics.DefaultOptions() {
		t.Errorf("empty scene options = %+v, want defaults", s.Options())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(bounceScene), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Bodies) != 3 {
		t.Errorf("got %d bodies, want 3", len(s.Bodies))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}
