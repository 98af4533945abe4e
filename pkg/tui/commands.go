package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
	"github.com/go-mclib/physics/pkg/physics"
)

var errNoBody = errors.New("no body selected")

// Session is the sandbox state that commands act on.
type Session struct {
	World    *physics.World
	Selected *physics.Body
	Paused   bool
	// pending single steps requested while paused
	Steps int
}

// Help lists the sandbox commands.
const Help = `commands:
  impulse X Y Z        apply an impulse to the selected body
  force X Y Z          apply a force for the next tick
  vel X Y Z            set velocity
  pos X Y Z            move the selected body's base corner
  spawn X Y Z [W H D]  add a body (default size 1 1 1) and select it
  remove               remove the selected body
  select N             select the Nth body (0 based)
  ray X Y Z DX DY DZ   cast a ray against terrain
  pause | resume | step [N]`

// Execute runs one command line and returns the text to log.
func (s *Session) Execute(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		return Help, nil

	case "pause":
		s.Paused = true
		return "paused", nil

	case "resume":
		s.Paused = false
		return "resumed", nil

	case "step":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return "", fmt.Errorf("step: invalid count %q", args[0])
			}
			n = v
		}
		s.Paused = true
		s.Steps += n
		return fmt.Sprintf("stepping %d tick(s)", n), nil

	case "select":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: select N")
		}
		i, err := strconv.Atoi(args[0])
		bodies := s.World.Bodies()
		if err != nil || i < 0 || i >= len(bodies) {
			return "", fmt.Errorf("select: no body %q (have %d)", args[0], len(bodies))
		}
		s.Selected = bodies[i]
		return fmt.Sprintf("selected %s", s.Selected), nil

	case "spawn":
		v, err := floats(args, 3, 6)
		if err != nil {
			return "", fmt.Errorf("spawn: %w", err)
		}
		size := mgl64.Vec3{1, 1, 1}
		if len(v) == 6 {
			size = mgl64.Vec3{v[3], v[4], v[5]}
		}
		b, err := s.World.AddBody(collisions.NewAABB(mgl64.Vec3{v[0], v[1], v[2]}, size), physics.DefaultBodyOptions())
		if err != nil {
			return "", fmt.Errorf("spawn: %w", err)
		}
		s.Selected = b
		return fmt.Sprintf("spawned %s", b), nil

	case "ray":
		v, err := floats(args, 6, 6)
		if err != nil {
			return "", fmt.Errorf("ray: %w", err)
		}
		from := mgl64.Vec3{v[0], v[1], v[2]}
		hit, ok := s.World.Raycast(from, from.Add(mgl64.Vec3{v[3], v[4], v[5]}))
		if !ok {
			return "ray: no hit", nil
		}
		return fmt.Sprintf("ray: hit voxel %v at %.3f (normal %v)", hit.Voxel, hit.Distance, hit.Normal), nil
	}

	// commands on the selected body
	b := s.Selected
	if b == nil {
		return "", fmt.Errorf("%s: %w", cmd, errNoBody)
	}

	switch cmd {
	case "remove":
		if !s.World.RemoveBody(b) {
			return "", fmt.Errorf("remove: %s is not in the world", b)
		}
		s.Selected = nil
		if bodies := s.World.Bodies(); len(bodies) > 0 {
			s.Selected = bodies[0]
		}
		return fmt.Sprintf("removed %s", b), nil

	case "impulse", "force", "vel", "pos":
		v, err := floats(args, 3, 3)
		if err != nil {
			return "", fmt.Errorf("%s: %w", cmd, err)
		}
		vec := mgl64.Vec3{v[0], v[1], v[2]}
		switch cmd {
		case "impulse":
			b.ApplyImpulse(vec)
		case "force":
			b.ApplyForce(vec)
		case "vel":
			b.Velocity = vec
			b.Wake()
		case "pos":
			b.SetPosition(vec)
		}
		return fmt.Sprintf("%s %s %v", cmd, b, vec), nil
	}

	return "", fmt.Errorf("unknown command %q (try help)", cmd)
}

func floats(args []string, min, max int) ([]float64, error) {
	if len(args) < min || len(args) > max {
		if min == max {
			return nil, fmt.Errorf("want %d numbers, got %d", min, len(args))
		}
		return nil, fmt.Errorf("want %d to %d numbers, got %d", min, max, len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = f
	}
	return out, nil
}
