package tui

import (
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
	"github.com/go-mclib/physics/pkg/physics"
	"github.com/go-mclib/physics/pkg/terrain"
)

func newSession(t *testing.T) (*Session, *terrain.Grid) {
	t.Helper()
	grid := terrain.NewGrid()
	grid.Fill([3]int{-5, 0, -5}, [3]int{5, 0, 5}, terrain.Solid)
	grid.Fill([3]int{3, 1, -1}, [3]int{4, 1, 1}, terrain.Fluid)

	w, err := physics.New(physics.DefaultOptions(), grid.IsSolid, grid.IsFluid)
	if err != nil {
		t.Fatalf("physics.New: %v", err)
	}
	w.Logger = log.New(io.Discard, "", 0)
	return &Session{World: w}, grid
}

func TestExecuteBodyCommands(t *testing.T) {
	s, _ := newSession(t)

	if _, err := s.Execute("impulse 0 1 0"); !errors.Is(err, errNoBody) {
		t.Errorf("impulse without a body: err = %v, want errNoBody", err)
	}

	if _, err := s.Execute("spawn 0 1 0"); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	b := s.Selected
	if b == nil || len(s.World.Bodies()) != 1 {
		t.Fatal("spawn did not add and select a body")
	}
	if b.AABB.Max != (mgl64.Vec3{1, 2, 1}) {
		t.Errorf("spawned box = %v, want a unit box", b.AABB)
	}

	tests := []struct {
		line  string
		check func() bool
	}{
		{"impulse 0 5 0", func() bool { return b.Impulses() == mgl64.Vec3{0, 5, 0} }},
		{"force 1 0 0", func() bool { return b.Forces() == mgl64.Vec3{1, 0, 0} }},
		{"vel 0 0 2", func() bool { return b.Velocity == mgl64.Vec3{0, 0, 2} }},
		{"pos -2 1 -2", func() bool { return b.Position() == mgl64.Vec3{-2, 1, -2} }},
	}
	for _, tt := range tests {
		if _, err := s.Execute(tt.line); err != nil {
			t.Errorf("%q: %v", tt.line, err)
			continue
		}
		if !tt.check() {
			t.Errorf("%q had no effect on %s", tt.line, b)
		}
	}

	if _, err := s.Execute("spawn 2 1 2 0.5 0.5 0.5"); err != nil {
		t.Fatalf("spawn with size: %v", err)
	}
	if got := s.Selected.AABB.Extent(); got != (mgl64.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("spawned extent = %v", got)
	}

	if _, err := s.Execute("select 0"); err != nil || s.Selected != b {
		t.Errorf("select 0: selected %v, err %v", s.Selected, err)
	}
	if _, err := s.Execute("remove"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(s.World.Bodies()) != 1 || s.Selected == b || s.Selected == nil {
		t.Errorf("after remove: %d bodies, selected %v", len(s.World.Bodies()), s.Selected)
	}
}

func TestExecuteErrors(t *testing.T) {
	s, _ := newSession(t)
	// non-finite input must be rejected before it reaches a body
	s.World.Debug = true
	if _, err := s.Execute("spawn 0 1 0"); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	for _, line := range []string{
		"jump",
		"impulse 1 2",
		"impulse a b c",
		"spawn 0 1",
		"spawn 0 1 0 0 0 0", // empty box
		"select 7",
		"step 0",
		"ray 0 5 0",
		"impulse NaN 0 0",
		"pos Inf 0 0",
		"spawn 0 -inf 0",
	} {
		if _, err := s.Execute(line); err == nil {
			t.Errorf("%q succeeded, want an error", line)
		}
	}

	if out, err := s.Execute("   "); err != nil || out != "" {
		t.Errorf("blank line = %q, %v", out, err)
	}
}

func TestExecutePauseAndStep(t *testing.T) {
	s, _ := newSession(t)

	if _, err := s.Execute("step 3"); err != nil {
		t.Fatal(err)
	}
	if !s.Paused || s.Steps != 3 {
		t.Errorf("step 3: paused %v, steps %d", s.Paused, s.Steps)
	}
	if _, err := s.Execute("resume"); err != nil || s.Paused {
		t.Errorf("resume: paused %v, err %v", s.Paused, err)
	}
	if _, err := s.Execute("PAUSE"); err != nil || !s.Paused {
		t.Errorf("PAUSE: paused %v, err %v", s.Paused, err)
	}
}

func TestExecuteRay(t *testing.T) {
	s, _ := newSession(t)

	out, err := s.Execute("ray 0.5 5 0.5 0 -10 0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[0 0 0]") {
		t.Errorf("ray down = %q, want a hit on voxel [0 0 0]", out)
	}

	out, err = s.Execute("ray 0.5 5 0.5 0 10 0")
	if err != nil || out != "ray: no hit" {
		t.Errorf("ray up = %q, %v", out, err)
	}
}

func TestAdvanceHonoursPause(t *testing.T) {
	s, _ := newSession(t)
	tui := New(s.World, physics.TickDuration)
	tui.session = s

	tui.advance()
	if got := s.World.Stats().Ticks; got != 1 {
		t.Fatalf("Ticks = %d after one frame, want 1", got)
	}

	s.Paused = true
	tui.advance()
	if got := s.World.Stats().Ticks; got != 1 {
		t.Errorf("paused world ticked: Ticks = %d", got)
	}

	s.Steps = 2
	tui.advance()
	tui.advance()
	tui.advance()
	if got := s.World.Stats().Ticks; got != 3 || s.Steps != 0 {
		t.Errorf("after two steps: Ticks = %d, Steps = %d", got, s.Steps)
	}
}

func TestWriterBuffersLines(t *testing.T) {
	s, _ := newSession(t)
	tui := New(s.World, 0)
	w := &Writer{tui: tui}

	s.World.Logger = log.New(w, "", 0)
	s.World.Tick(-1)
	if _, err := w.Write([]byte("one\ntwo\n")); err != nil {
		t.Fatal(err)
	}

	logs := tui.renderLogs()
	if !strings.Contains(logs, "invalid duration") || !strings.HasSuffix(logs, "one\ntwo") {
		t.Errorf("logs = %q", logs)
	}
}

func TestSlice(t *testing.T) {
	s, _ := newSession(t)
	if _, err := s.Execute("spawn 0 1 0"); err != nil {
		t.Fatal(err)
	}
	other, err := s.World.AddBody(collisions.NewAABB(mgl64.Vec3{-2, 1, 0}, mgl64.Vec3{1, 2, 1}), physics.DefaultBodyOptions())
	if err != nil {
		t.Fatal(err)
	}

	// 9 columns from x=-4, 3 rows from y=2 down to y=0
	got := Slice(s.World, s.Selected, mgl64.Vec3{0.5, 1.5, 0.5}, 9, 3)
	want := []string{
		"  o      ",
		"  o @  ~~",
		"#########",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Errorf("row %d = %q, want %q", i, string(got[i]), want[i])
		}
	}

	if Slice(s.World, other, mgl64.Vec3{}, 0, 3) != nil {
		t.Error("zero-width slice is not nil")
	}
}
