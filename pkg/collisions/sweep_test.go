package collisions

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type voxelSet map[[3]int]bool

func (v voxelSet) solid(x, y, z int) bool { return v[[3]int{x, y, z}] }

func (v voxelSet) fill(minX, minY, minZ, maxX, maxY, maxZ int) {
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				v[[3]int{x, y, z}] = true
			}
		}
	}
}

func approxEqual(t *testing.T, got, want float64, field string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %.10f, want %.10f", field, got, want)
	}
}

func TestCollideFreeMovement(t *testing.T) {
	solid := voxelSet{}
	box := NewAABB(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1, 1, 1})

	res := Collide(solid.solid, &box, mgl64.Vec3{1.25, -2, 0.5}, true)

	if res.Collided() {
		t.Errorf("Resting = %v, want none", res.Resting)
	}
	approxEqual(t, box.Min[0], 1.75, "min.x")
	approxEqual(t, box.Min[1], -1.5, "min.y")
	approxEqual(t, box.Min[2], 1.0, "min.z")
	approxEqual(t, box.Max[1], -0.5, "max.y")
}

func TestCollideStopsAtVoxelFace(t *testing.T) {
	tests := []struct {
		name    string
		disp    mgl64.Vec3
		axis    int
		dir     int
		wantMin float64
	}{
		{"positive x", mgl64.Vec3{3, 0, 0}, AxisX, 1, 2.0},
		{"negative x", mgl64.Vec3{-3, 0, 0}, AxisX, -1, -2.0},
		{"positive y", mgl64.Vec3{0, 3, 0}, AxisY, 1, 2.0},
		{"negative y", mgl64.Vec3{0, -3, 0}, AxisY, -1, -2.0},
		{"positive z", mgl64.Vec3{0, 0, 3}, AxisZ, 1, 2.0},
		{"negative z", mgl64.Vec3{0, 0, -3}, AxisZ, -1, -2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// walls three voxels away on every side of a unit box at the origin
			solid := voxelSet{}
			var lo, hi [3]int
			for a := range 3 {
				lo[a], hi[a] = -5, 5
			}
			for _, side := range []int{-3, 3} {
				l, h := lo, hi
				l[tt.axis], h[tt.axis] = side, side
				solid.fill(l[0], l[1], l[2], h[0], h[1], h[2])
			}

			box := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
			res := Collide(solid.solid, &box, tt.disp, true)

			if res.Resting[tt.axis] != tt.dir {
				t.Errorf("Resting[%d] = %d, want %d", tt.axis, res.Resting[tt.axis], tt.dir)
			}
			approxEqual(t, box.Min[tt.axis], tt.wantMin, "min")
			approxEqual(t, res.Displacement[tt.axis], tt.wantMin, "displacement")
		})
	}
}

func TestCollideTouchingDoesNotMove(t *testing.T) {
	solid := voxelSet{}
	solid.fill(-2, 0, -2, 2, 0, 2)
	box := NewAABB(mgl64.Vec3{0.2, 1, 0.2}, mgl64.Vec3{0.6, 1.8, 0.6})

	res := Collide(solid.solid, &box, mgl64.Vec3{0, -0.01, 0}, true)

	if res.Resting[AxisY] != -1 {
		t.Errorf("Resting[y] = %d, want -1", res.Resting[AxisY])
	}
	approxEqual(t, box.Min[1], 1, "min.y")
}

func TestCollideSlideVersusStop(t *testing.T) {
	solid := voxelSet{}
	solid.fill(2, -5, -5, 2, 5, 5) // wall at x=2

	disp := mgl64.Vec3{2, -0.5, 0.75}

	slideBox := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	slide := Collide(solid.solid, &slideBox, disp, true)
	if slide.Resting[AxisX] != 1 {
		t.Fatalf("slide Resting[x] = %d, want 1", slide.Resting[AxisX])
	}
	approxEqual(t, slideBox.Min[0], 1, "slide min.x")
	approxEqual(t, slideBox.Min[1], -0.5, "slide min.y")
	approxEqual(t, slideBox.Min[2], 0.75, "slide min.z")

	stopBox := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	stop := Collide(solid.solid, &stopBox, disp, false)
	if stop.Resting[AxisX] != 1 {
		t.Fatalf("stop Resting[x] = %d, want 1", stop.Resting[AxisX])
	}
	approxEqual(t, stopBox.Min[0], 1, "stop min.x")
	approxEqual(t, stopBox.Min[1], 0, "stop min.y")
	approxEqual(t, stopBox.Min[2], 0, "stop min.z")
	if stop.Displacement[AxisY] != 0 || stop.Displacement[AxisZ] != 0 {
		t.Errorf("stop Displacement = %v, want only x", stop.Displacement)
	}
}

func TestCollideStopOnLaterAxis(t *testing.T) {
	solid := voxelSet{}
	solid.fill(-5, 0, -5, 5, 0, 5) // floor at y=0

	tests := []struct {
		name       string
		base       mgl64.Vec3
		disp       mgl64.Vec3
		wantAxis   int
		wantMin    mgl64.Vec3
		wantTravel mgl64.Vec3
	}{
		{
			name:       "y blocked after x moved",
			base:       mgl64.Vec3{0, 1.2, 0},
			disp:       mgl64.Vec3{0.5, -0.5, 0.5},
			wantAxis:   AxisY,
			wantMin:    mgl64.Vec3{0, 1, 0},
			wantTravel: mgl64.Vec3{0, -0.2, 0},
		},
		{
			name:       "y blocked moving -x",
			base:       mgl64.Vec3{1, 1.1, 1},
			disp:       mgl64.Vec3{-0.3, -1, 0},
			wantAxis:   AxisY,
			wantMin:    mgl64.Vec3{1, 1, 1},
			wantTravel: mgl64.Vec3{0, -0.1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := NewAABB(tt.base, mgl64.Vec3{1, 1, 1})
			res := Collide(solid.solid, &box, tt.disp, false)

			want := [3]int{}
			want[tt.wantAxis] = -1
			if res.Resting != want {
				t.Fatalf("Resting = %v, want %v", res.Resting, want)
			}
			for i, name := range []string{"x", "y", "z"} {
				approxEqual(t, box.Min[i], tt.wantMin[i], "min."+name)
				approxEqual(t, res.Displacement[i], tt.wantTravel[i], "displacement."+name)
				approxEqual(t, box.Min[i]-tt.base[i], res.Displacement[i], "travelled."+name)
			}
		})
	}
}

func TestCollidePreExistingOverlap(t *testing.T) {
	solid := voxelSet{}
	solid.fill(1, 0, 0, 1, 0, 0)
	// box already sunk half a voxel into the solid at x=1
	box := NewAABB(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1})

	res := Collide(solid.solid, &box, mgl64.Vec3{0.1, 0, 0}, true)

	if !res.PreExistingCollision {
		t.Error("PreExistingCollision = false, want true")
	}
	if res.Resting[AxisX] != 0 {
		t.Errorf("Resting[x] = %d, want 0", res.Resting[AxisX])
	}
	approxEqual(t, box.Min[0], 0.6, "min.x")
}

func TestSweepVisitsNearestVoxelFirst(t *testing.T) {
	solid := voxelSet{}
	solid.fill(3, 0, 0, 3, 0, 0)
	solid.fill(5, 0, 0, 5, 0, 0)

	var hits []Hit
	box := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	Sweep(solid.solid, &box, mgl64.Vec3{8, 0, 0}, func(h Hit, _ *mgl64.Vec3) bool {
		hits = append(hits, h)
		return false
	})

	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Voxel != [3]int{3, 0, 0} || hits[1].Voxel != [3]int{5, 0, 0} {
		t.Errorf("hit order = %v, %v", hits[0].Voxel, hits[1].Voxel)
	}
	approxEqual(t, hits[0].Edge, 2, "edge")
	// callback never clamped, so the full displacement applies
	approxEqual(t, box.Min[0], 8, "min.x")
}

func TestSweepSkipsNonFiniteComponents(t *testing.T) {
	calls := 0
	solid := func(x, y, z int) bool { calls++; return false }
	box := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})

	got := Sweep(solid, &box, mgl64.Vec3{math.NaN(), math.Inf(1), 0}, func(Hit, *mgl64.Vec3) bool { return true })

	if calls != 0 {
		t.Errorf("solid called %d times, want 0", calls)
	}
	if got != (mgl64.Vec3{}) {
		t.Errorf("displacement = %v, want zero", got)
	}
}

func TestCollideNonPenetration(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := range 500 {
		solid := voxelSet{}
		for x := -6; x <= 6; x++ {
			for y := -6; y <= 6; y++ {
				for z := -6; z <= 6; z++ {
					if rng.Float64() < 0.15 {
						solid[[3]int{x, y, z}] = true
					}
				}
			}
		}

		var box AABB
		placed := false
		for range 50 {
			base := mgl64.Vec3{rng.Float64()*6 - 3, rng.Float64()*6 - 3, rng.Float64()*6 - 3}
			ext := mgl64.Vec3{0.2 + rng.Float64()*1.5, 0.2 + rng.Float64()*1.5, 0.2 + rng.Float64()*1.5}
			box = NewAABB(base, ext)
			if !Overlaps(solid.solid, box) {
				placed = true
				break
			}
		}
		if !placed {
			continue
		}

		disp := mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, rng.Float64()*4 - 2}
		start := box
		Collide(solid.solid, &box, disp, true)

		// shrink by a rounding tolerance; touching faces are allowed
		inner := box.Inflate(-1e-9)
		if Overlaps(solid.solid, inner) {
			t.Fatalf("trial %d: box %v swept by %v from %v penetrates terrain", trial, box, disp, start)
		}
	}
}
