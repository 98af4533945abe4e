package terrain

import (
	"fmt"
	"sync"
)

// Kind is the content of a single voxel.
type Kind uint8

const (
	Air Kind = iota
	Solid
	Fluid
)

func (k Kind) String() string {
	switch k {
	case Air:
		return "air"
	case Solid:
		return "solid"
	case Fluid:
		return "fluid"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind converts "air", "solid" or "fluid" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "air":
		return Air, nil
	case "solid":
		return Solid, nil
	case "fluid":
		return Fluid, nil
	}
	return Air, fmt.Errorf("unknown voxel kind %q", s)
}

// Grid is a sparse voxel store; unset voxels are air.
type Grid struct {
	mu     sync.RWMutex
	voxels map[[3]int]Kind
}

func NewGrid() *Grid {
	return &Grid{voxels: make(map[[3]int]Kind)}
}

// Set replaces the voxel at (x, y, z).
func (g *Grid) Set(x, y, z int, k Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.set([3]int{x, y, z}, k)
}

func (g *Grid) set(key [3]int, k Kind) {
	if k == Air {
		delete(g.voxels, key)
		return
	}
	g.voxels[key] = k
}

// Fill sets every voxel in the inclusive box between min and max.
func (g *Grid) Fill(min, max [3]int, k Kind) {
	for i := range 3 {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for x := min[0]; x <= max[0]; x++ {
		for y := min[1]; y <= max[1]; y++ {
			for z := min[2]; z <= max[2]; z++ {
				g.set([3]int{x, y, z}, k)
			}
		}
	}
}

// Get returns the voxel at (x, y, z).
func (g *Grid) Get(x, y, z int) Kind {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.voxels[[3]int{x, y, z}]
}

// IsSolid reports whether (x, y, z) blocks movement.
func (g *Grid) IsSolid(x, y, z int) bool { return g.Get(x, y, z) == Solid }

// IsFluid reports whether (x, y, z) holds fluid.
func (g *Grid) IsFluid(x, y, z int) bool { return g.Get(x, y, z) == Fluid }

// Len returns the number of non-air voxels.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.voxels)
}

// Reset clears every voxel.
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.voxels = make(map[[3]int]Kind)
}
