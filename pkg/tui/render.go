package tui

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
	"github.com/go-mclib/physics/pkg/physics"
)

// map cells
const (
	cellAir      = ' '
	cellSolid    = '#'
	cellFluid    = '~'
	cellBody     = 'o'
	cellSelected = '@'
)

// Slice renders the x/y cross-section of the world through the voxel layer
// containing center.Z, cols by rows cells around center. Row 0 is the top.
func Slice(w *physics.World, selected *physics.Body, center mgl64.Vec3, cols, rows int) [][]rune {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	x0 := int(math.Floor(center.X())) - cols/2
	yTop := int(math.Floor(center.Y())) + rows/2
	z := int(math.Floor(center.Z()))

	bodies := w.Bodies()
	out := make([][]rune, rows)
	for r := range out {
		row := make([]rune, cols)
		y := yTop - r
		for c := range row {
			x := x0 + c
			row[c] = cellAt(w, bodies, selected, x, y, z)
		}
		out[r] = row
	}
	return out
}

func cellAt(w *physics.World, bodies []*physics.Body, selected *physics.Body, x, y, z int) rune {
	voxel := collisions.VoxelBox(x, y, z)
	cell := rune(0)
	for _, b := range bodies {
		if !b.AABB.Intersects(voxel) {
			continue
		}
		if b == selected {
			return cellSelected
		}
		cell = cellBody
	}
	if cell != 0 {
		return cell
	}
	switch {
	case w.Solid(x, y, z):
		return cellSolid
	case w.Fluid(x, y, z):
		return cellFluid
	}
	return cellAir
}
