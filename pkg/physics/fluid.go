package physics

import (
	"math"
)

// applyFluidForces samples fluid at the base corner of the body and applies
// buoyancy for the submerged part of its height. Fluid is assumed settled, so
// only the column above the base corner is checked.
func (w *World) applyFluidForces(b *Body) {
	box := b.AABB
	cx := int(math.Floor(box.Min[0]))
	cz := int(math.Floor(box.Min[2]))
	y0 := int(math.Floor(box.Min[1]))
	y1 := int(math.Floor(box.Max[1]))

	if !w.fluid(cx, y0, cz) {
		b.InFluid = false
		b.RatioInFluid = 0
		return
	}

	submerged := 1
	for cy := y0 + 1; cy <= y1 && w.fluid(cx, cy, cz); cy++ {
		submerged++
	}
	level := float64(y0 + submerged)
	ratio := math.Min((level-box.Min[1])/box.Extent()[1], 1)

	// buoyancy = -gravity * density * displaced volume * gravity multiplier
	displaced := box.Volume() * ratio
	b.ApplyForce(w.Gravity.Mul(-w.FluidDensity * displaced * b.GravityMultiplier))

	b.InFluid = true
	b.RatioInFluid = ratio
}
