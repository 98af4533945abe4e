package terrain

import (
	"github.com/go-mclib/data/pkg/data/blocks"
	block_shapes "github.com/go-mclib/data/pkg/data/hitboxes/blocks"
)

// DefaultSlipperiness is the slipperiness of ordinary blocks.
const DefaultSlipperiness = 0.6

// block slipperiness values (BlockBehaviour.friction)
var blockSlipperiness = map[string]float64{
	"minecraft:ice":         0.98,
	"minecraft:packed_ice":  0.98,
	"minecraft:blue_ice":    0.989,
	"minecraft:slime_block": 0.8,
}

// precomputed block IDs for fluid detection
var (
	waterBlockID int32
	lavaBlockID  int32
)

func init() {
	waterBlockID = blocks.BlockID("minecraft:water")
	lavaBlockID = blocks.BlockID("minecraft:lava")
}

// maxStateID bounds the search in DefaultState.
const maxStateID = 1 << 16

// DefaultState returns the first state ID of the named block whose "level"
// property, if any, is zero (a source block for fluids).
func DefaultState(name string) (int32, bool) {
	id := blocks.BlockID(name)
	if id < 0 {
		return 0, false
	}
	for state := range maxStateID {
		blockID, props := blocks.StateProperties(state)
		if blockID != id {
			continue
		}
		if lvl, ok := props["level"]; ok && lvl != "0" {
			continue
		}
		return int32(state), true
	}
	return 0, false
}

// HasCollision reports whether a block state blocks movement.
func HasCollision(stateID int32) bool {
	return block_shapes.HasCollision(stateID)
}

// IsWater returns true if the block state is water.
func IsWater(stateID int32) bool {
	blockID, _ := blocks.StateProperties(int(stateID))
	return blockID == waterBlockID
}

// IsLava returns true if the block state is lava.
func IsLava(stateID int32) bool {
	blockID, _ := blocks.StateProperties(int(stateID))
	return blockID == lavaBlockID
}

// IsFluid returns true if the block state is water or lava.
func IsFluid(stateID int32) bool {
	blockID, _ := blocks.StateProperties(int(stateID))
	return blockID == waterBlockID || blockID == lavaBlockID
}

// Slipperiness returns the slipperiness of a block state.
func Slipperiness(stateID int32) float64 {
	blockID, _ := blocks.StateProperties(int(stateID))
	if f, ok := blockSlipperiness[blocks.BlockName(blockID)]; ok {
		return f
	}
	return DefaultSlipperiness
}

// FrictionCoefficient maps a block's slipperiness to a body friction
// coefficient, 1 for ordinary blocks and close to 0 for ice.
func FrictionCoefficient(stateID int32) float64 {
	return (1 - Slipperiness(stateID)) / (1 - DefaultSlipperiness)
}
