package block

import "github.com/ashenvale/voxel/server/block/cube"

// RedstoneDust is redstone wire laid on the ground. Each power level 0-15
// is registered as its own runtime ID (RegisterRedstoneDust), matching how
// the rest of the curated set bakes small enumerable properties into
// distinct IDs rather than tracking per-position state separately.
type RedstoneDust struct {
	Power uint8
}

func (d RedstoneDust) EmitsRedstonePower() bool { return true }

func (d RedstoneDust) WeakRedstonePower(cube.Face, Tx, cube.Pos) int {
	return int(d.Power)
}

func (d RedstoneDust) StrongRedstonePower(cube.Face, Tx, cube.Pos) int {
	// Dust only ever drives adjacent wire/devices weakly; it never powers
	// through the block it rests on.
	return 0
}

// NeighbourUpdateTick removes the dust if the block below no longer
// supports it.
func (d RedstoneDust) NeighbourUpdateTick(pos, _ cube.Pos, tx Tx) {
	if !isSolid(tx.Block(pos.Side(cube.FaceDown))) {
		BreakBlock(tx, pos, NotifyNeighbours)
	}
}

func (d RedstoneDust) CanPlaceAt(pos cube.Pos, tx Tx) bool {
	return isSolid(tx.Block(pos.Side(cube.FaceDown)))
}

func (d RedstoneDust) BrokenReplacement(cube.Pos, Tx) uint32 { return AirRuntimeID }

func (d RedstoneDust) Drops(cube.Pos, Tx) []ItemStack {
	return []ItemStack{{Name: "minecraft:redstone", Count: 1}}
}

// RegisterRedstoneDust registers all 16 power-level states of redstone dust
// starting at the runtime ID base given, returning the ID for power 0.
func RegisterRedstoneDust(r *Registry, base uint32) uint32 {
	for p := uint8(0); p < 16; p++ {
		r.Register(base+uint32(p), "minecraft:redstone_wire", RedstoneDust{Power: p})
	}
	return base
}
