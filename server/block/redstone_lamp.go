package block

import "github.com/ashenvale/voxel/server/block/cube"

// RedstoneLamp is a light-emitting block that lights up when it receives
// redstone power from a neighbour. Lit and unlit are distinct runtime IDs.
type RedstoneLamp struct {
	Lit bool
}

// StateForNeighbourUpdate recomputes the lamp's lit state from the redstone
// power of its neighbours, used by set_block_state's prepare pass.
func (l RedstoneLamp) StateForNeighbourUpdate(pos cube.Pos, tx Tx) uint32 {
	lit := poweredByNeighbour(tx, pos)
	name := "minecraft:redstone_lamp"
	if lit {
		name = "minecraft:lit_redstone_lamp"
	}
	rid, ok := tx.Registry().RuntimeID(name)
	if !ok {
		return tx.Block(pos)
	}
	return rid
}

func (l RedstoneLamp) BrokenReplacement(cube.Pos, Tx) uint32 { return AirRuntimeID }

func (l RedstoneLamp) Drops(cube.Pos, Tx) []ItemStack {
	return []ItemStack{{Name: "minecraft:redstone_lamp", Count: 1}}
}

// poweredByNeighbour reports whether any of the six neighbours of pos emits
// redstone power toward it.
func poweredByNeighbour(tx Tx, pos cube.Pos) bool {
	registry := tx.Registry()
	for _, face := range cube.NeighbourUpdateFaces() {
		np := pos.Side(face)
		b, ok := registry.Lookup(tx.Block(np))
		if !ok {
			continue
		}
		emitter, ok := b.(RedstoneEmitter)
		if ok && emitter.EmitsRedstonePower() && emitter.WeakRedstonePower(face.Opposite(), tx, np) > 0 {
			return true
		}
	}
	return false
}

// RegisterRedstoneLamp registers the lamp's unlit and lit states, returning
// the unlit ID.
func RegisterRedstoneLamp(r *Registry, base uint32) uint32 {
	r.Register(base, "minecraft:redstone_lamp", RedstoneLamp{})
	r.Register(base+1, "minecraft:lit_redstone_lamp", RedstoneLamp{Lit: true})
	return base
}
