package block

import "github.com/ashenvale/voxel/server/block/cube"

// Oxidation is a copper block's weathering stage, which dims the light a
// CopperBulb emits when lit.
type Oxidation uint8

const (
	OxidationNone Oxidation = iota
	OxidationExposed
	OxidationWeathered
	OxidationOxidised
)

// CopperBulb is a light-emitting block that toggles when it receives
// redstone power, its brightness falling off with oxidation.
type CopperBulb struct {
	Oxidation Oxidation
	Lit       bool
	Powered   bool
}

func (b CopperBulb) lightLevel() int {
	switch b.Oxidation {
	case OxidationNone:
		return 15
	case OxidationExposed:
		return 12
	case OxidationWeathered:
		return 10
	default:
		return 8
	}
}

// StateForNeighbourUpdate toggles the bulb when redstone power at pos
// changes, matching its in-game rising-edge behaviour: it flips once per
// transition from unpowered to powered, not while held powered.
func (b CopperBulb) StateForNeighbourUpdate(pos cube.Pos, tx Tx) uint32 {
	powered := poweredByNeighbour(tx, pos)
	if powered == b.Powered {
		return tx.Block(pos)
	}
	next := b
	next.Powered = powered
	if powered {
		next.Lit = !next.Lit
	}
	rid, ok := tx.Registry().RuntimeID(copperBulbName(next))
	if !ok {
		return tx.Block(pos)
	}
	return rid
}

func (b CopperBulb) BrokenReplacement(cube.Pos, Tx) uint32 { return AirRuntimeID }

func (b CopperBulb) Drops(cube.Pos, Tx) []ItemStack {
	return []ItemStack{{Name: "minecraft:copper_bulb", Count: 1}}
}

func copperBulbName(b CopperBulb) string {
	prefix := ""
	switch b.Oxidation {
	case OxidationExposed:
		prefix = "exposed_"
	case OxidationWeathered:
		prefix = "weathered_"
	case OxidationOxidised:
		prefix = "oxidized_"
	}
	name := "minecraft:" + prefix + "copper_bulb"
	if b.Lit {
		name += "_lit"
	}
	if b.Powered {
		name += "_powered"
	}
	return name
}

// RegisterCopperBulb registers every oxidation/lit/powered combination
// starting at base, returning the unoxidised, unlit, unpowered ID.
func RegisterCopperBulb(r *Registry, base uint32) uint32 {
	id := base
	for _, ox := range []Oxidation{OxidationNone, OxidationExposed, OxidationWeathered, OxidationOxidised} {
		for _, lit := range []bool{false, true} {
			for _, powered := range []bool{false, true} {
				b := CopperBulb{Oxidation: ox, Lit: lit, Powered: powered}
				r.Register(id, copperBulbName(b), b)
				id++
			}
		}
	}
	return base
}
