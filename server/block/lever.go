package block

import "github.com/ashenvale/voxel/server/block/cube"

// Lever is an interactable persistent redstone power source. It is
// registered as two runtime IDs, unpowered and powered, per face it can be
// mounted on, following the curated set's one-ID-per-discrete-state idiom.
type Lever struct {
	Face    cube.Face
	Powered bool
}

func (l Lever) EmitsRedstonePower() bool { return true }

func (l Lever) WeakRedstonePower(cube.Face, Tx, cube.Pos) int {
	if l.Powered {
		return 15
	}
	return 0
}

func (l Lever) StrongRedstonePower(face cube.Face, tx Tx, pos cube.Pos) int {
	return l.WeakRedstonePower(face, tx, pos)
}

// Use toggles the lever between powered and unpowered.
func (l Lever) Use(pos cube.Pos, tx Tx) bool {
	next, ok := tx.Registry().RuntimeID(leverName(l.Face, !l.Powered))
	if !ok {
		return false
	}
	SetBlockState(tx, pos, next, NotifyNeighbours)
	return true
}

// NeighbourUpdateTick breaks the lever if its mounting face is no longer
// solid.
func (l Lever) NeighbourUpdateTick(pos, _ cube.Pos, tx Tx) {
	if !isSolid(tx.Block(pos.Side(l.Face.Opposite()))) {
		BreakBlock(tx, pos, NotifyNeighbours)
	}
}

func (l Lever) BrokenReplacement(cube.Pos, Tx) uint32 { return AirRuntimeID }

func (l Lever) Drops(cube.Pos, Tx) []ItemStack {
	return []ItemStack{{Name: "minecraft:lever", Count: 1}}
}

func leverName(face cube.Face, powered bool) string {
	name := "minecraft:lever_" + face.String()
	if powered {
		name += "_on"
	}
	return name
}

// RegisterLever registers the lever's on/off state for each mountable face,
// starting at base, returning the ID for (FaceDown, unpowered).
func RegisterLever(r *Registry, base uint32) uint32 {
	faces := []cube.Face{cube.FaceDown, cube.FaceUp, cube.FaceNorth, cube.FaceSouth, cube.FaceWest, cube.FaceEast}
	id := base
	for _, face := range faces {
		for _, powered := range []bool{false, true} {
			r.Register(id, leverName(face, powered), Lever{Face: face, Powered: powered})
			id++
		}
	}
	return base
}
