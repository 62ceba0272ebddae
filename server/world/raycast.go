package world

import (
	"math"

	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// raycastStep is the distance advanced per sample along the ray. Grounded
// on the fixed-step march mini-mc's physics.Raycast uses rather than a full
// Amanatides-Woo DDA: simple, and fine at block scale over the short
// distances a player's reach covers.
const raycastStep = 0.05

// Raycast walks from origin along direction (not required to be normalised)
// up to maxDistance blocks, returning the position of the first non-air
// block it finds and the face the ray entered through. ok is false if
// nothing was hit within maxDistance.
func (tx *Tx) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (hit cube.Pos, face cube.Face, ok bool) {
	if direction.Len() == 0 {
		return cube.Pos{}, cube.FaceUp, false
	}
	dir := direction.Normalize()
	steps := int(maxDistance / raycastStep)
	prev := floorPos(origin)

	for i := 0; i <= steps; i++ {
		p := origin.Add(dir.Mul(float64(i) * raycastStep))
		pos := floorPos(p)
		if tx.Block(pos) != block.AirRuntimeID {
			return pos, faceEntered(prev, pos), true
		}
		prev = pos
	}
	return cube.Pos{}, cube.FaceUp, false
}

func floorPos(v mgl64.Vec3) cube.Pos {
	return cube.Pos{int(math.Floor(v[0])), int(math.Floor(v[1])), int(math.Floor(v[2]))}
}

// faceEntered reports the face of to that a ray stepping from the empty
// block at from would have entered through.
func faceEntered(from, to cube.Pos) cube.Face {
	switch {
	case from.X() > to.X():
		return cube.FaceEast
	case from.X() < to.X():
		return cube.FaceWest
	case from.Y() > to.Y():
		return cube.FaceUp
	case from.Y() < to.Y():
		return cube.FaceDown
	case from.Z() > to.Z():
		return cube.FaceSouth
	case from.Z() < to.Z():
		return cube.FaceNorth
	}
	return cube.FaceUp
}
