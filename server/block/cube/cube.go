// Package cube holds the primitive coordinate, face and axis types shared by
// the world, block and entity packages. It mirrors the small geometry
// vocabulary used throughout the world simulation: block positions, chunk
// height ranges, faces of a cube and the horizontal directions derived from
// them.
package cube

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos holds the position of a block. The position is represented of an array
// with an x, y and z value; the y value may be negative (see Range).
type Pos [3]int

// Side returns the position of the block at the face passed of this block
// position.
func (p Pos) Side(face Face) Pos {
	switch face {
	case FaceDown:
		return Pos{p[0], p[1] - 1, p[2]}
	case FaceUp:
		return Pos{p[0], p[1] + 1, p[2]}
	case FaceNorth:
		return Pos{p[0], p[1], p[2] - 1}
	case FaceSouth:
		return Pos{p[0], p[1], p[2] + 1}
	case FaceWest:
		return Pos{p[0] - 1, p[1], p[2]}
	case FaceEast:
		return Pos{p[0] + 1, p[1], p[2]}
	}
	panic("invalid face")
}

// Add returns the sum of two positions.
func (p Pos) Add(a Pos) Pos { return Pos{p[0] + a[0], p[1] + a[1], p[2] + a[2]} }

// X, Y, Z return the respective components of the position.
func (p Pos) X() int { return p[0] }
func (p Pos) Y() int { return p[1] }
func (p Pos) Z() int { return p[2] }

// Vec3 converts the position to the corresponding mgl64.Vec3, placed at the
// block's minimum corner (lowest x, y and z).
func (p Pos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
}

// Vec3Centre returns the vector at the centre of the block position.
func (p Pos) Vec3Centre() mgl64.Vec3 {
	return p.Vec3().Add(mgl64.Vec3{0.5, 0.5, 0.5})
}

// OutOfBounds returns true if the position's y value falls outside of the
// Range passed. The x and z values are not checked.
func (p Pos) OutOfBounds(r Range) bool {
	return p[1] < r[0] || p[1] > r[1]
}

// PosFromVec3 returns a Pos from the Vec3 passed, rounding down the
// components.
func PosFromVec3(vec3 mgl64.Vec3) Pos {
	return Pos{int(math.Floor(vec3[0])), int(math.Floor(vec3[1])), int(math.Floor(vec3[2]))}
}

// Range represents the height range of a Dimension in blocks. The first
// value of the Range holds the minimum Y value, the second value holds the
// maximum Y value.
type Range [2]int

// Min returns the minimum value of the Range.
func (r Range) Min() int { return r[0] }

// Max returns the maximum value of the Range.
func (r Range) Max() int { return r[1] }

// Height returns the total height of the Range, Max-Min.
func (r Range) Height() int { return r[1] - r[0] }

// Face represents the face of a block or entity, typically used to check the
// side of block collisions and ray tracing.
type Face int

const (
	FaceDown Face = iota
	FaceUp
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast
)

// Faces returns all 6 faces in declaration order: Down, Up, North, South,
// West, East. This is a general-purpose enumeration order; it is NOT the
// order update_neighbours iterates in (see NeighbourUpdateFaces).
func Faces() []Face {
	return []Face{FaceDown, FaceUp, FaceNorth, FaceSouth, FaceWest, FaceEast}
}

// NeighbourUpdateFaces returns the six faces in the fixed, documented order
// update_neighbours must use: West, East, Down, Up, North, South.
// Callers implementing set_block_state's neighbour-update step must iterate
// this slice rather than Faces, whose order is unrelated.
func NeighbourUpdateFaces() []Face {
	return []Face{FaceWest, FaceEast, FaceDown, FaceUp, FaceNorth, FaceSouth}
}

// String returns the lowercase name of the face, as used in block names.
func (f Face) String() string {
	switch f {
	case FaceDown:
		return "down"
	case FaceUp:
		return "up"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	}
	panic("invalid face")
}

// Opposite returns the opposite face.
func (f Face) Opposite() Face {
	switch f {
	case FaceDown:
		return FaceUp
	case FaceUp:
		return FaceDown
	case FaceNorth:
		return FaceSouth
	case FaceSouth:
		return FaceNorth
	case FaceWest:
		return FaceEast
	case FaceEast:
		return FaceWest
	}
	panic("invalid face")
}

// Axis represents the axis that a Face lies on, either X, Y or Z.
type Axis int

const (
	Y Axis = iota
	X
	Z
)

// Axis returns the Axis the Face lies on.
func (f Face) Axis() Axis {
	switch f {
	case FaceDown, FaceUp:
		return Y
	case FaceNorth, FaceSouth:
		return Z
	default:
		return X
	}
}

// Direction represents a horizontal direction: North, South, West or East.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions returns all horizontal directions.
func Directions() []Direction { return []Direction{North, East, South, West} }

// Face returns the Face equivalent of the Direction.
func (d Direction) Face() Face {
	switch d {
	case North:
		return FaceNorth
	case South:
		return FaceSouth
	case West:
		return FaceWest
	case East:
		return FaceEast
	}
	panic("invalid direction")
}

// Opposite returns the opposite Direction.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// RotateLeft and RotateRight rotate the Direction by 90 degrees.
func (d Direction) RotateLeft() Direction  { return (d + 3) % 4 }
func (d Direction) RotateRight() Direction { return (d + 1) % 4 }

// Rotation represents a yaw/pitch pair used to orient entities and some
// blocks.
type Rotation [2]float64

// BBox represents a bounding box, defined by a minimum and maximum 3D
// vector.
type BBox struct {
	min, max mgl64.Vec3
}

// Box returns a new axis-aligned BBox with the min and max corners passed.
func Box(x1, y1, z1, x2, y2, z2 float64) BBox {
	return BBox{min: mgl64.Vec3{min(x1, x2), min(y1, y2), min(z1, z2)}, max: mgl64.Vec3{max(x1, x2), max(y1, y2), max(z1, z2)}}
}

// Min returns the minimum corner of the BBox.
func (b BBox) Min() mgl64.Vec3 { return b.min }

// Max returns the maximum corner of the BBox.
func (b BBox) Max() mgl64.Vec3 { return b.max }

// Translate returns the BBox translated by the vector passed.
func (b BBox) Translate(v mgl64.Vec3) BBox {
	return BBox{min: b.min.Add(v), max: b.max.Add(v)}
}

// GrowVec3 grows the BBox by the vector passed, in every direction
// independently (x on both x faces, etc.).
func (b BBox) GrowVec3(v mgl64.Vec3) BBox {
	return BBox{min: b.min.Sub(v), max: b.max.Add(v)}
}

// IntersectsWith returns true if the two bounding boxes intersect.
func (b BBox) IntersectsWith(o BBox) bool {
	if b.max[0] <= o.min[0] || b.min[0] >= o.max[0] {
		return false
	}
	if b.max[1] <= o.min[1] || b.min[1] >= o.max[1] {
		return false
	}
	return !(b.max[2] <= o.min[2] || b.min[2] >= o.max[2])
}
