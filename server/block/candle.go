package block

import "github.com/ashenvale/voxel/server/block/cube"

// Candle is a decorative block that can be lit to emit a small amount of
// light. Up to three more candles may be clustered into the same space,
// each additional candle brightening the cluster.
type Candle struct {
	Additional int
	Lit        bool
}

func (c Candle) lightLevel() int {
	if !c.Lit {
		return 0
	}
	return 3 + c.Additional*3
}

// CanPlaceAt requires a solid block below.
func (c Candle) CanPlaceAt(pos cube.Pos, tx Tx) bool {
	return isSolid(tx.Block(pos.Side(cube.FaceDown)))
}

// NeighbourUpdateTick breaks the candle if its support is removed.
func (c Candle) NeighbourUpdateTick(pos, _ cube.Pos, tx Tx) {
	if !isSolid(tx.Block(pos.Side(cube.FaceDown))) {
		BreakBlock(tx, pos, NotifyNeighbours)
	}
}

// Use toggles the candle cluster's lit state.
func (c Candle) Use(pos cube.Pos, tx Tx) bool {
	next := c
	next.Lit = !next.Lit
	rid, ok := tx.Registry().RuntimeID(candleName(next))
	if !ok {
		return false
	}
	SetBlockState(tx, pos, rid, NotifyNeighbours)
	return true
}

func (c Candle) BrokenReplacement(cube.Pos, Tx) uint32 { return AirRuntimeID }

func (c Candle) Drops(cube.Pos, Tx) []ItemStack {
	return []ItemStack{{Name: "minecraft:candle", Count: c.Additional + 1}}
}

func candleName(c Candle) string {
	name := "minecraft:candle"
	switch c.Additional {
	case 1:
		name += "_two"
	case 2:
		name += "_three"
	case 3:
		name += "_four"
	}
	if c.Lit {
		name += "_lit"
	}
	return name
}

// RegisterCandle registers all additional-count/lit combinations starting at
// base, returning the single-unlit-candle ID.
func RegisterCandle(r *Registry, base uint32) uint32 {
	id := base
	for additional := 0; additional < 4; additional++ {
		for _, lit := range []bool{false, true} {
			c := Candle{Additional: additional, Lit: lit}
			r.Register(id, candleName(c), c)
			id++
		}
	}
	return base
}
