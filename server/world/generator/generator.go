// Package generator produces terrain for chunks a world.Provider has no
// saved data for.
package generator

import (
	"github.com/aquilax/go-perlin"

	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/world"
	"github.com/ashenvale/voxel/server/world/chunk"
)

// Overworld generates rolling terrain from 2D Perlin noise: stone below a
// noise-driven height, dirt for the three blocks beneath the surface, and
// water filling from the surface up to a fixed sea level where the terrain
// is lower.
type Overworld struct {
	noise    *perlin.Perlin
	baseY    int
	amplitude float64
	seaLevel int
}

// NewOverworld returns an Overworld generator seeded with seed. Grounded on
// aquilax/go-perlin, the noise library the rest of the example pack reaches
// for procedural terrain.
func NewOverworld(seed int64) *Overworld {
	return &Overworld{
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		baseY:     64,
		amplitude: 24,
		seaLevel:  62,
	}
}

// GenerateChunk implements world.Generator.
func (o *Overworld) GenerateChunk(pos world.ChunkPos, c *chunk.Chunk) {
	r := c.Range()
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			wx := float64(pos.X())*16 + float64(x)
			wz := float64(pos.Z())*16 + float64(z)
			height := o.baseY + int(o.noise.Noise2D(wx/64, wz/64)*o.amplitude)
			if height > r.Max() {
				height = r.Max()
			}
			for y := r.Min(); y <= r.Max(); y++ {
				var rid uint32
				switch {
				case y < height-3:
					rid = block.StoneRuntimeID
				case y < height:
					rid = block.DirtRuntimeID
				case y < o.seaLevel:
					rid = block.WaterRuntimeID
				default:
					rid = block.AirRuntimeID
				}
				if rid == block.AirRuntimeID {
					continue
				}
				c.SetBlock(uint8(x), int16(y), uint8(z), 0, rid)
			}
			c.RecalculateHeightmap(uint8(x), uint8(z), transparent)
		}
	}
}

func transparent(rid uint32) bool {
	switch rid {
	case block.AirRuntimeID, block.WaterRuntimeID, block.LavaRuntimeID:
		return true
	}
	return false
}
