package chunk

// LightArea computes light for a group of chunks, following the teacher's
// ensureLight step. Each chunk is lit on its own from its own heightmap: no
// light is carried from one chunk into another, and block light is left at
// zero.
type LightArea struct {
	chunks       []*Chunk
	baseX, baseZ int
}

// NewLightArea groups the chunks passed (column-major, same Range) for a
// combined light pass anchored at baseX, baseZ (chunk coordinates of
// chunks[0]).
func NewLightArea(chunks []*Chunk, baseX, baseZ int) *LightArea {
	return &LightArea{chunks: chunks, baseX: baseX, baseZ: baseZ}
}

// LightAreaFn is NewLightArea under the teacher's chunk.LightArea(...) call
// signature.
func LightAreaFn(chunks []*Chunk, baseX, baseZ int) *LightArea {
	return NewLightArea(chunks, baseX, baseZ)
}

// Fill performs an initial, non-incremental light computation over the
// area: each chunk's sky light nibble array is allocated and set to the
// unobstructed value (15) at and above the chunk's surface heightmap and
// decayed by one per block below it, whatever the block is; block light is
// initialised to zero everywhere, as no light-emitting blocks are seeded by
// this pass (emissive blocks schedule their own spread separately).
func (a *LightArea) Fill() {
	for _, c := range a.chunks {
		if c == nil {
			continue
		}
		n := len(c.subs)
		sky := make([][]byte, n)
		block := make([][]byte, n)
		for i := range sky {
			sky[i] = make([]byte, 2048)
			block[i] = make([]byte, 2048)
		}
		for x := uint8(0); x < subChunkWidth; x++ {
			for z := uint8(0); z < subChunkWidth; z++ {
				surface := c.HighestLightBlocker(x, z)
				level := uint8(15)
				for y := c.r.Max() - 1; y >= c.r.Min(); y-- {
					si := c.sectionIndexForY(int16(y))
					if int16(y) < surface && level > 0 {
						level--
					}
					setNibble(sky[si], nibbleIndex(x, uint8(y&15), z), level)
				}
			}
		}
		c.SetBlockLight(block)
		c.SetSkyLight(sky)
		c.SetLightOn(true)
	}
}

// Spread relaxes each lit chunk's sky light in place: for every pair of
// vertically adjacent cells that share a byte of the nibble array (an even
// y and the odd y above it, same column), the darker value is raised to one
// below the brighter. Values in different bytes, sections or chunks are
// never compared, so no light crosses a chunk border. The pass repeats until
// nothing changes, at most 16 times.
func (a *LightArea) Spread() {
	for iter := 0; iter < 16; iter++ {
		changed := false
		for _, c := range a.chunks {
			if c == nil || !c.LightOn() {
				continue
			}
			for _, sky := range c.SkyLight() {
				for j := range sky {
					v := sky[j]
					lo, hi := v&0xF, v>>4
					if lo > 0 && hi < lo-1 {
						hi = lo - 1
						changed = true
					}
					if hi > 0 && lo < hi-1 {
						lo = hi - 1
						changed = true
					}
					sky[j] = lo | hi<<4
				}
			}
		}
		if !changed {
			break
		}
	}
}

func nibbleIndex(x, y, z uint8) int {
	return int(x)<<8 | int(z)<<4 | int(y)
}

func setNibble(arr []byte, i int, v uint8) {
	byteIdx, half := i/2, i%2
	if half == 0 {
		arr[byteIdx] = (arr[byteIdx] &^ 0x0F) | (v & 0x0F)
	} else {
		arr[byteIdx] = (arr[byteIdx] &^ 0xF0) | (v&0x0F)<<4
	}
}

// GetNibble reads a 4-bit light value out of a section's packed nibble
// array at the sub-chunk-relative position given.
func GetNibble(arr []byte, x, y, z uint8) uint8 {
	i := nibbleIndex(x, y, z)
	byteIdx, half := i/2, i%2
	if half == 0 {
		return arr[byteIdx] & 0x0F
	}
	return arr[byteIdx] >> 4
}
