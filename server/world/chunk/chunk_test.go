package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashenvale/voxel/server/block/cube"
)

// TestPaletteRoundTrip checks the §8 law: for any section with at most 4096
// unique block states, encode(decode(x)) == x bit for bit.
func TestPaletteRoundTrip(t *testing.T) {
	volume := subChunkWidth * subChunkWidth * subChunkWidth
	cases := []int{1, 2, 5, 16, 300, 4096}
	for _, n := range cases {
		s := NewPaletteStorage(volume, 0, blockMinBPI)
		for i := 0; i < volume; i++ {
			s.Set(i, uint32(i%n))
		}
		enc := s.Encode()
		dec := DecodePaletteStorage(enc, volume, blockMinBPI)
		reenc := dec.Encode()

		require.Equal(t, enc.BPI, reenc.BPI)
		assert.Equal(t, enc.Palette, reenc.Palette)
		assert.Equal(t, enc.Data, reenc.Data)

		for i := 0; i < volume; i++ {
			assert.Equal(t, s.At(i), dec.At(i), "mismatch at index %d for n=%d", i, n)
		}
	}
}

func TestPaletteUniformElidesData(t *testing.T) {
	s := NewPaletteStorage(16, 7, blockMinBPI)
	enc := s.Encode()
	assert.Equal(t, uint8(0), enc.BPI)
	assert.Nil(t, enc.Data)
	assert.True(t, s.Uniform())
}

func TestBitsPerIndex(t *testing.T) {
	assert.Equal(t, uint8(0), bitsPerIndex(1, 4))
	assert.Equal(t, uint8(4), bitsPerIndex(2, 4))
	assert.Equal(t, uint8(4), bitsPerIndex(16, 4))
	assert.Equal(t, uint8(5), bitsPerIndex(17, 4))
	assert.Equal(t, uint8(12), bitsPerIndex(4096, 4))
}

func TestChunkSetBlockMarksDirty(t *testing.T) {
	c := New(0, cube.Range{-64, 320})
	require.False(t, c.Dirty())
	c.SetBlock(1, 10, 1, 0, 5)
	assert.True(t, c.Dirty())
	assert.Equal(t, uint32(5), c.Block(1, 10, 1, 0))
	c.ClearDirty()
	assert.False(t, c.Dirty())
}

func TestChunkSectionCount(t *testing.T) {
	r := cube.Range{-64, 320}
	c := New(0, r)
	assert.Equal(t, r.Height()/16, len(c.Sub()))
}

// TestScheduledTickOrder checks the §8 scenario: ticks due on the same tick
// fire in ascending priority order, then FIFO within equal priority.
func TestScheduledTickOrder(t *testing.T) {
	c := New(0, cube.Range{-64, 320})
	c.AddBlockTick(ScheduledTick{Pos: cube.Pos{0, 0, 0}, Block: 1, Delay: 0, Priority: 2})
	c.AddBlockTick(ScheduledTick{Pos: cube.Pos{1, 0, 0}, Block: 2, Delay: 0, Priority: 0})
	c.AddBlockTick(ScheduledTick{Pos: cube.Pos{2, 0, 0}, Block: 3, Delay: 0, Priority: 0})
	c.AddBlockTick(ScheduledTick{Pos: cube.Pos{3, 0, 0}, Block: 4, Delay: 0, Priority: 1})

	due := c.PopBlockTicksDue()
	require.Len(t, due, 4)
	assert.Equal(t, uint32(2), due[0].Block)
	assert.Equal(t, uint32(3), due[1].Block)
	assert.Equal(t, uint32(4), due[2].Block)
	assert.Equal(t, uint32(1), due[3].Block)
}

func TestScheduledTickDedup(t *testing.T) {
	c := New(0, cube.Range{-64, 320})
	pos := cube.Pos{5, 5, 5}
	c.AddBlockTick(ScheduledTick{Pos: pos, Block: 9, Delay: 4, Priority: 0})
	c.AddBlockTick(ScheduledTick{Pos: pos, Block: 9, Delay: 1, Priority: 3})
	require.Len(t, c.BlockTicks(), 1)
	assert.Equal(t, int8(3), c.BlockTicks()[0].Priority)
}
