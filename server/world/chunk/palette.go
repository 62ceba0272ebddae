package chunk

import (
	"math/bits"

	"github.com/segmentio/fasthash/fnv1a"
)

// Palette holds the distinct runtime IDs (or biome IDs) referenced by a
// PaletteStorage, in the order they were first inserted. Index 0 always maps
// to the value the storage was created with.
type Palette struct {
	values []uint32
	index  map[uint32]uint16
}

func newPalette(first uint32) *Palette {
	return &Palette{values: []uint32{first}, index: map[uint32]uint16{first: 0}}
}

// Len returns the amount of distinct values in the Palette.
func (p *Palette) Len() int { return len(p.values) }

// Hash returns a content hash of the palette's values, in insertion order.
// Two palettes built from the same sequence of Add calls hash equal; this
// backs the provider's on-disk corruption check without needing a full
// decode-and-compare.
func (p *Palette) Hash() uint64 {
	h := fnv1a.Init64
	for _, v := range p.values {
		h = fnv1a.AddUint64(h, uint64(v))
	}
	return h
}

// Value returns the value stored at the palette index i.
func (p *Palette) Value(i uint16) uint32 { return p.values[i] }

// Add inserts v into the palette if not already present and returns its
// index.
func (p *Palette) Add(v uint32) uint16 {
	if i, ok := p.index[v]; ok {
		return i
	}
	i := uint16(len(p.values))
	p.values = append(p.values, v)
	p.index[v] = i
	return i
}

// indexOf returns the palette index of v and whether it was found.
func (p *Palette) indexOf(v uint32) (uint16, bool) {
	i, ok := p.index[v]
	return i, ok
}

// bitsPerIndex returns the amount of bits needed to store len(p.values)-1 as
// an index, with a lower bound of min. A palette of length 1 needs 0 bits:
// the single value is implicit and no packed data is stored.
func bitsPerIndex(paletteLen int, min uint8) uint8 {
	if paletteLen <= 1 {
		return 0
	}
	n := bits.Len32(uint32(paletteLen - 1))
	if uint8(n) < min {
		return min
	}
	return uint8(n)
}

// PaletteStorage is a palette-compressed, packed-index array of 16*16*16 (or
// 16*16 for biomes-per-column callers that reuse it with a different volume)
// cells. Encode/Decode round-trip bit for bit for any palette with at most
// 4096 unique values.
type PaletteStorage struct {
	palette *Palette
	indices []uint16 // one index per cell, always populated in memory regardless of bpi
	volume  int
	minBpi  uint8
}

// NewPaletteStorage creates a storage of the given volume, uniformly filled
// with first.
func NewPaletteStorage(volume int, first uint32, minBpi uint8) *PaletteStorage {
	indices := make([]uint16, volume)
	return &PaletteStorage{palette: newPalette(first), indices: indices, volume: volume, minBpi: minBpi}
}

// Palette returns the underlying Palette.
func (s *PaletteStorage) Palette() *Palette { return s.palette }

// At returns the value stored at the flattened index i.
func (s *PaletteStorage) At(i int) uint32 {
	return s.palette.Value(s.indices[i])
}

// Set overwrites the value at the flattened index i, growing the palette if
// needed.
func (s *PaletteStorage) Set(i int, v uint32) {
	s.indices[i] = s.palette.Add(v)
}

// Uniform reports whether the storage currently references a single value.
// Dragonfly-style subchunk layers short-circuit reads of uniform layers
// without touching the index array; the same applies to the encoded form.
func (s *PaletteStorage) Uniform() bool {
	if s.palette.Len() != 1 {
		return false
	}
	return true
}

// BitsPerIndex returns the number of bits that would be used to encode this
// storage's current palette.
func (s *PaletteStorage) BitsPerIndex() uint8 {
	return bitsPerIndex(s.palette.Len(), s.minBpi)
}

// EncodedSection is the serializable form of a PaletteStorage: a palette
// plus an optional packed index array.
type EncodedSection struct {
	Palette []uint32
	Data    []uint32 // packed words, little-endian bit order within each word; nil if palette is uniform
	BPI     uint8
}

// Encode packs the storage into its on-disk representation.
func (s *PaletteStorage) Encode() EncodedSection {
	bpi := s.BitsPerIndex()
	enc := EncodedSection{Palette: append([]uint32(nil), s.palette.values...), BPI: bpi}
	if bpi == 0 {
		return enc
	}
	perWord := 32 / int(bpi)
	words := (s.volume + perWord - 1) / perWord
	data := make([]uint32, words)
	for i, idx := range s.indices {
		word, offset := i/perWord, uint(i%perWord)*uint(bpi)
		data[word] |= uint32(idx) << offset
	}
	enc.Data = data
	return enc
}

// DecodePaletteStorage reconstructs a PaletteStorage from its encoded form.
// It is the exact inverse of Encode: Encode(Decode(x)) == x bit for bit for
// any section with <= 4096 unique states.
func DecodePaletteStorage(enc EncodedSection, volume int, minBpi uint8) *PaletteStorage {
	if len(enc.Palette) == 0 {
		enc.Palette = []uint32{0}
	}
	s := &PaletteStorage{
		palette: &Palette{values: append([]uint32(nil), enc.Palette...), index: make(map[uint32]uint16, len(enc.Palette))},
		indices: make([]uint16, volume),
		volume:  volume,
		minBpi:  minBpi,
	}
	for i, v := range s.palette.values {
		s.palette.index[v] = uint16(i)
	}
	bpi := enc.BPI
	if bpi == 0 || len(s.palette.values) <= 1 {
		// Uniform section: every cell is palette index 0.
		return s
	}
	perWord := 32 / int(bpi)
	mask := uint32(1)<<uint(bpi) - 1
	for i := range s.indices {
		word, offset := i/perWord, uint(i%perWord)*uint(bpi)
		if word >= len(enc.Data) {
			break
		}
		s.indices[i] = uint16((enc.Data[word] >> offset) & mask)
	}
	return s
}

// Compact rebuilds the storage using only palette entries that are actually
// referenced, preserving relative insertion order. This mirrors the
// save-time "compact chunk" step the teacher performs before persisting.
func (s *PaletteStorage) Compact() {
	used := make(map[uint32]struct{}, s.palette.Len())
	for _, idx := range s.indices {
		used[s.palette.Value(idx)] = struct{}{}
	}
	if len(used) == s.palette.Len() {
		return
	}
	np := &Palette{values: make([]uint32, 0, len(used)), index: make(map[uint32]uint16, len(used))}
	remap := make(map[uint16]uint16, s.palette.Len())
	for i, v := range s.palette.values {
		if _, ok := used[v]; !ok {
			continue
		}
		ni := uint16(len(np.values))
		np.values = append(np.values, v)
		np.index[v] = ni
		remap[uint16(i)] = ni
	}
	for i, idx := range s.indices {
		s.indices[i] = remap[idx]
	}
	s.palette = np
}
