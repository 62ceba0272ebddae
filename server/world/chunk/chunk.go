// Package chunk implements the in-memory representation of a 16xHx16 voxel
// column: palette-compressed sections, heightmaps, scheduled ticks and the
// on-disk tag shapes used by package mcdb.
package chunk

import (
	"sync"

	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/brentp/intintmap"
	"github.com/segmentio/fasthash/fnv1a"
)

const (
	// subChunkWidth is the width and depth of a sub chunk (section) in blocks.
	subChunkWidth = 16
	// blockMinBPI and biomeMinBPI are the minimum bits-per-index for block
	// state and biome palettes respectively.
	blockMinBPI = 4
	biomeMinBPI = 1
)

// HeightmapKind identifies one of the three heightmaps a Chunk tracks.
type HeightmapKind uint8

const (
	HeightmapSurface HeightmapKind = iota
	HeightmapMotionBlocking
	HeightmapOceanFloor
)

// SubChunk is a single 16x16x16 section of a Chunk. It holds one or more
// Layers of block state (layer 0 is the primary layer, layer 1 holds
// waterlogging) and a biome layer.
type SubChunk struct {
	y      int16
	layers []*PaletteStorage
	biomes *PaletteStorage
}

// newSubChunk returns an empty SubChunk at section index y, filled with air
// (or the runtime ID passed) on its only layer.
func newSubChunk(y int16, air, defaultBiome uint32) *SubChunk {
	return &SubChunk{
		y:      y,
		layers: []*PaletteStorage{NewPaletteStorage(subChunkWidth*subChunkWidth*subChunkWidth, air, blockMinBPI)},
		biomes: NewPaletteStorage(subChunkWidth*subChunkWidth*subChunkWidth, defaultBiome, biomeMinBPI),
	}
}

// Y returns the section index (chunk-relative, y>>4 of the lowest block in
// the section).
func (s *SubChunk) Y() int16 { return s.y }

// Layers returns the block-state layers of the sub chunk. Layer 0 is always
// present; additional layers represent waterlogging.
func (s *SubChunk) Layers() []*PaletteStorage { return s.layers }

// Layer returns the layer at index i, growing the layer list (filled with
// air) if necessary.
func (s *SubChunk) Layer(i int, air uint32) *PaletteStorage {
	for len(s.layers) <= i {
		s.layers = append(s.layers, NewPaletteStorage(subChunkWidth*subChunkWidth*subChunkWidth, air, blockMinBPI))
	}
	return s.layers[i]
}

// Biomes returns the biome palette storage of the sub chunk.
func (s *SubChunk) Biomes() *PaletteStorage { return s.biomes }

// Empty reports whether the sub chunk has only its primary layer and that
// layer is uniform, i.e. holds a single value (which need not be air).
func (s *SubChunk) Empty() bool {
	return len(s.layers) <= 1 && s.layers[0].Uniform()
}

func idx(x, y, z uint8) int {
	return int(x)<<8 | int(z)<<4 | int(y)
}

// At returns the block runtime ID at the sub chunk relative position for the
// layer given.
func (s *SubChunk) At(x, y, z uint8, layer int) uint32 {
	if layer >= len(s.layers) {
		return s.layers[0].palette.values[0]
	}
	return s.layers[layer].At(idx(x, y, z))
}

// Set writes the block runtime ID at the sub chunk relative position for the
// layer given, growing the layer list first if needed.
func (s *SubChunk) Set(x, y, z uint8, layer int, rid, air uint32) {
	s.Layer(layer, air).Set(idx(x, y, z), rid)
}

// Biome returns the biome ID at the position given.
func (s *SubChunk) Biome(x, y, z uint8) uint32 {
	return s.biomes.At(idx(x, y, z))
}

// SetBiome writes the biome ID at the position given.
func (s *SubChunk) SetBiome(x, y, z uint8, id uint32) {
	s.biomes.Set(idx(x, y, z), id)
}

// heightmap holds one int16 height per column of the 16x16 chunk.
type heightmap [256]int16

// ScheduledTick is a deferred block or fluid state-transition call. Ticks
// with equal (Pos, Block) are deduplicated by the owning queue; Delay counts
// down to 0 and Priority breaks ties when multiple ticks become due on the
// same tick (ascending, then FIFO).
type ScheduledTick struct {
	Pos      cube.Pos
	Block    uint32
	Delay    uint16
	Priority int8
	// seq disambiguates FIFO order for equal-priority ticks inserted in the
	// same call; it is not part of the persisted format.
	seq uint64
}

// Chunk is a 16xHx16 column of the world. A Chunk on
// its own holds only voxel data, heightmaps and scheduled ticks; block
// entities and watcher/residency bookkeeping live one layer up, in package
// world's per-chunk entry (the teacher splits the same way between
// chunk.Chunk and world.Column).
type Chunk struct {
	mu sync.RWMutex

	r   cube.Range
	air uint32

	subs []*SubChunk

	heightmaps [3]heightmap

	blockLight, skyLight [][]byte // per-section, 2048 nibbles each; nil until lit

	blockTicks, fluidTicks         []ScheduledTick
	blockTickIndex, fluidTickIndex *intintmap.IntIntMap
	tickSeq                        uint64

	dataVersion int32
	status      string
	lightOn     bool
	dirty       bool
}

// New returns an empty Chunk over the height range r, filled with the air
// runtime ID passed.
func New(air uint32, r cube.Range) *Chunk {
	n := (r.Height() + subChunkWidth - 1) / subChunkWidth
	c := &Chunk{r: r, air: air, subs: make([]*SubChunk, n), status: "full"}
	for i := range c.subs {
		c.subs[i] = newSubChunk(int16(i+r.Min()/subChunkWidth), air, 0)
	}
	return c
}

// Range returns the height range of the Chunk.
func (c *Chunk) Range() cube.Range { return c.r }

// Sub returns the Chunk's sections in bottom-to-top order. len(Sub()) is
// Range().Height()/16, rounded up.
func (c *Chunk) Sub() []*SubChunk { return c.subs }

// sectionIndexForY returns the index into c.subs for the given absolute y.
func (c *Chunk) sectionIndexForY(y int16) int {
	return (int(y) - c.r.Min()) >> 4
}

// Block returns the runtime ID at the absolute position given, for the
// layer given (0 = primary, 1 = waterlogging).
func (c *Chunk) Block(x uint8, y int16, z uint8, layer uint8) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.sectionIndexForY(y)
	if i < 0 || i >= len(c.subs) {
		return c.air
	}
	return c.subs[i].At(x, uint8(int(y)&15), z, int(layer))
}

// SetBlock writes the runtime ID at the absolute position given, for the
// layer given, and marks the chunk dirty.
func (c *Chunk) SetBlock(x uint8, y int16, z uint8, layer uint8, rid uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.sectionIndexForY(y)
	if i < 0 || i >= len(c.subs) {
		return
	}
	c.subs[i].Set(x, uint8(int(y)&15), z, int(layer), rid, c.air)
	c.dirty = true
}

// Biome returns the biome ID at the position given.
func (c *Chunk) Biome(x uint8, y int16, z uint8) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.sectionIndexForY(y)
	if i < 0 || i >= len(c.subs) {
		return 0
	}
	return c.subs[i].Biome(x, uint8(int(y)&15), z)
}

// SetBiome writes the biome ID at the position given.
func (c *Chunk) SetBiome(x uint8, y int16, z uint8, id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.sectionIndexForY(y)
	if i < 0 || i >= len(c.subs) {
		return
	}
	c.subs[i].SetBiome(x, uint8(int(y)&15), z, id)
	c.dirty = true
}

// Dirty reports whether the Chunk has been mutated since it was last saved.
func (c *Chunk) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// ClearDirty marks the Chunk as saved. It is called by package mcdb once a
// write to disk completes successfully.
func (c *Chunk) ClearDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}

// Heightmap returns the heightmap of the given kind, one int16 per column.
func (c *Chunk) Heightmap(kind HeightmapKind) *[256]int16 {
	return &c.heightmaps[kind]
}

// HighestBlock returns, from the motion-blocking heightmap, the y just above
// the highest non-transparent block in the column at the x, z given.
func (c *Chunk) HighestBlock(x, z uint8) int16 {
	return c.heightmaps[HeightmapMotionBlocking][int(x)<<4|int(z)]
}

// HighestLightBlocker returns, from the surface heightmap, the y just above
// the highest non-transparent block in the column.
func (c *Chunk) HighestLightBlocker(x, z uint8) int16 {
	return c.heightmaps[HeightmapSurface][int(x)<<4|int(z)]
}

// RecalculateHeightmap scans the column at x, z from the top down and
// records, for every heightmap kind, the y just above the highest block
// whose runtime ID is not in the transparent set given (Range().Min() when
// there is none). This is a simplification of vanilla's per-kind predicates
// (solid/motion-blocking/fluid) down to a single "non-air-like" predicate,
// so all three kinds hold the same value.
func (c *Chunk) RecalculateHeightmap(x, z uint8, transparent func(rid uint32) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := int16(c.r.Min())
	for y := c.r.Max() - 1; y >= c.r.Min(); y-- {
		i := c.sectionIndexForY(int16(y))
		rid := c.subs[i].At(x, uint8(y&15), z, 0)
		if !transparent(rid) {
			h = int16(y + 1)
			break
		}
	}
	col := int(x)<<4 | int(z)
	c.heightmaps[HeightmapSurface][col] = h
	c.heightmaps[HeightmapMotionBlocking][col] = h
	c.heightmaps[HeightmapOceanFloor][col] = h
}

// AddBlockTick schedules a block tick, deduplicating against any existing
// tick at the same position with the same target block.
func (c *Chunk) AddBlockTick(t ScheduledTick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockTicks, c.blockTickIndex = addScheduledTick(c.blockTicks, c.blockTickIndex, t, &c.tickSeq)
	c.dirty = true
}

// AddFluidTick schedules a fluid tick; see AddBlockTick.
func (c *Chunk) AddFluidTick(t ScheduledTick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fluidTicks, c.fluidTickIndex = addScheduledTick(c.fluidTicks, c.fluidTickIndex, t, &c.tickSeq)
	c.dirty = true
}

// tickKey packs a ScheduledTick's (Pos, Block) identity into the dense int64
// keyspace addScheduledTick's lookup index is built over. Two ticks with
// different identities may collide on the same key; addScheduledTick treats
// a collision as a miss (verifying Pos/Block before trusting the index),
// never as a false dedup.
func tickKey(t ScheduledTick) int64 {
	k := int64(t.Pos[0])
	k = k*31 + int64(t.Pos[1])
	k = k*31 + int64(t.Pos[2])
	k = k*31 + int64(t.Block)
	return k
}

// newTickIndex rebuilds the dense (Pos,Block)->slice-index lookup used to
// dedup ticks in O(1) instead of scanning the whole list on every insert,
// the same trade the teacher's chunk store makes for dense int-keyed lookups
// elsewhere.
func newTickIndex(ticks []ScheduledTick) *intintmap.IntIntMap {
	m := intintmap.New(len(ticks)+8, 0.6)
	for i, t := range ticks {
		m.Put(tickKey(t), int64(i))
	}
	return m
}

func addScheduledTick(ticks []ScheduledTick, index *intintmap.IntIntMap, t ScheduledTick, seq *uint64) ([]ScheduledTick, *intintmap.IntIntMap) {
	if index == nil {
		index = newTickIndex(ticks)
	}
	key := tickKey(t)
	if i, ok := index.Get(key); ok && i < int64(len(ticks)) && ticks[i].Pos == t.Pos && ticks[i].Block == t.Block {
		t.seq = ticks[i].seq
		ticks[i] = t
		return ticks, index
	}
	t.seq = *seq
	*seq++
	ticks = append(ticks, t)
	index.Put(key, int64(len(ticks)-1))
	return ticks, index
}

// BlockTicks and FluidTicks return the chunk's scheduled ticks, in
// insertion/dedup order (not yet priority sorted; the caller sorts due ticks
// per tick step 4).
func (c *Chunk) BlockTicks() []ScheduledTick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ScheduledTick(nil), c.blockTicks...)
}

func (c *Chunk) FluidTicks() []ScheduledTick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ScheduledTick(nil), c.fluidTicks...)
}

// SetBlockTicks and SetFluidTicks replace the chunk's scheduled tick lists
// wholesale; used when loading from disk.
func (c *Chunk) SetBlockTicks(ticks []ScheduledTick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range ticks {
		ticks[i].seq = c.tickSeq
		c.tickSeq++
	}
	c.blockTicks = ticks
	c.blockTickIndex = newTickIndex(ticks)
}

func (c *Chunk) SetFluidTicks(ticks []ScheduledTick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range ticks {
		ticks[i].seq = c.tickSeq
		c.tickSeq++
	}
	c.fluidTicks = ticks
	c.fluidTickIndex = newTickIndex(ticks)
}

// AdvanceAndPopDue decrements the Delay of every pending tick in ticks by
// one and removes+returns those that reach 0, sorted by (Priority ascending,
// insertion order) step 4 / §8 "Scheduled-tick order".
func AdvanceAndPopDue(ticks []ScheduledTick) (remaining, due []ScheduledTick) {
	remaining = ticks[:0]
	for _, t := range ticks {
		if t.Delay > 0 {
			t.Delay--
		}
		if t.Delay == 0 {
			due = append(due, t)
			continue
		}
		remaining = append(remaining, t)
	}
	sortTicksStable(due)
	return remaining, due
}

func sortTicksStable(ticks []ScheduledTick) {
	// Simple insertion sort: the per-tick due list is small and this keeps
	// the routine free of an extra dependency for what is a stable sort by
	// (priority, seq).
	for i := 1; i < len(ticks); i++ {
		j := i
		for j > 0 && less(ticks[j], ticks[j-1]) {
			ticks[j], ticks[j-1] = ticks[j-1], ticks[j]
			j--
		}
	}
}

func less(a, b ScheduledTick) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.seq < b.seq
}

// PopBlockTicksDue advances and removes due block ticks for the chunk.
func (c *Chunk) PopBlockTicksDue() []ScheduledTick {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining, due := AdvanceAndPopDue(c.blockTicks)
	c.blockTicks = remaining
	if len(due) > 0 {
		c.blockTickIndex = newTickIndex(remaining)
		c.dirty = true
	}
	return due
}

// PopFluidTicksDue advances and removes due fluid ticks for the chunk.
func (c *Chunk) PopFluidTicksDue() []ScheduledTick {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining, due := AdvanceAndPopDue(c.fluidTicks)
	c.fluidTicks = remaining
	if len(due) > 0 {
		c.fluidTickIndex = newTickIndex(remaining)
		c.dirty = true
	}
	return due
}

// DataVersion, Status, LightOn report/record the on-disk metadata fields
// named ("DataVersion", "Status", "isLightOn").
func (c *Chunk) DataVersion() int32  { return c.dataVersion }
func (c *Chunk) SetDataVersion(v int32) { c.dataVersion = v }
func (c *Chunk) Status() string      { return c.status }
func (c *Chunk) SetStatus(s string)  { c.status = s }
func (c *Chunk) LightOn() bool       { return c.lightOn }
func (c *Chunk) SetLightOn(v bool)   { c.lightOn = v }

// BlockLight and SkyLight return the section-indexed nibble arrays (2048
// nibbles each). A nil slice for a given section means light has not been
// computed for it yet.
func (c *Chunk) BlockLight() [][]byte { return c.blockLight }
func (c *Chunk) SkyLight() [][]byte   { return c.skyLight }

func (c *Chunk) SetBlockLight(l [][]byte) { c.blockLight = l }
func (c *Chunk) SetSkyLight(l [][]byte)   { c.skyLight = l }

// PaletteHash combines every sub chunk's block and biome palette hashes,
// in section order, into a single checksum the provider can store alongside
// the encoded chunk and compare on load to catch silent bit-rot that a bare
// NBT parse wouldn't notice.
func (c *Chunk) PaletteHash() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := fnv1a.Init64
	for _, s := range c.subs {
		for _, l := range s.layers {
			h = fnv1a.AddUint64(h, l.palette.Hash())
		}
		h = fnv1a.AddUint64(h, s.biomes.palette.Hash())
	}
	return h
}
