package world

import (
	"math/rand/v2"

	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world/chunk"
)

// Tx is the single-goroutine handle every World mutation runs through. A Tx
// is only valid for the duration of the ExecFunc it was passed to.
type Tx struct {
	w *World
}

// World returns the World this Tx operates on.
func (tx *Tx) World() *World { return tx.w }

// Rand returns the World's shared random source, used by random ticks and
// block behaviours that need randomness (e.g. loot rolls).
func (tx *Tx) Rand() *rand.Rand { return tx.w.r }

// Registry returns the block registry blocks resolve their behaviour
// through, satisfying block.Tx.
func (tx *Tx) Registry() *block.Registry { return tx.w.registry }

func blockToChunk(pos cube.Pos) (cp ChunkPos, lx, lz uint8) {
	cx, lx32 := floorDivMod(pos[0], 16)
	cz, lz32 := floorDivMod(pos[2], 16)
	return ChunkPos{int32(cx), int32(cz)}, uint8(lx32), uint8(lz32)
}

func floorDivMod(a, n int) (q, r int) {
	q = a / n
	r = a % n
	if r < 0 {
		q--
		r += n
	}
	return q, r
}

// Block returns the runtime ID at pos, or AirRuntimeID if the containing
// chunk is not resident or pos falls outside the World's Range.
func (tx *Tx) Block(pos cube.Pos) uint32 {
	if pos.OutOfBounds(tx.w.ra) {
		return block.AirRuntimeID
	}
	cp, lx, lz := blockToChunk(pos)
	c, ok := tx.w.chunk(cp)
	if !ok {
		return block.AirRuntimeID
	}
	return c.Block(lx, int16(pos[1]), lz, 0)
}

// SetRaw writes rid at pos directly, without running the set_block_state
// callback protocol. Used internally by SetBlockState and by callers that
// know they want a bare write (e.g. world generation).
func (tx *Tx) SetRaw(pos cube.Pos, rid uint32) {
	if pos.OutOfBounds(tx.w.ra) {
		return
	}
	cp, lx, lz := blockToChunk(pos)
	c, ok := tx.w.chunk(cp)
	if !ok {
		return
	}
	c.SetBlock(lx, int16(pos[1]), lz, 0, rid)
	entry, _ := tx.w.entry(cp)
	tx.broadcastChunk(cp, entry)
}

func (tx *Tx) broadcastChunk(cp ChunkPos, entry *chunkEntry) {
	if entry == nil {
		return
	}
	tx.w.viewerMu.Lock()
	viewers := make([]Viewer, 0, len(tx.w.viewers))
	for _, v := range tx.w.viewers {
		viewers = append(viewers, v)
	}
	tx.w.viewerMu.Unlock()
	for _, v := range viewers {
		v.ViewChunk(cp, entry.c)
	}
}

// ScheduleBlockTick schedules a block tick at pos, delay ticks from now, at
// the given priority (lower fires first among ticks due on the same tick).
func (tx *Tx) ScheduleBlockTick(pos cube.Pos, rid uint32, delay uint16, priority int8) {
	tx.schedule(pos, rid, delay, priority, false)
}

// ScheduleFluidTick schedules a fluid tick, identically to ScheduleBlockTick
// but stored and popped from the fluid queue.
func (tx *Tx) ScheduleFluidTick(pos cube.Pos, rid uint32, delay uint16, priority int8) {
	tx.schedule(pos, rid, delay, priority, true)
}

func (tx *Tx) schedule(pos cube.Pos, rid uint32, delay uint16, priority int8, fluid bool) {
	cp, _, _ := blockToChunk(pos)
	c, ok := tx.w.chunk(cp)
	if !ok {
		return
	}
	t := chunk.ScheduledTick{Pos: pos, Block: rid, Delay: delay, Priority: priority}
	if fluid {
		c.AddFluidTick(t)
	} else {
		c.AddBlockTick(t)
	}
}

// BroadcastBlockBroken does nothing: Viewer has no method for a broken-block
// event, so no viewer is told that the block rid was broken at pos.
func (tx *Tx) BroadcastBlockBroken(cube.Pos, uint32) {}

// SetBlockState runs the full set_block_state protocol at pos.
func (tx *Tx) SetBlockState(pos cube.Pos, newID uint32, flags block.Flags) {
	block.SetBlockState(tx, pos, newID, flags)
}

// BreakBlock runs break_block at pos (see block.BreakBlock), then reports the
// names of the returned drops to the Handler; with SkipDrops set the Handler
// is still called, with an empty list.
func (tx *Tx) BreakBlock(pos cube.Pos, flags block.Flags) []block.ItemStack {
	drops := block.BreakBlock(tx, pos, flags)
	names := make([]string, len(drops))
	for i, d := range drops {
		names[i] = d.Name
	}
	tx.w.Handler().HandleBlockBreak(pos, names)
	return drops
}

// AddBlockEntity attaches opaque block-entity state (a chest's contents, a
// sign's text) to pos.
func (tx *Tx) AddBlockEntity(pos cube.Pos, data map[string]any) {
	cp, _, _ := blockToChunk(pos)
	entry, ok := tx.w.entry(cp)
	if !ok {
		return
	}
	entry.blockEntities[pos] = data
}

// RemoveBlockEntity removes any block entity at pos.
func (tx *Tx) RemoveBlockEntity(pos cube.Pos) {
	cp, _, _ := blockToChunk(pos)
	if entry, ok := tx.w.entry(cp); ok {
		delete(entry.blockEntities, pos)
	}
}

// GetBlockEntity returns the block entity at pos, if any.
func (tx *Tx) GetBlockEntity(pos cube.Pos) (map[string]any, bool) {
	cp, _, _ := blockToChunk(pos)
	entry, ok := tx.w.entry(cp)
	if !ok {
		return nil, false
	}
	data, ok := entry.blockEntities[pos]
	return data, ok
}
