package world

import (
	"time"

	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world/chunk"
	"golang.org/x/exp/slices"
)

// tickInterval is the duration of one world tick: 20 per second, matching
// vanilla.
const tickInterval = 50 * time.Millisecond

// tickLoop drives the World forward one tick at a time for as long as the
// World is open, running every step through Exec so it serialises with
// every other caller of Exec.
func (w *World) tickLoop() {
	defer w.wg.Done()
	timer := time.NewTimer(w.tickRate.Interval())
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			<-w.Exec(func(tx *Tx) { w.tickOnce(tx) })
			timer.Reset(w.tickRate.Interval())
		case <-w.closing:
			return
		}
	}
}

// tickOnce advances the World by a single tick: due scheduled ticks fire,
// every loaded chunk gets a random tick pass at randomly sampled positions,
// and chunks with no remaining watchers are saved and evicted.
func (w *World) tickOnce(tx *Tx) {
	start := time.Now()
	w.tick.Add(1)
	w.tickScheduled(tx)
	w.tickRandom(tx)
	w.closeUnusedChunks()
	w.recordTick(time.Since(start))
}

// tickScheduled drains and fires every scheduled block/fluid tick that
// became due this tick, across every resident chunk.
func (w *World) tickScheduled(tx *Tx) {
	w.mu.RLock()
	positions := make([]ChunkPos, 0, len(w.chunks))
	for pos := range w.chunks {
		positions = append(positions, pos)
	}
	w.mu.RUnlock()
	// Map iteration order is randomised; a stable order keeps scheduled-tick
	// firing order reproducible between runs of the same world state, which
	// matters for tests and for diagnosing tick-order-dependent bugs.
	slices.SortFunc(positions, func(a, b ChunkPos) int {
		if a.X() != b.X() {
			return int(a.X() - b.X())
		}
		return int(a.Z() - b.Z())
	})

	registry := w.registry
	for _, cp := range positions {
		c, ok := w.chunk(cp)
		if !ok {
			continue
		}
		for _, t := range c.PopBlockTicksDue() {
			fireScheduledTick(tx, registry, t)
		}
		for _, t := range c.PopFluidTicksDue() {
			fireScheduledTick(tx, registry, t)
		}
	}
}

// fireScheduledTick dispatches a single due scheduled tick to the
// ScheduledTicker registered for its target block, if the block currently
// at that position still matches (it may have changed since the tick was
// scheduled, in which case the tick is simply dropped).
func fireScheduledTick(tx *Tx, registry *block.Registry, t chunk.ScheduledTick) {
	if tx.Block(t.Pos) != t.Block {
		return
	}
	b, ok := registry.Lookup(t.Block)
	if !ok {
		return
	}
	if st, ok := b.(block.ScheduledTicker); ok {
		st.ScheduledTick(t.Pos, tx, tx.Rand())
	}
}

// tickRandom performs RandomTickSpeed random ticks per loaded sub chunk,
// the same "sample a handful of positions" idiom vanilla uses rather than
// visiting every block every tick.
func (w *World) tickRandom(tx *Tx) {
	w.mu.RLock()
	entries := make(map[ChunkPos]*chunkEntry, len(w.chunks))
	for pos, e := range w.chunks {
		entries[pos] = e
	}
	w.mu.RUnlock()

	registry := w.registry
	height := w.ra.Height()
	subChunks := (height + 15) / 16
	for cp, entry := range entries {
		for sub := 0; sub < subChunks; sub++ {
			for i := 0; i < w.conf.RandomTickSpeed; i++ {
				x := uint8(w.r.IntN(16))
				y := int16(sub*16+w.r.IntN(16)) + int16(w.ra.Min())
				z := uint8(w.r.IntN(16))
				rid := entry.c.Block(x, y, z, 0)
				if rid == block.AirRuntimeID {
					continue
				}
				b, ok := registry.Lookup(rid)
				if !ok {
					continue
				}
				rt, ok := b.(block.RandomTicker)
				if !ok {
					continue
				}
				pos := cube.Pos{int(cp.X())*16 + int(x), int(y), int(cp.Z())*16 + int(z)}
				rt.RandomTick(pos, tx, w.r)
			}
		}
	}
}
