package world

import (
	"context"

	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world/chunk"
)

// pendingGeneration tracks an in-flight load-or-generate for a single chunk
// position, so that concurrent requests for the same position (several
// loaders expanding into the same area on the same tick) share one load/
// generate rather than racing duplicate work. Grounded on pumpkin-world's
// fetch_chunks, which dedups concurrent fetches of the same position via
// loaded_chunks.entry(position).or_insert(chunk).
type pendingGeneration struct {
	done chan struct{}
}

// chunk returns the resident chunk at pos, if any, without starting a load.
func (w *World) chunk(pos ChunkPos) (*chunk.Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entry, ok := w.chunks[pos]
	if !ok {
		return nil, false
	}
	return entry.c, true
}

// entry returns the resident chunkEntry at pos, if any.
func (w *World) entry(pos ChunkPos) (*chunkEntry, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entry, ok := w.chunks[pos]
	return entry, ok
}

// ensureChunk returns the chunk at pos if it is already resident. If it is
// not, a load-or-generate is kicked off in the background (deduplicated
// against any already in flight for pos) and ensureChunk returns
// immediately with ok false; callers (the Loader, primarily) are expected
// to retry on a later tick.
func (w *World) ensureChunk(pos ChunkPos) (*chunk.Chunk, bool) {
	if c, ok := w.chunk(pos); ok {
		return c, true
	}
	w.beginGeneration(pos)
	return nil, false
}

// beginGeneration starts a load-or-generate for pos unless one is already
// running.
func (w *World) beginGeneration(pos ChunkPos) {
	w.pendingMu.Lock()
	if _, ok := w.pending[pos]; ok {
		w.pendingMu.Unlock()
		return
	}
	pg := &pendingGeneration{done: make(chan struct{})}
	w.pending[pos] = pg
	w.pendingMu.Unlock()

	go w.loadOrGenerate(pos, pg)
}

// loadOrGenerate loads pos from the Provider, falling back to generation
// when the Provider reports the chunk does not exist yet (or fails to read
// it — a read error is treated as not-yet-generated rather than fatal, the
// same benign-error routing fetch_chunks uses for ChunkNotExist/
// ChunkNotGenerated). A weighted semaphore bounds how many generations run
// concurrently, so a loader expanding its radius in one burst cannot flood
// the CPU-bound generator.
func (w *World) loadOrGenerate(pos ChunkPos, pg *pendingGeneration) {
	defer func() {
		w.pendingMu.Lock()
		delete(w.pending, pos)
		w.pendingMu.Unlock()
		close(pg.done)
	}()

	if err := w.gate.Acquire(context.Background(), 1); err != nil {
		return
	}
	defer w.gate.Release(1)

	c, found, err := w.conf.Provider.LoadChunk(pos, w.conf.Dim)
	if err != nil || !found {
		c = chunk.New(block.AirRuntimeID, w.ra)
		w.conf.Generator.GenerateChunk(pos, c)
	}

	w.mu.Lock()
	w.chunks[pos] = &chunkEntry{c: c, blockEntities: make(map[cube.Pos]map[string]any)}
	w.mu.Unlock()

	w.viewerMu.Lock()
	viewers := make([]Viewer, 0, len(w.viewers))
	for _, v := range w.viewers {
		viewers = append(viewers, v)
	}
	w.viewerMu.Unlock()
	for _, v := range viewers {
		v.ViewChunk(pos, c)
	}
}

// closeUnusedChunks evicts every resident chunk with no remaining watchers,
// saving it through the Provider first.
func (w *World) closeUnusedChunks() (closed int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for pos, entry := range w.chunks {
		if entry.watchers > 0 {
			continue
		}
		_ = w.conf.Provider.SaveChunk(pos, entry.c, w.conf.Dim)
		delete(w.chunks, pos)
		closed++
	}
	return closed
}
