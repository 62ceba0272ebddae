// Package world implements the voxel world simulation: chunk residency,
// terrain generation, the block behaviour registry bridge, scheduled ticks
// and the world façade (get/set/break block, raycast) operations run
// against.
package world

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world/chunk"
	"golang.org/x/sync/semaphore"
)

// World manages the chunks, blocks and scheduled ticks of a single
// Dimension. All mutating access goes through a Tx passed to a function
// submitted with Exec, which serialises every world mutation onto a single
// goroutine the way the teacher's transaction queue does.
type World struct {
	conf Config
	ra   cube.Range

	registry *block.Registry

	mu     sync.RWMutex
	chunks map[ChunkPos]*chunkEntry

	pendingMu sync.Mutex
	pending   map[ChunkPos]*pendingGeneration
	gate      *semaphore.Weighted

	queue   chan func(*Tx)
	closing chan struct{}
	wg      sync.WaitGroup

	viewerMu sync.Mutex
	viewers  map[*Loader]Viewer

	handler atomic.Pointer[Handler]

	tick     atomic.Int64
	tickRate *TickRate
	r        *rand.Rand
}

// chunkEntry is a resident chunk plus the bookkeeping residency needs: how
// many loaders currently watch it, and the block entities attached to it.
type chunkEntry struct {
	c             *chunk.Chunk
	watchers      int
	blockEntities map[cube.Pos]map[string]any
}

// Range returns the vertical block Range of the World's Dimension.
func (w *World) Range() cube.Range { return w.ra }

// Dimension returns the Dimension the World represents.
func (w *World) Dimension() Dimension { return w.conf.Dim }

// Registry returns the block registry this World resolves runtime IDs
// against.
func (w *World) Registry() *block.Registry { return w.registry }

// CurrentTick returns the current tick of the World, starting at 0 when the
// World was created.
func (w *World) CurrentTick() int64 { return w.tick.Load() }

// LoadedChunkCount returns the number of chunks currently resident in
// memory.
func (w *World) LoadedChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// Handler returns the Handler currently registered with the World, or
// NopHandler{} if none was set.
func (w *World) Handler() Handler {
	if h := w.handler.Load(); h != nil {
		return *h
	}
	return NopHandler{}
}

// Handle sets h as the Handler of the World. Passing nil sets NopHandler.
func (w *World) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	h = wrapWorldHandler(w, h)
	w.handler.Store(&h)
}

// ExecFunc is a function submitted to World.Exec, given a Tx to operate the
// world's state through.
type ExecFunc func(tx *Tx)

// Exec submits f to run against the World's single transaction goroutine,
// serialising it with every other call to Exec. The returned channel is
// closed once f has run.
func (w *World) Exec(f ExecFunc) <-chan struct{} {
	done := make(chan struct{})
	select {
	case w.queue <- func(tx *Tx) { f(tx); close(done) }:
	case <-w.closing:
		close(done)
	}
	return done
}

// handleTransactions runs on its own goroutine for the lifetime of the
// World, executing one submitted transaction at a time.
func (w *World) handleTransactions() {
	defer w.wg.Done()
	tx := &Tx{w: w}
	for {
		select {
		case f := <-w.queue:
			f(tx)
		case <-w.closing:
			// Drain whatever is left so no caller blocks forever on Exec.
			for {
				select {
				case f := <-w.queue:
					f(tx)
				default:
					return
				}
			}
		}
	}
}

// Close shuts the World down: the tick and transaction loops stop, every
// resident chunk is saved through the Provider and the Provider itself is
// closed.
func (w *World) Close() error {
	close(w.closing)
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for pos, entry := range w.chunks {
		if err := w.conf.Provider.SaveChunk(pos, entry.c, w.conf.Dim); err != nil {
			errs = append(errs, fmt.Errorf("save chunk %v: %w", pos, err))
		}
	}
	if err := w.conf.Provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close provider: %w", err))
	}
	return errors.Join(errs...)
}

// addViewer registers v as watching the chunk at pos, incrementing its
// residency refcount.
func (w *World) addViewer(pos ChunkPos, l *Loader, v Viewer) {
	w.viewerMu.Lock()
	w.viewers[l] = v
	w.viewerMu.Unlock()

	w.mu.Lock()
	if entry, ok := w.chunks[pos]; ok {
		entry.watchers++
	}
	w.mu.Unlock()
}

// removeViewer unregisters a Loader's watch on the chunk at pos, decrementing
// its refcount.
func (w *World) removeViewer(pos ChunkPos) {
	w.mu.Lock()
	if entry, ok := w.chunks[pos]; ok && entry.watchers > 0 {
		entry.watchers--
	}
	w.mu.Unlock()
}

// forgetLoader removes every trace of l from the World's viewer table,
// called when a Loader closes.
func (w *World) forgetLoader(l *Loader) {
	w.viewerMu.Lock()
	delete(w.viewers, l)
	w.viewerMu.Unlock()
}
