package world

import (
	"math"
	"sort"
	"sync"

	"github.com/ashenvale/voxel/server/world/chunk"
	"github.com/go-gl/mathgl/mgl64"
)

// Loader loads chunks around a moving point — a player, or a region
// pre-generating terrain — within a fixed radius, evicting chunks that fall
// outside it as the point moves.
type Loader struct {
	w      *World
	viewer Viewer
	radius int

	mu          sync.RWMutex
	initialized bool
	center      ChunkPos
	loadQueue   []ChunkPos
	loaded      map[ChunkPos]struct{}
}

// NewLoader creates a Loader that keeps every chunk within radius chunks of
// its centre loaded, sending them to viewer as they become available.
func NewLoader(radius int, w *World, viewer Viewer) *Loader {
	return &Loader{
		w:      w,
		viewer: viewer,
		radius: radius,
		loaded: make(map[ChunkPos]struct{}),
	}
}

// Move recentres the Loader on pos. Every chunk it previously held is
// released (the World reclaims it once no other Loader watches it) and the
// chunks within radius of the new centre are queued for (re)loading.
func (l *Loader) Move(tx *Tx, pos mgl64.Vec3) {
	centre := ChunkPos{
		int32(math.Floor(pos[0] / 16)),
		int32(math.Floor(pos[2] / 16)),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized && centre == l.center {
		return
	}
	l.initialized = true
	l.center = centre

	for pos := range l.loaded {
		tx.World().removeViewer(pos)
	}
	l.loaded = make(map[ChunkPos]struct{})
	l.loadQueue = positionsWithinRadius(centre, l.radius)
}

// Load attempts to load up to budget chunks from the Loader's queue,
// sending each to its Viewer as it becomes resident. Positions whose
// generation is still in flight are retried on the next call.
func (l *Loader) Load(tx *Tx, budget int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := make([]ChunkPos, 0, len(l.loadQueue))
	for _, pos := range l.loadQueue {
		if budget <= 0 {
			remaining = append(remaining, pos)
			continue
		}
		budget--

		c, ok := tx.World().ensureChunk(pos)
		if !ok {
			remaining = append(remaining, pos)
			continue
		}
		l.loaded[pos] = struct{}{}
		tx.World().addViewer(pos, l, l.viewer)
		l.viewer.ViewChunk(pos, c)
	}
	l.loadQueue = remaining
}

// Chunk returns the chunk at pos if it is currently loaded by this Loader.
func (l *Loader) Chunk(pos ChunkPos) (*chunk.Chunk, bool) {
	l.mu.RLock()
	_, loaded := l.loaded[pos]
	l.mu.RUnlock()
	if !loaded {
		return nil, false
	}
	return l.w.chunk(pos)
}

// Close stops the Loader from watching any of its chunks, allowing the
// World to evict them once no other Loader holds them.
func (l *Loader) Close() {
	l.mu.Lock()
	for pos := range l.loaded {
		l.w.removeViewer(pos)
	}
	l.loaded = make(map[ChunkPos]struct{})
	l.loadQueue = nil
	l.mu.Unlock()
	l.w.forgetLoader(l)
}

// positionsWithinRadius returns every ChunkPos within radius chunks of
// centre under a rounded-circle metric, nearest first.
func positionsWithinRadius(centre ChunkPos, radius int) []ChunkPos {
	var positions []ChunkPos
	for x := -radius; x <= radius; x++ {
		for z := -radius; z <= radius; z++ {
			if int(math.Round(math.Sqrt(float64(x*x+z*z)))) > radius {
				continue
			}
			positions = append(positions, ChunkPos{centre.X() + int32(x), centre.Z() + int32(z)})
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return distSq(centre, positions[i]) < distSq(centre, positions[j])
	})
	return positions
}

func distSq(a, b ChunkPos) int64 {
	dx, dz := int64(a.X()-b.X()), int64(a.Z()-b.Z())
	return dx*dx + dz*dz
}
