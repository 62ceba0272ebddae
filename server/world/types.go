package world

import (
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world/chunk"
)

// ChunkPos holds the position of a chunk, in chunk (not block) coordinates:
// [0] is the X value, [1] the Z value.
type ChunkPos [2]int32

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 { return p[0] }

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 { return p[1] }

// Dimension represents one of the worlds a Server manages: the overworld,
// the nether or the end. Each has its own vertical block Range.
type Dimension interface {
	// Range returns the vertical range of the Dimension in blocks.
	Range() cube.Range
	// String returns the name of the Dimension.
	String() string
}

type dimension struct {
	name string
	r    cube.Range
}

func (d dimension) Range() cube.Range { return d.r }
func (d dimension) String() string    { return d.name }

var (
	// Overworld is the default dimension of a World.
	Overworld Dimension = dimension{name: "Overworld", r: cube.Range{-64, 319}}
	// Nether is the dimension accessed through nether portals.
	Nether Dimension = dimension{name: "Nether", r: cube.Range{0, 127}}
	// End is the dimension accessed through end portals.
	End Dimension = dimension{name: "End", r: cube.Range{0, 255}}
)

// Generator generates a chunk at a given ChunkPos into an already allocated
// chunk.Chunk.
type Generator interface {
	GenerateChunk(pos ChunkPos, c *chunk.Chunk)
}

// NopGenerator is a Generator that leaves every chunk as air, for worlds
// using only a Provider or running entirely procedurally-empty (tests).
type NopGenerator struct{}

// GenerateChunk ...
func (NopGenerator) GenerateChunk(ChunkPos, *chunk.Chunk) {}

// Provider represents a value that can load and save chunk and level data.
// A Provider is this server's on-disk persistence boundary: callers never
// touch encoding directly.
type Provider interface {
	// LoadChunk loads the chunk at pos, reporting found as false if it does
	// not yet exist on disk (not yet generated, not an error).
	LoadChunk(pos ChunkPos, dim Dimension) (c *chunk.Chunk, found bool, err error)
	// SaveChunk persists c at pos.
	SaveChunk(pos ChunkPos, c *chunk.Chunk, dim Dimension) error
	// Close releases any resources held by the Provider.
	Close() error
}

// NopProvider implements Provider without persisting anything: every chunk
// is reported as not found and saves are discarded.
type NopProvider struct{}

// LoadChunk ...
func (NopProvider) LoadChunk(ChunkPos, Dimension) (*chunk.Chunk, bool, error) { return nil, false, nil }

// SaveChunk ...
func (NopProvider) SaveChunk(ChunkPos, *chunk.Chunk, Dimension) error { return nil }

// Close ...
func (NopProvider) Close() error { return nil }

// Viewer represents a value that is able to view a world, for example a
// client connected to the server or a world loader used for pre-generating
// terrain. Changes in the world that players and other viewers must be able
// to see are sent to each of the Viewers of that part of the world.
type Viewer interface {
	// ViewChunk is called when a chunk is sent to the viewer, either newly
	// loaded or re-sent after a change.
	ViewChunk(pos ChunkPos, c *chunk.Chunk)
}

// NopViewer implements Viewer with no-op methods, embeddable by callers
// (such as tests) that only need a subset overridden.
type NopViewer struct{}

// ViewChunk ...
func (NopViewer) ViewChunk(ChunkPos, *chunk.Chunk) {}

// Handler handles events that are called by a World. Implementations may
// embed NopHandler to only override the events they are interested in.
type Handler interface {
	// HandleBlockBreak is called after break_block has replaced the block,
	// with the names of the drops it returned (empty when SkipDrops is set).
	// It cannot cancel the break.
	HandleBlockBreak(pos cube.Pos, drops []string)
}

// NopHandler implements Handler with no-op methods.
type NopHandler struct{}

// HandleBlockBreak ...
func (NopHandler) HandleBlockBreak(cube.Pos, []string) {}
