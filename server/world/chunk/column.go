package chunk

import "github.com/ashenvale/voxel/server/block/cube"

// Column is the on-disk/transport shape of a chunk's full persisted state:
// the Chunk itself plus everything saved alongside it. Package mcdb does not
// use it: its provider encodes and decodes the Chunk alone.
type Column struct {
	Chunk *Chunk

	Entities        []Entity
	BlockEntities   []BlockEntity
	ScheduledBlocks []ScheduledBlockUpdate

	// Tick is the world tick at which this column was last saved, used to
	// compute how many ticks of scheduled-tick delay have elapsed offline.
	Tick int64
}

// Entity is the persisted form of a world entity: an opaque ID plus its
// serialised state. Entities are (re)spawned with a stable ID so scheduled
// ticks and handlers can refer to them across saves.
type Entity struct {
	ID   int64
	Data map[string]any
}

// BlockEntity is the persisted form of a block entity (e.g. a chest's
// inventory contents, a furnace's smelting progress): position plus opaque
// state.
type BlockEntity struct {
	Pos  cube.Pos
	Data map[string]any
}

// ScheduledBlockUpdate is the persisted form of a ScheduledTick: an absolute
// world tick at which the update fires rather than a relative delay, so
// that reloading a region computes the correct remaining delay from the
// current world tick.
type ScheduledBlockUpdate struct {
	Pos      cube.Pos
	Block    uint32
	Tick     int64
	Priority int8
}
