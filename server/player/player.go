// Package player implements a connected world viewer: chunk loading radius,
// the chunk-streaming credit/ack pipeline (§4.5), and an inventory (§4.6),
// without any client networking concerns.
package player

import (
	"sync/atomic"

	"github.com/ashenvale/voxel/server/item/inventory"
	"github.com/ashenvale/voxel/server/session"
	"github.com/ashenvale/voxel/server/world"
	"github.com/ashenvale/voxel/server/world/chunk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Handler reacts to events concerning a Player. Implementations may embed
// NopHandler to only override the events they need.
type Handler interface {
	// HandleQuit is called when the Player disconnects.
	HandleQuit(p *Player)
}

// NopHandler implements Handler with no-op methods.
type NopHandler struct{}

// HandleQuit ...
func (NopHandler) HandleQuit(*Player) {}

// Player is a connected world viewer: it owns a chunk-loading radius (via
// world.Loader), a chunk-streaming credit/ack pipeline, and an inventory.
type Player struct {
	name string
	id   uuid.UUID

	loader    *world.Loader
	chunks    *session.ChunkQueue[*chunk.Chunk]
	inventory *inventory.Inventory

	handler atomic.Value
}

// New returns a Player named name, loading chunks within radius of the
// chunks w manages, streamed at up to chunksPerTick chunks per batch. The
// Player is assigned a random identity, stable for the lifetime of the
// connection but not persisted across reconnects.
func New(name string, w *world.World, radius, chunksPerTick int) *Player {
	p := &Player{
		name:      name,
		id:        uuid.New(),
		chunks:    session.NewChunkQueue[*chunk.Chunk](chunksPerTick),
		inventory: inventory.New(36),
	}
	p.loader = world.NewLoader(radius, w, p)
	p.Handle(nil)
	return p
}

// Name returns the Player's display name.
func (p *Player) Name() string { return p.name }

// UUID returns the Player's connection identity.
func (p *Player) UUID() uuid.UUID { return p.id }

// Inventory returns the Player's main inventory.
func (p *Player) Inventory() *inventory.Inventory { return p.inventory }

// ViewChunk implements world.Viewer: a newly-loaded or re-sent chunk is
// queued onto the Player's chunk-streaming pipeline rather than delivered
// immediately, so delivery stays governed by the credit/ack state machine.
func (p *Player) ViewChunk(pos world.ChunkPos, c *chunk.Chunk) {
	p.chunks.Push(pos, c)
}

// Move recentres the Player's Loader on pos.
func (p *Player) Move(tx *world.Tx, pos mgl64.Vec3) {
	p.loader.Move(tx, pos)
}

// Tick loads up to budget more chunks from the Loader's queue and drains
// whatever the chunk-streaming pipeline's credit state currently allows
// through sink.
func (p *Player) Tick(tx *world.Tx, budget int, sink session.BatchSink[*chunk.Chunk]) {
	p.loader.Load(tx, budget)
	p.chunks.Tick(sink)
}

// Acknowledge reports that the client has acknowledged a chunk batch,
// resuming the credit/ack pipeline at the client-reported sustainable rate.
func (p *Player) Acknowledge(chunksPerTick float64) {
	p.chunks.Acknowledge(chunksPerTick)
}

// Handle installs h as the Player's Handler, after running it through any
// wrapper installed with SetHandlerWrap. A nil h installs NopHandler.
func (p *Player) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	p.handler.Store(wrapPlayerHandler(p, h))
}

// Close notifies the Player's Handler of disconnection and releases every
// chunk its Loader holds.
func (p *Player) Close() {
	p.handler.Load().(Handler).HandleQuit(p)
	p.loader.Close()
}
