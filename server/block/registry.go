// Package block implements the block behavior registry: the callback table
// dispatched by set_block_state and the curated set of concrete blocks that
// exercise it. Behaviors are looked up by runtime ID and dispatched through
// late-bound interfaces, the same fail-open dynamic dispatch idiom the
// teacher uses for NeighbourUpdateTicker/RandomTicker/ScheduledTicker, kept
// here and generalised to the full callback table.
package block

import (
	"math/rand/v2"

	"github.com/ashenvale/voxel/server/block/cube"
)

// Flags controls the side effects of a set_block_state call.
type Flags uint16

const (
	NotifyNeighbours Flags = 1 << iota
	NotifyListeners
	SkipDrops
	SkipBlockAddedCallback
	ForceState
	Moved
	SkipRedstoneWireStateReplacement
)

// Tx is the narrow slice of world transaction behaviour block callbacks
// need. It is satisfied structurally by *world.Tx; defining it here rather
// than importing package world keeps block free of a dependency cycle,
// since world imports block to resolve behaviors by runtime ID.
type Tx interface {
	Block(pos cube.Pos) uint32
	SetRaw(pos cube.Pos, rid uint32)
	ScheduleBlockTick(pos cube.Pos, rid uint32, delay uint16, priority int8)
	ScheduleFluidTick(pos cube.Pos, rid uint32, delay uint16, priority int8)
	Rand() *rand.Rand
	BroadcastBlockBroken(pos cube.Pos, rid uint32)
	Registry() *Registry
}

// Placer is invoked when a block is newly placed at pos (old_block !=
// new_block), after the write has landed.
type Placer interface {
	Placed(pos cube.Pos, tx Tx, oldID uint32, moved bool)
}

// StateReplacedHandler is invoked on the block that previously occupied pos
// when it is about to be overwritten by a different block.
type StateReplacedHandler interface {
	HandleStateReplaced(pos cube.Pos, tx Tx, oldID uint32, moved bool)
}

// NeighbourUpdateTicker is invoked on a block when one of its neighbours
// changes state.
type NeighbourUpdateTicker interface {
	NeighbourUpdateTick(pos, changedNeighbour cube.Pos, tx Tx)
}

// RandomTicker is invoked on a random subset of non-air blocks each tick.
type RandomTicker interface {
	RandomTick(pos cube.Pos, tx Tx, r *rand.Rand)
}

// ScheduledTicker is invoked when a previously scheduled tick for this
// block becomes due.
type ScheduledTicker interface {
	ScheduledTick(pos cube.Pos, tx Tx, r *rand.Rand)
}

// SyncedEventHandler is invoked for a synced block event (e.g. a chest lid
// animation or a note block play) addressed to pos.
type SyncedEventHandler interface {
	SyncedBlockEvent(pos cube.Pos, tx Tx, eventType, eventData int32) bool
}

// NeighbourUpdateStateProvider computes this block's own updated state from
// the perspective of a freshly placed neighbour, used by the "prepare" pass
// (fence/wall/stair shape connections and the like).
type NeighbourUpdateStateProvider interface {
	StateForNeighbourUpdate(pos cube.Pos, tx Tx) uint32
}

// RedstoneEmitter reports the redstone power this block contributes on the
// face given. Weak power is visible to adjacent wire; strong power also
// passes through a solid block it is embedded in.
type RedstoneEmitter interface {
	EmitsRedstonePower() bool
	WeakRedstonePower(face cube.Face, tx Tx, pos cube.Pos) int
	StrongRedstonePower(face cube.Face, tx Tx, pos cube.Pos) int
}

// UseHandler is invoked when a player interacts with the block (normal
// use, no item in hand relevant to the interaction).
type UseHandler interface {
	Use(pos cube.Pos, tx Tx) bool
}

// CanPlaceChecker vetoes placement of this block at pos.
type CanPlaceChecker interface {
	CanPlaceAt(pos cube.Pos, tx Tx) bool
}

// Breakable supplies the loot table / replacement state used by
// break_block.
type Breakable interface {
	BrokenReplacement(pos cube.Pos, tx Tx) uint32
	Drops(pos cube.Pos, tx Tx) []ItemStack
}

// ItemStack is the minimal drop payload a block's loot table produces.
type ItemStack struct {
	Name  string
	Count int
}

// Registry resolves runtime block IDs to their registered behaviour. A
// behaviour is an arbitrary value; individual callbacks are looked up by
// type-asserting it against the interfaces above, so a block only needs to
// implement the callbacks relevant to it.
type Registry struct {
	names      map[uint32]string
	behaviors  map[uint32]any
	nameToID   map[string]uint32
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		names:     make(map[uint32]string),
		behaviors: make(map[uint32]any),
		nameToID:  make(map[string]uint32),
	}
}

// Register associates a runtime ID with a name and behaviour value.
func (r *Registry) Register(rid uint32, name string, behaviour any) {
	r.names[rid] = name
	r.behaviors[rid] = behaviour
	r.nameToID[name] = rid
}

// Lookup returns the behaviour registered for rid, if any.
func (r *Registry) Lookup(rid uint32) (any, bool) {
	b, ok := r.behaviors[rid]
	return b, ok
}

// Name returns the registered block name for rid, or "minecraft:air" if
// unregistered.
func (r *Registry) Name(rid uint32) string {
	if n, ok := r.names[rid]; ok {
		return n
	}
	return "minecraft:air"
}

// RuntimeID returns the runtime ID registered under name.
func (r *Registry) RuntimeID(name string) (uint32, bool) {
	rid, ok := r.nameToID[name]
	return rid, ok
}

// SetBlockState implements the set_block_state protocol: write newID at pos
// and run the state-replaced/placed/notify-neighbours/prepare callback
// sequence, using tx's registry to resolve each block's behaviour.
func SetBlockState(tx Tx, pos cube.Pos, newID uint32, flags Flags) {
	registry := tx.Registry()
	oldID := tx.Block(pos)
	if oldID == newID && flags&ForceState == 0 {
		return
	}

	tx.SetRaw(pos, newID)

	changed := oldID != newID
	if changed && flags&(NotifyNeighbours|Moved) != 0 {
		if old, ok := registry.Lookup(oldID); ok {
			if h, ok := old.(StateReplacedHandler); ok {
				h.HandleStateReplaced(pos, tx, oldID, flags&Moved != 0)
			}
		}
	}

	if changed && flags&SkipBlockAddedCallback == 0 {
		if b, ok := registry.Lookup(newID); ok {
			if p, ok := b.(Placer); ok {
				p.Placed(pos, tx, oldID, flags&Moved != 0)
			}
		}
	}

	if tx.Block(pos) != newID {
		// A placed/state-replaced callback already rewrote the cell; the
		// protocol's remaining steps operate on whatever is there now, via
		// the callback's own writes, so there is nothing further to do.
		return
	}

	if flags&NotifyNeighbours != 0 {
		updateNeighbours(tx, pos)
	}
	if flags&ForceState == 0 {
		prepareNeighbours(tx, pos)
	}
}

// updateNeighbours calls on_neighbor_update on each of the six neighbours of
// pos, in the fixed documented order: West, East, Down, Up, North, South.
func updateNeighbours(tx Tx, pos cube.Pos) {
	registry := tx.Registry()
	for _, face := range cube.NeighbourUpdateFaces() {
		np := pos.Side(face)
		rid := tx.Block(np)
		b, ok := registry.Lookup(rid)
		if !ok {
			continue
		}
		if t, ok := b.(NeighbourUpdateTicker); ok {
			t.NeighbourUpdateTick(np, pos, tx)
		}
	}
}

// prepareNeighbours asks each neighbour to recompute its own state given the
// newly placed block at pos, in the same fixed order, and writes back any
// state the neighbour reports differs from what is currently there.
func prepareNeighbours(tx Tx, pos cube.Pos) {
	registry := tx.Registry()
	for _, face := range cube.NeighbourUpdateFaces() {
		np := pos.Side(face)
		rid := tx.Block(np)
		b, ok := registry.Lookup(rid)
		if !ok {
			continue
		}
		p, ok := b.(NeighbourUpdateStateProvider)
		if !ok {
			continue
		}
		if updated := p.StateForNeighbourUpdate(np, tx); updated != rid {
			SetBlockState(tx, np, updated, NotifyNeighbours)
		}
	}
}

// BreakBlock implements break_block: compute the replacement state with the
// block's Breakable.BrokenReplacement (air for a block that is not
// Breakable), write it, broadcast a broken-block event unless the block was
// fire, and return the block's drops (none when SkipDrops is set or the
// block is not Breakable). The drops are returned to the caller; BreakBlock
// does not spawn them.
func BreakBlock(tx Tx, pos cube.Pos, flags Flags) []ItemStack {
	registry := tx.Registry()
	oldID := tx.Block(pos)
	var replacement uint32
	var drops []ItemStack
	if b, ok := registry.Lookup(oldID); ok {
		if br, ok := b.(Breakable); ok {
			replacement = br.BrokenReplacement(pos, tx)
			if flags&SkipDrops == 0 {
				drops = br.Drops(pos, tx)
			}
		}
	}
	SetBlockState(tx, pos, replacement, flags|NotifyNeighbours)
	if registry.Name(oldID) != "minecraft:fire" {
		tx.BroadcastBlockBroken(pos, oldID)
	}
	return drops
}
