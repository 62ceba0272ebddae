// Package inventory implements slot storage and the screen-handler click
// protocol (§4.6): container sync, tracked-stack change detection, and
// click-action dispatch, built on top of item.Stack slots.
package inventory

import (
	"fmt"
	"sync"

	"github.com/ashenvale/voxel/server/item"
)

// Handler reacts to changes made to an Inventory's slots. Implementations
// may veto a change by calling Context.Cancel.
type Handler interface {
	HandleTake(ctx *Context, slot int, it item.Stack)
	HandlePlace(ctx *Context, slot int, it item.Stack)
}

// NopHandler is a Handler that never vetoes anything.
type NopHandler struct{}

func (NopHandler) HandleTake(*Context, int, item.Stack)  {}
func (NopHandler) HandlePlace(*Context, int, item.Stack) {}

// Context is passed to Handler methods so they can cancel the change in
// progress.
type Context struct {
	cancelled bool
}

// Cancel vetoes the change currently being handled.
func (c *Context) Cancel() { c.cancelled = true }

// Inventory is a fixed-size array of item.Stack slots.
type Inventory struct {
	mu      sync.RWMutex
	slots   []item.Stack
	handler Handler
}

// New returns an Inventory with size slots, all empty.
func New(size int) *Inventory {
	inv := &Inventory{slots: make([]item.Stack, size), handler: NopHandler{}}
	inv.handler = wrapInventoryHandler(inv, inv.handler)
	return inv
}

// Size returns the number of slots in the Inventory.
func (inv *Inventory) Size() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.slots)
}

// Slot returns the Stack held at index.
func (inv *Inventory) Slot(index int) item.Stack {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.slots[index]
}

// SetSlot forcibly sets the Stack at index, bypassing the Handler. Used by
// the screen-handler framework, which already runs changes through
// Handler-equivalent click-action semantics.
func (inv *Inventory) SetSlot(index int, s item.Stack) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if index < 0 || index >= len(inv.slots) {
		panic(fmt.Sprintf("inventory: slot index %d out of range [0,%d)", index, len(inv.slots)))
	}
	inv.slots[index] = s
}

// Handle installs h as the Inventory's Handler, after running it through
// any wrapper installed with SetHandlerWrap.
func (inv *Inventory) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.handler = wrapInventoryHandler(inv, h)
}

// Take sets the Stack at index to empty, notifying the Handler. It returns
// false if the Handler vetoes the take.
func (inv *Inventory) Take(index int) (item.Stack, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	s := inv.slots[index]
	if s.Empty() {
		return s, true
	}
	ctx := &Context{}
	inv.handler.HandleTake(ctx, index, s)
	if ctx.cancelled {
		return item.Stack{}, false
	}
	inv.slots[index] = item.Stack{}
	return s, true
}

// Place sets the Stack at index, notifying the Handler. It returns false if
// the Handler vetoes the placement, in which case the slot is unchanged.
func (inv *Inventory) Place(index int, s item.Stack) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	ctx := &Context{}
	inv.handler.HandlePlace(ctx, index, s)
	if ctx.cancelled {
		return false
	}
	inv.slots[index] = s
	return true
}

// Clear empties every slot and returns the Stacks that were removed.
func (inv *Inventory) Clear() []item.Stack {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]item.Stack, 0, len(inv.slots))
	for i, s := range inv.slots {
		if !s.Empty() {
			out = append(out, s)
		}
		inv.slots[i] = item.Stack{}
	}
	return out
}

// All returns a copy of every slot's Stack, in slot order.
func (inv *Inventory) All() []item.Stack {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]item.Stack, len(inv.slots))
	copy(out, inv.slots)
	return out
}
