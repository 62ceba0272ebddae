package inventory

import "github.com/ashenvale/voxel/server/item"

// maxRevision bounds the revision counter; it wraps rather than growing
// unboundedly, matching the client-side revision field's width.
const maxRevision = 32768

// ClickAction identifies which click-handling rule on_slot_click applies.
type ClickAction int

const (
	Pickup ClickAction = iota
	QuickMove
	Swap
	Clone
	Throw
	QuickCraft
	PickupAll
)

// Listener is notified of slot/cursor/revision changes a ScreenHandler
// emits to a connected viewer.
type Listener interface {
	SendSlotChange(index int, s item.Stack)
	SendCursor(s item.Stack)
	SendRevision(revision int)
}

// slotRef locates a ScreenHandler slot inside one of the Inventory objects
// composing the screen (e.g. the container itself, the player's main
// inventory, the hotbar).
type slotRef struct {
	inv   *Inventory
	index int
}

type trackedStack struct {
	stack item.Stack
	hash  uint64
}

// ScreenHandler implements the §4.6 container-sync/click protocol on top of
// one or more Inventory instances' slots.
type ScreenHandler struct {
	syncing  bool
	revision int
	cursor   item.Stack
	creative bool

	slots   []slotRef
	tracked []trackedStack
	prev    []trackedStack

	listeners []Listener

	quickMove func(h *ScreenHandler, index int) bool
	drag      dragState

	craftingGrid []int // slot indices forming the crafting grid, row-major
	gridWidth    int
	gridHeight   int
	output       int // index into slots of the recipe output, -1 if none
	recipes      []Recipe
	cached       *Recipe
}

// NewScreenHandler returns an empty ScreenHandler. quickMove implements the
// handler-specific shift-click routing rule (container<->hotbar<->main);
// pass nil if this screen has no quick-move zones.
func NewScreenHandler(quickMove func(h *ScreenHandler, index int) bool) *ScreenHandler {
	return &ScreenHandler{quickMove: quickMove, output: -1}
}

// AddListener registers l to receive slot/cursor/revision notifications.
func (h *ScreenHandler) AddListener(l Listener) { h.listeners = append(h.listeners, l) }

// AddSlot appends a slot backed by inv's slot at index, extending the
// tracking arrays with empty sentinels, and returns the new slot's id.
func (h *ScreenHandler) AddSlot(inv *Inventory, index int) int {
	h.slots = append(h.slots, slotRef{inv: inv, index: index})
	h.tracked = append(h.tracked, trackedStack{})
	h.prev = append(h.prev, trackedStack{})
	return len(h.slots) - 1
}

// SetCraftingGrid designates slot ids as a width x height crafting grid, in
// row-major order, with outputSlot as the (already added) recipe-output
// slot fed by it.
func (h *ScreenHandler) SetCraftingGrid(width, height int, cells []int, outputSlot int, recipes []Recipe) {
	h.gridWidth, h.gridHeight = width, height
	h.craftingGrid = cells
	h.output = outputSlot
	h.recipes = recipes
}

func (h *ScreenHandler) stackAt(slot int) item.Stack { r := h.slots[slot]; return r.inv.Slot(r.index) }
func (h *ScreenHandler) setStackAt(slot int, s item.Stack) { h.slots[slot].inv.SetSlot(h.slots[slot].index, s) }

func (h *ScreenHandler) disableSync() { h.syncing = false }
func (h *ScreenHandler) enableSync()  { h.syncing = true }

func (h *ScreenHandler) bumpRevision() { h.revision = (h.revision + 1) % maxRevision }

// SendContentUpdates pushes incremental slot/cursor updates for whatever
// changed since the last call, bumping the revision once per changed slot.
func (h *ScreenHandler) SendContentUpdates() {
	for i := range h.slots {
		current := h.stackAt(i)
		if !sameStack(current, h.tracked[i].stack) {
			h.tracked[i] = trackedStack{stack: current, hash: current.Hash()}
			for _, l := range h.listeners {
				l.SendSlotChange(i, current)
			}
		}
		if h.prev[i].hash != h.tracked[i].hash {
			h.bumpRevision()
			h.prev[i] = h.tracked[i]
			for _, l := range h.listeners {
				l.SendRevision(h.revision)
			}
		}
	}
	for _, l := range h.listeners {
		l.SendCursor(h.cursor)
	}
}

// SyncState emits a full resync: every slot, the cursor, and resets prev to
// the current tracked state. Used on open and on client-requested resync.
func (h *ScreenHandler) SyncState() {
	for i := range h.slots {
		current := h.stackAt(i)
		h.tracked[i] = trackedStack{stack: current, hash: current.Hash()}
		h.prev[i] = h.tracked[i]
		for _, l := range h.listeners {
			l.SendSlotChange(i, current)
		}
	}
	for _, l := range h.listeners {
		l.SendCursor(h.cursor)
		l.SendRevision(h.revision)
	}
}

// OnSlotClick dispatches a click according to action, mirroring the
// client's claimed revision check: a stale revision forces a full
// SyncState instead of an incremental update.
func (h *ScreenHandler) OnSlotClick(slotIndex, button int, action ClickAction, clientRevision int) {
	h.disableSync()
	switch action {
	case Pickup:
		h.pickup(slotIndex, button)
	case QuickMove:
		if h.quickMove != nil {
			for h.quickMove(h, slotIndex) {
			}
		}
	case Swap:
		h.swap(slotIndex, button)
	case Clone:
		if h.creative && slotIndex >= 0 && slotIndex < len(h.slots) {
			s := h.stackAt(slotIndex)
			if !s.Empty() {
				h.cursor = s.WithCount(s.MaxCount())
			}
		}
	case Throw:
		h.throw(slotIndex, button)
	case QuickCraft:
		h.quickCraft(slotIndex, button)
	case PickupAll:
		h.pickupAll(slotIndex)
	}
	h.enableSync()
	h.refillOutput()

	if clientRevision != h.revision {
		h.SyncState()
		return
	}
	h.SendContentUpdates()
}

func (h *ScreenHandler) pickup(slot, button int) {
	if slot < 0 || slot >= len(h.slots) {
		return
	}
	if slot == h.output {
		if h.cursor.Empty() {
			h.cursor = h.TakeOutput()
		}
		return
	}
	current := h.stackAt(slot)
	switch {
	case button == 1 && current.Empty():
		// right click on empty slot with a cursor stack: place one.
		if !h.cursor.Empty() {
			h.setStackAt(slot, h.cursor.WithCount(1))
			h.cursor = h.cursor.Grow(-1)
		}
	case current.Empty():
		h.setStackAt(slot, h.cursor)
		h.cursor = item.Stack{}
	case h.cursor.Empty():
		if button == 1 {
			taken := (current.Count() + 1) / 2
			h.cursor = current.WithCount(taken)
			h.setStackAt(slot, current.Grow(-taken))
		} else {
			h.cursor = current
			h.setStackAt(slot, item.Stack{})
		}
	case current.Comparable(h.cursor):
		n := 1
		if button == 0 {
			n = h.cursor.Count()
		}
		room := current.MaxCount() - current.Count()
		if n > room {
			n = room
		}
		h.setStackAt(slot, current.Grow(n))
		h.cursor = h.cursor.Grow(-n)
	default:
		h.setStackAt(slot, h.cursor)
		h.cursor = current
	}
}

func (h *ScreenHandler) swap(slot, hotbar int) {
	if slot < 0 || slot >= len(h.slots) || hotbar < 0 || hotbar >= len(h.slots) {
		return
	}
	a, b := h.stackAt(slot), h.stackAt(hotbar)
	h.setStackAt(slot, b)
	h.setStackAt(hotbar, a)
}

func (h *ScreenHandler) throw(slot, button int) {
	if !h.cursor.Empty() || slot < 0 || slot >= len(h.slots) {
		return
	}
	current := h.stackAt(slot)
	if current.Empty() {
		return
	}
	n := 1
	if button == 1 {
		n = current.Count()
	}
	h.setStackAt(slot, current.Grow(-n))
	// dropping the thrown stack into the world is the caller's concern;
	// the handler only mutates the source slot.
}

func (h *ScreenHandler) pickupAll(slot int) {
	if h.cursor.Empty() || slot < 0 || slot >= len(h.slots) {
		return
	}
	for i := range h.slots {
		if h.cursor.Count() >= h.cursor.MaxCount() {
			break
		}
		s := h.stackAt(i)
		if s.Empty() || !s.Comparable(h.cursor) {
			continue
		}
		room := h.cursor.MaxCount() - h.cursor.Count()
		n := s.Count()
		if n > room {
			n = room
		}
		h.cursor = h.cursor.Grow(n)
		h.setStackAt(i, s.Grow(-n))
	}
}

// dragState holds the in-progress QuickCraft drag set between phase-0 and
// phase-2 calls.
type dragState struct {
	active bool
	slots  []int
}

func (h *ScreenHandler) quickCraft(slot, phase int) {
	switch phase {
	case 0:
		h.drag = dragState{active: true}
	case 1:
		if h.drag.active {
			h.drag.slots = append(h.drag.slots, slot)
		}
	case 2:
		h.distributeDrag(slot)
		h.drag = dragState{}
	}
}

func (h *ScreenHandler) distributeDrag(mode int) {
	if !h.drag.active || h.cursor.Empty() || len(h.drag.slots) == 0 {
		return
	}
	switch mode {
	case 0: // equally
		per := h.cursor.Count() / len(h.drag.slots)
		if per == 0 {
			return
		}
		for _, slot := range h.drag.slots {
			h.applyDrag(slot, per)
		}
	case 1: // one by one
		for _, slot := range h.drag.slots {
			if h.cursor.Count() == 0 {
				break
			}
			h.applyDrag(slot, 1)
		}
	case 2: // fill, creative only
		if !h.creative {
			return
		}
		for _, slot := range h.drag.slots {
			h.setStackAt(slot, h.cursor.WithCount(h.cursor.MaxCount()))
		}
	}
}

func (h *ScreenHandler) applyDrag(slot, n int) {
	current := h.stackAt(slot)
	if !current.Empty() && !current.Comparable(h.cursor) {
		return
	}
	room := h.cursor.MaxCount() - current.Count()
	if n > room {
		n = room
	}
	if n <= 0 {
		return
	}
	if current.Empty() {
		h.setStackAt(slot, h.cursor.WithCount(n))
	} else {
		h.setStackAt(slot, current.Grow(n))
	}
	h.cursor = h.cursor.Grow(-n)
}

func sameStack(a, b item.Stack) bool {
	return a.Name() == b.Name() && a.Count() == b.Count()
}
