package inventory

import (
	"testing"

	"github.com/ashenvale/voxel/server/item"
)

type fakeListener struct {
	slotChanges []int
	revisions   []int
}

func (l *fakeListener) SendSlotChange(index int, s item.Stack) { l.slotChanges = append(l.slotChanges, index) }
func (l *fakeListener) SendCursor(item.Stack)                  {}
func (l *fakeListener) SendRevision(rev int)                   { l.revisions = append(l.revisions, rev) }

func TestScreenHandlerPickupSwapsCursor(t *testing.T) {
	inv := New(9)
	inv.SetSlot(0, item.NewStack("minecraft:stone", 10))

	h := NewScreenHandler(nil)
	h.AddSlot(inv, 0)
	l := &fakeListener{}
	h.AddListener(l)
	h.SyncState()

	h.OnSlotClick(0, 0, Pickup, h.revision)
	if !h.cursor.Comparable(item.NewStack("minecraft:stone", 1)) || h.cursor.Count() != 10 {
		t.Fatalf("expected cursor to hold the full stack, got %v", h.cursor)
	}
	if !inv.Slot(0).Empty() {
		t.Fatalf("expected source slot emptied, got %v", inv.Slot(0))
	}
}

func TestScreenHandlerPickupMergesMatchingStacks(t *testing.T) {
	inv := New(9)
	inv.SetSlot(0, item.NewStack("minecraft:stone", 10))
	inv.SetSlot(1, item.NewStack("minecraft:stone", 5))

	h := NewScreenHandler(nil)
	h.AddSlot(inv, 0)
	h.AddSlot(inv, 1)
	h.SyncState()

	h.OnSlotClick(0, 0, Pickup, h.revision) // take slot 0 fully into cursor
	h.OnSlotClick(1, 0, Pickup, h.revision) // merge cursor into slot 1

	if inv.Slot(1).Count() != 15 {
		t.Fatalf("expected merged stack of 15, got %d", inv.Slot(1).Count())
	}
	if !h.cursor.Empty() {
		t.Fatalf("expected cursor drained into slot, got %v", h.cursor)
	}
}

func TestScreenHandlerStaleRevisionForcesResync(t *testing.T) {
	inv := New(1)
	inv.SetSlot(0, item.NewStack("minecraft:stone", 1))

	h := NewScreenHandler(nil)
	h.AddSlot(inv, 0)
	l := &fakeListener{}
	h.AddListener(l)
	h.SyncState()

	before := len(l.slotChanges)
	h.OnSlotClick(0, 0, Pickup, h.revision+5) // deliberately stale
	if len(l.slotChanges) <= before {
		t.Fatalf("expected a full resync to re-emit every slot")
	}
}

func TestRecipeShapedMatchAndRefill(t *testing.T) {
	inv := New(10)
	grid := []int{0, 1, 2, 3}
	output := 4

	recipes := []Recipe{{
		Kind:    Shaped,
		Width:   2,
		Height:  1,
		Pattern: []string{"minecraft:stick", "minecraft:stick"},
		Result:  item.NewStack("minecraft:torch", 4),
	}}

	h := NewScreenHandler(nil)
	for i := 0; i < 5; i++ {
		h.AddSlot(inv, i)
	}
	h.SetCraftingGrid(2, 2, grid, output, recipes)

	inv.SetSlot(0, item.NewStack("minecraft:stick", 1))
	inv.SetSlot(1, item.NewStack("minecraft:stick", 1))
	h.refillOutput()

	if inv.Slot(4).Name() != "minecraft:torch" || inv.Slot(4).Count() != 4 {
		t.Fatalf("expected matched torch output, got %v", inv.Slot(4))
	}

	taken := h.TakeOutput()
	if taken.Count() != 4 {
		t.Fatalf("expected to take the full output stack, got %v", taken)
	}
	if !inv.Slot(0).Empty() || !inv.Slot(1).Empty() {
		t.Fatalf("expected input cells consumed by one, got %v / %v", inv.Slot(0), inv.Slot(1))
	}
	if !inv.Slot(4).Empty() {
		t.Fatalf("expected output cleared once inputs are exhausted, got %v", inv.Slot(4))
	}
}

func TestRecipeShapelessIgnoresArrangement(t *testing.T) {
	recipes := []Recipe{{
		Kind:        Shapeless,
		Ingredients: []string{"minecraft:wheat", "minecraft:wheat", "minecraft:wheat"},
		Result:      item.NewStack("minecraft:bread", 1),
	}}
	grid := []string{"minecraft:wheat", "", "minecraft:wheat", "minecraft:wheat"}
	matched, result := matchRecipe(nil, recipes, grid, 2, 2)
	if matched == nil || result.Name() != "minecraft:bread" {
		t.Fatalf("expected shapeless match regardless of position, got %v", result)
	}
}
