package inventory

import "github.com/ashenvale/voxel/server/item"

// RecipeKind selects which matching rule recipeMatches applies.
type RecipeKind int

const (
	Shaped RecipeKind = iota
	Shapeless
	Transmute
	DecoratedPot
)

// Recipe describes one crafting-table entry. Pattern is row-major,
// Width*Height long, with "" marking an empty cell; Ingredients is the
// shapeless multiset; Input/Material back a Transmute recipe.
type Recipe struct {
	Kind        RecipeKind
	Width       int
	Height      int
	Pattern     []string
	Ingredients []string
	Input       string
	Material    string
	Result      item.Stack
}

// boundingBox returns the tight rectangle of non-empty cells in a
// width*height grid of item names ("" = empty), and whether any cell was
// non-empty at all.
func boundingBox(grid []string, width, height int) (minX, minY, maxX, maxY int, ok bool) {
	minX, minY = width, height
	maxX, maxY = -1, -1
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if grid[y*width+x] == "" {
				continue
			}
			ok = true
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return
}

// matchShaped reports whether pattern (padded to w*h) matches grid's tight
// bounding box, trying a horizontal mirror if the direct match fails and
// the pattern is asymmetric.
func matchShaped(r Recipe, grid []string, width, height int) bool {
	minX, minY, maxX, maxY, ok := boundingBox(grid, width, height)
	if !ok {
		return false
	}
	bw, bh := maxX-minX+1, maxY-minY+1
	if bw != r.Width || bh != r.Height {
		return false
	}
	if patternMatches(r.Pattern, r.Width, r.Height, grid, width, minX, minY, false) {
		return true
	}
	return patternMatches(r.Pattern, r.Width, r.Height, grid, width, minX, minY, true)
}

func patternMatches(pattern []string, pw, ph int, grid []string, gridWidth, offX, offY int, mirrored bool) bool {
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			px := x
			if mirrored {
				px = pw - 1 - x
			}
			want := pattern[y*pw+px]
			got := grid[(offY+y)*gridWidth+(offX+x)]
			if want != got {
				return false
			}
		}
	}
	return true
}

func matchShapeless(r Recipe, grid []string) bool {
	remaining := append([]string(nil), r.Ingredients...)
	for _, cell := range grid {
		if cell == "" {
			continue
		}
		found := false
		for i, ing := range remaining {
			if ing == cell {
				remaining = append(remaining[:i], remaining[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(remaining) == 0
}

func matchTransmute(r Recipe, grid []string) bool {
	present := make([]string, 0, 2)
	for _, cell := range grid {
		if cell != "" {
			present = append(present, cell)
		}
	}
	if len(present) != 2 {
		return false
	}
	want := map[string]bool{r.Input: true, r.Material: true}
	return want[present[0]] && want[present[1]]
}

// matchDecoratedPot reports whether the 3x3 grid's decoration ingredients
// occupy exactly the four cross positions (indices 1, 3, 5, 7) and nowhere
// else.
func matchDecoratedPot(grid []string, isDecoration func(string) bool) bool {
	if len(grid) != 9 {
		return false
	}
	cross := map[int]bool{1: true, 3: true, 5: true, 7: true}
	for i, cell := range grid {
		if cross[i] {
			if cell == "" || !isDecoration(cell) {
				return false
			}
		} else if cell != "" {
			return false
		}
	}
	return true
}

// matchRecipe tries cached first, then linearly searches recipes, returning
// the first match's result.
func matchRecipe(cached *Recipe, recipes []Recipe, grid []string, width, height int) (*Recipe, item.Stack) {
	if cached != nil && recipeMatches(*cached, grid, width, height) {
		return cached, cached.Result
	}
	for i := range recipes {
		r := recipes[i]
		if recipeMatches(r, grid, width, height) {
			return &recipes[i], r.Result
		}
	}
	return nil, item.Stack{}
}

func recipeMatches(r Recipe, grid []string, width, height int) bool {
	switch r.Kind {
	case Shaped:
		return matchShaped(r, grid, width, height)
	case Shapeless:
		return matchShapeless(r, grid)
	case Transmute:
		return matchTransmute(r, grid)
	case DecoratedPot:
		return matchDecoratedPot(grid, func(name string) bool { return name == r.Material })
	}
	return false
}

// refillOutput recomputes the recipe-output slot from the current crafting
// grid contents, caching the matched recipe for next time.
func (h *ScreenHandler) refillOutput() {
	if h.output < 0 || len(h.craftingGrid) == 0 {
		return
	}
	names := make([]string, len(h.craftingGrid))
	for i, slot := range h.craftingGrid {
		names[i] = h.stackAt(slot).Name()
	}
	matched, result := matchRecipe(h.cached, h.recipes, names, h.gridWidth, h.gridHeight)
	h.cached = matched
	h.setStackAt(h.output, result)
}

// TakeOutput implements the recipe output slot's take rule: decrement each
// input cell by one and re-match to refill the output.
func (h *ScreenHandler) TakeOutput() item.Stack {
	if h.output < 0 {
		return item.Stack{}
	}
	out := h.stackAt(h.output)
	if out.Empty() {
		return out
	}
	for _, slot := range h.craftingGrid {
		current := h.stackAt(slot)
		if !current.Empty() {
			h.setStackAt(slot, current.Grow(-1))
		}
	}
	h.refillOutput()
	return out
}
