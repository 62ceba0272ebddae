// Package item defines the minimal item stack shape the block loot table
// and inventory/screen-handler framework operate on: a name, a count and a
// stack limit, without the full Bedrock item catalogue.
package item

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const defaultMaxCount = 64

var maxStackSizes = map[string]int{}

// RegisterMaxStack overrides the stack limit for name; items not registered
// default to 64, the common case.
func RegisterMaxStack(name string, max int) {
	maxStackSizes[name] = max
}

// Stack is an immutable quantity of a single named item. The zero Stack is
// empty.
type Stack struct {
	name  string
	count int
}

// NewStack returns a Stack of count copies of name. A non-positive count or
// empty name produces the empty Stack.
func NewStack(name string, count int) Stack {
	if name == "" || count <= 0 {
		return Stack{}
	}
	return Stack{name: name, count: count}
}

// Empty reports whether the Stack holds no items.
func (s Stack) Empty() bool { return s.name == "" || s.count <= 0 }

// Name returns the item's identifier, or "" for the empty Stack.
func (s Stack) Name() string { return s.name }

// Count returns the number of items in the Stack.
func (s Stack) Count() int { return s.count }

// MaxCount returns the stack limit for this Stack's item.
func (s Stack) MaxCount() int {
	if max, ok := maxStackSizes[s.name]; ok {
		return max
	}
	return defaultMaxCount
}

// Comparable reports whether s and other hold the same item, ignoring
// count, so that two stacks of it can be merged.
func (s Stack) Comparable(other Stack) bool {
	if s.Empty() || other.Empty() {
		return false
	}
	return s.name == other.name
}

// Grow returns a Stack with n more items than s (n may be negative). The
// result is clamped to [0, MaxCount()]; a zero-or-below result is the empty
// Stack.
func (s Stack) Grow(n int) Stack {
	count := s.count + n
	if count <= 0 {
		return Stack{}
	}
	if max := s.MaxCount(); count > max {
		count = max
	}
	return Stack{name: s.name, count: count}
}

// WithCount returns a copy of s holding exactly n items.
func (s Stack) WithCount(n int) Stack {
	if s.Empty() || n <= 0 {
		return Stack{}
	}
	return Stack{name: s.name, count: n}
}

// Hash returns a content hash of s, used by the inventory framework to
// detect client/server tracked-stack divergence without comparing full
// stack values.
func (s Stack) Hash() uint64 {
	if s.Empty() {
		return 0
	}
	return xxhash.Sum64String(fmt.Sprintf("%s:%d", s.name, s.count))
}

func (s Stack) String() string {
	if s.Empty() {
		return "<empty>"
	}
	return fmt.Sprintf("%dx %s", s.count, s.name)
}
