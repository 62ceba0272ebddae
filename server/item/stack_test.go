package item

import "testing"

func TestStackGrowClampsToMaxCount(t *testing.T) {
	s := NewStack("minecraft:stone", 60)
	grown := s.Grow(10)
	if grown.Count() != 64 {
		t.Fatalf("expected clamp to 64, got %d", grown.Count())
	}
}

func TestStackGrowBelowZeroBecomesEmpty(t *testing.T) {
	s := NewStack("minecraft:stone", 2)
	if shrunk := s.Grow(-5); !shrunk.Empty() {
		t.Fatalf("expected empty stack, got %v", shrunk)
	}
}

func TestStackComparable(t *testing.T) {
	a := NewStack("minecraft:dirt", 1)
	b := NewStack("minecraft:dirt", 32)
	c := NewStack("minecraft:stone", 1)
	if !a.Comparable(b) {
		t.Fatalf("expected same-item stacks to be comparable regardless of count")
	}
	if a.Comparable(c) {
		t.Fatalf("expected different items to be incomparable")
	}
	if Stack{}.Comparable(a) {
		t.Fatalf("expected empty stack to never be comparable")
	}
}

func TestStackHashChangesWithCount(t *testing.T) {
	a := NewStack("minecraft:dirt", 1)
	b := NewStack("minecraft:dirt", 2)
	if a.Hash() == b.Hash() {
		t.Fatalf("expected differing counts to hash differently")
	}
	if (Stack{}).Hash() != 0 {
		t.Fatalf("expected empty stack to hash to 0")
	}
}

func TestRegisterMaxStack(t *testing.T) {
	RegisterMaxStack("minecraft:ender_pearl", 16)
	s := NewStack("minecraft:ender_pearl", 16)
	if s.MaxCount() != 16 {
		t.Fatalf("expected registered max count 16, got %d", s.MaxCount())
	}
	if grown := s.Grow(1); grown.Count() != 16 {
		t.Fatalf("expected clamp at registered max, got %d", grown.Count())
	}
}
