package block

import (
	"math/rand/v2"
	"testing"

	"github.com/ashenvale/voxel/server/block/cube"
)

// fakeTx is a minimal in-memory Tx used to exercise set_block_state and
// block callbacks without a full world.
type fakeTx struct {
	registry *Registry
	blocks   map[cube.Pos]uint32
	broken   []cube.Pos
	rng      *rand.Rand
}

func newFakeTx(r *Registry) *fakeTx {
	return &fakeTx{registry: r, blocks: make(map[cube.Pos]uint32), rng: rand.New(rand.NewPCG(1, 2))}
}

func (f *fakeTx) Block(pos cube.Pos) uint32 {
	if rid, ok := f.blocks[pos]; ok {
		return rid
	}
	return AirRuntimeID
}
func (f *fakeTx) SetRaw(pos cube.Pos, rid uint32)                                { f.blocks[pos] = rid }
func (f *fakeTx) ScheduleBlockTick(cube.Pos, uint32, uint16, int8)               {}
func (f *fakeTx) ScheduleFluidTick(cube.Pos, uint32, uint16, int8)               {}
func (f *fakeTx) Rand() *rand.Rand                                              { return f.rng }
func (f *fakeTx) BroadcastBlockBroken(pos cube.Pos, _ uint32)                   { f.broken = append(f.broken, pos) }
func (f *fakeTx) Registry() *Registry                                           { return f.registry }

func TestCandleUseTogglesLitPreservingAdditional(t *testing.T) {
	r := DefaultRegistry()
	tx := newFakeTx(r)
	pos := cube.Pos{0, 64, 0}

	rid, ok := r.RuntimeID(candleName(Candle{Additional: 2}))
	if !ok {
		t.Fatalf("candle variant not registered")
	}
	SetBlockState(tx, pos, rid, NotifyNeighbours)

	b, _ := r.Lookup(tx.Block(pos))
	candle := b.(Candle)
	if !candle.Use(pos, tx) {
		t.Fatalf("expected use to succeed")
	}

	b, _ = r.Lookup(tx.Block(pos))
	lit := b.(Candle)
	if !lit.Lit {
		t.Fatalf("expected candle to be lit after use")
	}
	if lit.Additional != 2 {
		t.Fatalf("expected additional candles to be preserved, got %d", lit.Additional)
	}
}

func TestCandleBreaksWithoutSupport(t *testing.T) {
	r := DefaultRegistry()
	tx := newFakeTx(r)
	pos := cube.Pos{0, 64, 0}

	rid, _ := r.RuntimeID(candleName(Candle{}))
	tx.SetRaw(pos, rid)

	b, _ := r.Lookup(rid)
	b.(Candle).NeighbourUpdateTick(pos, pos.Side(cube.FaceDown), tx)

	if tx.Block(pos) != AirRuntimeID {
		t.Fatalf("expected candle to break to air, got %d", tx.Block(pos))
	}
}
