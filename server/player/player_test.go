package player

import (
	"testing"
	"time"

	"github.com/ashenvale/voxel/server/world"
	"github.com/ashenvale/voxel/server/world/chunk"
	"github.com/go-gl/mathgl/mgl64"
)

type recordingSink struct {
	starts int
	chunks int
}

func (s *recordingSink) SendBatchStart()        { s.starts++ }
func (s *recordingSink) SendChunk(*chunk.Chunk) { s.chunks++ }
func (s *recordingSink) SendBatchEnd(int)       {}

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.Config{Dim: world.Overworld, Provider: world.NopProvider{}, Generator: world.NopGenerator{}}.New()
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Fatalf("failed closing world: %v", err)
		}
	})
	return w
}

func TestPlayerTickStreamsLoadedChunks(t *testing.T) {
	w := newTestWorld(t)
	p := New("Steve", w, 1, 4)
	t.Cleanup(func() {
		<-w.Exec(func(tx *world.Tx) { p.Close() })
	})

	<-w.Exec(func(tx *world.Tx) { p.Move(tx, mgl64.Vec3{}) })

	sink := &recordingSink{}
	deadline := time.Now().Add(5 * time.Second)
	for sink.starts == 0 && time.Now().Before(deadline) {
		<-w.Exec(func(tx *world.Tx) { p.Tick(tx, 32, sink) })
	}
	if sink.starts == 0 {
		t.Fatalf("expected at least one chunk batch to be streamed")
	}
}

func TestPlayerInventoryStartsEmpty(t *testing.T) {
	w := newTestWorld(t)
	p := New("Alex", w, 1, 4)
	t.Cleanup(func() {
		<-w.Exec(func(tx *world.Tx) { p.Close() })
	})

	if size := p.Inventory().Size(); size != 36 {
		t.Fatalf("expected a 36-slot inventory, got %d", size)
	}
	for i := 0; i < p.Inventory().Size(); i++ {
		if !p.Inventory().Slot(i).Empty() {
			t.Fatalf("expected slot %d to start empty", i)
		}
	}
}

func TestPlayerHandleQuitOnClose(t *testing.T) {
	w := newTestWorld(t)
	p := New("Notch", w, 1, 4)

	quit := make(chan struct{}, 1)
	p.Handle(quitHandler{quit: quit})

	<-w.Exec(func(tx *world.Tx) { p.Close() })
	select {
	case <-quit:
	default:
		t.Fatalf("expected HandleQuit to be called on Close")
	}
}

type quitHandler struct {
	NopHandler
	quit chan struct{}
}

func (h quitHandler) HandleQuit(*Player) { h.quit <- struct{}{} }
