package session

import (
	"testing"

	"github.com/ashenvale/voxel/server/world"
)

type recordingSink struct {
	starts int
	chunks []int
	ends   []int
}

func (s *recordingSink) SendBatchStart()      { s.starts++ }
func (s *recordingSink) SendChunk(c int)      { s.chunks = append(s.chunks, c) }
func (s *recordingSink) SendBatchEnd(n int)   { s.ends = append(s.ends, n) }

func TestChunkQueueInitialSendsOneBatchThenWaits(t *testing.T) {
	q := NewChunkQueue[int](2)
	for i := 0; i < 5; i++ {
		q.Push(world.ChunkPos{int32(i), 0}, i)
	}

	sink := &recordingSink{}
	q.Tick(sink)
	if sink.starts != 1 || len(sink.chunks) != 2 || sink.ends[0] != 2 {
		t.Fatalf("unexpected first batch: %+v", sink)
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 left in queue, got %d", q.Len())
	}

	// Initial -> Waiting after the first batch: no further batch until ack.
	q.Tick(sink)
	if sink.starts != 1 {
		t.Fatalf("expected no batch while waiting for ack, got %d starts", sink.starts)
	}
}

func TestChunkQueueAcknowledgeResumesAndRetunes(t *testing.T) {
	q := NewChunkQueue[int](2)
	for i := 0; i < 5; i++ {
		q.Push(world.ChunkPos{int32(i), 0}, i)
	}
	sink := &recordingSink{}
	q.Tick(sink) // Initial -> Waiting, 2 sent

	q.Acknowledge(3.2) // rounds up to 4, resets to Count(0)
	q.Tick(sink)
	if sink.starts != 2 || sink.ends[1] != 3 {
		t.Fatalf("expected second batch of 3 (queue exhausted), got %+v", sink)
	}
	if q.Len() != 0 {
		t.Fatalf("expected queue drained, got %d left", q.Len())
	}
}

func TestChunkQueuePausesAfterTenUnacknowledgedBatches(t *testing.T) {
	q := NewChunkQueue[int](1)
	for i := 0; i < 20; i++ {
		q.Push(world.ChunkPos{int32(i), 0}, i)
	}
	q.Acknowledge(1) // Count(0), available immediately

	sink := &recordingSink{}
	for i := 0; i < BatchesWithoutAckUntilPause; i++ {
		q.Tick(sink)
	}
	if sink.starts != BatchesWithoutAckUntilPause {
		t.Fatalf("expected %d batches sent, got %d", BatchesWithoutAckUntilPause, sink.starts)
	}

	// The 11th tick should be refused: Count(10) is not < 10.
	q.Tick(sink)
	if sink.starts != BatchesWithoutAckUntilPause {
		t.Fatalf("expected send to be paused at the cap, got %d starts", sink.starts)
	}
}

func TestChunkQueueEmptyNeverSends(t *testing.T) {
	q := NewChunkQueue[int](4)
	sink := &recordingSink{}
	q.Tick(sink)
	if sink.starts != 0 {
		t.Fatalf("expected no batch for an empty queue")
	}
}
