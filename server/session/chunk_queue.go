// Package session implements per-client state that sits between the world
// simulation and a connected client: the chunk-streaming credit/ack pipeline
// (§4.5), kept independent of any specific wire protocol.
package session

import (
	"math"

	"github.com/ashenvale/voxel/server/world"
)

// BatchesWithoutAckUntilPause is the number of un-acknowledged batches a
// client may have outstanding before the server stops sending more
// (vanilla: 10).
const BatchesWithoutAckUntilPause = 10

type batchState int

const (
	batchInitial batchState = iota
	batchWaiting
	batchCount
)

// batchCredit tracks how many chunk batches have been sent since the last
// client acknowledgement.
type batchCredit struct {
	state batchState
	count int
}

func (b batchCredit) available() bool {
	switch b.state {
	case batchInitial:
		return true
	case batchCount:
		return b.count < BatchesWithoutAckUntilPause
	default: // batchWaiting
		return false
	}
}

// sent advances the credit state after one batch has gone out: Initial
// moves to Waiting (awaiting the client's first ack), Count(k) becomes
// Count(k+1).
func (b batchCredit) sent() batchCredit {
	switch b.state {
	case batchInitial:
		return batchCredit{state: batchWaiting}
	case batchCount:
		return batchCredit{state: batchCount, count: b.count + 1}
	default:
		return b
	}
}

func ackCredit() batchCredit { return batchCredit{state: batchCount, count: 0} }

type chunkEntry[T any] struct {
	pos     world.ChunkPos
	payload T
}

// BatchSink receives the three framing events a ChunkQueue.Tick call
// produces: a batch-start marker, one payload per chunk in the batch, and a
// batch-end carrying the batch size.
type BatchSink[T any] interface {
	SendBatchStart()
	SendChunk(T)
	SendBatchEnd(count int)
}

// ChunkQueue implements the per-client chunk-streaming credit/ack state
// machine (§4.5): a FIFO of (position, payload) pairs gated by a shared
// batch-credit counter. Block-chunk and entity-chunk streams each get their
// own independent ChunkQueue.
type ChunkQueue[T any] struct {
	chunksPerTick int
	queue         []chunkEntry[T]
	credit        batchCredit
}

// NewChunkQueue returns an empty ChunkQueue that sends up to chunksPerTick
// payloads per batch until told otherwise by Acknowledge.
func NewChunkQueue[T any](chunksPerTick int) *ChunkQueue[T] {
	return &ChunkQueue[T]{chunksPerTick: chunksPerTick}
}

// Push enqueues payload for pos at the back of the queue.
func (q *ChunkQueue[T]) Push(pos world.ChunkPos, payload T) {
	q.queue = append(q.queue, chunkEntry[T]{pos: pos, payload: payload})
}

// Len returns the number of payloads still queued.
func (q *ChunkQueue[T]) Len() int { return len(q.queue) }

// CanSend reports whether the credit state allows another batch and the
// queue has something to send.
func (q *ChunkQueue[T]) CanSend() bool {
	return q.credit.available() && len(q.queue) > 0
}

// next pops up to chunksPerTick queued payloads and advances the credit
// state as if a batch had just been sent.
func (q *ChunkQueue[T]) next() []T {
	n := min(len(q.queue), q.chunksPerTick)
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = q.queue[i].payload
	}
	q.queue = q.queue[n:]
	q.credit = q.credit.sent()
	return out
}

// Tick pops a batch and drives sink through batch-start, one SendChunk per
// payload, then batch-end, if CanSend reports true. It is a no-op
// otherwise.
func (q *ChunkQueue[T]) Tick(sink BatchSink[T]) {
	if !q.CanSend() {
		return
	}
	batch := q.next()
	sink.SendBatchStart()
	for _, c := range batch {
		sink.SendChunk(c)
	}
	sink.SendBatchEnd(len(batch))
}

// Acknowledge resets the credit counter to Count(0) and adopts the
// client-reported sustainable rate, rounded up.
func (q *ChunkQueue[T]) Acknowledge(reportedChunksPerTick float64) {
	q.credit = ackCredit()
	q.chunksPerTick = int(math.Ceil(reportedChunksPerTick))
}
