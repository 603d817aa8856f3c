package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueEnqueueFIFO(t *testing.T) {
	s := NewQueueStore()

	assert.Equal(t, 1, s.Enqueue(QueueStandard, "a", 100))
	assert.Equal(t, 2, s.Enqueue(QueueStandard, "b", 200))
	assert.Equal(t, 3, s.Enqueue(QueueStandard, "c", 300))

	// re-enqueue is a no-op reporting the held position
	assert.Equal(t, 1, s.Enqueue(QueueStandard, "a", 400))
	assert.Equal(t, 3, s.Len(QueueStandard))
}

func TestQueueRemovePreservesOrder(t *testing.T) {
	s := NewQueueStore()
	s.Enqueue(QueueStandard, "a", 100)
	s.Enqueue(QueueStandard, "b", 200)
	s.Enqueue(QueueStandard, "c", 300)

	s.Remove(QueueStandard, "b")

	entries := s.Entries(QueueStandard)
	assert.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].AgentID)
	assert.Equal(t, "c", entries[1].AgentID)
	assert.Equal(t, 2, s.PositionOf(QueueStandard, "c"))
}

func TestQueuesAreIndependent(t *testing.T) {
	s := NewQueueStore()
	s.Enqueue(QueueStandard, "a", 100)
	s.Enqueue(QueueElite, "b", 100)

	assert.Equal(t, 1, s.Len(QueueStandard))
	assert.Equal(t, 1, s.Len(QueueElite))
	assert.Equal(t, 0, s.PositionOf(QueueStandard, "b"))
	assert.Equal(t, 0, s.PositionOf(QueueElite, "a"))
}

func TestQueueSweepEvictsStaleEntries(t *testing.T) {
	s := NewQueueStore()
	s.Enqueue(QueueStandard, "stale", 0)
	s.Enqueue(QueueStandard, "edge", 1) // aged exactly the max
	s.Enqueue(QueueStandard, "fresh", 4*time.Minute.Milliseconds())

	now := 5*time.Minute.Milliseconds() + 1
	evicted := s.Sweep(QueueStandard, 5*time.Minute, now)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 0, s.PositionOf(QueueStandard, "stale"))
	assert.Equal(t, 1, s.PositionOf(QueueStandard, "edge"))
	assert.Equal(t, 2, s.PositionOf(QueueStandard, "fresh"))
}

func TestQueuePositionOfIsPureRead(t *testing.T) {
	s := NewQueueStore()
	s.Enqueue(QueueStandard, "old", 0)

	// A very late read must not evict on its own.
	assert.Equal(t, 1, s.PositionOf(QueueStandard, "old"))
	assert.Equal(t, 1, s.Len(QueueStandard))
}

func TestQueueFlush(t *testing.T) {
	s := NewQueueStore()
	s.Enqueue(QueueStandard, "a", 100)
	s.Enqueue(QueueElite, "b", 100)

	s.Flush()

	assert.Equal(t, 0, s.Len(QueueStandard))
	assert.Equal(t, 0, s.Len(QueueElite))
}
