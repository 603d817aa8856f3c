package core

import (
	"sync"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// Queue names. Each is an independent FIFO sequence.
const (
	QueueStandard = "standard"
	QueueElite    = "elite"
)

// QueueStore holds the two matchmaking queues. Every compound operation on a
// queue runs under that queue's own mutex, so the two queues never block each
// other.
type QueueStore struct {
	queues map[string]*queue
}

type queue struct {
	mu      sync.Mutex
	entries []models.QueueEntry
}

// NewQueueStore creates the standard and elite queues.
func NewQueueStore() *QueueStore {
	return &QueueStore{queues: map[string]*queue{
		QueueStandard: {},
		QueueElite:    {},
	}}
}

func (s *QueueStore) get(name string) *queue {
	q, ok := s.queues[name]
	if !ok {
		q = s.queues[QueueStandard]
	}
	return q
}

// Enqueue appends the agent and returns its 1-based position. Enqueueing an
// agent already present is a no-op returning the existing position.
func (s *QueueStore) Enqueue(name, agentID string, now int64) int {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.AgentID == agentID {
			return i + 1
		}
	}
	q.entries = append(q.entries, models.QueueEntry{AgentID: agentID, JoinedAt: now})
	return len(q.entries)
}

// Remove deletes the agent's entry, preserving the order of survivors.
func (s *QueueStore) Remove(name, agentID string) {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(agentID)
}

func (q *queue) removeLocked(agentID string) {
	for i, e := range q.entries {
		if e.AgentID == agentID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// PositionOf returns the agent's 1-based position, or 0 if not queued.
// Pure read: no eviction side effects.
func (s *QueueStore) PositionOf(name, agentID string) int {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.AgentID == agentID {
			return i + 1
		}
	}
	return 0
}

// Entries returns a copy of the queue in FIFO order.
func (s *QueueStore) Entries(name string) []models.QueueEntry {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.QueueEntry(nil), q.entries...)
}

// Len returns the queue length.
func (s *QueueStore) Len(name string) int {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Sweep evicts entries older than maxAge, keeping the relative order of
// survivors. Runs on mutating operations and the background tick, never on
// pure reads.
func (s *QueueStore) Sweep(name string, maxAge time.Duration, now int64) int {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := now - maxAge.Milliseconds()
	fresh := q.entries[:0]
	for _, e := range q.entries {
		// strictly older than maxAge; an entry aged exactly maxAge survives
		if e.JoinedAt >= cutoff {
			fresh = append(fresh, e)
		}
	}
	evicted := len(q.entries) - len(fresh)
	q.entries = fresh
	return evicted
}

// Flush clears every queue. Administrative reset only.
func (s *QueueStore) Flush() {
	for _, q := range s.queues {
		q.mu.Lock()
		q.entries = nil
		q.mu.Unlock()
	}
}

// withLock runs fn while holding the named queue's mutex. The matchmaker uses
// this to make its scan-and-pair sequence indivisible relative to other
// requests on the same queue.
func (s *QueueStore) withLock(name string, fn func(q *queue)) {
	q := s.get(name)
	q.mu.Lock()
	defer q.mu.Unlock()
	fn(q)
}
