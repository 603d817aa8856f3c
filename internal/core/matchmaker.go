package core

import (
	"context"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// EligibilityChecker gates the elite queue on an external token-balance
// lookup. Implementations are expected to be fast and cacheable; the
// matchmaker calls it outside every critical section.
type EligibilityChecker interface {
	IsEligible(ctx context.Context, walletAddress string) (bool, error)
}

// MatchResult is the outcome of request_match / poll_match. Exactly one of
// Matched and Queued is set for a successful request; a poll may report
// neither (not matched, not queued).
type MatchResult struct {
	Matched   bool            `json:"matched"`
	RoomID    string          `json:"room_id,omitempty"`
	Partner   models.AgentRef `json:"partner,omitempty"`
	Initiator bool            `json:"initiator,omitempty"`
	Elite     bool            `json:"elite,omitempty"`
	Queued    bool            `json:"queued"`
	Position  int             `json:"position,omitempty"` // 1-based

	// Fresh is true when this call created the room, false for an
	// idempotent re-poll of an existing match. Not part of the wire shape.
	Fresh bool `json:"-"`
}

// Matchmaker pairs a joining agent with the earliest-joined eligible waiter,
// or enqueues them. All queue scanning and mutation for one request happens
// under that queue's lock; room creation is delegated to the registry's
// atomic TryCreate so the check-then-act race between concurrent requests
// cannot double-match.
type Matchmaker struct {
	queues      *QueueStore
	blocklist   *Blocklist
	registry    *Registry
	directory   *Directory
	eligibility EligibilityChecker

	queueTimeout time.Duration
	now          func() int64
}

// NewMatchmaker wires the matchmaker over its stores.
func NewMatchmaker(queues *QueueStore, blocklist *Blocklist, registry *Registry, directory *Directory, eligibility EligibilityChecker, queueTimeout time.Duration) *Matchmaker {
	return &Matchmaker{
		queues:       queues,
		blocklist:    blocklist,
		registry:     registry,
		directory:    directory,
		eligibility:  eligibility,
		queueTimeout: queueTimeout,
		now:          func() int64 { return time.Now().UnixMilli() },
	}
}

// RequestMatch either pairs the agent with a waiting partner or enqueues
// them. Evaluation order: existing active room (idempotent re-poll), pairing
// from within the queue, pairing against the queue, fresh enqueue.
func (m *Matchmaker) RequestMatch(ctx context.Context, agentID string, elite bool) (*MatchResult, *Error) {
	agent := m.directory.Get(agentID)
	if agent == nil {
		return nil, errValidation("agent_id", "Agent not registered. Call POST /api/register first.")
	}
	m.directory.Touch(agentID)

	queueName := QueueStandard
	if elite {
		if agent.WalletAddress == "" {
			return nil, &Error{
				Kind:    KindEligibility,
				Field:   "wallet_address",
				Message: "Elite queue requires a wallet_address. Re-register with a wallet address.",
			}
		}
		eligible, err := m.eligibility.IsEligible(ctx, agent.WalletAddress)
		if err != nil || !eligible {
			return nil, &Error{
				Kind:    KindEligibility,
				Message: "Insufficient token balance for the elite queue.",
				Hint:    "Top up the configured token on the configured chain and retry.",
			}
		}
		queueName = QueueElite
	}

	// Stale entries are evicted on every mutating queue operation.
	now := m.now()
	m.queues.Sweep(QueueStandard, m.queueTimeout, now)
	m.queues.Sweep(QueueElite, m.queueTimeout, now)

	// An agent waits in at most one queue: requesting the other queue
	// abandons the old entry. Only the agent itself enqueues under its id,
	// so removing outside the pairing lock cannot race another writer.
	otherQueue := QueueElite
	if queueName == QueueElite {
		otherQueue = QueueStandard
	}
	m.queues.Remove(otherQueue, agentID)

	var result *MatchResult
	m.queues.withLock(queueName, func(q *queue) {
		if room := m.registry.ActiveRoomFor(agentID); room != nil {
			result = matchedResult(room, agentID)
			return
		}

		selfIdx := -1
		for i, e := range q.entries {
			if e.AgentID == agentID {
				selfIdx = i
				break
			}
		}

		if room, fresh := m.pairLocked(q, agentID, selfIdx, elite, now); room != nil {
			result = matchedResult(room, agentID)
			result.Fresh = fresh
			return
		}

		// Recompute: pairLocked may have evicted stale entries ahead of us,
		// or dropped our own entry to resolve a race.
		if pos := position(q, agentID); pos > 0 {
			result = &MatchResult{Queued: true, Position: pos}
			return
		}
		q.entries = append(q.entries, models.QueueEntry{AgentID: agentID, JoinedAt: now})
		result = &MatchResult{Queued: true, Position: len(q.entries)}
	})
	return result, nil
}

// pairLocked scans the queue (held locked by the caller) for the first
// eligible waiter: not the agent itself and not blocked in either direction.
// Blocked candidates are skipped without disturbing their position. Returns
// the created (or idempotently rediscovered) room, or nil when no candidate
// fits.
func (m *Matchmaker) pairLocked(q *queue, agentID string, selfIdx int, elite bool, now int64) (*models.Room, bool) {
	self := models.QueueEntry{AgentID: agentID, JoinedAt: now}
	if selfIdx >= 0 {
		self = q.entries[selfIdx]
	}

	for i := 0; i < len(q.entries); i++ {
		cand := q.entries[i]
		if cand.AgentID == agentID {
			continue
		}
		if m.blocklist.Blocked(agentID, cand.AgentID, now) {
			continue
		}

		// The earliest-joined side of the pair is the initiator. An agent
		// pairing from outside the queue always defers to the waiter.
		waiter, joiner := cand, self
		if selfIdx >= 0 && self.JoinedAt < cand.JoinedAt {
			waiter, joiner = self, cand
		}

		created, busy := m.registry.TryCreate(m.ref(waiter.AgentID), m.ref(joiner.AgentID), elite, now)
		if busy == agentID {
			// Raced with a concurrent match for this agent elsewhere; report
			// the room it landed in.
			q.removeLocked(agentID)
			return m.registry.ActiveRoomFor(agentID), false
		}
		if busy != "" {
			// Stale entry: the candidate is already in a room elsewhere.
			q.removeLocked(cand.AgentID)
			i--
			continue
		}

		q.removeLocked(cand.AgentID)
		q.removeLocked(agentID)
		return created, true
	}
	return nil, false
}

// ref resolves an agent reference, falling back to the bare id for agents
// that vanished from the directory mid-flight.
func (m *Matchmaker) ref(agentID string) models.AgentRef {
	if a := m.directory.Get(agentID); a != nil {
		return a.Ref()
	}
	return models.AgentRef{AgentID: agentID, Name: agentID}
}

// PollMatch reports the agent's current matchmaking state without mutating
// any queue: matched, queued (standard first, then elite), or neither.
func (m *Matchmaker) PollMatch(agentID string) *MatchResult {
	if room := m.registry.ActiveRoomFor(agentID); room != nil {
		return matchedResult(room, agentID)
	}
	if pos := m.queues.PositionOf(QueueStandard, agentID); pos > 0 {
		return &MatchResult{Queued: true, Position: pos}
	}
	if pos := m.queues.PositionOf(QueueElite, agentID); pos > 0 {
		return &MatchResult{Queued: true, Position: pos}
	}
	return &MatchResult{}
}

func matchedResult(room *models.Room, agentID string) *MatchResult {
	return &MatchResult{
		Matched:   true,
		RoomID:    room.ID,
		Partner:   room.Partner(agentID),
		Initiator: room.Initiator == agentID,
		Elite:     room.Elite,
	}
}

func position(q *queue, agentID string) int {
	for i, e := range q.entries {
		if e.AgentID == agentID {
			return i + 1
		}
	}
	return 0
}
