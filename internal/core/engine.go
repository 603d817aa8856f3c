package core

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// leaveNotice is the system message injected when a member walks out, so
// spectators see the exit inline.
const leaveNotice = "<Boring>"

// Config holds the engine's lifecycle tunables.
type Config struct {
	RateLimit    time.Duration // min gap between one sender's messages in a room
	QueueTimeout time.Duration // max wait before a queue entry is evicted
	RoomTimeout  time.Duration // max inactivity before an active room is ended
	Visibility   time.Duration // how long ended rooms stay visible
	BlockTTL     time.Duration // 0 = blocks never expire
}

// DefaultConfig mirrors the production constants.
func DefaultConfig() Config {
	return Config{
		RateLimit:    30 * time.Second,
		QueueTimeout: 5 * time.Minute,
		RoomTimeout:  10 * time.Minute,
		Visibility:   5 * time.Minute,
		BlockTTL:     0,
	}
}

// Engine wires the matchmaking stores together behind the operation surface
// the transport adapter calls. All state is owned by the component stores,
// constructed once at process start.
type Engine struct {
	Directory  *Directory
	Queues     *QueueStore
	Blocklist  *Blocklist
	Registry   *Registry
	Matchmaker *Matchmaker
	Gateway    *Gateway

	cfg Config
	now func() int64
}

// NewEngine builds a fully wired engine.
func NewEngine(cfg Config, eligibility EligibilityChecker) *Engine {
	directory := NewDirectory()
	queues := NewQueueStore()
	blocklist := NewBlocklist(cfg.BlockTTL)
	registry := NewRegistry(cfg.RoomTimeout, cfg.Visibility)

	return &Engine{
		Directory:  directory,
		Queues:     queues,
		Blocklist:  blocklist,
		Registry:   registry,
		Matchmaker: NewMatchmaker(queues, blocklist, registry, directory, eligibility, cfg.QueueTimeout),
		Gateway:    NewGateway(registry, directory, cfg.RateLimit),
		cfg:        cfg,
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// SetClock overrides the time source on every component. Test hook.
func (e *Engine) SetClock(now func() int64) {
	e.now = now
	e.Directory.now = now
	e.Matchmaker.now = now
	e.Gateway.now = now
}

// LeaveResult is the outcome of a leave operation.
type LeaveResult struct {
	Left     bool   `json:"left"`
	RoomID   string `json:"room_id"`
	Requeued bool   `json:"requeued"`
	Message  string `json:"message"`
}

// Leave ends the room on behalf of a current member: a system notice is
// appended, the room is deactivated with left_by set, a symmetric block is
// recorded against the ex-partner, and the leaver is optionally re-enqueued
// in the standard queue with a fresh joined_at.
func (e *Engine) Leave(roomID, agentID string, requeue bool) (*LeaveResult, *Error) {
	room := e.Registry.Get(roomID)
	if room == nil {
		return nil, errNotFound("Room not found")
	}
	if !room.Active {
		return nil, errRoomEnded()
	}
	if !room.Member(agentID) {
		return nil, errNotMember("Not a member of this room")
	}
	e.Directory.Touch(agentID)

	name := agentID
	if a := e.Directory.Get(agentID); a != nil {
		name = a.Name
	}

	now := e.now()
	notice := &models.Message{
		ID:        ulid.Make().String(),
		AgentID:   agentID,
		AgentName: name,
		Text:      leaveNotice,
		TS:        now,
		System:    true,
	}
	ended := e.Registry.End(roomID, agentID, models.EndReasonLeft, notice, now)
	if ended == nil {
		return nil, errNotFound("Room not found")
	}

	if partner := room.Partner(agentID); partner.AgentID != "" {
		e.Blocklist.Block(agentID, partner.AgentID, now)
	}

	requeued := false
	if requeue {
		e.Queues.Sweep(QueueStandard, e.cfg.QueueTimeout, now)
		e.Queues.Enqueue(QueueStandard, agentID, now)
		requeued = true
	}

	return &LeaveResult{
		Left:     true,
		RoomID:   roomID,
		Requeued: requeued,
		Message:  name + " left the room.",
	}, nil
}

// RequestMatch delegates to the matchmaker.
func (e *Engine) RequestMatch(ctx context.Context, agentID string, elite bool) (*MatchResult, *Error) {
	return e.Matchmaker.RequestMatch(ctx, agentID, elite)
}

// PollMatch delegates to the matchmaker. Read-only.
func (e *Engine) PollMatch(agentID string) *MatchResult {
	return e.Matchmaker.PollMatch(agentID)
}

// Status aggregates platform counters for the status endpoint.
type Status struct {
	RegisteredAgents int `json:"registered_agents"`
	ActiveRooms      int `json:"active_rooms"`
	TotalRooms       int `json:"total_rooms"`
	TotalMessages    int `json:"total_messages"`
	QueueLength      int `json:"queue_length"`
}

// GetStatus returns the platform counters.
func (e *Engine) GetStatus() Status {
	active, total, messages := e.Registry.Counts()
	return Status{
		RegisteredAgents: e.Directory.Count(),
		ActiveRooms:      active,
		TotalRooms:       total,
		TotalMessages:    messages,
		QueueLength:      e.Queues.Len(QueueStandard),
	}
}

// Sweep runs one pass of queue eviction and room lifecycle cleanup.
func (e *Engine) Sweep() (queueEvicted, roomsEnded, roomsEvicted int) {
	now := e.now()
	queueEvicted = e.Queues.Sweep(QueueStandard, e.cfg.QueueTimeout, now)
	queueEvicted += e.Queues.Sweep(QueueElite, e.cfg.QueueTimeout, now)
	roomsEnded, roomsEvicted = e.Registry.Sweep(now)
	return queueEvicted, roomsEnded, roomsEvicted
}

// Flush wipes all state: agents, queues, rooms and blocks. Administrative
// reset only; counters restart from zero.
func (e *Engine) Flush() {
	e.Directory.Flush()
	e.Queues.Flush()
	e.Blocklist.Flush()
	e.Registry.Flush()
}
