package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// RoomFilter selects which rooms a listing returns.
type RoomFilter string

const (
	FilterActive RoomFilter = "active"
	FilterEnded  RoomFilter = "ended"
	FilterAll    RoomFilter = "all"
)

// roomState pairs a room with its own mutex so unrelated conversations never
// serialize on each other. Lock ordering: Registry.mu is never held while
// waiting on a roomState.mu acquired through it is fine, but a goroutine
// holding a roomState.mu must not take Registry.mu.
type roomState struct {
	mu   sync.Mutex
	room models.Room
}

// Registry owns the set of rooms and the membership index that enforces the
// central correctness property: no agent is ever a member of two
// simultaneously-active rooms, and at most one room is created per matched
// pair.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*roomState
	members map[string]string // agent_id -> active room id
	counter int64

	roomTimeout time.Duration
	visibility  time.Duration
}

// NewRegistry creates an empty registry with the given lifecycle windows.
func NewRegistry(roomTimeout, visibility time.Duration) *Registry {
	return &Registry{
		rooms:       make(map[string]*roomState),
		members:     make(map[string]string),
		roomTimeout: roomTimeout,
		visibility:  visibility,
	}
}

// TryCreate atomically pairs waiter and joiner into a fresh room, with waiter
// as initiator. It refuses to double-book: if either agent already belongs to
// an active room, no room is created and that agent's id is returned so the
// matchmaker can resolve the race (skip a stale queue entry, or treat its own
// re-request as an idempotent match).
func (r *Registry) TryCreate(waiter, joiner models.AgentRef, elite bool, now int64) (created *models.Room, busy string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[waiter.AgentID]; ok {
		return nil, waiter.AgentID
	}
	if _, ok := r.members[joiner.AgentID]; ok {
		return nil, joiner.AgentID
	}

	r.counter++
	room := models.Room{
		ID:           fmt.Sprintf("room-%04d", r.counter),
		Agents:       []models.AgentRef{waiter, joiner},
		AgentIDs:     []string{waiter.AgentID, joiner.AgentID},
		Initiator:    waiter.AgentID,
		Messages:     []models.Message{},
		CreatedAt:    now,
		LastActivity: now,
		Active:       true,
		Elite:        elite,
	}
	r.rooms[room.ID] = &roomState{room: room}
	r.members[waiter.AgentID] = room.ID
	r.members[joiner.AgentID] = room.ID

	return cloneRoom(&room), ""
}

// ActiveRoomFor returns a snapshot of the agent's active room, or nil.
func (r *Registry) ActiveRoomFor(agentID string) *models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.members[agentID]; ok {
		return r.snapshotLocked(id)
	}
	return nil
}

func (r *Registry) snapshotLocked(id string) *models.Room {
	rs, ok := r.rooms[id]
	if !ok {
		return nil
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return cloneRoom(&rs.room)
}

// Get returns a snapshot of the room, or nil if unknown or already evicted.
func (r *Registry) Get(id string) *models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(id)
}

// state returns the live room for in-package mutation under its own lock.
func (r *Registry) state(id string) *roomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[id]
}

// End deactivates the room. Idempotent: ending an already-ended room returns
// the existing end state rather than an error, since a manual leave racing
// the timeout sweep must not surface as a failure. The optional notice is
// appended before deactivation so spectators see the exit inline.
func (r *Registry) End(id string, endedBy string, reason models.EndReason, notice *models.Message, now int64) *models.Room {
	rs := r.state(id)
	if rs == nil {
		return nil
	}

	rs.mu.Lock()
	if !rs.room.Active {
		snap := cloneRoom(&rs.room)
		rs.mu.Unlock()
		return snap
	}
	if notice != nil {
		rs.room.Messages = append(rs.room.Messages, *notice)
	}
	rs.room.Active = false
	rs.room.EndedAt = now
	rs.room.LastActivity = now
	rs.room.LeftBy = endedBy
	rs.room.EndReason = reason
	memberIDs := append([]string(nil), rs.room.AgentIDs...)
	snap := cloneRoom(&rs.room)
	rs.mu.Unlock()

	r.mu.Lock()
	for _, aid := range memberIDs {
		if r.members[aid] == id {
			delete(r.members, aid)
		}
	}
	r.mu.Unlock()
	return snap
}

// List returns summaries sorted by last_activity descending, so the liveliest
// rooms surface first. Ended rooms still inside the visibility window are
// included by FilterAll and FilterEnded.
func (r *Registry) List(filter RoomFilter) []models.RoomSummary {
	r.mu.Lock()
	states := make([]*roomState, 0, len(r.rooms))
	for _, rs := range r.rooms {
		states = append(states, rs)
	}
	r.mu.Unlock()

	out := make([]models.RoomSummary, 0, len(states))
	for _, rs := range states {
		rs.mu.Lock()
		active := rs.room.Active
		sum := rs.room.Summary()
		rs.mu.Unlock()

		switch filter {
		case FilterActive:
			if !active {
				continue
			}
		case FilterEnded:
			if active {
				continue
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity > out[j].LastActivity })
	return out
}

// Counts returns the number of active rooms and total messages across all
// visible rooms, for the status endpoint.
func (r *Registry) Counts() (activeRooms, totalRooms, totalMessages int) {
	r.mu.Lock()
	states := make([]*roomState, 0, len(r.rooms))
	for _, rs := range r.rooms {
		states = append(states, rs)
	}
	r.mu.Unlock()

	for _, rs := range states {
		rs.mu.Lock()
		if rs.room.Active {
			activeRooms++
		}
		totalMessages += len(rs.room.Messages)
		rs.mu.Unlock()
	}
	return activeRooms, len(states), totalMessages
}

// ActiveMembers returns the set of agents currently in an active room.
func (r *Registry) ActiveMembers() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.members))
	for aid := range r.members {
		out[aid] = true
	}
	return out
}

// Sweep force-ends active rooms idle past the room timeout (reason timeout)
// and evicts ended rooms past the visibility window. Active rooms are never
// removed outright: spectators always observe a terminal state before a room
// disappears.
func (r *Registry) Sweep(now int64) (ended, evicted int) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		rs := r.state(id)
		if rs == nil {
			continue
		}
		rs.mu.Lock()
		timedOut := rs.room.Active && now-rs.room.LastActivity > r.roomTimeout.Milliseconds()
		expired := !rs.room.Active && rs.room.EndedAt > 0 && now-rs.room.EndedAt > r.visibility.Milliseconds()
		rs.mu.Unlock()

		if timedOut {
			if r.End(id, "", models.EndReasonTimeout, nil, now) != nil {
				ended++
			}
			continue
		}
		if expired {
			r.mu.Lock()
			delete(r.rooms, id)
			r.mu.Unlock()
			evicted++
		}
	}
	return ended, evicted
}

// Flush removes every room. Administrative reset only.
func (r *Registry) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[string]*roomState)
	r.members = make(map[string]string)
	r.counter = 0
}

func cloneRoom(room *models.Room) *models.Room {
	c := *room
	c.Agents = append([]models.AgentRef(nil), room.Agents...)
	c.AgentIDs = append([]string(nil), room.AgentIDs...)
	c.Messages = append([]models.Message(nil), room.Messages...)
	return &c
}
