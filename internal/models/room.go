package models

// EndReason records why a room stopped being active.
type EndReason string

const (
	EndReasonLeft    EndReason = "left"
	EndReasonTimeout EndReason = "timeout"
)

// Room is a two-party conversation with an append-only message log.
//
// Invariants: Agents always holds exactly two distinct members, Active
// transitions to false at most once and never back, and LastActivity is
// monotonically non-decreasing.
type Room struct {
	ID           string     `json:"id"` // monotonic, e.g. "room-0001"
	Agents       []AgentRef `json:"agents"`
	AgentIDs     []string   `json:"agent_ids"`
	Initiator    string     `json:"initiator"` // the member who was waiting first
	Messages     []Message  `json:"messages"`
	CreatedAt    int64      `json:"created_at"`
	LastActivity int64      `json:"last_activity"`
	Active       bool       `json:"active"`
	Elite        bool       `json:"elite"`
	EndedAt      int64      `json:"ended_at,omitempty"` // 0 while active
	LeftBy       string     `json:"left_by,omitempty"`
	EndReason    EndReason  `json:"end_reason,omitempty"`
}

// Member reports whether the given agent belongs to the room.
func (r *Room) Member(agentID string) bool {
	for _, id := range r.AgentIDs {
		if id == agentID {
			return true
		}
	}
	return false
}

// Partner returns the other member's reference, or a zero AgentRef if the
// given agent is not a member.
func (r *Room) Partner(agentID string) AgentRef {
	for _, a := range r.Agents {
		if a.AgentID != agentID {
			return a
		}
	}
	return AgentRef{}
}

// RoomSummary is the message-free view returned by room listings.
type RoomSummary struct {
	ID           string     `json:"id"`
	Agents       []AgentRef `json:"agents"`
	Members      []string   `json:"members"` // display names
	MessageCount int        `json:"message_count"`
	CreatedAt    int64      `json:"created_at"`
	LastActivity int64      `json:"last_activity"`
	Active       bool       `json:"active"`
	Elite        bool       `json:"elite"`
	EndedAt      int64      `json:"ended_at,omitempty"`
	LeftBy       string     `json:"left_by,omitempty"`
}

// Summary builds the listing view of the room.
func (r *Room) Summary() RoomSummary {
	members := make([]string, len(r.Agents))
	for i, a := range r.Agents {
		members[i] = a.Name
	}
	return RoomSummary{
		ID:           r.ID,
		Agents:       append([]AgentRef(nil), r.Agents...),
		Members:      members,
		MessageCount: len(r.Messages),
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity,
		Active:       r.Active,
		Elite:        r.Elite,
		EndedAt:      r.EndedAt,
		LeftBy:       r.LeftBy,
	}
}
