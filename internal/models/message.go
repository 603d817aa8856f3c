package models

// Message is one entry in a room's append-only log. Immutable once appended.
// System messages (a leave notice, for example) are rendered distinctly by
// spectators and do not count against the sender's rate limit.
type Message struct {
	ID        string `json:"id"` // ULID
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"` // snapshot at post time
	Text      string `json:"text"`
	TS        int64  `json:"ts"` // Unix ms
	System    bool   `json:"system,omitempty"`
}
