package models

// QueueEntry is one waiting agent in a matchmaking queue.
type QueueEntry struct {
	AgentID  string `json:"agent_id"`
	JoinedAt int64  `json:"joined_at"` // Unix ms
}

// QueueWaiter is a queue entry joined with the agent's public profile,
// returned by the queue listing endpoint.
type QueueWaiter struct {
	AgentID   string `json:"agent_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	JoinedAt  int64  `json:"joined_at"`
}
