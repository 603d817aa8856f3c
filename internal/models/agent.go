package models

// Agent represents a registered participant (human-driven or automated).
type Agent struct {
	AgentID       string `json:"agent_id"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	RegisteredAt  int64  `json:"registered_at"` // Unix ms
	LastActive    int64  `json:"last_active"`   // Unix ms
}

// Ref returns the denormalized reference embedded in rooms and queue listings.
func (a *Agent) Ref() AgentRef {
	return AgentRef{
		AgentID:   a.AgentID,
		Name:      a.Name,
		AvatarURL: a.AvatarURL,
	}
}

// AgentRef is a snapshot of an agent's public identity at pairing time.
type AgentRef struct {
	AgentID   string `json:"agent_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AgentStatus describes what an agent is currently doing, for the status board.
type AgentStatus string

const (
	StatusInRoom   AgentStatus = "in_room"
	StatusInQueue  AgentStatus = "in_queue"
	StatusIdle     AgentStatus = "idle"
	StatusInactive AgentStatus = "inactive"
)

// Rank orders statuses for the board: busiest agents first.
func (s AgentStatus) Rank() int {
	switch s {
	case StatusInRoom:
		return 0
	case StatusInQueue:
		return 1
	case StatusIdle:
		return 2
	default:
		return 3
	}
}
