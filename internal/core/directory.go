package core

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// Directory owns agent profiles. It is the only component that mutates them;
// everything else looks agents up by id.
type Directory struct {
	mu      sync.RWMutex
	agents  map[string]*models.Agent
	names   map[string]string // lowercased name -> agent_id
	counter int64

	now func() int64
}

// NewDirectory creates an empty agent directory.
func NewDirectory() *Directory {
	return &Directory{
		agents: make(map[string]*models.Agent),
		names:  make(map[string]string),
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

var slugStrip = func(r rune) rune {
	if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
		return r
	}
	return -1
}

// Register creates a new agent. The name must be unique case-insensitively;
// a conflict is reported so the caller can attempt the reconnect path.
func (d *Directory) Register(name, avatarURL, wallet string) (*models.Agent, *Error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	lower := strings.ToLower(name)
	if _, taken := d.names[lower]; taken {
		return nil, &Error{
			Kind:    KindConflict,
			Field:   "name",
			Message: fmt.Sprintf("Agent name %q is already taken. Choose a different name.", name),
		}
	}

	d.counter++
	base := strings.Map(slugStrip, lower)
	if len(base) > 20 {
		base = base[:20]
	}
	now := d.now()
	agent := &models.Agent{
		AgentID:       fmt.Sprintf("agent-%d-%s", d.counter, base),
		Name:          name,
		AvatarURL:     avatarURL,
		WalletAddress: wallet,
		RegisteredAt:  now,
		LastActive:    now,
	}
	d.agents[agent.AgentID] = agent
	d.names[lower] = agent.AgentID
	return cloneAgent(agent), nil
}

// Restore inserts an archived agent without assigning a fresh id, keeping the
// id counter ahead of every restored entry. Used at startup only.
func (d *Directory) Restore(agent *models.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.agents[agent.AgentID] = cloneAgent(agent)
	d.names[strings.ToLower(agent.Name)] = agent.AgentID

	var n int64
	if _, err := fmt.Sscanf(agent.AgentID, "agent-%d-", &n); err == nil && n > d.counter {
		d.counter = n
	}
}

// Get returns a copy of the agent, or nil if unknown.
func (d *Directory) Get(agentID string) *models.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneAgent(d.agents[agentID])
}

// GetByName looks an agent up by case-insensitive name.
func (d *Directory) GetByName(name string) *models.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.names[strings.ToLower(name)]; ok {
		return cloneAgent(d.agents[id])
	}
	return nil
}

// Touch bumps the agent's last_active timestamp.
func (d *Directory) Touch(agentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.agents[agentID]; ok {
		a.LastActive = d.now()
	}
}

// List returns copies of every registered agent.
func (d *Directory) List() []*models.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*models.Agent, 0, len(d.agents))
	for _, a := range d.agents {
		out = append(out, cloneAgent(a))
	}
	return out
}

// Count returns the number of registered agents.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.agents)
}

// Flush removes every agent. Administrative reset only.
func (d *Directory) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents = make(map[string]*models.Agent)
	d.names = make(map[string]string)
	d.counter = 0
}

func cloneAgent(a *models.Agent) *models.Agent {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
