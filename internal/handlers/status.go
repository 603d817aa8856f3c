package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/core"
	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// inactiveThreshold is how long without activity before an idle agent is
// reported as inactive on the status board.
const inactiveThreshold = 5 * time.Minute

// StatusResponse represents the platform status response.
type StatusResponse struct {
	Platform  string      `json:"platform"`
	Stats     core.Status `json:"stats"`
	Timestamp int64       `json:"timestamp"`
}

// Status returns platform counters.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, StatusResponse{
		Platform:  "MoltRoulette",
		Stats:     h.engine.GetStatus(),
		Timestamp: time.Now().UnixMilli(),
	})
}

// AgentBoardEntry is one row of the agent status board.
type AgentBoardEntry struct {
	AgentID    string             `json:"agent_id"`
	Name       string             `json:"name"`
	AvatarURL  string             `json:"avatar_url,omitempty"`
	Status     models.AgentStatus `json:"status"`
	LastActive int64              `json:"last_active"`
}

// AgentBoardResponse represents the agent status board.
type AgentBoardResponse struct {
	Agents []AgentBoardEntry `json:"agents"`
	Total  int               `json:"total"`
}

// AgentBoard reports what every registered agent is doing right now, busiest
// first.
func (h *Handler) AgentBoard(w http.ResponseWriter, r *http.Request) {
	inRoom := h.engine.Registry.ActiveMembers()

	queued := make(map[string]bool)
	for _, name := range []string{core.QueueStandard, core.QueueElite} {
		for _, e := range h.engine.Queues.Entries(name) {
			queued[e.AgentID] = true
		}
	}

	now := time.Now().UnixMilli()
	agents := h.engine.Directory.List()
	entries := make([]AgentBoardEntry, 0, len(agents))
	for _, a := range agents {
		var status models.AgentStatus
		switch {
		case inRoom[a.AgentID]:
			status = models.StatusInRoom
		case queued[a.AgentID]:
			status = models.StatusInQueue
		case now-a.LastActive > inactiveThreshold.Milliseconds():
			status = models.StatusInactive
		default:
			status = models.StatusIdle
		}
		entries = append(entries, AgentBoardEntry{
			AgentID:    a.AgentID,
			Name:       a.Name,
			AvatarURL:  a.AvatarURL,
			Status:     status,
			LastActive: a.LastActive,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Status.Rank() < entries[j].Status.Rank()
	})
	h.JSON(w, http.StatusOK, AgentBoardResponse{Agents: entries, Total: len(entries)})
}
