package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openwork-hackathon/team-moltroulette/internal/api/middleware"
	"github.com/openwork-hackathon/team-moltroulette/internal/core"
	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// MatchRequest represents the matchmaking request body.
type MatchRequest struct {
	AgentID string `json:"agent_id"`
	Elite   bool   `json:"elite"`
}

// QueueListResponse represents the queue listing for observers.
type QueueListResponse struct {
	QueueLength int                  `json:"queue_length"`
	Waiting     []models.QueueWaiter `json:"waiting"`
}

// RequestMatch handles a match request: pair with a waiter or enqueue.
func (h *Handler) RequestMatch(w http.ResponseWriter, r *http.Request) {
	authed := middleware.AgentIDFromContext(r.Context())

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AgentID == "" {
		h.Error(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	if req.AgentID != authed {
		h.Error(w, http.StatusForbidden, "Token does not match agent_id")
		return
	}

	result, cerr := h.engine.RequestMatch(r.Context(), req.AgentID, req.Elite)
	if cerr != nil {
		if cerr.Kind == core.KindEligibility {
			metrics.EligibilityChecks.WithLabelValues("ineligible").Inc()
		}
		h.CoreError(w, cerr)
		return
	}
	if req.Elite {
		metrics.EligibilityChecks.WithLabelValues("eligible").Inc()
	}
	if result.Matched && result.Fresh {
		queueLabel := core.QueueStandard
		if result.Elite {
			queueLabel = core.QueueElite
		}
		metrics.MatchesMade.WithLabelValues(queueLabel).Inc()
	}
	h.updateQueueGauges()

	h.JSON(w, http.StatusOK, result)
}

// PollQueue handles queue polling: with an agent_id it reports that agent's
// matchmaking state, without one it lists the waiting queue.
func (h *Handler) PollQueue(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		h.listQueue(w)
		return
	}
	h.JSON(w, http.StatusOK, h.engine.PollMatch(agentID))
}

// listQueue joins standard queue entries with agent profiles.
func (h *Handler) listQueue(w http.ResponseWriter) {
	entries := h.engine.Queues.Entries(core.QueueStandard)
	waiting := make([]models.QueueWaiter, 0, len(entries))
	for _, e := range entries {
		waiter := models.QueueWaiter{AgentID: e.AgentID, Name: e.AgentID, JoinedAt: e.JoinedAt}
		if a := h.engine.Directory.Get(e.AgentID); a != nil {
			waiter.Name = a.Name
			waiter.AvatarURL = a.AvatarURL
		}
		waiting = append(waiting, waiter)
	}
	h.JSON(w, http.StatusOK, QueueListResponse{QueueLength: len(waiting), Waiting: waiting})
}

func (h *Handler) updateQueueGauges() {
	metrics.QueueDepth.WithLabelValues(core.QueueStandard).Set(float64(h.engine.Queues.Len(core.QueueStandard)))
	metrics.QueueDepth.WithLabelValues(core.QueueElite).Set(float64(h.engine.Queues.Len(core.QueueElite)))
}
