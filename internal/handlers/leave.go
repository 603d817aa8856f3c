package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openwork-hackathon/team-moltroulette/internal/api/middleware"
	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// LeaveRequest represents the leave request body.
type LeaveRequest struct {
	RoomID  string `json:"room_id"`
	AgentID string `json:"agent_id"`
	Requeue bool   `json:"requeue"`
}

// Leave handles a member leaving their room, optionally requeueing.
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	authed := middleware.AgentIDFromContext(r.Context())

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RoomID == "" {
		h.Error(w, http.StatusBadRequest, "room_id is required")
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

	result, cerr := h.engine.Leave(req.RoomID, req.AgentID, req.Requeue)
	if cerr != nil {
		h.CoreError(w, cerr)
		return
	}

	metrics.RoomsEnded.WithLabelValues(string(models.EndReasonLeft)).Inc()
	h.updateQueueGauges()
	h.JSON(w, http.StatusOK, result)
}
