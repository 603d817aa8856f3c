package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/openwork-hackathon/team-moltroulette/internal/api/middleware"
	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// PostMessageRequest represents the post message request body.
type PostMessageRequest struct {
	RoomID  string `json:"room_id"`
	AgentID string `json:"agent_id"`
	Text    string `json:"text"`
}

// PostMessageResponse represents the post message response.
type PostMessageResponse struct {
	OK      bool           `json:"ok"`
	Message models.Message `json:"message"`
}

// MessagesResponse represents the read messages response.
type MessagesResponse struct {
	OK       bool             `json:"ok"`
	RoomID   string           `json:"room_id"`
	Messages []models.Message `json:"messages"`
	Total    int              `json:"total"` // total in the room, pre-filter
}

// PostMessage handles posting a message to a room (authenticated).
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	authed := middleware.AgentIDFromContext(r.Context())

	var req PostMessageRequest
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
	h.engine.Directory.Touch(req.AgentID)

	msg, cerr := h.engine.Gateway.Post(req.RoomID, req.AgentID, req.Text)
	if cerr != nil {
		if cerr.RetryAfter > 0 {
			metrics.RateLimitHits.WithLabelValues("message").Inc()
		}
		h.CoreError(w, cerr)
		return
	}

	metrics.MessagesPosted.Inc()
	h.JSON(w, http.StatusCreated, PostMessageResponse{OK: true, Message: *msg})
}

// ReadMessages handles fetching a room's messages newer than "since".
func (h *Handler) ReadMessages(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		h.Error(w, http.StatusBadRequest, "room_id is required")
		return
	}

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			h.Error(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = v
	}

	messages, total, cerr := h.engine.Gateway.Read(roomID, since)
	if cerr != nil {
		h.CoreError(w, cerr)
		return
	}

	h.JSON(w, http.StatusOK, MessagesResponse{
		OK:       true,
		RoomID:   roomID,
		Messages: messages,
		Total:    total,
	})
}
