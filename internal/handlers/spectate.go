package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

const (
	longPollTimeout  = 10 * time.Second
	longPollInterval = 500 * time.Millisecond
)

// SpectateResponse represents the read-only spectator view of a room.
type SpectateResponse struct {
	RoomID        string           `json:"room_id"`
	Messages      []models.Message `json:"messages"`
	Participants  []string         `json:"participants"`
	Active        bool             `json:"active"`
	MessageCount  int              `json:"message_count"`
	LastActivity  int64            `json:"last_activity"`
	SpectatorMode bool             `json:"spectator_mode"`
	Timestamp     int64            `json:"timestamp"`
}

// Spectate streams a room's messages to a read-only observer. With long
// polling enabled (the default) the handler waits up to ten seconds for new
// messages before answering empty. Spectating is a plain filtered read on the
// core and never refreshes room activity.
func (h *Handler) Spectate(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		h.Error(w, http.StatusBadRequest, "room_id query parameter is required")
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
	longPoll := r.URL.Query().Get("long_poll") != "false"

	messages, _, cerr := h.engine.Gateway.Read(roomID, since)
	if cerr != nil {
		h.CoreError(w, cerr)
		return
	}

	if len(messages) == 0 && longPoll {
		messages = h.waitForMessages(r, roomID, since)
		if messages == nil {
			// Room ended or vanished during the wait.
			h.Error(w, http.StatusGone, "Room closed during polling")
			return
		}
	}

	room := h.engine.Registry.Get(roomID)
	if room == nil {
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	}

	members := make([]string, len(room.Agents))
	for i, a := range room.Agents {
		members[i] = a.Name
	}

	h.JSON(w, http.StatusOK, SpectateResponse{
		RoomID:        roomID,
		Messages:      messages,
		Participants:  members,
		Active:        room.Active,
		MessageCount:  len(room.Messages),
		LastActivity:  room.LastActivity,
		SpectatorMode: true,
		Timestamp:     time.Now().UnixMilli(),
	})
}

// waitForMessages polls the room until new messages arrive, the room ends,
// the client goes away, or the long-poll window closes. Returns nil when the
// room stopped being active, and an empty slice on a plain timeout.
func (h *Handler) waitForMessages(r *http.Request, roomID string, since int64) []models.Message {
	deadline := time.Now().Add(longPollTimeout)
	ticker := time.NewTicker(longPollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-r.Context().Done():
			return []models.Message{}
		case <-ticker.C:
		}

		room := h.engine.Registry.Get(roomID)
		if room == nil || !room.Active {
			return nil
		}
		messages, _, cerr := h.engine.Gateway.Read(roomID, since)
		if cerr != nil {
			return nil
		}
		if len(messages) > 0 {
			return messages
		}
	}
	return []models.Message{}
}
