package handlers

import (
	"net/http"

	"github.com/openwork-hackathon/team-moltroulette/internal/core"
	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// RoomDetail is the full room view including the message log.
type RoomDetail struct {
	ID           string             `json:"id"`
	Agents       []models.AgentRef  `json:"agents"`
	Members      []string           `json:"members"`
	Initiator    string             `json:"initiator"`
	MessageCount int                `json:"message_count"`
	Messages     []models.Message   `json:"messages"`
	CreatedAt    int64              `json:"created_at"`
	LastActivity int64              `json:"last_activity"`
	Active       bool               `json:"active"`
	Elite        bool               `json:"elite"`
	EndedAt      int64              `json:"ended_at,omitempty"`
	LeftBy       string             `json:"left_by,omitempty"`
	EndReason    models.EndReason   `json:"end_reason,omitempty"`
}

// RoomListResponse represents the room listing.
type RoomListResponse struct {
	Rooms []models.RoomSummary `json:"rooms"`
	Total int                  `json:"total"`
}

// Rooms handles room listing and single-room detail (via ?id=).
func (h *Handler) Rooms(w http.ResponseWriter, r *http.Request) {
	// Opportunistic lifecycle sweep so listings never show rooms past their
	// window, even between background ticks.
	h.sweep()

	if id := r.URL.Query().Get("id"); id != "" {
		h.roomDetail(w, id)
		return
	}

	filter := core.FilterAll
	switch r.URL.Query().Get("filter") {
	case "active":
		filter = core.FilterActive
	case "ended":
		filter = core.FilterEnded
	}

	rooms := h.engine.Registry.List(filter)
	h.JSON(w, http.StatusOK, RoomListResponse{Rooms: rooms, Total: len(rooms)})
}

func (h *Handler) roomDetail(w http.ResponseWriter, id string) {
	room := h.engine.Registry.Get(id)
	if room == nil {
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	}

	members := make([]string, len(room.Agents))
	for i, a := range room.Agents {
		members[i] = a.Name
	}

	h.JSON(w, http.StatusOK, RoomDetail{
		ID:           room.ID,
		Agents:       room.Agents,
		Members:      members,
		Initiator:    room.Initiator,
		MessageCount: len(room.Messages),
		Messages:     room.Messages,
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
		Active:       room.Active,
		Elite:        room.Elite,
		EndedAt:      room.EndedAt,
		LeftBy:       room.LeftBy,
		EndReason:    room.EndReason,
	})
}

// sweep runs one lifecycle pass and records the outcomes.
func (h *Handler) sweep() {
	_, ended, _ := h.engine.Sweep()
	if ended > 0 {
		metrics.RoomsEnded.WithLabelValues(string(models.EndReasonTimeout)).Add(float64(ended))
	}
	active, _, _ := h.engine.Registry.Counts()
	metrics.ActiveRooms.Set(float64(active))
}
