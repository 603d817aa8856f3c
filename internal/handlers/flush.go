package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// FlushRequest represents the administrative reset request body.
type FlushRequest struct {
	Confirm string `json:"confirm"`
}

// Flush wipes all platform state: agents, tokens, queues, rooms, blocks and
// the agent archive. Requires the confirm phrase, and in any deployment with
// an admin key configured, a matching X-Admin-Key header.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.adminKeyHash != "":
		key := r.Header.Get("X-Admin-Key")
		if key == "" || bcrypt.CompareHashAndPassword([]byte(h.adminKeyHash), []byte(key)) != nil {
			h.Error(w, http.StatusForbidden, "invalid admin key")
			return
		}
	case !h.development:
		h.Error(w, http.StatusForbidden, "flush requires ADMIN_KEY_HASH in production")
		return
	}

	var req FlushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confirm != "FLUSH_ALL" {
		h.Error(w, http.StatusBadRequest, `Send {"confirm":"FLUSH_ALL"} to confirm`)
		return
	}

	agents := h.engine.Directory.Count()
	_, rooms, _ := h.engine.Registry.Counts()

	h.engine.Flush()
	if err := h.tokens.Flush(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("token flush failed")
	}
	if h.archive != nil {
		if err := h.archive.DeleteAgents(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("archive flush failed")
		}
	}

	h.logger.Info().Int("agents", agents).Int("rooms", rooms).Msg("platform state flushed")
	h.JSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"flushed": map[string]int{"agents": agents, "rooms": rooms},
	})
}
