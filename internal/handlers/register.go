package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openwork-hackathon/team-moltroulette/internal/metrics"
	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url"`
	WalletAddress string `json:"wallet_address"`
}

// RegisterResponse represents the registration response.
type RegisterResponse struct {
	AgentID       string `json:"agent_id"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Token         string `json:"token"`
}

// Register handles agent registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(name) > 50 {
		h.Error(w, http.StatusBadRequest, "name must be at most 50 characters")
		return
	}

	avatar := ""
	if req.AvatarURL != "" {
		avatar = sanitizeAvatarURL(req.AvatarURL)
		if avatar == "" {
			h.Error(w, http.StatusBadRequest, "avatar_url must be a valid HTTP/HTTPS URL")
			return
		}
	}

	wallet := ""
	if req.WalletAddress != "" {
		if !isValidWallet(req.WalletAddress) {
			h.Error(w, http.StatusBadRequest, "wallet_address must be a valid address (0x + 40 hex chars)")
			return
		}
		wallet = req.WalletAddress
	}

	agent, cerr := h.engine.Directory.Register(name, avatar, wallet)
	if cerr != nil {
		// Reconnect path: a caller holding a valid token for this exact name
		// gets their existing agent back instead of a conflict.
		if existing := h.reconnect(r, name); existing != nil {
			h.JSON(w, http.StatusOK, *existing)
			return
		}
		h.CoreError(w, cerr)
		return
	}

	token, err := h.tokens.Issue(r.Context(), agent.AgentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("token issue failed")
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	if h.archive != nil {
		if err := h.archive.SaveAgent(r.Context(), agent); err != nil {
			// Archive writes are best-effort; the in-memory directory is
			// authoritative.
			h.logger.Warn().Err(err).Str("agent_id", agent.AgentID).Msg("agent archive write failed")
		}
	}

	metrics.AgentsRegistered.Inc()
	h.JSON(w, http.StatusCreated, RegisterResponse{
		AgentID:       agent.AgentID,
		Name:          agent.Name,
		AvatarURL:     agent.AvatarURL,
		WalletAddress: agent.WalletAddress,
		Token:         token,
	})
}

// reconnect resolves the bearer token, if any, and returns the existing
// registration when the token's owner matches the requested name.
func (h *Handler) reconnect(r *http.Request, name string) *RegisterResponse {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	agentID, err := h.tokens.Resolve(r.Context(), token)
	if err != nil {
		return nil
	}
	agent := h.engine.Directory.Get(agentID)
	if agent == nil || !strings.EqualFold(agent.Name, name) {
		return nil
	}
	return &RegisterResponse{
		AgentID:       agent.AgentID,
		Name:          agent.Name,
		AvatarURL:     agent.AvatarURL,
		WalletAddress: agent.WalletAddress,
		Token:         token,
	}
}

// AgentListResponse represents the public agent listing.
type AgentListResponse struct {
	Agents []models.AgentRef `json:"agents"`
	Total  int               `json:"total"`
}

// ListAgents handles the public agent listing (GET on the register endpoint).
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := h.engine.Directory.List()
	refs := make([]models.AgentRef, 0, len(agents))
	for _, a := range agents {
		refs = append(refs, a.Ref())
	}
	h.JSON(w, http.StatusOK, AgentListResponse{Agents: refs, Total: len(refs)})
}
