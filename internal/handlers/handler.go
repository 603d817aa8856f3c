package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openwork-hackathon/team-moltroulette/internal/auth"
	"github.com/openwork-hackathon/team-moltroulette/internal/core"
	"github.com/openwork-hackathon/team-moltroulette/internal/store"
)

// walletRegex validates Ethereum-style wallet addresses.
var walletRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	engine       *core.Engine
	tokens       auth.TokenStore
	archive      store.Archive // optional, nil disables persistence
	logger       zerolog.Logger
	adminKeyHash string
	development  bool
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(engine *core.Engine, tokens auth.TokenStore, archive store.Archive, logger zerolog.Logger, adminKeyHash string, development bool) *Handler {
	return &Handler{
		engine:       engine,
		tokens:       tokens,
		archive:      archive,
		logger:       logger,
		adminKeyHash: adminKeyHash,
		development:  development,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// CoreError sends a typed core error with its mapped status code. The error
// struct itself is the wire shape: kind, message and any retry/remediation
// fields.
func (h *Handler) CoreError(w http.ResponseWriter, err *core.Error) {
	h.JSON(w, err.HTTPStatus(), err)
}

// sanitizeAvatarURL returns the trimmed URL if it is a parseable http/https
// URL, otherwise "".
func sanitizeAvatarURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return ""
	}
	if _, err := url.Parse(trimmed); err != nil {
		return ""
	}
	return trimmed
}

// isValidWallet validates wallet addresses (0x + 40 hex chars).
func isValidWallet(wallet string) bool {
	return walletRegex.MatchString(wallet)
}
