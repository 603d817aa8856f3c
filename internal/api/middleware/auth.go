package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openwork-hackathon/team-moltroulette/internal/auth"
)

type contextKey string

const agentIDContextKey contextKey = "agent_id"

// AuthMiddleware resolves the Authorization bearer token to an agent id.
type AuthMiddleware struct {
	tokens auth.TokenStore
}

// NewAuthMiddleware creates the bearer-token middleware.
func NewAuthMiddleware(tokens auth.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireToken rejects requests without a valid bearer token and stores the
// resolved agent id in the request context. Handlers still verify that the id
// in the body matches the token's owner.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			jsonError(w, http.StatusUnauthorized, "Missing Authorization header. Use: Bearer <token> from /api/register")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		agentID, err := m.tokens.Resolve(r.Context(), token)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Invalid token. Register via POST /api/register to get a token.")
			return
		}

		ctx := context.WithValue(r.Context(), agentIDContextKey, agentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AgentIDFromContext retrieves the authenticated agent id, or "".
func AgentIDFromContext(ctx context.Context) string {
	agentID, _ := ctx.Value(agentIDContextKey).(string)
	return agentID
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
