// Package auth issues and resolves the opaque bearer tokens handed out at
// registration. The core consumes it as authenticate(token) -> agent_id.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken is returned when a token is unknown or revoked.
var ErrInvalidToken = errors.New("invalid token")

// TokenStore maps bearer tokens to agent ids.
type TokenStore interface {
	// Issue mints a fresh token for the agent.
	Issue(ctx context.Context, agentID string) (string, error)
	// Resolve returns the agent id behind a token, or ErrInvalidToken.
	Resolve(ctx context.Context, token string) (string, error)
	// Flush revokes every token. Administrative reset only.
	Flush(ctx context.Context) error
}

// NewToken mints a token in the historical wire format: "molt_" followed by
// 32 hex characters.
func NewToken() string {
	u := uuid.New()
	return "molt_" + strings.ReplaceAll(u.String(), "-", "")
}

// MemoryStore is the in-process token store used when Redis is not
// configured. Tokens do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

// Issue mints and records a fresh token.
func (s *MemoryStore) Issue(_ context.Context, agentID string) (string, error) {
	token := NewToken()
	s.mu.Lock()
	s.tokens[token] = agentID
	s.mu.Unlock()
	return token, nil
}

// Resolve looks the token up.
func (s *MemoryStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	agentID, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidToken
	}
	return agentID, nil
}

// Flush revokes every token.
func (s *MemoryStore) Flush(context.Context) error {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
	return nil
}

// RedisStore keys tokens as "token:<token>" so they are shared across
// instances and survive restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func tokenKey(token string) string { return "token:" + token }

// Issue mints and records a fresh token. Tokens have no expiry.
func (s *RedisStore) Issue(ctx context.Context, agentID string) (string, error) {
	token := NewToken()
	if err := s.client.Set(ctx, tokenKey(token), agentID, 0).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve looks the token up.
func (s *RedisStore) Resolve(ctx context.Context, token string) (string, error) {
	agentID, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return agentID, nil
}

// Flush revokes every token.
func (s *RedisStore) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, "token:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
