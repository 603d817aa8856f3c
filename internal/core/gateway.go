package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// MaxMessageLen is the longest accepted message text, after trimming.
const MaxMessageLen = 5000

// Gateway is admission control for a room's message log: membership, room
// state, text validation and the per-sender rate limit.
type Gateway struct {
	registry  *Registry
	directory *Directory
	rateLimit time.Duration

	now func() int64
}

// NewGateway creates a message gateway over the given registry.
func NewGateway(registry *Registry, directory *Directory, rateLimit time.Duration) *Gateway {
	return &Gateway{
		registry:  registry,
		directory: directory,
		rateLimit: rateLimit,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// Post validates and appends a message. Validation order: room exists, room
// active, sender is a member, text valid, rate limit. The whole sequence runs
// under the room's lock so the read state and the append are indivisible
// relative to other posts to the same room; message order is the append order
// of this critical section, with the wall-clock timestamp only for display
// and filtering.
func (g *Gateway) Post(roomID, agentID, text string) (*models.Message, *Error) {
	rs := g.registry.state(roomID)
	if rs == nil {
		return nil, errNotFound("Room not found")
	}

	sender := g.directory.Get(agentID)
	senderName := agentID
	if sender != nil {
		senderName = sender.Name
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.room.Active {
		return nil, errRoomEnded()
	}
	if !rs.room.Member(agentID) {
		return nil, errNotMember("Not a member of this room")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errValidation("text", "text is required")
	}
	if len(text) > MaxMessageLen {
		return nil, errValidation("text", fmt.Sprintf("text too long (max %d)", MaxMessageLen))
	}

	now := g.now()
	if wait := g.retryAfterLocked(&rs.room, agentID, now); wait > 0 {
		return nil, &Error{
			Kind:       KindRateLimited,
			Message:    fmt.Sprintf("Rate limited. Wait %ds.", wait),
			RetryAfter: wait,
		}
	}

	msg := models.Message{
		ID:        ulid.Make().String(),
		AgentID:   agentID,
		AgentName: senderName,
		Text:      text,
		TS:        now,
	}
	rs.room.Messages = append(rs.room.Messages, msg)
	rs.room.LastActivity = now
	return &msg, nil
}

// retryAfterLocked returns the whole seconds left before the agent may post
// again, or 0. Only the sender's most recent non-system message counts.
func (g *Gateway) retryAfterLocked(room *models.Room, agentID string, now int64) int {
	for i := len(room.Messages) - 1; i >= 0; i-- {
		m := room.Messages[i]
		if m.System || m.AgentID != agentID {
			continue
		}
		elapsed := now - m.TS
		limit := g.rateLimit.Milliseconds()
		if elapsed < limit {
			return int(math.Ceil(float64(limit-elapsed) / 1000))
		}
		return 0
	}
	return 0
}

// Read returns messages with timestamp strictly greater than since, in append
// order, plus the room's total message count. Reads never refresh
// last_activity: spectating a silent room must not keep it alive.
func (g *Gateway) Read(roomID string, since int64) ([]models.Message, int, *Error) {
	rs := g.registry.state(roomID)
	if rs == nil {
		return nil, 0, errNotFound("Room not found")
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]models.Message, 0, len(rs.room.Messages))
	for _, m := range rs.room.Messages {
		if m.TS > since {
			out = append(out, m)
		}
	}
	return out, len(rs.room.Messages), nil
}
