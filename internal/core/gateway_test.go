package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

func newTestGateway(t *testing.T) (*Gateway, *Registry, *Directory, *models.Room, func(int64)) {
	t.Helper()
	registry := newTestRegistry()
	directory := NewDirectory()
	a, _ := directory.Register("Alice", "", "")
	b, _ := directory.Register("Bob", "", "")

	room, busy := registry.TryCreate(a.Ref(), b.Ref(), false, 0)
	require.Empty(t, busy)

	g := NewGateway(registry, directory, 30*time.Second)
	clock := int64(0)
	g.now = func() int64 { return clock }
	return g, registry, directory, room, func(ts int64) { clock = ts }
}

func agentIDByName(d *Directory, name string) string {
	return d.GetByName(name).AgentID
}

func TestGatewayPostAndRead(t *testing.T) {
	g, _, d, room, setClock := newTestGateway(t)
	alice := agentIDByName(d, "Alice")

	setClock(1000)
	msg, cerr := g.Post(room.ID, alice, "  hello  ")
	require.Nil(t, cerr)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "Alice", msg.AgentName)
	assert.Equal(t, int64(1000), msg.TS)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.System)

	msgs, total, cerr := g.Read(room.ID, 0)
	require.Nil(t, cerr)
	assert.Equal(t, 1, total)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestGatewayRateLimit(t *testing.T) {
	g, _, d, room, setClock := newTestGateway(t)
	alice := agentIDByName(d, "Alice")
	bob := agentIDByName(d, "Bob")

	setClock(1000)
	_, cerr := g.Post(room.ID, alice, "first")
	require.Nil(t, cerr)

	// 12.5s in: 17.5s remain, reported as a whole 18
	setClock(13_500)
	_, cerr = g.Post(room.ID, alice, "too soon")
	require.NotNil(t, cerr)
	assert.Equal(t, KindRateLimited, cerr.Kind)
	assert.Equal(t, 18, cerr.RetryAfter)

	// the partner has their own window
	_, cerr = g.Post(room.ID, bob, "unrelated")
	require.Nil(t, cerr)

	// a rejected post must not have been appended
	_, total, _ := g.Read(room.ID, 0)
	assert.Equal(t, 2, total)

	setClock(31_001)
	_, cerr = g.Post(room.ID, alice, "second")
	assert.Nil(t, cerr)
}

func TestGatewayRateLimitIgnoresSystemMessages(t *testing.T) {
	g, registry, d, room, setClock := newTestGateway(t)
	alice := agentIDByName(d, "Alice")

	setClock(1000)
	_, cerr := g.Post(room.ID, alice, "first")
	require.Nil(t, cerr)

	// inject a system notice attributed to alice well after her message
	rs := registry.state(room.ID)
	rs.mu.Lock()
	rs.room.Messages = append(rs.room.Messages, models.Message{
		ID: "sys", AgentID: alice, Text: "<Boring>", TS: 40_000, System: true,
	})
	rs.mu.Unlock()

	setClock(45_000)
	_, cerr = g.Post(room.ID, alice, "after notice")
	assert.Nil(t, cerr)
}

func TestGatewayPostValidation(t *testing.T) {
	g, registry, d, room, setClock := newTestGateway(t)
	alice := agentIDByName(d, "Alice")
	setClock(1000)

	_, cerr := g.Post("room-9999", alice, "hi")
	require.NotNil(t, cerr)
	assert.Equal(t, KindNotFound, cerr.Kind)

	_, cerr = g.Post(room.ID, alice, "   ")
	require.NotNil(t, cerr)
	assert.Equal(t, KindValidation, cerr.Kind)
	assert.Equal(t, "text", cerr.Field)

	_, cerr = g.Post(room.ID, alice, strings.Repeat("x", MaxMessageLen+1))
	require.NotNil(t, cerr)
	assert.Equal(t, KindValidation, cerr.Kind)

	_, cerr = g.Post(room.ID, "agent-99-stranger", "hi")
	require.NotNil(t, cerr)
	assert.Equal(t, KindNotMember, cerr.Kind)

	// membership outranks text validation
	_, cerr = g.Post(room.ID, "agent-99-stranger", "   ")
	require.NotNil(t, cerr)
	assert.Equal(t, KindNotMember, cerr.Kind)

	registry.End(room.ID, alice, models.EndReasonLeft, nil, 2000)
	_, cerr = g.Post(room.ID, alice, "too late")
	require.NotNil(t, cerr)
	assert.Equal(t, KindRoomEnded, cerr.Kind)

	// and so does the room's state: blank text to an ended room reads as
	// room_ended, not validation
	_, cerr = g.Post(room.ID, alice, "   ")
	require.NotNil(t, cerr)
	assert.Equal(t, KindRoomEnded, cerr.Kind)
}

func TestGatewayReadSinceFilter(t *testing.T) {
	g, _, d, room, setClock := newTestGateway(t)
	alice := agentIDByName(d, "Alice")
	bob := agentIDByName(d, "Bob")

	setClock(1000)
	_, cerr := g.Post(room.ID, alice, "one")
	require.Nil(t, cerr)
	setClock(2000)
	_, cerr = g.Post(room.ID, bob, "two")
	require.Nil(t, cerr)
	setClock(40_000) // past alice's rate-limit window
	_, cerr = g.Post(room.ID, alice, "three")
	require.Nil(t, cerr)

	msgs, total, cerr := g.Read(room.ID, 2000)
	require.Nil(t, cerr)
	assert.Equal(t, 3, total)
	require.Len(t, msgs, 1) // strictly greater than since
	assert.Equal(t, "three", msgs[0].Text)
}

func TestGatewayReadDoesNotRefreshActivity(t *testing.T) {
	g, registry, _, room, setClock := newTestGateway(t)
	setClock(1000)

	before := registry.Get(room.ID).LastActivity
	_, _, cerr := g.Read(room.ID, 0)
	require.Nil(t, cerr)
	assert.Equal(t, before, registry.Get(room.ID).LastActivity)
}

func TestGatewayReadEndedRoomInsideVisibility(t *testing.T) {
	g, registry, d, room, setClock := newTestGateway(t)
	alice := agentIDByName(d, "Alice")

	setClock(1000)
	g.Post(room.ID, alice, "parting words")
	registry.End(room.ID, alice, models.EndReasonLeft, nil, 2000)

	msgs, total, cerr := g.Read(room.ID, 0)
	require.Nil(t, cerr)
	assert.Equal(t, 1, total)
	assert.Len(t, msgs, 1)
}
