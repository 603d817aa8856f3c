package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChecker is a canned eligibility answer with a call counter.
type stubChecker struct {
	mu       sync.Mutex
	eligible bool
	err      error
	calls    int
}

func (s *stubChecker) IsEligible(_ context.Context, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.eligible, s.err
}

type testEngine struct {
	*Engine
	clock int64
}

func newTestEngine(t *testing.T, checker EligibilityChecker) *testEngine {
	t.Helper()
	if checker == nil {
		checker = &stubChecker{eligible: true}
	}
	e := NewEngine(DefaultConfig(), checker)
	te := &testEngine{Engine: e, clock: 1_000_000}
	e.SetClock(func() int64 { return te.clock })
	return te
}

func (te *testEngine) register(t *testing.T, name, wallet string) string {
	t.Helper()
	a, cerr := te.Directory.Register(name, "", wallet)
	require.Nil(t, cerr)
	return a.AgentID
}

func TestRequestMatchQueuesFirstAgent(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Alice", "")

	res, cerr := te.RequestMatch(context.Background(), a, false)
	require.Nil(t, cerr)
	assert.False(t, res.Matched)
	assert.True(t, res.Queued)
	assert.Equal(t, 1, res.Position)
}

func TestRequestMatchPairsSecondAgent(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Alice", "")
	b := te.register(t, "Bob", "")

	_, cerr := te.RequestMatch(context.Background(), a, false)
	require.Nil(t, cerr)

	res, cerr := te.RequestMatch(context.Background(), b, false)
	require.Nil(t, cerr)
	require.True(t, res.Matched)
	assert.True(t, res.Fresh)
	assert.False(t, res.Initiator) // the waiter initiates
	assert.Equal(t, a, res.Partner.AgentID)
	assert.Equal(t, "Alice", res.Partner.Name)
	assert.NotEmpty(t, res.RoomID)

	// the waiter's next poll sees the same room from the other side
	poll := te.PollMatch(a)
	require.True(t, poll.Matched)
	assert.Equal(t, res.RoomID, poll.RoomID)
	assert.True(t, poll.Initiator)
	assert.Equal(t, b, poll.Partner.AgentID)

	// queue drained
	assert.Equal(t, 0, te.Queues.Len(QueueStandard))
}

func TestRequestMatchIsIdempotentWhileMatched(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Alice", "")
	b := te.register(t, "Bob", "")

	te.RequestMatch(context.Background(), a, false)
	first, _ := te.RequestMatch(context.Background(), b, false)

	again, cerr := te.RequestMatch(context.Background(), b, false)
	require.Nil(t, cerr)
	require.True(t, again.Matched)
	assert.False(t, again.Fresh)
	assert.Equal(t, first.RoomID, again.RoomID)
}

func TestRequestMatchUnregisteredAgent(t *testing.T) {
	te := newTestEngine(t, nil)
	_, cerr := te.RequestMatch(context.Background(), "agent-1-ghost", false)
	require.NotNil(t, cerr)
	assert.Equal(t, KindValidation, cerr.Kind)
}

func TestRequestMatchSkipsBlockedCandidates(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Alice", "")
	b := te.register(t, "Bob", "")
	c := te.register(t, "Carol", "")

	te.Blocklist.Block(a, b, te.clock)

	te.RequestMatch(context.Background(), a, false)
	res, cerr := te.RequestMatch(context.Background(), b, false)
	require.Nil(t, cerr)
	assert.False(t, res.Matched)
	assert.True(t, res.Queued)
	assert.Equal(t, 2, res.Position) // behind the waiter it may not touch

	// a third party pairs with the head of the queue
	res, cerr = te.RequestMatch(context.Background(), c, false)
	require.Nil(t, cerr)
	require.True(t, res.Matched)
	assert.Equal(t, a, res.Partner.AgentID)

	// the blocked agent keeps waiting, now at the head
	poll := te.PollMatch(b)
	assert.True(t, poll.Queued)
	assert.Equal(t, 1, poll.Position)
}

func TestRequestMatchEarliestWaiterInitiates(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Alice", "")
	b := te.register(t, "Bob", "")

	te.RequestMatch(context.Background(), a, false)
	te.clock += 1000
	res, _ := te.RequestMatch(context.Background(), b, false)

	require.True(t, res.Matched)
	assert.False(t, res.Initiator)
	room := te.Registry.Get(res.RoomID)
	assert.Equal(t, a, room.Initiator)
}

func TestRequestMatchEvictsStaleEntries(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Alice", "")
	b := te.register(t, "Bob", "")

	te.RequestMatch(context.Background(), a, false)

	// Alice's entry ages past the queue timeout before Bob shows up.
	te.clock += 5*time.Minute.Milliseconds() + 1
	res, cerr := te.RequestMatch(context.Background(), b, false)
	require.Nil(t, cerr)
	assert.False(t, res.Matched)
	assert.True(t, res.Queued)
	assert.Equal(t, 1, res.Position)
	assert.Equal(t, 0, te.Queues.PositionOf(QueueStandard, a))
}

func TestEliteQueueRequiresWallet(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Walletless", "")

	_, cerr := te.RequestMatch(context.Background(), a, true)
	require.NotNil(t, cerr)
	assert.Equal(t, KindEligibility, cerr.Kind)
	assert.Equal(t, "wallet_address", cerr.Field)
}

func TestEliteQueueRequiresBalance(t *testing.T) {
	checker := &stubChecker{eligible: false}
	te := newTestEngine(t, checker)
	a := te.register(t, "Poor", "0x1111111111111111111111111111111111111111")

	_, cerr := te.RequestMatch(context.Background(), a, true)
	require.NotNil(t, cerr)
	assert.Equal(t, KindEligibility, cerr.Kind)
	assert.Equal(t, 1, checker.calls)
	assert.Equal(t, 0, te.Queues.Len(QueueElite))
}

func TestEliteQueueCheckerErrorIsIneligible(t *testing.T) {
	checker := &stubChecker{eligible: true, err: errors.New("rpc down")}
	te := newTestEngine(t, checker)
	a := te.register(t, "Unlucky", "0x1111111111111111111111111111111111111111")

	_, cerr := te.RequestMatch(context.Background(), a, true)
	require.NotNil(t, cerr)
	assert.Equal(t, KindEligibility, cerr.Kind)
}

func TestEliteQueueMatchesSeparately(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Rich", "0x1111111111111111111111111111111111111111")
	b := te.register(t, "Standard", "")
	c := te.register(t, "Richer", "0x2222222222222222222222222222222222222222")

	res, cerr := te.RequestMatch(context.Background(), a, true)
	require.Nil(t, cerr)
	assert.True(t, res.Queued)

	// a standard request never sees the elite waiter
	res, _ = te.RequestMatch(context.Background(), b, false)
	assert.True(t, res.Queued)

	res, cerr = te.RequestMatch(context.Background(), c, true)
	require.Nil(t, cerr)
	require.True(t, res.Matched)
	assert.True(t, res.Elite)
	assert.Equal(t, a, res.Partner.AgentID)

	room := te.Registry.Get(res.RoomID)
	assert.True(t, room.Elite)
}

func TestSwitchingQueuesAbandonsOldEntry(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Fickle", "0x1111111111111111111111111111111111111111")

	res, cerr := te.RequestMatch(context.Background(), a, false)
	require.Nil(t, cerr)
	require.True(t, res.Queued)

	res, cerr = te.RequestMatch(context.Background(), a, true)
	require.Nil(t, cerr)
	require.True(t, res.Queued)
	assert.Equal(t, 1, res.Position)
	assert.Equal(t, 0, te.Queues.PositionOf(QueueStandard, a))
	assert.Equal(t, 1, te.Queues.PositionOf(QueueElite, a))

	// and back again
	res, cerr = te.RequestMatch(context.Background(), a, false)
	require.Nil(t, cerr)
	require.True(t, res.Queued)
	assert.Equal(t, 0, te.Queues.PositionOf(QueueElite, a))
	assert.Equal(t, 1, te.Queues.PositionOf(QueueStandard, a))
}

func TestPollMatchReportsNothingForIdleAgent(t *testing.T) {
	te := newTestEngine(t, nil)
	a := te.register(t, "Idle", "")

	res := te.PollMatch(a)
	assert.False(t, res.Matched)
	assert.False(t, res.Queued)

	// polling never enqueues
	assert.Equal(t, 0, te.Queues.Len(QueueStandard))
}

func TestConcurrentRequestsNeverDoubleBook(t *testing.T) {
	te := newTestEngine(t, nil)

	const n = 20
	ids := make([]string, n)
	for i := range ids {
		ids[i] = te.register(t, fmt.Sprintf("Agent%02d", i), "")
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(agentID string) {
			defer wg.Done()
			_, cerr := te.RequestMatch(context.Background(), agentID, false)
			assert.Nil(t, cerr)
		}(id)
	}
	wg.Wait()

	// every agent ends up in exactly one room or in the queue, never both
	seen := make(map[string]string)
	for _, sum := range te.Registry.List(FilterActive) {
		for _, a := range sum.Agents {
			_, dup := seen[a.AgentID]
			assert.False(t, dup, "agent %s in two rooms", a.AgentID)
			seen[a.AgentID] = sum.ID
		}
	}
	for _, e := range te.Queues.Entries(QueueStandard) {
		_, dup := seen[e.AgentID]
		assert.False(t, dup, "agent %s queued while matched", e.AgentID)
		seen[e.AgentID] = "queue"
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n/2, len(te.Registry.List(FilterActive)))
}
