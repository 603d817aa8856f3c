package core

import (
	"sync"
	"time"
)

// Blocklist records pairs of agents that must not be re-paired. Blocks are
// inserted symmetrically when one agent leaves the other, and by default
// never expire; a non-zero TTL makes them lapse.
type Blocklist struct {
	mu     sync.RWMutex
	blocks map[string]map[string]int64 // blocker -> blocked -> blocked-at (ms)
	ttl    time.Duration               // 0 = never expires
}

// NewBlocklist creates a blocklist with the given expiry. ttl == 0 matches
// the observed behavior: blocks are permanent.
func NewBlocklist(ttl time.Duration) *Blocklist {
	return &Blocklist{blocks: make(map[string]map[string]int64), ttl: ttl}
}

// Block records that a and b must not be paired again, in both directions.
func (b *Blocklist) Block(a, c string, now int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addLocked(a, c, now)
	b.addLocked(c, a, now)
}

func (b *Blocklist) addLocked(from, to string, now int64) {
	m, ok := b.blocks[from]
	if !ok {
		m = make(map[string]int64)
		b.blocks[from] = m
	}
	m[to] = now
}

// Blocked reports whether a relation exists in either direction.
func (b *Blocklist) Blocked(a, c string, now int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.blockedLocked(a, c, now) || b.blockedLocked(c, a, now)
}

func (b *Blocklist) blockedLocked(from, to string, now int64) bool {
	at, ok := b.blocks[from][to]
	if !ok {
		return false
	}
	if b.ttl > 0 && now-at > b.ttl.Milliseconds() {
		return false
	}
	return true
}

// Flush removes every relation. Administrative reset only.
func (b *Blocklist) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocks = make(map[string]map[string]int64)
}
