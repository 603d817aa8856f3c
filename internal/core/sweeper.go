package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper runs the engine's lifecycle cleanup on a periodic tick, in addition
// to the opportunistic sweeps mutating operations already perform. Ticks
// acquire the same per-queue and per-room critical sections as requests, so
// they never race a mutation.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper ticking at the given interval.
func NewSweeper(engine *Engine, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{engine: engine, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			queueEvicted, roomsEnded, roomsEvicted := s.engine.Sweep()
			if queueEvicted+roomsEnded+roomsEvicted > 0 {
				s.logger.Info().
					Int("queue_evicted", queueEvicted).
					Int("rooms_ended", roomsEnded).
					Int("rooms_evicted", roomsEvicted).
					Msg("lifecycle sweep")
			}
		}
	}
}
