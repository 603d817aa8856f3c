// Package store provides optional persistence around the in-memory engine:
// a best-effort archive of agent profiles and the shared Redis connection.
package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// Archive persists agent profiles across restarts. The in-memory directory
// stays authoritative; the archive is write-through and best-effort. Both
// SQLiteArchive and PostgresArchive implement this interface.
type Archive interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Agent operations
	SaveAgent(ctx context.Context, agent *models.Agent) error
	LoadAgents(ctx context.Context) ([]*models.Agent, error)
	DeleteAgents(ctx context.Context) error
}

// NewRedisClient connects and pings a Redis instance from a URL.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
