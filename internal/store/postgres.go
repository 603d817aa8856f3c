package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// PostgresArchive persists agent profiles in PostgreSQL, for deployments
// where instances share a database.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// NewPostgresArchive creates an archive backed by a pgx connection pool.
func NewPostgresArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	a := &PostgresArchive{pool: pool}

	if err := a.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return a, nil
}

func (a *PostgresArchive) initSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS agents (
			agent_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			wallet_address TEXT NOT NULL DEFAULT '',
			registered_at BIGINT NOT NULL,
			last_active BIGINT NOT NULL
		)
	`)
	return err
}

// Close closes the connection pool.
func (a *PostgresArchive) Close() {
	a.pool.Close()
}

// Ping checks the database connection.
func (a *PostgresArchive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// SaveAgent inserts or updates an agent record.
func (a *PostgresArchive) SaveAgent(ctx context.Context, agent *models.Agent) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO agents (agent_id, name, avatar_url, wallet_address, registered_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (agent_id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			wallet_address = EXCLUDED.wallet_address,
			last_active = EXCLUDED.last_active
	`, agent.AgentID, agent.Name, agent.AvatarURL, agent.WalletAddress, agent.RegisteredAt, agent.LastActive)
	return err
}

// LoadAgents retrieves every archived agent.
func (a *PostgresArchive) LoadAgents(ctx context.Context) ([]*models.Agent, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT agent_id, name, avatar_url, wallet_address, registered_at, last_active
		FROM agents
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*models.Agent
	for rows.Next() {
		agent := &models.Agent{}
		err := rows.Scan(
			&agent.AgentID,
			&agent.Name,
			&agent.AvatarURL,
			&agent.WalletAddress,
			&agent.RegisteredAt,
			&agent.LastActive,
		)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	return agents, rows.Err()
}

// DeleteAgents removes every archived agent.
func (a *PostgresArchive) DeleteAgents(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM agents`)
	return err
}
