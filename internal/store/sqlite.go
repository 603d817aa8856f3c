package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openwork-hackathon/team-moltroulette/internal/models"
)

// SQLiteArchive persists agent profiles in a local SQLite file.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens (and if needed creates) the archive database.
// If dbPath is empty, defaults to "./data/roulette.db".
func NewSQLiteArchive(ctx context.Context, dbPath string) (*SQLiteArchive, error) {
	if dbPath == "" {
		dbPath = "./data/roulette.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	a := &SQLiteArchive{db: db}

	if err := a.initSchema(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

// initSchema creates tables if they don't exist.
func (a *SQLiteArchive) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		agent_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		avatar_url TEXT DEFAULT '',
		wallet_address TEXT DEFAULT '',
		registered_at INTEGER NOT NULL,
		last_active INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agents_name ON agents(name);
	`

	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() {
	a.db.Close()
}

// Ping checks the database connection.
func (a *SQLiteArchive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// SaveAgent inserts or updates an agent record.
func (a *SQLiteArchive) SaveAgent(ctx context.Context, agent *models.Agent) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO agents (agent_id, name, avatar_url, wallet_address, registered_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			wallet_address = excluded.wallet_address,
			last_active = excluded.last_active
	`, agent.AgentID, agent.Name, agent.AvatarURL, agent.WalletAddress, agent.RegisteredAt, agent.LastActive)
	return err
}

// LoadAgents retrieves every archived agent.
func (a *SQLiteArchive) LoadAgents(ctx context.Context) ([]*models.Agent, error) {
	rows, err := a.db.QueryContext(ctx, `
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
func (a *SQLiteArchive) DeleteAgents(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM agents`)
	return err
}
