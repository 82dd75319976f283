package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists sessions as one JSONB row per session.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the sessions table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(255) PRIMARY KEY,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return nil
}

// Load retrieves a session by id, returning a new empty session if none exists.
func (p *PostgresStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	const query = `
		SELECT data, updated_at
		FROM sessions
		WHERE id = $1
	`

	var (
		data      []byte
		updatedAt time.Time
	)
	err := p.pool.QueryRow(ctx, query, id).Scan(&data, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return New(id), nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := New(id)
	s.UpdatedAt = updatedAt
	if err := json.Unmarshal(data, &s.Values); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Save upserts the session. Saving an empty session deletes its row.
func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return ErrEmptyID
	}
	if s.Empty() {
		return p.Delete(ctx, s.ID)
	}

	data, err := json.Marshal(s.Values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	const query = `
		INSERT INTO sessions (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		RETURNING updated_at
	`

	if err := p.pool.QueryRow(ctx, query, s.ID, data).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session row.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`

	if _, err := p.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Purge deletes sessions not updated since before.
func (p *PostgresStore) Purge(ctx context.Context, before time.Time) (int, error) {
	const query = `DELETE FROM sessions WHERE updated_at < $1`

	tag, err := p.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
