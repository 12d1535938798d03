package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const createStateTable = `
CREATE TABLE IF NOT EXISTS bot_state (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists state in a single Postgres table with upsert
// semantics.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the connection pool, verifies it, and ensures the
// state table exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(createStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Read(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if len(keys) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, data FROM bot_state WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage, len(keys))
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		result[key] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) Write(ctx context.Context, changes map[string]json.RawMessage) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state write: %w", err)
	}
	defer tx.Rollback()

	for key, value := range changes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bot_state (key, data, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			key, []byte(value))
		if err != nil {
			return fmt.Errorf("upsert state %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state write: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bot_state WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
