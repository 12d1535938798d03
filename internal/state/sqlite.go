package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const createSqliteStateTable = `
CREATE TABLE IF NOT EXISTS bot_state (
	key        TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// SqliteStore persists state in a local SQLite file. Suits single-process
// deployments that want durability without an external server.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database file and ensures the state
// table exists.
func NewSqliteStore(path string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(createSqliteStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Read(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if len(keys) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, data FROM bot_state WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage, len(keys))
	for rows.Next() {
		var key, data string
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

func (s *SqliteStore) Write(ctx context.Context, changes map[string]json.RawMessage) error {
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
			VALUES (?, ?, datetime('now'))
			ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = datetime('now')`,
			key, string(value))
		if err != nil {
			return fmt.Errorf("upsert state %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state write: %w", err)
	}
	return nil
}

func (s *SqliteStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM bot_state WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// Close closes the database file.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}
