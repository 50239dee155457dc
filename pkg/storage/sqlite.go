package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/abhisheknishant138/scope/internal/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS view_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore is a Store backed by a SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database at path (":memory:" for a private
// in-memory database), applies the journal pragmas and creates the table.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New("E111").WithDetail("opening " + path).Wrap(err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		sqliteSchema,
	}
	if path != ":memory:" {
		stmts = append([]string{"PRAGMA journal_mode = WAL"}, stmts...)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.New("E110").WithDetail(fmt.Sprintf("executing %q", stmt)).Wrap(err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM view_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.New("E111").Wrap(err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO view_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return errors.New("E110").Wrap(err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
