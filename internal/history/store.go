// Package history persists every executed command in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	// SQLite driver (required for database/sql registration).
	_ "github.com/mattn/go-sqlite3"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Entry is one executed command and its outcome.
type Entry struct {
	ID         string
	Text       string
	Intent     intent.Intent
	Confidence intent.Confidence
	Parameters intent.Parameters
	Result     string

	// Code is the error code of a failed command, empty on success
	Code string

	Duration  time.Duration
	CreatedAt time.Time
}

// Success reports whether the command completed without an error code.
func (e Entry) Success() bool {
	return e.Code == ""
}

// NewEntry builds an entry for cmd with a fresh ID.
func NewEntry(cmd intent.ParsedCommand, result, code string, d time.Duration) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Text:       cmd.OriginalText,
		Intent:     cmd.Intent,
		Confidence: cmd.Confidence,
		Parameters: cmd.Parameters.Clone(),
		Result:     result,
		Code:       code,
		Duration:   d,
		CreatedAt:  time.Now(),
	}
}

// Store is the command history database.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path, creating it and its schema if
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// openDB opens a single SQLite database with optimal settings.
func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ============================================================
// SCHEMA
// ============================================================

const schemaVersion = 1

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id              TEXT PRIMARY KEY,
		text            TEXT NOT NULL,
		intent          TEXT NOT NULL,
		confidence      REAL NOT NULL DEFAULT 0,
		params_json     TEXT,
		result          TEXT NOT NULL,
		error_code      TEXT NOT NULL DEFAULT '',
		duration_ms     INTEGER NOT NULL DEFAULT 0,
		created_at      INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_commands_created ON commands(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_commands_intent ON commands(intent);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (?, ?)`,
		schemaVersion, "command history",
	)
	return err
}

// ============================================================
// QUERIES
// ============================================================

// Record stores an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	params, err := json.Marshal(e.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commands (id, text, intent, confidence, params_json, result, error_code, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Text, string(e.Intent), float64(e.Confidence), string(params),
		e.Result, e.Code, e.Duration.Milliseconds(), e.CreatedAt.UnixMilli(),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, intent, confidence, params_json, result, error_code, duration_ms, created_at
		FROM commands
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			in         string
			conf       float64
			params     sql.NullString
			durationMs int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.Text, &in, &conf, &params, &e.Result, &e.Code, &durationMs, &createdAt); err != nil {
			return nil, err
		}
		e.Intent = intent.Parse(in)
		e.Confidence = intent.Confidence(conf)
		e.Parameters = intent.Parameters{}
		if params.Valid && params.String != "" && params.String != "null" {
			if err := json.Unmarshal([]byte(params.String), &e.Parameters); err != nil {
				return nil, fmt.Errorf("decode parameters of %s: %w", e.ID, err)
			}
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByIntent returns how many commands were recorded per intent.
func (s *Store) CountByIntent(ctx context.Context) (map[intent.Intent]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT intent, COUNT(*) FROM commands GROUP BY intent`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[intent.Intent]int)
	for rows.Next() {
		var in string
		var n int
		if err := rows.Scan(&in, &n); err != nil {
			return nil, err
		}
		counts[intent.Parse(in)] += n
	}
	return counts, rows.Err()
}
