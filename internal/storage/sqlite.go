package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryEntry is one recorded assembly. It captures the telemetry the
// builder reports, e.g. to compute token-reduction ratios over time.
type HistoryEntry struct {
	ID          int64
	MilestoneID string
	Task        string
	Tier        string
	TokensUsed  int
	MaxTokens   int
	Symbols     int
	Escalations int
	CreatedAt   time.Time
}

// SQLite persists assembly history.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the history database at dsn.
func OpenSQLite(dsn string) (*SQLite, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS assemblies (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		milestone   TEXT NOT NULL,
		task        TEXT NOT NULL,
		tier        TEXT NOT NULL,
		tokens_used INTEGER NOT NULL,
		max_tokens  INTEGER NOT NULL,
		symbols     INTEGER NOT NULL,
		escalations INTEGER NOT NULL,
		created_at  TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// SaveAssembly appends one history row.
func (s *SQLite) SaveAssembly(e HistoryEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO assemblies (milestone, task, tier, tokens_used, max_tokens, symbols, escalations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.MilestoneID, e.Task, e.Tier, e.TokensUsed, e.MaxTokens, e.Symbols, e.Escalations, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save assembly history: %w", err)
	}
	return nil
}

// Recent returns the latest n assemblies, newest first.
func (s *SQLite) Recent(n int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, milestone, task, tier, tokens_used, max_tokens, symbols, escalations, created_at
		 FROM assemblies ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.MilestoneID, &e.Task, &e.Tier, &e.TokensUsed, &e.MaxTokens, &e.Symbols, &e.Escalations, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
