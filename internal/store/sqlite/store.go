// Package sqlite persists completed run bundles for the history API.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"stock-signals/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Runs beyond this count are pruned on insert.
const maxStoredRuns = 500

// Config configures the SQLite run store.
type Config struct {
	DBPath string // path to SQLite database file, e.g. "data/signals.db"
}

// Store implements model.RunStore on SQLite.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens (creating if needed) the run database with WAL mode and schema.
func New(cfg Config) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer, occasional reader.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			generated_at INTEGER NOT NULL,
			regime       TEXT    NOT NULL,
			bundle       TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs (generated_at DESC);
	`)
	return err
}

// SaveRun persists one bundle and prunes history beyond maxStoredRuns.
func (s *Store) SaveRun(ctx context.Context, b *model.ResultBundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("sqlite: encode bundle: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (generated_at, regime, bundle) VALUES (?, ?, ?)`,
		b.GeneratedAt.Unix(), b.MarketRegime.Regime, string(data),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY generated_at DESC, id DESC LIMIT ?)`,
		maxStoredRuns,
	)
	if err != nil {
		log.Printf("[sqlite] prune runs warning: %v", err)
	}
	return nil
}

// RecentRuns returns the newest n bundles, most recent first.
func (s *Store) RecentRuns(ctx context.Context, n int) ([]*model.ResultBundle, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT bundle FROM runs ORDER BY generated_at DESC, id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query runs: %w", err)
	}
	defer rows.Close()

	var bundles []*model.ResultBundle
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		var b model.ResultBundle
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, fmt.Errorf("sqlite: decode run: %w", err)
		}
		bundles = append(bundles, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate runs: %w", err)
	}
	return bundles, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
