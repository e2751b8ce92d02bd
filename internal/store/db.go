package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the durable checkpoint database: per-record outcomes, run state,
// the blocklist, and domain-frequency counters all live here.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db: %w", err)
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping checkpoint db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate checkpoint db: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
  company_number TEXT PRIMARY KEY,
  company_name TEXT NOT NULL,
  postcode TEXT NOT NULL DEFAULT '',
  sic_codes TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  confidence REAL NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  title TEXT NOT NULL DEFAULT '',
  snippet TEXT NOT NULL DEFAULT '',
  domain_match REAL NOT NULL DEFAULT 0,
  tld_relevance REAL NOT NULL DEFAULT 0,
  position_score REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  error_message TEXT NOT NULL DEFAULT '',
  processed_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status);`,
		`CREATE TABLE IF NOT EXISTS run_state (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  run_id TEXT NOT NULL,
  input_file TEXT NOT NULL,
  output_file TEXT NOT NULL,
  total INTEGER NOT NULL,
  processed INTEGER NOT NULL,
  last_company_number TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  started_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS blocklist (
  domain TEXT PRIMARY KEY,
  added_at TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS domain_frequency (
  domain TEXT PRIMARY KEY,
  count INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS frequency_meta (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  total_searches INTEGER NOT NULL
);`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
