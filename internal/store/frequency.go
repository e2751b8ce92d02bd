package store

import (
	"context"
	"database/sql"
	"fmt"
)

// LoadFrequency returns persisted domain-appearance counters.
func (s *Store) LoadFrequency(ctx context.Context) (counts map[string]int, totalSearches int, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain, count FROM domain_frequency;`)
	if err != nil {
		return nil, 0, fmt.Errorf("load frequency: %w", err)
	}
	defer rows.Close()

	counts = map[string]int{}
	for rows.Next() {
		var d string
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, 0, err
		}
		counts[d] = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT total_searches FROM frequency_meta WHERE id = 1;`).Scan(&totalSearches)
	if err == sql.ErrNoRows {
		return counts, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load frequency meta: %w", err)
	}
	return counts, totalSearches, nil
}

// SaveFrequency replaces the persisted counters with the tracker snapshot.
func (s *Store) SaveFrequency(ctx context.Context, counts map[string]int, totalSearches int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM domain_frequency;`); err != nil {
		return fmt.Errorf("save frequency: %w", err)
	}
	for d, n := range counts {
		if _, err := tx.Exec(
			`INSERT INTO domain_frequency (domain, count) VALUES (?, ?);`, d, n); err != nil {
			return fmt.Errorf("save frequency: %w", err)
		}
	}
	if _, err := tx.Exec(`
INSERT INTO frequency_meta (id, total_searches) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET total_searches = excluded.total_searches;`, totalSearches); err != nil {
		return fmt.Errorf("save frequency meta: %w", err)
	}
	return tx.Commit()
}
