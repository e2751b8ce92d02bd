package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AddBlockedDomain inserts a domain; returns false if it was already there.
func (s *Store) AddBlockedDomain(ctx context.Context, d string) (bool, error) {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" {
		return false, fmt.Errorf("blocklist domain is empty")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO blocklist (domain, added_at) VALUES (?, ?);`,
		d, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("add blocked domain: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveBlockedDomain deletes a domain; returns false if it wasn't there.
func (s *Store) RemoveBlockedDomain(ctx context.Context, d string) (bool, error) {
	d = strings.ToLower(strings.TrimSpace(d))
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocklist WHERE domain = ?;`, d)
	if err != nil {
		return false, fmt.Errorf("remove blocked domain: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// BlockedDomains returns the stored blocklist, sorted.
func (s *Store) BlockedDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM blocklist ORDER BY domain;`)
	if err != nil {
		return nil, fmt.Errorf("list blocked domains: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SeedBlocklist merges config-file entries into the durable blocklist.
// Existing rows win; nothing is removed.
func (s *Store) SeedBlocklist(ctx context.Context, entries []string) error {
	for _, e := range entries {
		if _, err := s.AddBlockedDomain(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
