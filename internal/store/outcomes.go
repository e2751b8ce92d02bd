package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"companysift/internal/domain"
)

// HasOutcome reports whether a terminal outcome exists for the company.
// This is the resume skip check.
func (s *Store) HasOutcome(ctx context.Context, companyNumber string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM outcomes WHERE company_number = ? LIMIT 1;`, companyNumber,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has outcome: %w", err)
	}
	return true, nil
}

// UpsertOutcome writes the outcome for a company, replacing any earlier one.
// Single statement, so a crash leaves either the old row or the new one.
func (s *Store) UpsertOutcome(ctx context.Context, o domain.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO outcomes (company_number, company_name, postcode, sic_codes, url,
  confidence, position, title, snippet, domain_match, tld_relevance,
  position_score, status, error_message, processed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(company_number) DO UPDATE SET
  company_name = excluded.company_name,
  postcode = excluded.postcode,
  sic_codes = excluded.sic_codes,
  url = excluded.url,
  confidence = excluded.confidence,
  position = excluded.position,
  title = excluded.title,
  snippet = excluded.snippet,
  domain_match = excluded.domain_match,
  tld_relevance = excluded.tld_relevance,
  position_score = excluded.position_score,
  status = excluded.status,
  error_message = excluded.error_message,
  processed_at = excluded.processed_at;
`,
		o.CompanyNumber, o.CompanyName, o.Postcode, o.SICCodes, o.URL,
		o.Confidence, o.Position,
		o.Title, o.Snippet, o.Details.DomainMatch, o.Details.TLDRelevance,
		o.Details.Position, o.Status, o.ErrorMessage,
		o.ProcessedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert outcome %s: %w", o.CompanyNumber, err)
	}
	return nil
}

// ProcessedNumbers returns every company number with a stored outcome.
func (s *Store) ProcessedNumbers(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT company_number FROM outcomes;`)
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out[n] = true
	}
	return out, rows.Err()
}

// CountByStatus tallies outcomes per terminal status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM outcomes GROUP BY status;`)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// ClearOutcomes wipes all outcomes and run state for a fresh --restart pass.
func (s *Store) ClearOutcomes(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM outcomes;`); err != nil {
		return fmt.Errorf("clear outcomes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM run_state;`); err != nil {
		return fmt.Errorf("clear run state: %w", err)
	}
	return tx.Commit()
}
