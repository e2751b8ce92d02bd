package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"companysift/internal/domain"
)

// LoadRunState returns the stored run state, or ok=false if none exists.
func (s *Store) LoadRunState(ctx context.Context) (st domain.RunState, ok bool, err error) {
	var started, updated string
	err = s.db.QueryRowContext(ctx, `
SELECT run_id, input_file, output_file, total, processed,
  last_company_number, status, started_at, updated_at
FROM run_state WHERE id = 1;`).Scan(
		&st.RunID, &st.InputFile, &st.OutputFile, &st.Total, &st.Processed,
		&st.LastCompanyNo, &st.Status, &started, &updated,
	)
	if err == sql.ErrNoRows {
		return domain.RunState{}, false, nil
	}
	if err != nil {
		return domain.RunState{}, false, fmt.Errorf("load run state: %w", err)
	}
	st.StartedAt, _ = time.Parse(time.RFC3339, started)
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return st, true, nil
}

// SaveRunState upserts the single run-state row.
func (s *Store) SaveRunState(ctx context.Context, st domain.RunState) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO run_state (id, run_id, input_file, output_file, total, processed,
  last_company_number, status, started_at, updated_at)
VALUES (1,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  run_id = excluded.run_id,
  input_file = excluded.input_file,
  output_file = excluded.output_file,
  total = excluded.total,
  processed = excluded.processed,
  last_company_number = excluded.last_company_number,
  status = excluded.status,
  started_at = excluded.started_at,
  updated_at = excluded.updated_at;
`,
		st.RunID, st.InputFile, st.OutputFile, st.Total, st.Processed,
		st.LastCompanyNo, st.Status,
		st.StartedAt.UTC().Format(time.RFC3339),
		st.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save run state: %w", err)
	}
	return nil
}
