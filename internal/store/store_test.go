package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companysift/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "checkpoint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleOutcome(number, status string) domain.Outcome {
	return domain.Outcome{
		CompanyNumber: number,
		CompanyName:   "Acme Widgets Ltd",
		Postcode:      "SW1A 1AA",
		SICCodes:      "28990",
		URL:           "https://acmewidgets.co.uk",
		Confidence:    91.5,
		Position:      1,
		Title:         "Acme Widgets",
		Snippet:       "Official site",
		Details:       domain.ScoreDetails{DomainMatch: 1, TLDRelevance: 1, Position: 1},
		Status:        status,
		ProcessedAt:   time.Now(),
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ok, err := s.HasOutcome(ctx, "12345678")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("12345678", domain.StatusSuccess)))

	ok, err = s.HasOutcome(ctx, "12345678")
	require.NoError(t, err)
	assert.True(t, ok)

	processed, err := s.ProcessedNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"12345678": true}, processed)
}

func TestUpsertOutcomeReplacesExistingRow(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	failed := sampleOutcome("12345678", domain.StatusFailed)
	failed.URL = ""
	failed.ErrorMessage = "retries exhausted"
	require.NoError(t, s.UpsertOutcome(ctx, failed))
	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("12345678", domain.StatusSuccess)))

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{domain.StatusSuccess: 1}, counts, "one row per company")
}

func TestCountByStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("1", domain.StatusSuccess)))
	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("2", domain.StatusSuccess)))
	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("3", domain.StatusNoMatch)))
	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("4", domain.StatusFailed)))

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		domain.StatusSuccess: 2,
		domain.StatusNoMatch: 1,
		domain.StatusFailed:  1,
	}, counts)
}

func TestClearOutcomesWipesStateToo(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertOutcome(ctx, sampleOutcome("1", domain.StatusSuccess)))
	require.NoError(t, s.SaveRunState(ctx, domain.RunState{
		RunID: "r1", InputFile: "in.csv", OutputFile: "out.csv",
		Total: 10, Processed: 1, Status: domain.RunInProgress,
		StartedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	require.NoError(t, s.ClearOutcomes(ctx))

	processed, err := s.ProcessedNumbers(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)

	_, ok, err := s.LoadRunState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunStateRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, ok, err := s.LoadRunState(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh db has no run state")

	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	want := domain.RunState{
		RunID: "run-1", InputFile: "companies.csv", OutputFile: "results.csv",
		Total: 100, Processed: 42, LastCompanyNo: "87654321",
		Status: domain.RunInProgress, StartedAt: started, UpdatedAt: started.Add(time.Minute),
	}
	require.NoError(t, s.SaveRunState(ctx, want))

	got, ok, err := s.LoadRunState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.StartedAt.Equal(want.StartedAt))
	assert.True(t, got.UpdatedAt.Equal(want.UpdatedAt))
	got.StartedAt, got.UpdatedAt = want.StartedAt, want.UpdatedAt
	assert.Equal(t, want, got)

	// second save overwrites the single row
	want.Processed = 100
	want.Status = domain.RunCompleted
	require.NoError(t, s.SaveRunState(ctx, want))

	got, ok, err = s.LoadRunState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100, got.Processed)
	assert.Equal(t, domain.RunCompleted, got.Status)
}

func TestBlocklistPersistence(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	added, err := s.AddBlockedDomain(ctx, "Example.com")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddBlockedDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, added, "duplicate insert is a no-op")

	require.NoError(t, s.SeedBlocklist(ctx, []string{"yell.com", "example.com"}))

	domains, err := s.BlockedDomains(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "yell.com"}, domains)

	removed, err := s.RemoveBlockedDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveBlockedDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFrequencyPersistence(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	counts, total, err := s.LoadFrequency(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.Zero(t, total)

	require.NoError(t, s.SaveFrequency(ctx, map[string]int{"somedirectory.co.uk": 5, "acme.com": 1}, 7))

	counts, total, err = s.LoadFrequency(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"somedirectory.co.uk": 5, "acme.com": 1}, counts)
	assert.Equal(t, 7, total)

	// save replaces rather than merges
	require.NoError(t, s.SaveFrequency(ctx, map[string]int{"somedirectory.co.uk": 6}, 8))
	counts, total, err = s.LoadFrequency(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"somedirectory.co.uk": 6}, counts)
	assert.Equal(t, 8, total)
}

func TestRunLockRejectsSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")

	l1, err := AcquireRunLock(path)
	require.NoError(t, err)

	_, err = AcquireRunLock(path)
	assert.ErrorIs(t, err, ErrRunLocked)

	require.NoError(t, l1.Release())

	l2, err := AcquireRunLock(path)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}
