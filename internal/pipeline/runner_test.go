package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companysift/internal/config"
	"companysift/internal/domain"
	"companysift/internal/filter"
	"companysift/internal/score"
	"companysift/internal/search"
	"companysift/internal/store"
)

// fakeLookuper answers by query string and counts calls.
type fakeLookuper struct {
	mu      sync.Mutex
	lookups int
	fn      func(query string) ([]domain.SearchHit, error)
}

func (f *fakeLookuper) Lookup(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	f.mu.Lock()
	f.lookups++
	f.mu.Unlock()
	return f.fn(query)
}

func (f *fakeLookuper) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

type collectSink struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
}

func (c *collectSink) write(o domain.Outcome) error {
	c.mu.Lock()
	c.outcomes = append(c.outcomes, o)
	c.mu.Unlock()
	return nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Processing.Workers = 1
	return cfg
}

func testRunner(t *testing.T, cfg config.Config, lk Lookuper, sink Sink) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "checkpoint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bl := filter.NewBlocklist(cfg.Filtering.Blocklist)
	sc := score.NewScorer(cfg.Scoring.Weights, cfg.Scoring.UnknownTLDScore)
	return NewRunner(cfg, lk, bl, nil, sc, st, nil, sink), st
}

func acme() domain.Company {
	return domain.Company{Number: "12345678", Name: "Acme Widgets Ltd", Postcode: "SW1A 1AA"}
}

func TestRunSuccessPath(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		assert.Equal(t, "acme widgets official website", query)
		return []domain.SearchHit{
			{URL: "https://companycheck.co.uk/company/12345678", Title: "registry", Position: 1},
			{URL: "https://acmewidgets.co.uk", Title: "Acme Widgets", Snippet: "Official site", Position: 2},
		}, nil
	}}
	sink := &collectSink{}
	r, st := testRunner(t, testConfig(), lk, sink.write)

	sum, err := r.Run(context.Background(), []domain.Company{acme()}, false, "in.csv", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Success: 1}, sum)

	require.Len(t, sink.outcomes, 1)
	o := sink.outcomes[0]
	assert.Equal(t, domain.StatusSuccess, o.Status)
	assert.Equal(t, "https://acmewidgets.co.uk", o.URL, "aggregator hit filtered out")
	assert.GreaterOrEqual(t, o.Confidence, 65.0)
	assert.Equal(t, 2, o.Position)

	state, ok, err := st.LoadRunState(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RunCompleted, state.Status)
	assert.Equal(t, 1, state.Processed)
	assert.Equal(t, 1, state.Total)
	assert.Equal(t, "12345678", state.LastCompanyNo)
}

func TestRunBelowThresholdIsNoMatch(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		return []domain.SearchHit{
			{URL: "https://zzqqxxbbnn.xyz", Title: "unrelated", Position: 9},
		}, nil
	}}
	sink := &collectSink{}
	r, _ := testRunner(t, testConfig(), lk, sink.write)

	sum, err := r.Run(context.Background(), []domain.Company{acme()}, false, "in.csv", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, NoMatch: 1}, sum)

	require.Len(t, sink.outcomes, 1)
	o := sink.outcomes[0]
	assert.Equal(t, domain.StatusNoMatch, o.Status)
	assert.Empty(t, o.URL)
	assert.Equal(t, "no candidate met the confidence threshold", o.ErrorMessage)
	assert.Greater(t, o.Confidence, 0.0, "rejected best candidate keeps its breakdown")
}

func TestRunAllHitsFilteredIsNoMatch(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		return []domain.SearchHit{
			{URL: "https://companycheck.co.uk/a", Position: 1},
			{URL: "https://www.linkedin.com/company/acme", Position: 2},
		}, nil
	}}
	sink := &collectSink{}
	r, _ := testRunner(t, testConfig(), lk, sink.write)

	sum, err := r.Run(context.Background(), []domain.Company{acme()}, false, "in.csv", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, NoMatch: 1}, sum)
	assert.Equal(t, "no candidates after filtering", sink.outcomes[0].ErrorMessage)
}

func TestRunFailureIsolation(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		if query == "acme widgets official website" {
			return nil, fmt.Errorf("%w after 6 attempts: provider status 503", search.ErrRetriesExhausted)
		}
		return []domain.SearchHit{{URL: "https://bravoplumbing.co.uk", Position: 1}}, nil
	}}
	sink := &collectSink{}
	r, _ := testRunner(t, testConfig(), lk, sink.write)

	companies := []domain.Company{
		acme(),
		{Number: "87654321", Name: "Bravo Plumbing Ltd", Postcode: "M1 1AA"},
	}
	sum, err := r.Run(context.Background(), companies, false, "in.csv", "out.csv")
	require.NoError(t, err, "one record's failure must not abort the run")
	assert.Equal(t, Summary{Processed: 2, Success: 1, Failed: 1}, sum)

	byNumber := map[string]domain.Outcome{}
	for _, o := range sink.outcomes {
		byNumber[o.CompanyNumber] = o
	}
	assert.Equal(t, domain.StatusFailed, byNumber["12345678"].Status)
	assert.Contains(t, byNumber["12345678"].ErrorMessage, "retries exhausted")
	assert.Equal(t, domain.StatusSuccess, byNumber["87654321"].Status)
}

func TestRunResumeSkipsProcessedWithoutLookups(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		return []domain.SearchHit{{URL: "https://acmewidgets.co.uk", Position: 1}}, nil
	}}
	r, st := testRunner(t, testConfig(), lk, nil)

	companies := []domain.Company{
		acme(),
		{Number: "87654321", Name: "Acme Widgets Ltd", Postcode: "SW1A 1AA"},
	}
	_, err := r.Run(context.Background(), companies, false, "in.csv", "out.csv")
	require.NoError(t, err)
	require.Equal(t, 2, lk.calls())

	firstState, _, err := st.LoadRunState(context.Background())
	require.NoError(t, err)

	// second pass over the same input: everything is already terminal
	r2 := NewRunner(testConfig(), lk, filter.NewBlocklist(nil), nil,
		score.NewScorer(config.Default().Scoring.Weights, 0.2), st, nil, nil)
	sum, err := r2.Run(context.Background(), companies, true, "in.csv", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, lk.calls(), "resume must not repeat lookups")
	assert.Equal(t, Summary{Skipped: 2}, sum)

	secondState, _, err := st.LoadRunState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstState.RunID, secondState.RunID, "resume keeps the run identity")
	assert.Equal(t, domain.RunCompleted, secondState.Status)
}

func TestRunFatalStreakAborts(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		return nil, fmt.Errorf("%w: provider status 401: bad key", search.ErrFatalLookup)
	}}
	cfg := testConfig()
	cfg.Search.FatalAbortThreshold = 2
	r, st := testRunner(t, cfg, lk, nil)

	companies := make([]domain.Company, 5)
	for i := range companies {
		companies[i] = domain.Company{Number: fmt.Sprintf("%08d", i+1), Name: "Acme Ltd"}
	}

	sum, err := r.Run(context.Background(), companies, false, "in.csv", "out.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFatalStreak)
	assert.Equal(t, 2, lk.calls(), "abort at the threshold, not after every record")
	assert.Equal(t, 2, sum.Failed)

	state, ok, err := st.LoadRunState(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RunAborted, state.Status)
}

// cancelingLookuper cancels the run on its first call, as if the user hit
// ctrl-C mid-lookup.
type cancelingLookuper struct {
	cancel context.CancelFunc
}

func (c *cancelingLookuper) Lookup(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestRunCanceledMidRunAbortsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, st := testRunner(t, testConfig(), &cancelingLookuper{cancel: cancel}, nil)

	companies := []domain.Company{
		acme(),
		{Number: "87654321", Name: "Bravo Plumbing Ltd", Postcode: "M1 1AA"},
	}
	sum, err := r.Run(ctx, companies, false, "in.csv", "out.csv")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Processed, "interrupted record is not recorded as terminal")

	// the aborted status must land even though the run context is dead
	state, ok, err := st.LoadRunState(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RunAborted, state.Status)
	assert.Equal(t, 0, state.Processed)
}

func TestRunParallelWorkersProcessAll(t *testing.T) {
	lk := &fakeLookuper{fn: func(query string) ([]domain.SearchHit, error) {
		return []domain.SearchHit{{URL: "https://acmewidgets.co.uk", Position: 1}}, nil
	}}
	cfg := testConfig()
	cfg.Processing.Workers = 4
	sink := &collectSink{}
	r, st := testRunner(t, cfg, lk, sink.write)

	companies := make([]domain.Company, 20)
	for i := range companies {
		companies[i] = domain.Company{
			Number: fmt.Sprintf("%08d", i+1), Name: "Acme Widgets Ltd", Postcode: "SW1A 1AA",
		}
	}

	sum, err := r.Run(context.Background(), companies, false, "in.csv", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, 20, sum.Processed)
	assert.Len(t, sink.outcomes, 20)

	state, _, err := st.LoadRunState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, state.Processed, "processed counter matches stored outcomes")
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "acme widgets official website", buildQuery(acme()))
	assert.Equal(t, "ltd official website", buildQuery(domain.Company{Name: "Ltd"}))
}
