package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"companysift/internal/config"
	"companysift/internal/domain"
	"companysift/internal/events"
	"companysift/internal/filter"
	"companysift/internal/score"
	"companysift/internal/search"
	"companysift/internal/store"
)

// ErrFatalStreak is returned when fatal lookup errors recur back to back,
// which almost always means a broken credential rather than bad luck.
var ErrFatalStreak = errors.New("consecutive fatal lookup errors, aborting run")

// Lookuper is the retrying search client's contract.
type Lookuper interface {
	Lookup(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error)
}

// Sink consumes persisted outcomes (the CSV writer at the output boundary).
type Sink func(domain.Outcome) error

// Summary tallies one run.
type Summary struct {
	Processed int
	Success   int
	NoMatch   int
	Failed    int
	Skipped   int
}

// Runner drives records through lookup -> filter -> score -> persist.
type Runner struct {
	cfg       config.Config
	client    Lookuper
	blocklist *filter.Blocklist
	freq      *filter.FrequencyTracker // nil when disabled
	scorer    *score.Scorer
	store     *store.Store
	hub       *events.Hub // nil when nobody listens
	sink      Sink        // nil when no output file

	mu          sync.Mutex
	state       domain.RunState
	summary     Summary
	fatalStreak int
}

func NewRunner(cfg config.Config, client Lookuper, bl *filter.Blocklist,
	freq *filter.FrequencyTracker, sc *score.Scorer, st *store.Store,
	hub *events.Hub, sink Sink) *Runner {
	return &Runner{
		cfg:       cfg,
		client:    client,
		blocklist: bl,
		freq:      freq,
		scorer:    sc,
		store:     st,
		hub:       hub,
		sink:      sink,
	}
}

// Run processes companies to completion. With resume true, records that
// already have a stored outcome are skipped without a lookup. Cancellation
// is observed between records; outcomes already written stay valid.
func (r *Runner) Run(ctx context.Context, companies []domain.Company, resume bool, inputFile, outputFile string) (Summary, error) {
	skip := map[string]bool{}
	if resume {
		var err error
		skip, err = r.store.ProcessedNumbers(ctx)
		if err != nil {
			return Summary{}, err
		}
		log.Printf("[pipeline] resume: %d records already processed", len(skip))
	}

	r.state = domain.RunState{
		RunID:      uuid.NewString(),
		InputFile:  inputFile,
		OutputFile: outputFile,
		Total:      len(companies),
		Processed:  len(skip),
		Status:     domain.RunInProgress,
		StartedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if prev, ok, err := r.store.LoadRunState(ctx); err != nil {
		return Summary{}, err
	} else if ok && resume {
		r.state.RunID = prev.RunID
		r.state.StartedAt = prev.StartedAt
	}
	if err := r.store.SaveRunState(ctx, r.state); err != nil {
		return Summary{}, err
	}

	workers := r.cfg.Processing.Workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, c := range companies {
		if gctx.Err() != nil {
			break
		}
		if skip[c.Number] {
			r.noteSkip(c)
			continue
		}
		c := c
		g.Go(func() error {
			return r.processOne(gctx, c)
		})
	}

	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	final := domain.RunCompleted
	if runErr != nil {
		final = domain.RunAborted
	}
	if err := r.finishRun(final); err != nil && runErr == nil {
		runErr = err
	}
	return r.summary, runErr
}

// processOne walks one record through the per-record state machine. A
// record's own failure is recorded and isolated; only store/output errors
// and a fatal streak propagate.
func (r *Runner) processOne(ctx context.Context, c domain.Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hits, err := r.client.Lookup(ctx, buildQuery(c), r.cfg.Search.MaxResults)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return r.recordFailure(ctx, c, err)
	}

	survivors := r.blocklist.Filter(hits)
	if r.freq != nil {
		r.freq.Track(survivors)
		survivors = r.freq.Filter(survivors)
	}

	o := domain.Outcome{
		CompanyNumber: c.Number,
		CompanyName:   c.Name,
		Postcode:      c.Postcode,
		SICCodes:      c.SICCodes,
		Status:        domain.StatusNoMatch,
		ProcessedAt:   time.Now().UTC(),
	}
	if best, ok := r.scorer.Best(c, survivors); ok && best.Confidence >= r.cfg.Scoring.MinConfidence {
		o.Status = domain.StatusSuccess
		o.URL = best.Hit.URL
		o.Confidence = best.Confidence
		o.Position = best.Hit.Position
		o.Title = best.Hit.Title
		o.Snippet = best.Hit.Snippet
		o.Details = best.Details
	} else if ok {
		// keep the breakdown of the rejected best candidate for debugging
		o.Confidence = best.Confidence
		o.Details = best.Details
		o.ErrorMessage = "no candidate met the confidence threshold"
	} else {
		o.ErrorMessage = "no candidates after filtering"
	}

	return r.persist(ctx, o, false)
}

func (r *Runner) recordFailure(ctx context.Context, c domain.Company, lookupErr error) error {
	fatal := errors.Is(lookupErr, search.ErrFatalLookup)
	o := domain.Outcome{
		CompanyNumber: c.Number,
		CompanyName:   c.Name,
		Postcode:      c.Postcode,
		SICCodes:      c.SICCodes,
		Status:        domain.StatusFailed,
		ErrorMessage:  lookupErr.Error(),
		ProcessedAt:   time.Now().UTC(),
	}
	log.Printf("[pipeline] %s (%s): lookup failed: %v", c.Name, c.Number, lookupErr)
	if err := r.persist(ctx, o, fatal); err != nil {
		return err
	}
	r.mu.Lock()
	streak := r.fatalStreak
	r.mu.Unlock()
	if fatal && streak >= r.cfg.Search.FatalAbortThreshold {
		return fmt.Errorf("%w (threshold %d)", ErrFatalStreak, r.cfg.Search.FatalAbortThreshold)
	}
	return nil
}

// persist writes the outcome and run state under one lock so the processed
// counter stays equal to the number of stored terminal outcomes.
func (r *Runner) persist(ctx context.Context, o domain.Outcome, fatal bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.UpsertOutcome(ctx, o); err != nil {
		// losing durable state would break resume; abort rather than continue
		return err
	}

	r.summary.Processed++
	switch o.Status {
	case domain.StatusSuccess:
		r.summary.Success++
	case domain.StatusNoMatch:
		r.summary.NoMatch++
	case domain.StatusFailed:
		r.summary.Failed++
	}
	if fatal {
		r.fatalStreak++
	} else {
		r.fatalStreak = 0
	}

	r.state.Processed++
	r.state.LastCompanyNo = o.CompanyNumber
	r.state.UpdatedAt = time.Now().UTC()
	if err := r.store.SaveRunState(ctx, r.state); err != nil {
		return err
	}

	if r.sink != nil {
		if err := r.sink(o); err != nil {
			return fmt.Errorf("write outcome %s: %w", o.CompanyNumber, err)
		}
	}
	if r.hub != nil {
		r.hub.Publish(events.Progress{
			CompanyNumber: o.CompanyNumber,
			CompanyName:   o.CompanyName,
			Status:        o.Status,
			URL:           o.URL,
			Confidence:    o.Confidence,
			Processed:     r.state.Processed,
			Total:         r.state.Total,
		})
	}
	return nil
}

func (r *Runner) noteSkip(c domain.Company) {
	r.mu.Lock()
	r.summary.Skipped++
	processed, total := r.state.Processed, r.state.Total
	r.mu.Unlock()
	if r.hub != nil {
		r.hub.Publish(events.Progress{
			CompanyNumber: c.Number,
			CompanyName:   c.Name,
			Status:        domain.StatusSkipped,
			Processed:     processed,
			Total:         total,
		})
	}
}

// finishRun flags the run completed or aborted. Uses a fresh context: the
// run context may already be canceled, and this flush must still land.
func (r *Runner) finishRun(status string) error {
	r.mu.Lock()
	r.state.Status = status
	r.state.UpdatedAt = time.Now().UTC()
	st := r.state
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.SaveRunState(ctx, st); err != nil {
		return err
	}
	if r.freq != nil {
		counts, total := r.freq.Snapshot()
		if err := r.store.SaveFrequency(ctx, counts, total); err != nil {
			return err
		}
	}
	return nil
}

// buildQuery strips legal suffixes the way the scorer does and anchors the
// query on the official site.
func buildQuery(c domain.Company) string {
	name := score.NormalizeName(c.Name)
	if name == "" {
		name = strings.TrimSpace(c.Name)
	}
	return name + " official website"
}
