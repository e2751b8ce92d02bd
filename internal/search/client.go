package search

import (
	"context"
	"fmt"
	"log"
	"time"

	"companysift/internal/domain"
)

// Provider is the external search capability: one query in, ranked hits out.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error)
}

// Client wraps a Provider with pacing, retry, and error classification.
// An empty hit list is a valid success (no-match), not an error.
type Client struct {
	provider   Provider
	pacer      *Pacer
	backoff    Backoff
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(p Provider, pacer *Pacer, backoff Backoff, maxRetries int) *Client {
	return &Client{
		provider:   p,
		pacer:      pacer,
		backoff:    backoff,
		maxRetries: maxRetries,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Lookup runs one search with up to maxRetries retries on transient failures.
// The pacer is acquired before every attempt, retries included.
func (c *Client) Lookup(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.pacer.Acquire(ctx); err != nil {
			return nil, err
		}

		hits, err := c.provider.Search(ctx, query, maxResults)
		if err == nil {
			return hits, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrFatalLookup, err)
		}

		lastErr = err
		if attempt < c.maxRetries {
			delay := c.backoff.Delay(attempt)
			log.Printf("[search] transient error (attempt %d/%d), retrying in %s: %v",
				attempt+1, c.maxRetries, delay.Round(time.Millisecond), err)
			if serr := c.sleep(ctx, delay); serr != nil {
				return nil, serr
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.maxRetries+1, lastErr)
}
