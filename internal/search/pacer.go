package search

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer is the single shared gate all outbound lookups pass through.
// Token bucket: refills continuously at reqPerSec, burst caps the bucket.
type Pacer struct {
	lim *rate.Limiter
}

func NewPacer(reqPerSec float64, burst int) *Pacer {
	if burst < 1 {
		burst = 1
	}
	return &Pacer{lim: rate.NewLimiter(rate.Limit(reqPerSec), burst)}
}

// Acquire blocks until a token is available or ctx is done. Waiters are
// served in FIFO order by the underlying limiter.
func (p *Pacer) Acquire(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// SetRate adjusts the sustained rate without resetting the bucket.
func (p *Pacer) SetRate(reqPerSec float64) {
	p.lim.SetLimit(rate.Limit(reqPerSec))
}

func (p *Pacer) Rate() float64 { return float64(p.lim.Limit()) }
