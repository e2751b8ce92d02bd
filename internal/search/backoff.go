package search

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes retry delays: base * 2^attempt, capped, plus jitter.
// Pure apart from the jitter source, so tests can pin it.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter func() float64 // [0,1); nil = math/rand
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	base := float64(b.Base) * math.Pow(2, float64(attempt))
	if capf := float64(b.Cap); base > capf {
		base = capf
	}
	j := b.Jitter
	if j == nil {
		j = rand.Float64
	}
	// up to +25% jitter so synchronized clients fan out
	d := base * (1 + 0.25*j())
	if capf := float64(b.Cap); d > capf {
		d = capf
	}
	return time.Duration(d)
}
