package filter

import (
	"sync"

	"companysift/internal/domain"
)

// FrequencyTracker flags aggregators dynamically: a domain that keeps showing
// up in searches for unrelated companies is unlikely to be anyone's own site.
type FrequencyTracker struct {
	mu             sync.Mutex
	counts         map[string]int
	totalSearches  int
	threshold      float64 // appearance share at which a domain is an aggregator
	minOccurrences int
}

func NewFrequencyTracker(threshold float64, minOccurrences int) *FrequencyTracker {
	return &FrequencyTracker{
		counts:         make(map[string]int),
		threshold:      threshold,
		minOccurrences: minOccurrences,
	}
}

// Track records one search's result domains. Each domain counts once per
// search even if it appears at several positions.
func (t *FrequencyTracker) Track(hits []domain.SearchHit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalSearches++
	seen := map[string]bool{}
	for _, h := range hits {
		host := HostOf(h.URL)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		t.counts[host]++
	}
}

func (t *FrequencyTracker) isAggregatorLocked(host string) bool {
	if t.totalSearches == 0 {
		return false
	}
	c := t.counts[host]
	return c >= t.minOccurrences && float64(c)/float64(t.totalSearches) >= t.threshold
}

// Filter drops hits on domains currently classified as aggregators.
func (t *FrequencyTracker) Filter(hits []domain.SearchHit) []domain.SearchHit {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if !t.isAggregatorLocked(HostOf(h.URL)) {
			out = append(out, h)
		}
	}
	return out
}

// Aggregators lists the domains currently over the threshold.
func (t *FrequencyTracker) Aggregators() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for host := range t.counts {
		if t.isAggregatorLocked(host) {
			out = append(out, host)
		}
	}
	return out
}

// Snapshot exports the counters for persistence.
func (t *FrequencyTracker) Snapshot() (counts map[string]int, totalSearches int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts = make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}
	return counts, t.totalSearches
}

// Load seeds the counters from a previous run's persisted state.
func (t *FrequencyTracker) Load(counts map[string]int, totalSearches int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range counts {
		t.counts[k] = v
	}
	t.totalSearches = totalSearches
}
