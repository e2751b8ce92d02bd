package filter

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"companysift/internal/domain"
)

// Blocklist removes known aggregator/registry domains from candidate lists.
// Matching is suffix-based on domain labels: entry "companycheck.co.uk"
// blocks "www.companycheck.co.uk" but not "notcompanycheck.co.uk".
type Blocklist struct {
	mu      sync.RWMutex
	entries map[string]struct{}
}

func NewBlocklist(entries []string) *Blocklist {
	b := &Blocklist{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		b.add(e)
	}
	return b
}

func normalizeEntry(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (b *Blocklist) add(e string) {
	if e = normalizeEntry(e); e != "" {
		b.entries[e] = struct{}{}
	}
}

// Add inserts a domain; returns false if it was already present.
func (b *Blocklist) Add(e string) bool {
	e = normalizeEntry(e)
	if e == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[e]; ok {
		return false
	}
	b.entries[e] = struct{}{}
	return true
}

// Remove deletes a domain; returns false if it wasn't present.
func (b *Blocklist) Remove(e string) bool {
	e = normalizeEntry(e)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[e]; !ok {
		return false
	}
	delete(b.entries, e)
	return true
}

// Entries returns a sorted copy of the current blocklist.
func (b *Blocklist) Entries() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.entries))
	for e := range b.entries {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// snapshot gives a filtering call a consistent view regardless of
// concurrent Add/Remove.
func (b *Blocklist) snapshot() map[string]struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := make(map[string]struct{}, len(b.entries))
	for e := range b.entries {
		snap[e] = struct{}{}
	}
	return snap
}

// Filter returns the hits whose domains are not blocked, order preserved.
func (b *Blocklist) Filter(hits []domain.SearchHit) []domain.SearchHit {
	snap := b.snapshot()
	out := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if !blockedIn(snap, HostOf(h.URL)) {
			out = append(out, h)
		}
	}
	return out
}

// Blocked reports whether rawURL's host matches any blocklist entry.
func (b *Blocklist) Blocked(rawURL string) bool {
	return blockedIn(b.snapshot(), HostOf(rawURL))
}

func blockedIn(entries map[string]struct{}, host string) bool {
	if host == "" {
		return false
	}
	for e := range entries {
		if host == e || strings.HasSuffix(host, "."+e) {
			return true
		}
	}
	return false
}

// HostOf extracts the lowercased host from a URL, dropping the scheme,
// path, port, and a leading "www.".
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
