package config

import (
	"fmt"
	"math"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate trims list entries and checks value ranges. Errors are
// fatal before any record is processed; warnings are only logged.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}
	out.Filtering.Blocklist = trimList(out.Filtering.Blocklist)

	// search sanity
	if out.Search.RateLimit <= 0 {
		res.addErr("search.rate_limit must be > 0")
	} else if out.Search.RateLimit > 20 {
		res.addWarn("search.rate_limit is very high (%.1f req/s) and may trip provider limits.", out.Search.RateLimit)
	}
	if out.Search.Burst < 0 {
		res.addErr("search.burst must be >= 0")
	}
	if out.Search.Burst == 0 && out.Search.RateLimit > 0 {
		out.Search.Burst = int(math.Ceil(out.Search.RateLimit))
	}
	if out.Search.TimeoutSeconds <= 0 {
		res.addErr("search.timeout_seconds must be > 0")
	}
	if out.Search.MaxRetries < 0 {
		res.addErr("search.max_retries must be >= 0")
	}
	if out.Search.BackoffBaseSeconds <= 0 {
		res.addErr("search.backoff_base_seconds must be > 0")
	}
	if out.Search.BackoffCapSeconds < out.Search.BackoffBaseSeconds {
		res.addErr("search.backoff_cap_seconds must be >= backoff_base_seconds")
	}
	if out.Search.MaxResults <= 0 {
		res.addErr("search.max_results must be > 0")
	}
	if out.Search.FatalAbortThreshold <= 0 {
		res.addErr("search.fatal_abort_threshold must be > 0")
	}

	// scoring sanity
	if out.Scoring.MinConfidence < 0 || out.Scoring.MinConfidence > 100 {
		res.addErr("scoring.min_confidence must be between 0 and 100")
	}
	if out.Scoring.UnknownTLDScore < 0 || out.Scoring.UnknownTLDScore > 1 {
		res.addErr("scoring.unknown_tld_score must be between 0 and 1")
	}
	w := out.Scoring.Weights
	if w.DomainMatch < 0 || w.TLDRelevance < 0 || w.Position < 0 {
		res.addErr("scoring.weights must all be >= 0")
	}
	sum := w.DomainMatch + w.TLDRelevance + w.Position
	if math.Abs(sum-1.0) > 0.01 {
		res.addErr("scoring.weights must sum to 1.0, got %.3f", sum)
	}

	// filtering sanity
	if out.Filtering.Frequency.Enabled {
		if out.Filtering.Frequency.Threshold <= 0 || out.Filtering.Frequency.Threshold > 1 {
			res.addErr("filtering.frequency.threshold must be in (0, 1]")
		}
		if out.Filtering.Frequency.MinOccurrences <= 0 {
			res.addErr("filtering.frequency.min_occurrences must be > 0")
		}
	}
	if len(out.Filtering.Blocklist) == 0 {
		res.addWarn("filtering.blocklist is empty; aggregator sites will not be filtered.")
	}

	// processing sanity
	if out.Processing.DataDir == "" {
		out.Processing.DataDir = "."
	}
	if out.Processing.ProgressEvery <= 0 {
		out.Processing.ProgressEvery = 10
	}
	if out.Processing.Workers <= 0 {
		out.Processing.Workers = 1
	}
	if out.Processing.Workers > 16 {
		res.addWarn("processing.workers is high (%d); the rate limit is the real throughput bound.", out.Processing.Workers)
	}

	return out, res
}
