package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Weights struct {
	DomainMatch  float64 `yaml:"domain_match"`
	TLDRelevance float64 `yaml:"tld_relevance"`
	Position     float64 `yaml:"position"`
}

type Frequency struct {
	Enabled        bool    `yaml:"enabled"`
	Threshold      float64 `yaml:"threshold"`       // share of searches a domain may appear in
	MinOccurrences int     `yaml:"min_occurrences"` // before the threshold applies
}

type Config struct {
	Search struct {
		RateLimit           float64 `yaml:"rate_limit"` // requests per second
		Burst               int     `yaml:"burst"`      // 0 = ceil(rate_limit)
		TimeoutSeconds      int     `yaml:"timeout_seconds"`
		MaxRetries          int     `yaml:"max_retries"`
		BackoffBaseSeconds  float64 `yaml:"backoff_base_seconds"`
		BackoffCapSeconds   float64 `yaml:"backoff_cap_seconds"`
		MaxResults          int     `yaml:"max_results"`
		FatalAbortThreshold int     `yaml:"fatal_abort_threshold"`
	} `yaml:"search"`

	Scoring struct {
		MinConfidence   float64 `yaml:"min_confidence"` // 0-100
		UnknownTLDScore float64 `yaml:"unknown_tld_score"`
		Weights         Weights `yaml:"weights"`
	} `yaml:"scoring"`

	Filtering struct {
		Blocklist []string  `yaml:"blocklist"`
		Frequency Frequency `yaml:"frequency"`
	} `yaml:"filtering"`

	Processing struct {
		DataDir       string `yaml:"data_dir"`
		ProgressEvery int    `yaml:"progress_every"`
		Workers       int    `yaml:"workers"`
	} `yaml:"processing"`
}

// Default returns the configuration the tool ships with. Values mirror
// config/config.yaml so a missing file behaves the same as the bundled one.
func Default() Config {
	var cfg Config
	cfg.Search.RateLimit = 4.5
	cfg.Search.TimeoutSeconds = 30
	cfg.Search.MaxRetries = 5
	cfg.Search.BackoffBaseSeconds = 1
	cfg.Search.BackoffCapSeconds = 120
	cfg.Search.MaxResults = 10
	cfg.Search.FatalAbortThreshold = 5

	cfg.Scoring.MinConfidence = 65
	cfg.Scoring.UnknownTLDScore = 0.2
	cfg.Scoring.Weights = Weights{DomainMatch: 0.5, TLDRelevance: 0.3, Position: 0.2}

	cfg.Filtering.Blocklist = []string{
		"companycheck.co.uk",
		"endole.co.uk",
		"companieshouse.gov.uk",
		"find-and-update.company-information.service.gov.uk",
		"globaldatabase.com",
		"dnb.com",
		"bizdb.co.uk",
		"companiesintheuk.co.uk",
		"checkcompany.co.uk",
		"duedil.com",
		"opencorporates.com",
		"linkedin.com",
		"facebook.com",
		"wikipedia.org",
		"yell.com",
	}
	cfg.Filtering.Frequency = Frequency{Enabled: true, Threshold: 0.3, MinOccurrences: 3}

	cfg.Processing.DataDir = "."
	cfg.Processing.ProgressEvery = 10
	cfg.Processing.Workers = 1
	return cfg
}

// Load reads path and overlays it onto the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
