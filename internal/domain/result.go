package domain

import "time"

// SearchHit is one raw result from the search provider.
type SearchHit struct {
	URL      string
	Title    string
	Snippet  string
	Position int // 1-based provider rank
}

// ScoreDetails is the per-feature breakdown behind a confidence score.
type ScoreDetails struct {
	DomainMatch  float64
	TLDRelevance float64
	Position     float64
}

// ScoredHit pairs a hit with its computed confidence.
type ScoredHit struct {
	Hit        SearchHit
	Confidence float64 // 0-100
	Details    ScoreDetails
}

// Outcome statuses. One terminal status per record per run.
const (
	StatusSuccess = "success"
	StatusNoMatch = "no-match"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Outcome is the durable per-record result, keyed by company number.
// Later writes for the same number overwrite earlier ones.
type Outcome struct {
	CompanyNumber string
	CompanyName   string
	Postcode      string
	SICCodes      string
	URL           string // empty when no match
	Confidence    float64
	Position      int
	Title         string
	Snippet       string
	Details       ScoreDetails
	Status        string
	ErrorMessage  string
	ProcessedAt   time.Time
}

// Run statuses.
const (
	RunInProgress = "in-progress"
	RunCompleted  = "completed"
	RunAborted    = "aborted"
)

// RunState tracks overall batch progress for resume.
type RunState struct {
	RunID         string
	InputFile     string
	OutputFile    string
	Total         int
	Processed     int
	LastCompanyNo string
	Status        string
	StartedAt     time.Time
	UpdatedAt     time.Time
}
