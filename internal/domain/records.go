package domain

import "time"

// Persisted ledger records. All four are append-only: the agent inserts them
// and never mutates or deletes a row.

// Judgment is the advisor's verdict for one cycle, saved whether or not any
// trade executed.
type Judgment struct {
	ID              string
	Timestamp       time.Time
	ConfidenceScore int
	TargetAlloc     Allocation
	Reasoning       string
	SourceURLs      []string
	FetchStatus     map[string]bool
	FailedSources   []string
}

// Transaction records one executed order together with the allocation it was
// moving from and toward.
type Transaction struct {
	ID          string
	Timestamp   time.Time
	Symbol      string
	Side        Side
	Amount      float64
	Price       float64
	Status      string
	PreAlloc    Allocation
	TargetAlloc Allocation
}

// PortfolioSnapshot is the point-in-time portfolio state written at the end
// of every cycle, after all trading activity.
type PortfolioSnapshot struct {
	ID         string
	Timestamp  time.Time
	Holdings   map[string]float64
	Values     map[string]float64 // per-symbol value in cash units
	TotalValue float64
	Alloc      Allocation
}

// PricePoint is one stored ticker observation.
type PricePoint struct {
	Symbol    string
	Timestamp time.Time
	Price     float64
	Change24h float64
	Volume    float64
}

// NewsBundle aggregates everything the news collectors produced for one
// cycle. Partial source failure is data here, not an error: FetchStatus and
// FailedSources end up verbatim in the persisted Judgment.
type NewsBundle struct {
	Items         []NewsItem
	Text          string // joined "[source] title" lines fed to the advisor
	SourceURLs    []string
	FetchStatus   map[string]bool
	FailedSources []string
}

// NewsItem is a single headline from one source.
type NewsItem struct {
	Title  string
	URL    string
	Source string
}
