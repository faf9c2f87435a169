package ports

import (
	"context"

	"rwafolio/internal/domain"
)

// Ledger is the append-only audit store. The write side is consumed by the
// cycle; the read side backs the HTTP API and the risk gate's reference-price
// lookup. Implementations must never mutate or delete saved rows.
type Ledger interface {
	LedgerWriter
	LedgerReader
}

// LedgerWriter persists cycle output.
type LedgerWriter interface {
	// SavePriceHistory stores one ticker observation. Fire-and-forget:
	// called once per symbol per cycle, before any trading decision.
	SavePriceHistory(ctx context.Context, p domain.PricePoint) error

	// SaveJudgment stores the advisor verdict. Exactly once per cycle.
	SaveJudgment(ctx context.Context, j domain.Judgment) (string, error)

	// SaveTransaction stores one executed order.
	SaveTransaction(ctx context.Context, t domain.Transaction) (string, error)

	// SaveSnapshot stores the end-of-cycle portfolio state. Exactly once
	// per cycle.
	SaveSnapshot(ctx context.Context, s domain.PortfolioSnapshot) (string, error)
}

// LedgerReader serves queries. Collection reads return empty slices on
// storage errors so the API never leaks internals; single-entity reads
// return ErrNotFound.
type LedgerReader interface {
	ListJudgments(ctx context.Context, limit int) ([]domain.Judgment, error)
	GetJudgment(ctx context.Context, id string) (domain.Judgment, error)

	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)

	// LatestSnapshot returns the most recent portfolio snapshot.
	LatestSnapshot(ctx context.Context) (domain.PortfolioSnapshot, error)

	// SnapshotDaysAgo returns the snapshot closest to (now - days), looking
	// backward. Used by the performance endpoint.
	SnapshotDaysAgo(ctx context.Context, days int) (domain.PortfolioSnapshot, error)

	// PriceHistory returns the n most recent stored points for a symbol,
	// newest first.
	PriceHistory(ctx context.Context, symbol string, n int) ([]domain.PricePoint, error)

	// ReferencePrice returns the most recently stored price for a symbol.
	// ok is false when no history exists yet.
	ReferencePrice(ctx context.Context, symbol string) (price float64, ok bool)
}
