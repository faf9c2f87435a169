package ports

import (
	"context"

	"rwafolio/internal/domain"
)

// Advisor is the language-model oracle that scores market sentiment and
// proposes target allocations. Both methods degrade instead of failing:
// AnalyzeMarket falls back to score 0 with an error-annotated reasoning,
// OptimizePortfolio falls back to the current allocation unchanged.
type Advisor interface {
	// AnalyzeMarket rates the current market on a 0-10 confidence scale
	// and explains the rating.
	AnalyzeMarket(ctx context.Context, newsText string, tickers domain.Tickers) (score int, reasoning string)

	// OptimizePortfolio proposes a target allocation summing to ~1.0,
	// given the analysis reasoning and the portfolio as it stands.
	OptimizePortfolio(ctx context.Context, reasoning string, current domain.Allocation) domain.Allocation
}
