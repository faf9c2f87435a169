package ports

import (
	"context"

	"rwafolio/internal/domain"
)

// NewsCollector gathers headlines for the advisor. A source that fails or
// times out is recorded in the bundle's FailedSources, never propagated as
// an error — partial news is better than no cycle.
type NewsCollector interface {
	Collect(ctx context.Context) domain.NewsBundle
}
