package ports

import (
	"context"

	"rwafolio/internal/domain"
)

// Exchange is the spot-market adapter the cycle trades against.
type Exchange interface {
	// GetBalances returns total holdings (available + locked) per symbol.
	GetBalances(ctx context.Context) (domain.Balances, error)

	// GetTicker returns the latest ticker for one currency pair.
	GetTicker(ctx context.Context, symbol string) (domain.Ticker, error)

	// GetAllTickers fetches tickers for every tradable symbol in the
	// universe. Per-symbol failures are logged and omitted from the map,
	// never fatal.
	GetAllTickers(ctx context.Context) (domain.Tickers, error)

	// GetOrderBook returns top-of-book for the spread check.
	// ok is false when the book is empty or the fetch failed.
	GetOrderBook(ctx context.Context, symbol string, depth int) (book domain.OrderBook, ok bool)

	// CreateMarketOrder places a market order and returns the fill.
	CreateMarketOrder(ctx context.Context, symbol string, side domain.Side, amount float64) (domain.ExecutedOrder, error)
}
