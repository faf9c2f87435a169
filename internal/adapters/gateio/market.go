package gateio

// market.go — read-side exchange operations: balances, tickers, order book.

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"rwafolio/internal/domain"
)

// Adapter implements ports.Exchange on top of Client for a fixed universe.
type Adapter struct {
	*Client
	universe domain.Universe
}

// NewAdapter wraps a Client for the given universe.
func NewAdapter(client *Client, universe domain.Universe) *Adapter {
	return &Adapter{Client: client, universe: universe}
}

// GetBalances returns total holdings (available + locked) per currency.
// Keys are currency codes ("PAXG", "USDT"), never currency pairs, so the
// result is re-keyed to universe symbols before use.
func (a *Adapter) GetBalances(ctx context.Context) (domain.Balances, error) {
	var accounts []spotAccount
	if err := a.getSigned(ctx, "/spot/accounts", "", &accounts); err != nil {
		return nil, fmt.Errorf("gateio.GetBalances: %w", err)
	}

	byCurrency := make(map[string]float64, len(accounts))
	for _, acc := range accounts {
		byCurrency[acc.Currency] = parseFloat(acc.Available) + parseFloat(acc.Locked)
	}

	balances := make(domain.Balances)
	for _, symbol := range a.universe.Symbols {
		balances[symbol] = byCurrency[baseCurrency(symbol)]
	}
	balances[a.universe.Cash] = byCurrency[a.universe.Cash]
	return balances, nil
}

// GetTicker fetches the ticker for one currency pair.
func (a *Adapter) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	var entries []tickerEntry
	query := url.Values{"currency_pair": {symbol}}.Encode()
	if err := a.get(ctx, "/spot/tickers", query, &entries); err != nil {
		return domain.Ticker{}, fmt.Errorf("gateio.GetTicker %s: %w", symbol, err)
	}
	if len(entries) == 0 {
		return domain.Ticker{}, fmt.Errorf("gateio.GetTicker %s: empty response", symbol)
	}
	return toTicker(entries[0]), nil
}

// GetAllTickers fetches every tradable symbol's ticker. A symbol that fails
// is logged and left out of the map; the cycle degrades instead of aborting.
func (a *Adapter) GetAllTickers(ctx context.Context) (domain.Tickers, error) {
	tickers := make(domain.Tickers, len(a.universe.Symbols))
	for _, symbol := range a.universe.Symbols {
		t, err := a.GetTicker(ctx, symbol)
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", symbol).Msg("ticker fetch failed")
			continue
		}
		tickers[symbol] = t
	}
	return tickers, nil
}

// GetOrderBook returns top-of-book for the spread check. ok is false on any
// fetch or parse problem — the risk gate treats that as missing data.
func (a *Adapter) GetOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, bool) {
	if depth <= 0 {
		depth = 5
	}
	var resp orderBookResponse
	query := url.Values{
		"currency_pair": {symbol},
		"limit":         {strconv.Itoa(depth)},
	}.Encode()
	if err := a.get(ctx, "/spot/order_book", query, &resp); err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("order book fetch failed")
		return domain.OrderBook{}, false
	}
	return toOrderBook(symbol, resp)
}

// baseCurrency extracts "PAXG" from "PAXG_USDT".
func baseCurrency(pair string) string {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '_' {
			return pair[:i]
		}
	}
	return pair
}
