package gateio

import (
	"strconv"

	"rwafolio/internal/domain"
)

// parseFloat converts the API's string numbers, treating empty or malformed
// values as 0 rather than failing a whole response for one bad field.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func toTicker(e tickerEntry) domain.Ticker {
	return domain.Ticker{
		Symbol:    e.CurrencyPair,
		Price:     parseFloat(e.Last),
		Change24h: parseFloat(e.ChangePercentage),
		Volume:    parseFloat(e.QuoteVolume),
	}
}

// toOrderBook reduces the raw book to top-of-book plus spread.
// ok is false when either side is empty or unpriced.
func toOrderBook(symbol string, r orderBookResponse) (domain.OrderBook, bool) {
	if len(r.Bids) == 0 || len(r.Asks) == 0 {
		return domain.OrderBook{}, false
	}
	bid := parseFloat(r.Bids[0][0])
	ask := parseFloat(r.Asks[0][0])
	if bid <= 0 || ask <= 0 {
		return domain.OrderBook{}, false
	}
	return domain.OrderBook{
		Symbol:        symbol,
		BidPrice:      bid,
		AskPrice:      ask,
		SpreadPercent: (ask - bid) / bid * 100,
	}, true
}
