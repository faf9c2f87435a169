package domain

// Balances maps instrument symbol to held quantity in base units.
// The exchange is the source of truth; refreshed once per cycle.
type Balances map[string]float64

// Ticker is the last traded state of one instrument.
type Ticker struct {
	Symbol    string
	Price     float64 // last price in quote units
	Change24h float64 // 24h change percent
	Volume    float64 // 24h quote volume
}

// Tickers maps instrument symbol to its latest ticker.
type Tickers map[string]Ticker

// OrderBook is the top-of-book view used for the spread check.
type OrderBook struct {
	Symbol        string
	BidPrice      float64
	AskPrice      float64
	SpreadPercent float64 // (ask-bid)/bid * 100
}
