package gateio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 2000.5, parseFloat("2000.5"))
	assert.Equal(t, 0.0, parseFloat(""))
	assert.Equal(t, 0.0, parseFloat("not-a-number"))
	assert.Equal(t, -1.2, parseFloat("-1.2"))
}

func TestToTicker(t *testing.T) {
	ticker := toTicker(tickerEntry{
		CurrencyPair:     "PAXG_USDT",
		Last:             "2001.25",
		ChangePercentage: "-0.8",
		QuoteVolume:      "154000.5",
	})

	assert.Equal(t, "PAXG_USDT", ticker.Symbol)
	assert.InDelta(t, 2001.25, ticker.Price, 1e-9)
	assert.InDelta(t, -0.8, ticker.Change24h, 1e-9)
	assert.InDelta(t, 154000.5, ticker.Volume, 1e-9)
}

func TestToTicker_MalformedPrice(t *testing.T) {
	ticker := toTicker(tickerEntry{CurrencyPair: "PAXG_USDT", Last: "n/a"})

	assert.Zero(t, ticker.Price)
}

func TestToOrderBook(t *testing.T) {
	book, ok := toOrderBook("PAXG_USDT", orderBookResponse{
		Bids: []orderBookEntry{{"2000", "1.5"}},
		Asks: []orderBookEntry{{"2004", "0.8"}},
	})

	require.True(t, ok)
	assert.Equal(t, "PAXG_USDT", book.Symbol)
	assert.InDelta(t, 2000.0, book.BidPrice, 1e-9)
	assert.InDelta(t, 2004.0, book.AskPrice, 1e-9)
	assert.InDelta(t, 0.2, book.SpreadPercent, 1e-9)
}

func TestToOrderBook_EmptySide(t *testing.T) {
	_, ok := toOrderBook("PAXG_USDT", orderBookResponse{
		Bids: []orderBookEntry{{"2000", "1.5"}},
	})
	assert.False(t, ok)

	_, ok = toOrderBook("PAXG_USDT", orderBookResponse{})
	assert.False(t, ok)
}

func TestToOrderBook_UnpricedSide(t *testing.T) {
	_, ok := toOrderBook("PAXG_USDT", orderBookResponse{
		Bids: []orderBookEntry{{"0", "1.5"}},
		Asks: []orderBookEntry{{"2004", "0.8"}},
	})

	assert.False(t, ok)
}

func TestBaseCurrency(t *testing.T) {
	assert.Equal(t, "PAXG", baseCurrency("PAXG_USDT"))
	assert.Equal(t, "ONDO", baseCurrency("ONDO_USDT"))
}
