package engine

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"rwafolio/internal/domain"
)

func testPolicy() RiskPolicy {
	return RiskPolicy{
		MaxSpreadPercent:    0.5,
		MaxDeviationPercent: 5.0,
		MinOrderSize:        0.001,
		BalanceUsageRatio:   0.998,
	}
}

func TestRiskGate_Validate_Passes(t *testing.T) {
	ex := &fakeExchange{
		tickers: domain.Tickers{"PAXG_USDT": {Price: 2000}},
		books: map[string]domain.OrderBook{
			"PAXG_USDT": {BidPrice: 1999, AskPrice: 2001, SpreadPercent: 0.1},
		},
	}
	gate := NewRiskGate(ex, testPolicy(), zerolog.Nop())
	refs := ReferencePrices{"PAXG_USDT": 1990}

	ok, reason := gate.Validate(context.Background(), domain.Order{Symbol: "PAXG_USDT", Side: domain.Buy, Amount: 0.5}, refs)

	assert.True(t, ok)
	assert.Equal(t, "OK", reason)
}

func TestRiskGate_Validate_RejectsWideSpread(t *testing.T) {
	ex := &fakeExchange{
		tickers: domain.Tickers{"PAXG_USDT": {Price: 2000}},
		books: map[string]domain.OrderBook{
			"PAXG_USDT": {BidPrice: 1980, AskPrice: 2020, SpreadPercent: 2.02},
		},
	}
	gate := NewRiskGate(ex, testPolicy(), zerolog.Nop())

	ok, reason := gate.Validate(context.Background(), domain.Order{Symbol: "PAXG_USDT", Side: domain.Buy, Amount: 0.5}, nil)

	assert.False(t, ok)
	assert.Contains(t, reason, "spread too high")
}

func TestRiskGate_Validate_SpreadFailOpen(t *testing.T) {
	// No book data at all: the check must pass, not block trading.
	ex := &fakeExchange{tickers: domain.Tickers{"PAXG_USDT": {Price: 2000}}}
	gate := NewRiskGate(ex, testPolicy(), zerolog.Nop())

	ok, _ := gate.Validate(context.Background(), domain.Order{Symbol: "PAXG_USDT", Side: domain.Buy, Amount: 0.5}, nil)

	assert.True(t, ok)
}

func TestRiskGate_Validate_RejectsPriceDeviation(t *testing.T) {
	ex := &fakeExchange{tickers: domain.Tickers{"PAXG_USDT": {Price: 2200}}}
	gate := NewRiskGate(ex, testPolicy(), zerolog.Nop())
	refs := ReferencePrices{"PAXG_USDT": 2000}

	ok, reason := gate.Validate(context.Background(), domain.Order{Symbol: "PAXG_USDT", Side: domain.Sell, Amount: 0.5}, refs)

	assert.False(t, ok)
	assert.Contains(t, reason, "price deviation too high")
}

func TestRiskGate_Validate_DeviationPassesWithoutHistory(t *testing.T) {
	ex := &fakeExchange{tickers: domain.Tickers{"PAXG_USDT": {Price: 2200}}}
	gate := NewRiskGate(ex, testPolicy(), zerolog.Nop())

	ok, _ := gate.Validate(context.Background(), domain.Order{Symbol: "PAXG_USDT", Side: domain.Sell, Amount: 0.5}, nil)

	assert.True(t, ok)
}

func TestRiskGate_Validate_RejectsTinyOrder(t *testing.T) {
	ex := &fakeExchange{tickers: domain.Tickers{"PAXG_USDT": {Price: 2000}}}
	gate := NewRiskGate(ex, testPolicy(), zerolog.Nop())

	ok, reason := gate.Validate(context.Background(), domain.Order{Symbol: "PAXG_USDT", Side: domain.Buy, Amount: 0.0001}, nil)

	assert.False(t, ok)
	assert.Contains(t, reason, "too small")
}

func TestRiskGate_ScaleForFees_ReservesHeadroom(t *testing.T) {
	gate := NewRiskGate(&fakeExchange{}, testPolicy(), zerolog.Nop())

	amount := gate.ScaleForFees(500)

	assert.InDelta(t, 499.0, amount, 0.0001)
	assert.Less(t, amount, 500.0)
}
