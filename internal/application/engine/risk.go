package engine

// risk.go — the pre-execution risk gate.
//
// Checks run in a fixed order and the first failure wins: spread, price
// deviation, minimum size. The spread check is fail-open on missing book
// data — a deliberate trade-off so a transient data gap never stalls
// trading, accepted at the cost of occasionally trading through a wide
// spread we could not observe.

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"rwafolio/internal/domain"
	"rwafolio/internal/ports"
)

// ReferencePrices is the last stored price per symbol, captured before the
// running cycle writes its own observations. The capture point matters: a
// reference taken after the cycle's price-history write would always match
// the live price, and a move that happened between cycles would slip
// through the deviation check.
type ReferencePrices map[string]float64

// RiskPolicy holds the gate's tunables.
type RiskPolicy struct {
	MaxSpreadPercent    float64 // reject when book spread exceeds this
	MaxDeviationPercent float64 // reject when price drifted from stored history
	MinOrderSize        float64 // base units
	BalanceUsageRatio   float64 // headroom for fees and slippage
}

// RiskGate validates proposed orders before execution.
type RiskGate struct {
	exchange ports.Exchange
	policy   RiskPolicy
	log      zerolog.Logger
}

// NewRiskGate wires the gate to its market source.
func NewRiskGate(exchange ports.Exchange, policy RiskPolicy, log zerolog.Logger) *RiskGate {
	return &RiskGate{
		exchange: exchange,
		policy:   policy,
		log:      log.With().Str("component", "risk").Logger(),
	}
}

// Validate runs the checklist for one order against the cycle's pre-trade
// reference prices. A rejected order is dropped by the caller; it never
// aborts the rest of the cycle.
func (g *RiskGate) Validate(ctx context.Context, order domain.Order, refs ReferencePrices) (bool, string) {
	if ok, reason := g.checkSpread(ctx, order.Symbol); !ok {
		return false, reason
	}
	if ok, reason := g.checkPriceDeviation(ctx, order.Symbol, refs); !ok {
		return false, reason
	}
	if order.Amount < g.policy.MinOrderSize {
		return false, fmt.Sprintf("order amount too small: %g < %g", order.Amount, g.policy.MinOrderSize)
	}
	return true, "OK"
}

// checkSpread rejects when the live book spread exceeds the maximum.
// Missing or unparsable book data passes: fail-open.
func (g *RiskGate) checkSpread(ctx context.Context, symbol string) (bool, string) {
	book, ok := g.exchange.GetOrderBook(ctx, symbol, 5)
	if !ok {
		g.log.Debug().Str("symbol", symbol).Msg("no order book data, spread check passes")
		return true, ""
	}
	if book.SpreadPercent > g.policy.MaxSpreadPercent {
		return false, fmt.Sprintf("spread too high for %s: %.2f%%", symbol, book.SpreadPercent)
	}
	return true, ""
}

// checkPriceDeviation compares the live price against the reference stored
// by a previous cycle. Guards against weekend depegs: a price that moved
// more than the threshold since the last observation blocks the order.
// Without any stored history the check passes, consistent with fail-open.
func (g *RiskGate) checkPriceDeviation(ctx context.Context, symbol string, refs ReferencePrices) (bool, string) {
	ticker, err := g.exchange.GetTicker(ctx, symbol)
	if err != nil || ticker.Price <= 0 {
		g.log.Debug().Str("symbol", symbol).Msg("no live price, deviation check passes")
		return true, ""
	}
	reference, ok := refs[symbol]
	if !ok || reference <= 0 {
		g.log.Debug().Str("symbol", symbol).Msg("no reference price yet, deviation check passes")
		return true, ""
	}

	deviation := math.Abs(ticker.Price-reference) / reference * 100
	if deviation > g.policy.MaxDeviationPercent {
		return false, fmt.Sprintf("price deviation too high for %s: %.2f%% (last %.4f, now %.4f)",
			symbol, deviation, reference, ticker.Price)
	}
	return true, ""
}

// ScaleForFees trims an order amount by the balance usage ratio, reserving
// headroom for fees and slippage so a fill never tries to spend the full
// available balance.
func (g *RiskGate) ScaleForFees(amount float64) float64 {
	return amount * g.policy.BalanceUsageRatio
}
