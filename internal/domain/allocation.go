package domain

import "math"

// Allocation maps instrument symbol to its fraction of total portfolio value.
// Ratios are in [0,1] and sum to 1.0 across instruments plus cash; symbols
// with zero value are simply absent.
type Allocation map[string]float64

// DeadBand is the minimum allocation-ratio difference that triggers an order.
// It is deliberately a ratio threshold, not a notional one: a large portfolio
// churns at a proportionally larger dollar threshold than a small one.
const DeadBand = 0.0001

// Epsilon is the tolerance used when comparing ratios.
const Epsilon = 1e-4

// CurrentAllocation derives the live allocation from exchange balances and
// tickers. Instruments with a missing ticker are valued at price 0 rather
// than failing; cash is valued at 1.0. A zero-value portfolio yields an
// empty allocation.
func (u Universe) CurrentAllocation(balances Balances, tickers Tickers) Allocation {
	values := make(map[string]float64)
	total := 0.0

	for _, symbol := range u.Symbols {
		bal := balances[symbol]
		if bal <= 0 {
			continue
		}
		value := bal * tickers[symbol].Price
		values[symbol] = value
		total += value
	}

	if cash, ok := balances[u.Cash]; ok {
		values[u.Cash] = cash
		total += cash
	}

	if total <= 0 {
		return Allocation{}
	}

	alloc := make(Allocation, len(values))
	for symbol, value := range values {
		alloc[symbol] = value / total
	}
	return alloc
}

// TotalValue is the portfolio's worth in cash units: every positive balance
// priced by its ticker, plus the cash balance itself.
func (u Universe) TotalValue(balances Balances, tickers Tickers) float64 {
	total := 0.0
	for _, symbol := range u.Symbols {
		if bal := balances[symbol]; bal > 0 {
			total += bal * tickers[symbol].Price
		}
	}
	return total + balances[u.Cash]
}

// TradeOrders computes the market orders that move the portfolio from current
// to target. Cash never gets an order of its own: it is the counter-currency
// of every trade and adjusts implicitly. Symbols are visited in universe
// order so the output is deterministic. Ratio differences inside DeadBand
// are skipped, and a non-positive total value yields no orders at all.
func (u Universe) TradeOrders(current, target Allocation, totalValue float64, tickers Tickers) []Order {
	if totalValue <= 0 {
		return nil
	}

	var orders []Order
	for _, symbol := range u.Symbols {
		diff := target[symbol] - current[symbol]
		if math.Abs(diff) < DeadBand {
			continue
		}

		price := 1.0
		if t, ok := tickers[symbol]; ok && t.Price > 0 {
			price = t.Price
		}

		side := Buy
		if diff < 0 {
			side = Sell
		}

		orders = append(orders, Order{
			Symbol: symbol,
			Side:   side,
			Amount: totalValue * math.Abs(diff) / price,
		})
	}
	return orders
}

// Normalized rescales the allocation so ratios sum to 1.0. A zero-sum
// allocation is returned unchanged.
func (a Allocation) Normalized() Allocation {
	total := 0.0
	for _, v := range a {
		total += v
	}
	if total <= 0 {
		return a
	}
	out := make(Allocation, len(a))
	for k, v := range a {
		out[k] = v / total
	}
	return out
}

// Sum returns the total of all ratios.
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, v := range a {
		total += v
	}
	return total
}
