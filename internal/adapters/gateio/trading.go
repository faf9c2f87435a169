package gateio

// trading.go — order placement. Only market orders: execution never works
// the book, it just crosses the spread at whatever is there.

import (
	"context"
	"fmt"
	"strconv"

	"rwafolio/internal/domain"
)

// CreateMarketOrder places a market order for amount base units.
// Gate.io quotes market buys in quote units, so buys are converted with the
// latest ticker before submission; sells go out in base units directly.
func (a *Adapter) CreateMarketOrder(ctx context.Context, symbol string, side domain.Side, amount float64) (domain.ExecutedOrder, error) {
	if amount <= 0 {
		return domain.ExecutedOrder{}, fmt.Errorf("gateio.CreateMarketOrder %s: non-positive amount %f", symbol, amount)
	}

	sendAmount := amount
	if side == domain.Buy {
		t, err := a.GetTicker(ctx, symbol)
		if err != nil {
			return domain.ExecutedOrder{}, fmt.Errorf("gateio.CreateMarketOrder %s: price for buy conversion: %w", symbol, err)
		}
		if t.Price <= 0 {
			return domain.ExecutedOrder{}, fmt.Errorf("gateio.CreateMarketOrder %s: no price for buy conversion", symbol)
		}
		sendAmount = amount * t.Price
	}

	req := orderRequest{
		CurrencyPair: symbol,
		Type:         "market",
		Side:         string(side),
		Amount:       strconv.FormatFloat(sendAmount, 'f', -1, 64),
		TimeInForce:  "ioc",
	}

	var resp orderResponse
	if err := a.postSigned(ctx, a.orderLimiter, "/spot/orders", req, &resp); err != nil {
		return domain.ExecutedOrder{}, fmt.Errorf("gateio.CreateMarketOrder %s %s: %w", side, symbol, err)
	}

	a.log.Info().
		Str("symbol", symbol).
		Str("side", string(side)).
		Float64("amount", amount).
		Str("order_id", resp.ID).
		Str("status", resp.Status).
		Msg("market order placed")

	return domain.ExecutedOrder{
		OrderID: resp.ID,
		Symbol:  symbol,
		Side:    side,
		Amount:  amount,
		Price:   parseFloat(resp.AvgDealPrice),
		Status:  resp.Status,
	}, nil
}
