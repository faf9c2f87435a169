package domain

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Order is an ephemeral rebalancing instruction: created from the allocation
// diff, risk-gated, executed, then either persisted as a Transaction or
// dropped. Amount is in base units of the instrument.
type Order struct {
	Symbol string
	Side   Side
	Amount float64
}

// ExecutedOrder is the exchange's view of a filled market order.
type ExecutedOrder struct {
	OrderID string
	Symbol  string
	Side    Side
	Amount  float64
	Price   float64 // average fill price, 0 if the exchange omits it
	Status  string  // e.g. "closed", "filled", "simulated"
}
