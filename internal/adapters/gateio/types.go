package gateio

// Raw DTOs from the Gate.io spot v4 API. Numbers arrive as strings; the
// conversion to domain entities lives in mapping.go.

// spotAccount is one entry of GET /spot/accounts.
type spotAccount struct {
	Currency  string `json:"currency"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

// tickerEntry is one entry of GET /spot/tickers.
type tickerEntry struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	ChangePercentage string `json:"change_percentage"`
	QuoteVolume      string `json:"quote_volume"`
}

// orderBookEntry is a [price, amount] pair in GET /spot/order_book.
type orderBookEntry [2]string

// orderBookResponse is the book for one currency pair.
type orderBookResponse struct {
	Bids []orderBookEntry `json:"bids"`
	Asks []orderBookEntry `json:"asks"`
}

// orderRequest is the body of POST /spot/orders.
// For market orders the amount is in quote units when buying and in base
// units when selling — Gate.io convention.
type orderRequest struct {
	CurrencyPair string `json:"currency_pair"`
	Type         string `json:"type"`
	Side         string `json:"side"`
	Amount       string `json:"amount"`
	TimeInForce  string `json:"time_in_force"`
}

// orderResponse is the fill returned by POST /spot/orders.
type orderResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CurrencyPair string `json:"currency_pair"`
	Side         string `json:"side"`
	Amount       string `json:"amount"`
	FilledAmount string `json:"filled_amount"`
	AvgDealPrice string `json:"avg_deal_price"`
}
