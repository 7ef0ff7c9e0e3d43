package core

// Operation represents a type of action that can be performed against the exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpGetMarkets retrieves the list of active markets and their configuration.
	OpGetMarkets Operation = iota
	// OpGetOrderBook retrieves an order book snapshot for a market.
	OpGetOrderBook
	// OpGetTradingFees retrieves the account's fee tier.
	OpGetTradingFees
	// OpGetBalances retrieves account balances.
	OpGetBalances
	// OpPlaceOrder submits a new order.
	OpPlaceOrder
	// OpReplaceOrder updates price and amount of an existing order.
	OpReplaceOrder
	// OpListOrders retrieves orders, optionally filtered by market and status.
	OpListOrders
	// OpGetOrder retrieves a single order by id.
	OpGetOrder
	// OpCancelOrder cancels a single order by id.
	OpCancelOrder
	// OpCancelOpenOrders cancels all open orders, optionally for one market.
	OpCancelOpenOrders
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"GET_MARKETS",
		"GET_ORDER_BOOK",
		"GET_TRADING_FEES",
		"GET_BALANCES",
		"PLACE_ORDER",
		"REPLACE_ORDER",
		"LIST_ORDERS",
		"GET_ORDER",
		"CANCEL_ORDER",
		"CANCEL_OPEN_ORDERS",
	}[o]
}
