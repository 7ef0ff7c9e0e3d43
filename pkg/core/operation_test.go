package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"get_markets", OpGetMarkets, "GET_MARKETS"},
		{"get_order_book", OpGetOrderBook, "GET_ORDER_BOOK"},
		{"get_trading_fees", OpGetTradingFees, "GET_TRADING_FEES"},
		{"get_balances", OpGetBalances, "GET_BALANCES"},
		{"place_order", OpPlaceOrder, "PLACE_ORDER"},
		{"replace_order", OpReplaceOrder, "REPLACE_ORDER"},
		{"list_orders", OpListOrders, "LIST_ORDERS"},
		{"get_order", OpGetOrder, "GET_ORDER"},
		{"cancel_order", OpCancelOrder, "CANCEL_ORDER"},
		{"cancel_open_orders", OpCancelOpenOrders, "CANCEL_OPEN_ORDERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}
