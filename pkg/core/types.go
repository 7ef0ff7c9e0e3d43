package core

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order. BTC Markets uses order
// book vocabulary: a buy is a bid, a sell is an ask.
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBid indicates an order to buy the base asset.
	SideBid OrderSide = iota
	// SideAsk indicates an order to sell the base asset.
	SideAsk
)

// String returns the wire representation of the order side ("Bid" or "Ask").
func (s OrderSide) String() string {
	return [...]string{"Bid", "Ask"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Bid"`, `"bid"`:
		*s = SideBid
	case `"Ask"`, `"ask"`:
		*s = SideAsk
	default:
		return fmt.Errorf("unknown order side: %s", data)
	}
	return nil
}

// OrderType represents the type of order to place on the exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeLimit executes at a specified price or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available price.
	TypeMarket
	// TypeStopLimit triggers a limit order when price reaches the trigger price.
	TypeStopLimit
	// TypeStop triggers a market order when price reaches the trigger price.
	TypeStop
	// TypeTakeProfit triggers a market order when price reaches the target.
	TypeTakeProfit
)

// String returns the wire representation of the order type.
func (t OrderType) String() string {
	return [...]string{"Limit", "Market", "Stop Limit", "Stop", "Take Profit"}[t]
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Limit"`:
		*t = TypeLimit
	case `"Market"`:
		*t = TypeMarket
	case `"Stop Limit"`:
		*t = TypeStopLimit
	case `"Stop"`:
		*t = TypeStop
	case `"Take Profit"`:
		*t = TypeTakeProfit
	default:
		return fmt.Errorf("unknown order type: %s", data)
	}
	return nil
}

// OrderStatus represents the current state of an order on the exchange.
type OrderStatus int

// Order status constants define the lifecycle state of an order.
const (
	// StatusAccepted indicates the order has been accepted by the exchange.
	StatusAccepted OrderStatus = iota
	// StatusPlaced indicates the order has been placed on the order book.
	StatusPlaced
	// StatusPartiallyMatched indicates the order has been partially filled.
	StatusPartiallyMatched
	// StatusFullyMatched indicates the order has been completely filled.
	StatusFullyMatched
	// StatusCancelled indicates the order has been cancelled.
	StatusCancelled
	// StatusPartiallyCancelled indicates a partially filled order was cancelled.
	StatusPartiallyCancelled
	// StatusFailed indicates the order was rejected by the exchange.
	StatusFailed
)

// String returns the wire representation of the order status.
func (s OrderStatus) String() string {
	return [...]string{
		"Accepted",
		"Placed",
		"Partially Matched",
		"Fully Matched",
		"Cancelled",
		"Partially Cancelled",
		"Failed",
	}[s]
}

// IsTerminal returns true if the order can no longer change state.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFullyMatched || s == StatusCancelled ||
		s == StatusPartiallyCancelled || s == StatusFailed
}

// MarshalJSON implements json.Marshaler for OrderStatus.
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderStatus.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Accepted"`:
		*s = StatusAccepted
	case `"Placed"`:
		*s = StatusPlaced
	case `"Partially Matched"`:
		*s = StatusPartiallyMatched
	case `"Fully Matched"`:
		*s = StatusFullyMatched
	case `"Cancelled"`:
		*s = StatusCancelled
	case `"Partially Cancelled"`:
		*s = StatusPartiallyCancelled
	case `"Failed"`:
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown order status: %s", data)
	}
	return nil
}

// Market describes a tradable currency pair and its configuration.
type Market struct {
	// MarketID is the pair identifier (e.g. "BTC-AUD").
	MarketID string `json:"marketId"`
	// BaseAssetName is the asset being bought or sold (e.g. "BTC").
	BaseAssetName string `json:"baseAssetName"`
	// QuoteAssetName is the asset prices are quoted in (e.g. "AUD").
	QuoteAssetName string `json:"quoteAssetName"`
	// MinOrderAmount is the smallest allowed order amount.
	MinOrderAmount apd.Decimal `json:"minOrderAmount"`
	// MaxOrderAmount is the largest allowed order amount.
	MaxOrderAmount apd.Decimal `json:"maxOrderAmount"`
	// AmountDecimals is the number of decimal places accepted for amounts.
	AmountDecimals int `json:"amountDecimals"`
	// PriceDecimals is the number of decimal places accepted for prices.
	PriceDecimals int `json:"priceDecimals"`
	// Status is the market status reported by the exchange (e.g. "Online").
	Status string `json:"status"`
}

// OrderBookLevel represents a single price level in the order book.
type OrderBookLevel struct {
	// Price is the limit price for this level.
	Price apd.Decimal `json:"price"`
	// Amount is the total amount available at this price.
	Amount apd.Decimal `json:"amount"`
}

// OrderBook is a snapshot of the outstanding orders for a market.
type OrderBook struct {
	// MarketID is the pair this snapshot belongs to.
	MarketID string `json:"marketId"`
	// SnapshotID identifies the snapshot for sequencing.
	SnapshotID int64 `json:"snapshotId"`
	// Bids are buy orders sorted by price descending.
	Bids []OrderBookLevel `json:"bids"`
	// Asks are sell orders sorted by price ascending.
	Asks []OrderBookLevel `json:"asks"`
}

// Order represents an exchange order with all its details.
type Order struct {
	// OrderID is the exchange-assigned order identifier.
	OrderID string `json:"orderId"`
	// ClientOrderID is the optional client-assigned identifier.
	ClientOrderID string `json:"clientOrderId,omitempty"`
	// MarketID is the pair this order trades.
	MarketID string `json:"marketId"`
	// Side indicates whether this is a bid or an ask.
	Side OrderSide `json:"side"`
	// Type defines how the order executes.
	Type OrderType `json:"type"`
	// Price is the limit price.
	Price apd.Decimal `json:"price"`
	// Amount is the total order amount.
	Amount apd.Decimal `json:"amount"`
	// OpenAmount is the unfilled portion of the order.
	OpenAmount apd.Decimal `json:"openAmount"`
	// Status is the current state of the order.
	Status OrderStatus `json:"status"`
	// CreationTime is when the exchange accepted the order.
	CreationTime time.Time `json:"creationTime"`
}

// Balance represents the account balance for a single asset.
type Balance struct {
	// AssetName is the currency or token symbol (e.g. "BTC", "AUD").
	AssetName string `json:"assetName"`
	// Balance is the total balance including locked funds.
	Balance apd.Decimal `json:"balance"`
	// Available is the balance available for trading.
	Available apd.Decimal `json:"available"`
	// Locked is the balance locked in open orders.
	Locked apd.Decimal `json:"locked"`
}

// MarketFee holds the maker and taker fee rates for a single market.
type MarketFee struct {
	// MarketID is the pair these rates apply to.
	MarketID string `json:"marketId"`
	// MakerFeeRate is the fee rate for orders that add liquidity.
	MakerFeeRate apd.Decimal `json:"makerFeeRate"`
	// TakerFeeRate is the fee rate for orders that remove liquidity.
	TakerFeeRate apd.Decimal `json:"takerFeeRate"`
}

// TradingFees is the account's fee tier: 30-day volume and per-market rates.
type TradingFees struct {
	// Volume30Day is the account's trailing 30-day traded volume.
	Volume30Day apd.Decimal `json:"volume30Day"`
	// FeeByMarkets lists the fee rates per market.
	FeeByMarkets []MarketFee `json:"feeByMarkets"`
}

// CancelConfirmation acknowledges the cancellation of a single order.
type CancelConfirmation struct {
	// OrderID is the exchange-assigned identifier of the cancelled order.
	OrderID string `json:"orderId"`
	// ClientOrderID is the client-assigned identifier, when one was set.
	ClientOrderID string `json:"clientOrderId,omitempty"`
}
