package btcmarkets

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"

	"btcmarkets/pkg/core"
)

// bmMarket represents the raw market entry from GET /v3/markets.
// The API encodes every number as a string; decimal counts arrive either
// way depending on gateway version, hence json.Number.
type bmMarket struct {
	MarketID       string      `json:"marketId"`
	BaseAssetName  string      `json:"baseAssetName"`
	QuoteAssetName string      `json:"quoteAssetName"`
	MinOrderAmount string      `json:"minOrderAmount"`
	MaxOrderAmount string      `json:"maxOrderAmount"`
	AmountDecimals json.Number `json:"amountDecimals"`
	PriceDecimals  json.Number `json:"priceDecimals"`
	Status         string      `json:"status"`
}

// bmOrderBook represents the raw snapshot from GET /v3/markets/{id}/orderbook.
// Levels are [price, amount] string pairs.
type bmOrderBook struct {
	MarketID   string     `json:"marketId"`
	SnapshotID int64      `json:"snapshotId"`
	Bids       [][]string `json:"bids"`
	Asks       [][]string `json:"asks"`
}

// bmOrder represents the raw order object returned by the order endpoints.
type bmOrder struct {
	OrderID       string `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	MarketID      string `json:"marketId"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	CreationTime  string `json:"creationTime"`
	Price         string `json:"price"`
	Amount        string `json:"amount"`
	OpenAmount    string `json:"openAmount"`
	Status        string `json:"status"`
}

// bmBalance represents a raw balance entry from GET /v3/accounts/me/balances.
type bmBalance struct {
	AssetName string `json:"assetName"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

// bmTradingFees represents the raw fee tier from GET /v3/accounts/me/trading-fees.
type bmTradingFees struct {
	Volume30Day  string `json:"volume30Day"`
	FeeByMarkets []struct {
		MarketID     string `json:"marketId"`
		MakerFeeRate string `json:"makerFeeRate"`
		TakerFeeRate string `json:"takerFeeRate"`
	} `json:"feeByMarkets"`
}

// bmCancelConfirmation represents the raw acknowledgment of DELETE /v3/orders.
type bmCancelConfirmation struct {
	OrderID       string `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
}

// Normalizer converts raw BTC Markets payloads to canonical core types.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeMarkets converts raw market entries to canonical Markets.
func (n *Normalizer) NormalizeMarkets(data []bmMarket) ([]core.Market, error) {
	markets := make([]core.Market, 0, len(data))
	for i := range data {
		m, err := n.normalizeMarket(&data[i])
		if err != nil {
			return nil, err
		}
		markets = append(markets, *m)
	}
	return markets, nil
}

func (n *Normalizer) normalizeMarket(data *bmMarket) (*core.Market, error) {
	market := &core.Market{
		MarketID:       data.MarketID,
		BaseAssetName:  data.BaseAssetName,
		QuoteAssetName: data.QuoteAssetName,
		Status:         data.Status,
	}

	parseDecimal(&market.MinOrderAmount, data.MinOrderAmount)
	parseDecimal(&market.MaxOrderAmount, data.MaxOrderAmount)

	if data.AmountDecimals != "" {
		v, err := data.AmountDecimals.Int64()
		if err != nil {
			return nil, fmt.Errorf("market %s: amountDecimals: %w", data.MarketID, err)
		}
		market.AmountDecimals = int(v)
	}
	if data.PriceDecimals != "" {
		v, err := data.PriceDecimals.Int64()
		if err != nil {
			return nil, fmt.Errorf("market %s: priceDecimals: %w", data.MarketID, err)
		}
		market.PriceDecimals = int(v)
	}

	return market, nil
}

// NormalizeOrderBook converts a raw snapshot to a canonical OrderBook.
func (n *Normalizer) NormalizeOrderBook(data *bmOrderBook) (*core.OrderBook, error) {
	book := &core.OrderBook{
		MarketID:   data.MarketID,
		SnapshotID: data.SnapshotID,
	}

	var err error
	if book.Bids, err = normalizeLevels(data.Bids); err != nil {
		return nil, fmt.Errorf("bids: %w", err)
	}
	if book.Asks, err = normalizeLevels(data.Asks); err != nil {
		return nil, fmt.Errorf("asks: %w", err)
	}

	return book, nil
}

func normalizeLevels(raw [][]string) ([]core.OrderBookLevel, error) {
	levels := make([]core.OrderBookLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			return nil, fmt.Errorf("malformed level: %v", entry)
		}
		var level core.OrderBookLevel
		if err := core.ParseDecimal(&level.Price, entry[0]); err != nil {
			return nil, err
		}
		if err := core.ParseDecimal(&level.Amount, entry[1]); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// NormalizeOrder converts a raw order object to a canonical Order.
func (n *Normalizer) NormalizeOrder(data *bmOrder) (*core.Order, error) {
	order := &core.Order{
		OrderID:       data.OrderID,
		ClientOrderID: data.ClientOrderID,
		MarketID:      data.MarketID,
	}

	if err := parseEnum(&order.Side, data.Side); err != nil {
		return nil, fmt.Errorf("order %s: %w", data.OrderID, err)
	}
	if err := parseEnum(&order.Type, data.Type); err != nil {
		return nil, fmt.Errorf("order %s: %w", data.OrderID, err)
	}
	if err := parseEnum(&order.Status, data.Status); err != nil {
		return nil, fmt.Errorf("order %s: %w", data.OrderID, err)
	}

	parseDecimal(&order.Price, data.Price)
	parseDecimal(&order.Amount, data.Amount)
	parseDecimal(&order.OpenAmount, data.OpenAmount)

	if data.CreationTime != "" {
		t, err := time.Parse(time.RFC3339Nano, data.CreationTime)
		if err != nil {
			return nil, fmt.Errorf("order %s: creationTime: %w", data.OrderID, err)
		}
		order.CreationTime = t
	}

	return order, nil
}

// NormalizeOrders converts a list of raw orders to canonical Orders.
func (n *Normalizer) NormalizeOrders(data []bmOrder) ([]core.Order, error) {
	orders := make([]core.Order, 0, len(data))
	for i := range data {
		o, err := n.NormalizeOrder(&data[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// NormalizeBalances converts raw balance entries to canonical Balances.
func (n *Normalizer) NormalizeBalances(data []bmBalance) ([]core.Balance, error) {
	balances := make([]core.Balance, 0, len(data))
	for _, b := range data {
		balance := core.Balance{AssetName: b.AssetName}
		parseDecimal(&balance.Balance, b.Balance)
		parseDecimal(&balance.Available, b.Available)
		parseDecimal(&balance.Locked, b.Locked)
		balances = append(balances, balance)
	}
	return balances, nil
}

// NormalizeTradingFees converts the raw fee tier to canonical TradingFees.
func (n *Normalizer) NormalizeTradingFees(data *bmTradingFees) (*core.TradingFees, error) {
	fees := &core.TradingFees{
		FeeByMarkets: make([]core.MarketFee, 0, len(data.FeeByMarkets)),
	}
	parseDecimal(&fees.Volume30Day, data.Volume30Day)

	for _, f := range data.FeeByMarkets {
		fee := core.MarketFee{MarketID: f.MarketID}
		parseDecimal(&fee.MakerFeeRate, f.MakerFeeRate)
		parseDecimal(&fee.TakerFeeRate, f.TakerFeeRate)
		fees.FeeByMarkets = append(fees.FeeByMarkets, fee)
	}

	return fees, nil
}

// NormalizeCancelConfirmation converts a raw cancel acknowledgment.
func (n *Normalizer) NormalizeCancelConfirmation(data *bmCancelConfirmation) *core.CancelConfirmation {
	return &core.CancelConfirmation{
		OrderID:       data.OrderID,
		ClientOrderID: data.ClientOrderID,
	}
}

// NormalizeCancelConfirmations converts a list of raw cancel acknowledgments.
func (n *Normalizer) NormalizeCancelConfirmations(data []bmCancelConfirmation) []core.CancelConfirmation {
	confirmations := make([]core.CancelConfirmation, 0, len(data))
	for i := range data {
		confirmations = append(confirmations, *n.NormalizeCancelConfirmation(&data[i]))
	}
	return confirmations
}

// parseDecimal sets d from the exchange's string encoding, treating the
// empty string as zero. Fields the exchange omits stay zero-valued.
func parseDecimal(d *apd.Decimal, s string) {
	if s == "" {
		d.SetInt64(0)
		return
	}
	if err := core.ParseDecimal(d, s); err != nil {
		d.SetInt64(0)
	}
}

func parseEnum(dst json.Unmarshaler, value string) error {
	return dst.UnmarshalJSON([]byte(`"` + value + `"`))
}
