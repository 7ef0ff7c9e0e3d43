package btcmarkets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcmarkets/pkg/core"
)

func TestNormalizer_NormalizeMarkets(t *testing.T) {
	n := NewNormalizer()

	markets, err := n.NormalizeMarkets([]bmMarket{
		{
			MarketID:       "BTC-AUD",
			BaseAssetName:  "BTC",
			QuoteAssetName: "AUD",
			MinOrderAmount: "0.0001",
			MaxOrderAmount: "1000000",
			AmountDecimals: "8",
			PriceDecimals:  "2",
			Status:         "Online",
		},
	})
	require.NoError(t, err)
	require.Len(t, markets, 1)

	m := markets[0]
	assert.Equal(t, "BTC-AUD", m.MarketID)
	assert.Equal(t, "BTC", m.BaseAssetName)
	assert.Equal(t, "AUD", m.QuoteAssetName)
	assert.Equal(t, "0.0001", m.MinOrderAmount.String())
	assert.Equal(t, 8, m.AmountDecimals)
	assert.Equal(t, 2, m.PriceDecimals)
	assert.Equal(t, "Online", m.Status)
}

func TestNormalizer_NormalizeMarkets_BadDecimalsCount(t *testing.T) {
	n := NewNormalizer()

	_, err := n.NormalizeMarkets([]bmMarket{
		{MarketID: "BTC-AUD", AmountDecimals: "eight"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amountDecimals")
}

func TestNormalizer_NormalizeOrderBook(t *testing.T) {
	n := NewNormalizer()

	book, err := n.NormalizeOrderBook(&bmOrderBook{
		MarketID:   "BTC-AUD",
		SnapshotID: 1578043209363000,
		Bids:       [][]string{{"99000.5", "0.5"}, {"98000", "1.2"}},
		Asks:       [][]string{{"100500.1", "0.3"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "BTC-AUD", book.MarketID)
	assert.Equal(t, int64(1578043209363000), book.SnapshotID)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, "99000.5", book.Bids[0].Price.String())
	assert.Equal(t, "1.2", book.Bids[1].Amount.String())
	assert.Equal(t, "100500.1", book.Asks[0].Price.String())
}

func TestNormalizer_NormalizeOrderBook_MalformedLevel(t *testing.T) {
	n := NewNormalizer()

	_, err := n.NormalizeOrderBook(&bmOrderBook{
		MarketID: "BTC-AUD",
		Bids:     [][]string{{"99000.5"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed level")
}

func TestNormalizer_NormalizeOrder(t *testing.T) {
	n := NewNormalizer()

	order, err := n.NormalizeOrder(&bmOrder{
		OrderID:       "12345678988",
		ClientOrderID: "abc-1",
		MarketID:      "BTC-AUD",
		Side:          "Ask",
		Type:          "Stop Limit",
		CreationTime:  "2026-01-15T03:10:30.000000Z",
		Price:         "100000",
		Amount:        "0.1",
		OpenAmount:    "0.05",
		Status:        "Partially Matched",
	})
	require.NoError(t, err)

	assert.Equal(t, "12345678988", order.OrderID)
	assert.Equal(t, "abc-1", order.ClientOrderID)
	assert.Equal(t, core.SideAsk, order.Side)
	assert.Equal(t, core.TypeStopLimit, order.Type)
	assert.Equal(t, core.StatusPartiallyMatched, order.Status)
	assert.Equal(t, "100000", order.Price.String())
	assert.Equal(t, "0.05", order.OpenAmount.String())
	assert.Equal(t, 2026, order.CreationTime.Year())
	assert.False(t, order.Status.IsTerminal())
}

func TestNormalizer_NormalizeOrder_UnknownSide(t *testing.T) {
	n := NewNormalizer()

	_, err := n.NormalizeOrder(&bmOrder{
		OrderID: "1",
		Side:    "Long",
		Type:    "Limit",
		Status:  "Placed",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order side")
}

func TestNormalizer_NormalizeOrder_UnknownStatus(t *testing.T) {
	n := NewNormalizer()

	_, err := n.NormalizeOrder(&bmOrder{
		OrderID: "1",
		Side:    "Bid",
		Type:    "Limit",
		Status:  "Pending",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order status")
}

func TestNormalizer_NormalizeOrder_BadCreationTime(t *testing.T) {
	n := NewNormalizer()

	_, err := n.NormalizeOrder(&bmOrder{
		OrderID:      "1",
		Side:         "Bid",
		Type:         "Limit",
		Status:       "Placed",
		CreationTime: "yesterday",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creationTime")
}

func TestNormalizer_NormalizeBalances(t *testing.T) {
	n := NewNormalizer()

	balances, err := n.NormalizeBalances([]bmBalance{
		{AssetName: "AUD", Balance: "1000.50", Available: "900.50", Locked: "100.00"},
		{AssetName: "BTC", Balance: "0.5", Available: "0.5", Locked: ""},
	})
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, "AUD", balances[0].AssetName)
	assert.Equal(t, "1000.50", balances[0].Balance.String())
	assert.Equal(t, "100.00", balances[0].Locked.String())

	// Omitted fields normalize to zero.
	assert.Equal(t, "0", balances[1].Locked.String())
}

func TestNormalizer_NormalizeTradingFees(t *testing.T) {
	n := NewNormalizer()

	fees, err := n.NormalizeTradingFees(&bmTradingFees{
		Volume30Day: "25000.00",
		FeeByMarkets: []struct {
			MarketID     string `json:"marketId"`
			MakerFeeRate string `json:"makerFeeRate"`
			TakerFeeRate string `json:"takerFeeRate"`
		}{
			{MarketID: "BTC-AUD", MakerFeeRate: "0.00085", TakerFeeRate: "0.00085"},
			{MarketID: "ETH-AUD", MakerFeeRate: "0.001", TakerFeeRate: "0.002"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "25000.00", fees.Volume30Day.String())
	require.Len(t, fees.FeeByMarkets, 2)
	assert.Equal(t, "BTC-AUD", fees.FeeByMarkets[0].MarketID)
	assert.Equal(t, "0.002", fees.FeeByMarkets[1].TakerFeeRate.String())
}

func TestNormalizer_NormalizeCancelConfirmations(t *testing.T) {
	n := NewNormalizer()

	confirmations := n.NormalizeCancelConfirmations([]bmCancelConfirmation{
		{OrderID: "1", ClientOrderID: "a"},
		{OrderID: "2"},
	})
	require.Len(t, confirmations, 2)

	assert.Equal(t, "1", confirmations[0].OrderID)
	assert.Equal(t, "a", confirmations[0].ClientOrderID)
	assert.Equal(t, "2", confirmations[1].OrderID)
	assert.Empty(t, confirmations[1].ClientOrderID)
}
