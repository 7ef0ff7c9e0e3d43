package btcmarkets

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"btcmarkets/internal/ws"
	"btcmarkets/pkg/core"
)

// Feed channels understood by the websocket endpoint.
const (
	ChannelTick        = "tick"
	ChannelTrade       = "trade"
	ChannelOrderbook   = "orderbook"
	ChannelHeartbeat   = "heartbeat"
	ChannelOrderChange = "orderChange"
	ChannelFundChange  = "fundChange"
)

// feedSignPath is the fixed path signed for authenticated subscriptions.
const feedSignPath = "/users/self/subscribe"

// Tick is a real-time market summary update.
type Tick struct {
	MarketID  string      `json:"marketId"`
	Timestamp time.Time   `json:"timestamp"`
	BestBid   apd.Decimal `json:"bestBid"`
	BestAsk   apd.Decimal `json:"bestAsk"`
	LastPrice apd.Decimal `json:"lastPrice"`
	Volume24h apd.Decimal `json:"volume24h"`
}

// FeedTrade is a real-time trade event.
type FeedTrade struct {
	MarketID  string         `json:"marketId"`
	TradeID   int64          `json:"tradeId"`
	Timestamp time.Time      `json:"timestamp"`
	Price     apd.Decimal    `json:"price"`
	Volume    apd.Decimal    `json:"volume"`
	Side      core.OrderSide `json:"side"`
}

// OrderChange is a real-time update to one of the account's orders.
// Requires an authenticated subscription.
type OrderChange struct {
	OrderID    string           `json:"orderId"`
	MarketID   string           `json:"marketId"`
	Side       core.OrderSide   `json:"side"`
	Type       core.OrderType   `json:"type"`
	OpenVolume apd.Decimal      `json:"openVolume"`
	Status     core.OrderStatus `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Feed streams real-time market data from the websocket endpoint. The feed
// never reconnects on its own: when the connection drops, the caller decides
// whether and when to dial again via the OnDisconnect handler.
type Feed struct {
	client *ws.Client
	creds  *core.Credentials
	logger zerolog.Logger

	mu             sync.RWMutex
	subscribed     bool
	tickCallbacks  map[string]func(*Tick)
	tradeCallbacks map[string]func(*FeedTrade)
	bookCallbacks  map[string]func(*core.OrderBook)
	orderChangeCb  func(*OrderChange)
	heartbeatCb    func()
	disconnectCb   func(error)
}

// NewFeed creates a websocket feed from the given configuration.
func NewFeed(config *core.Config, opts ...Option) *Feed {
	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	feedURL := config.FeedURL
	if feedURL == "" {
		feedURL = FeedURL
	}

	f := &Feed{
		client: ws.NewClient(ws.Config{
			URL: feedURL,
		}),
		creds:          config.Credentials,
		logger:         options.Logger,
		tickCallbacks:  make(map[string]func(*Tick)),
		tradeCallbacks: make(map[string]func(*FeedTrade)),
		bookCallbacks:  make(map[string]func(*core.OrderBook)),
	}
	f.client.SetLogger(options.Logger)
	f.client.OnMessage(f.route)
	f.client.OnClose(func(err error) {
		f.mu.RLock()
		cb := f.disconnectCb
		f.mu.RUnlock()
		if cb != nil {
			cb(err)
		}
	})
	return f
}

// Connect establishes the websocket connection.
func (f *Feed) Connect(ctx context.Context) error {
	return f.client.Connect(ctx)
}

// Close shuts down the feed and its connection.
func (f *Feed) Close() error {
	return f.client.Close()
}

// IsConnected returns true while the underlying connection is active.
func (f *Feed) IsConnected() bool {
	return f.client.IsConnected()
}

// OnDisconnect registers a handler invoked when the connection terminates.
func (f *Feed) OnDisconnect(handler func(error)) {
	f.mu.Lock()
	f.disconnectCb = handler
	f.mu.Unlock()
}

// OnTick registers a callback for tick updates on the given market.
func (f *Feed) OnTick(marketID string, callback func(*Tick)) {
	f.mu.Lock()
	f.tickCallbacks[marketID] = callback
	f.mu.Unlock()
}

// OnTrade registers a callback for trade events on the given market.
func (f *Feed) OnTrade(marketID string, callback func(*FeedTrade)) {
	f.mu.Lock()
	f.tradeCallbacks[marketID] = callback
	f.mu.Unlock()
}

// OnOrderBook registers a callback for order book snapshots on the given market.
func (f *Feed) OnOrderBook(marketID string, callback func(*core.OrderBook)) {
	f.mu.Lock()
	f.bookCallbacks[marketID] = callback
	f.mu.Unlock()
}

// OnOrderChange registers a callback for the account's order updates.
// Subscribing to the orderChange channel requires credentials.
func (f *Feed) OnOrderChange(callback func(*OrderChange)) {
	f.mu.Lock()
	f.orderChangeCb = callback
	f.mu.Unlock()
}

// OnHeartbeat registers a callback for server heartbeats.
func (f *Feed) OnHeartbeat(callback func()) {
	f.mu.Lock()
	f.heartbeatCb = callback
	f.mu.Unlock()
}

type subscribeMessage struct {
	MessageType string   `json:"messageType"`
	MarketIDs   []string `json:"marketIds,omitempty"`
	Channels    []string `json:"channels"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Key         string   `json:"key,omitempty"`
	Signature   string   `json:"signature,omitempty"`
}

// Subscribe requests the given channels for the given markets. The first
// call on a connection issues a subscribe; later calls add to the existing
// subscription. Private channels (orderChange, fundChange) are signed with
// the same HMAC-SHA512 scheme as REST calls and require credentials.
func (f *Feed) Subscribe(marketIDs, channels []string) error {
	if !f.client.IsConnected() {
		return core.ErrNotConnected
	}

	msg := subscribeMessage{
		MessageType: "subscribe",
		MarketIDs:   marketIDs,
		Channels:    channels,
	}

	f.mu.Lock()
	if f.subscribed {
		msg.MessageType = "addSubscription"
	}
	f.subscribed = true
	f.mu.Unlock()

	if containsPrivateChannel(channels) {
		ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
		signature, err := signFeedAuth(f.creds, ts)
		if err != nil {
			return err
		}
		msg.Key = f.creds.APIKey
		msg.Timestamp = ts
		msg.Signature = signature
	}

	if err := f.client.SendJSON(msg); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}

	f.logger.Debug().
		Strs("markets", marketIDs).
		Strs("channels", channels).
		Msg("sent subscribe")
	return nil
}

// Unsubscribe removes the given channels for the given markets.
func (f *Feed) Unsubscribe(marketIDs, channels []string) error {
	if !f.client.IsConnected() {
		return core.ErrNotConnected
	}

	msg := subscribeMessage{
		MessageType: "removeSubscription",
		MarketIDs:   marketIDs,
		Channels:    channels,
	}
	if err := f.client.SendJSON(msg); err != nil {
		return fmt.Errorf("send unsubscribe: %w", err)
	}
	return nil
}

func containsPrivateChannel(channels []string) bool {
	for _, ch := range channels {
		if ch == ChannelOrderChange || ch == ChannelFundChange {
			return true
		}
	}
	return false
}

// signFeedAuth signs "/users/self/subscribe" + "\n" + timestamp, the string
// the feed verifies for authenticated subscriptions.
func signFeedAuth(creds *core.Credentials, timestamp string) (string, error) {
	if !creds.Complete() {
		return "", core.ErrNoCredentials
	}

	mac := hmac.New(sha512.New, creds.Secret)
	mac.Write([]byte(feedSignPath))
	mac.Write([]byte("\n"))
	mac.Write([]byte(timestamp))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (f *Feed) route(data []byte) {
	var base struct {
		MessageType string `json:"messageType"`
	}
	if err := sonic.Unmarshal(data, &base); err != nil {
		f.logger.Debug().Err(err).Msg("failed to parse base message")
		return
	}

	var err error
	switch base.MessageType {
	case ChannelTick:
		err = f.handleTick(data)
	case ChannelTrade:
		err = f.handleTrade(data)
	case ChannelOrderbook:
		err = f.handleOrderBook(data)
	case ChannelOrderChange:
		err = f.handleOrderChange(data)
	case ChannelHeartbeat:
		f.mu.RLock()
		cb := f.heartbeatCb
		f.mu.RUnlock()
		if cb != nil {
			cb()
		}
	case "error":
		var msg struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if sonic.Unmarshal(data, &msg) == nil {
			f.logger.Error().
				Int("code", msg.Code).
				Str("message", msg.Message).
				Msg("feed error")
		}
	default:
		f.logger.Debug().Str("messageType", base.MessageType).Msg("unhandled message type")
	}

	if err != nil {
		f.logger.Error().Err(err).Str("messageType", base.MessageType).Msg("handle feed message")
	}
}

func (f *Feed) handleTick(data []byte) error {
	var msg struct {
		MarketID  string `json:"marketId"`
		Timestamp string `json:"timestamp"`
		BestBid   string `json:"bestBid"`
		BestAsk   string `json:"bestAsk"`
		LastPrice string `json:"lastPrice"`
		Volume24h string `json:"volume24h"`
	}
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse tick: %w", err)
	}

	f.mu.RLock()
	callback := f.tickCallbacks[msg.MarketID]
	f.mu.RUnlock()

	if callback == nil {
		return nil
	}

	tick := &Tick{
		MarketID:  msg.MarketID,
		Timestamp: parseFeedTime(msg.Timestamp),
	}
	parseDecimal(&tick.BestBid, msg.BestBid)
	parseDecimal(&tick.BestAsk, msg.BestAsk)
	parseDecimal(&tick.LastPrice, msg.LastPrice)
	parseDecimal(&tick.Volume24h, msg.Volume24h)
	callback(tick)
	return nil
}

func (f *Feed) handleTrade(data []byte) error {
	var msg struct {
		MarketID  string `json:"marketId"`
		TradeID   int64  `json:"tradeId"`
		Timestamp string `json:"timestamp"`
		Price     string `json:"price"`
		Volume    string `json:"volume"`
		Side      string `json:"side"`
	}
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse trade: %w", err)
	}

	f.mu.RLock()
	callback := f.tradeCallbacks[msg.MarketID]
	f.mu.RUnlock()

	if callback == nil {
		return nil
	}

	trade := &FeedTrade{
		MarketID:  msg.MarketID,
		TradeID:   msg.TradeID,
		Timestamp: parseFeedTime(msg.Timestamp),
	}
	if err := parseEnum(&trade.Side, msg.Side); err != nil {
		return fmt.Errorf("trade %d: %w", msg.TradeID, err)
	}
	parseDecimal(&trade.Price, msg.Price)
	parseDecimal(&trade.Volume, msg.Volume)
	callback(trade)
	return nil
}

func (f *Feed) handleOrderBook(data []byte) error {
	// Feed levels are [price, volume, count]; count is dropped.
	var msg struct {
		MarketID   string  `json:"marketId"`
		SnapshotID int64   `json:"snapshotId"`
		Bids       [][]any `json:"bids"`
		Asks       [][]any `json:"asks"`
	}
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse orderbook: %w", err)
	}

	f.mu.RLock()
	callback := f.bookCallbacks[msg.MarketID]
	f.mu.RUnlock()

	if callback == nil {
		return nil
	}

	book := &core.OrderBook{
		MarketID:   msg.MarketID,
		SnapshotID: msg.SnapshotID,
	}

	var err error
	if book.Bids, err = normalizeFeedLevels(msg.Bids); err != nil {
		return fmt.Errorf("bids: %w", err)
	}
	if book.Asks, err = normalizeFeedLevels(msg.Asks); err != nil {
		return fmt.Errorf("asks: %w", err)
	}

	callback(book)
	return nil
}

func (f *Feed) handleOrderChange(data []byte) error {
	var msg struct {
		OrderID    int64  `json:"orderId"`
		MarketID   string `json:"marketId"`
		Side       string `json:"side"`
		Type       string `json:"type"`
		OpenVolume string `json:"openVolume"`
		Status     string `json:"status"`
		Timestamp  string `json:"timestamp"`
	}
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse order change: %w", err)
	}

	f.mu.RLock()
	callback := f.orderChangeCb
	f.mu.RUnlock()

	if callback == nil {
		return nil
	}

	change := &OrderChange{
		OrderID:   strconv.FormatInt(msg.OrderID, 10),
		MarketID:  msg.MarketID,
		Timestamp: parseFeedTime(msg.Timestamp),
	}
	if err := parseEnum(&change.Side, msg.Side); err != nil {
		return fmt.Errorf("order %d: %w", msg.OrderID, err)
	}
	if err := parseEnum(&change.Type, msg.Type); err != nil {
		return fmt.Errorf("order %d: %w", msg.OrderID, err)
	}
	if err := parseEnum(&change.Status, msg.Status); err != nil {
		return fmt.Errorf("order %d: %w", msg.OrderID, err)
	}
	parseDecimal(&change.OpenVolume, msg.OpenVolume)

	callback(change)
	return nil
}

func normalizeFeedLevels(raw [][]any) ([]core.OrderBookLevel, error) {
	levels := make([]core.OrderBookLevel, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 2 {
			return nil, fmt.Errorf("malformed level: %v", entry)
		}
		price, ok := entry[0].(string)
		if !ok {
			return nil, fmt.Errorf("malformed level price: %v", entry[0])
		}
		volume, ok := entry[1].(string)
		if !ok {
			return nil, fmt.Errorf("malformed level volume: %v", entry[1])
		}

		var level core.OrderBookLevel
		if err := core.ParseDecimal(&level.Price, price); err != nil {
			return nil, err
		}
		if err := core.ParseDecimal(&level.Amount, volume); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func parseFeedTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
