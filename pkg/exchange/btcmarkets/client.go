package btcmarkets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	httpclient "btcmarkets/internal/http"
	"btcmarkets/pkg/core"
)

// Client is a typed facade over the BTC Markets v3 REST API. It holds no
// mutable state besides immutable configuration and credentials, so it is
// safe for concurrent use.
type Client struct {
	config     *core.Config
	httpClient *httpclient.Client
	protocol   *Protocol
	logger     zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds construction options for the Client.
type Options struct {
	Logger zerolog.Logger
}

// WithLogger returns an option that sets the logger for the client.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// OrderRequest describes a new order. Price and Amount are formatted to
// exactly eight decimal places on the wire regardless of input precision.
type OrderRequest struct {
	MarketID string
	Price    *apd.Decimal
	Amount   *apd.Decimal
	Type     core.OrderType
	Side     core.OrderSide
}

// ListOrdersQuery filters ListOrders. Zero values mean no filter.
type ListOrdersQuery struct {
	// MarketID restricts results to one market (e.g. "BTC-AUD").
	MarketID string
	// Status restricts results by order status ("open" or "all").
	Status string
}

// New creates a Client from the given configuration.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	hc, err := httpclient.NewClient(&httpclient.Config{
		BaseURL: config.BaseURL,
		Timeout: config.Timeout,
		Headers: map[string]string{
			"Accept":         "application/json",
			"Accept-Charset": "UTF-8",
			"Content-Type":   "application/json",
		},
	}, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: hc,
		protocol:   NewProtocol(),
		logger:     options.Logger,
	}, nil
}

// Close releases resources used by the client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// GetActiveMarkets retrieves the list of active markets including the
// configuration for each market.
func (c *Client) GetActiveMarkets(ctx context.Context) ([]core.Market, error) {
	result, err := c.do(ctx, core.OpGetMarkets, core.Params{})
	if err != nil {
		return nil, err
	}

	markets, ok := result.([]core.Market)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return markets, nil
}

// GetMarketOrderBook retrieves an order book snapshot for the given market
// (e.g. "BTC-AUD").
func (c *Client) GetMarketOrderBook(ctx context.Context, marketID string) (*core.OrderBook, error) {
	result, err := c.do(ctx, core.OpGetOrderBook, core.Params{
		"market_id": marketID,
	})
	if err != nil {
		return nil, err
	}

	book, ok := result.(*core.OrderBook)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return book, nil
}

// GetTradingFees retrieves the account's fee tier.
func (c *Client) GetTradingFees(ctx context.Context) (*core.TradingFees, error) {
	result, err := c.do(ctx, core.OpGetTradingFees, core.Params{})
	if err != nil {
		return nil, err
	}

	fees, ok := result.(*core.TradingFees)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return fees, nil
}

// GetBalances retrieves account balances for all assets.
func (c *Client) GetBalances(ctx context.Context) ([]core.Balance, error) {
	result, err := c.do(ctx, core.OpGetBalances, core.Params{})
	if err != nil {
		return nil, err
	}

	balances, ok := result.([]core.Balance)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return balances, nil
}

// PlaceNewOrder submits a new order to the exchange.
func (c *Client) PlaceNewOrder(ctx context.Context, req *OrderRequest) (*core.Order, error) {
	if req == nil {
		return nil, fmt.Errorf("nil order request")
	}

	price, err := core.FormatFixed8(req.Price)
	if err != nil {
		return nil, fmt.Errorf("format price: %w", err)
	}
	amount, err := core.FormatFixed8(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("format amount: %w", err)
	}

	result, err := c.do(ctx, core.OpPlaceOrder, core.Params{
		"market_id": req.MarketID,
		"price":     price,
		"amount":    amount,
		"type":      req.Type.String(),
		"side":      req.Side.String(),
	})
	if err != nil {
		return nil, err
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return order, nil
}

// ReplaceOrder updates the price and amount of an existing order.
func (c *Client) ReplaceOrder(ctx context.Context, orderID string, price, amount *apd.Decimal) (*core.Order, error) {
	priceStr, err := core.FormatFixed8(price)
	if err != nil {
		return nil, fmt.Errorf("format price: %w", err)
	}
	amountStr, err := core.FormatFixed8(amount)
	if err != nil {
		return nil, fmt.Errorf("format amount: %w", err)
	}

	result, err := c.do(ctx, core.OpReplaceOrder, core.Params{
		"order_id": orderID,
		"price":    priceStr,
		"amount":   amountStr,
	})
	if err != nil {
		return nil, err
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return order, nil
}

// ListOrders retrieves orders, optionally filtered by market and status.
func (c *Client) ListOrders(ctx context.Context, query *ListOrdersQuery) ([]core.Order, error) {
	params := core.Params{}
	if query != nil {
		if query.MarketID != "" {
			params["market_id"] = query.MarketID
		}
		if query.Status != "" {
			params["status"] = query.Status
		}
	}

	result, err := c.do(ctx, core.OpListOrders, params)
	if err != nil {
		return nil, err
	}

	orders, ok := result.([]core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return orders, nil
}

// GetOrder retrieves a single order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*core.Order, error) {
	result, err := c.do(ctx, core.OpGetOrder, core.Params{
		"order_id": orderID,
	})
	if err != nil {
		return nil, err
	}

	order, ok := result.(*core.Order)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return order, nil
}

// CancelOrder cancels a single order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*core.CancelConfirmation, error) {
	result, err := c.do(ctx, core.OpCancelOrder, core.Params{
		"order_id": orderID,
	})
	if err != nil {
		return nil, err
	}

	confirmation, ok := result.(*core.CancelConfirmation)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return confirmation, nil
}

// CancelOpenOrders cancels all open orders, restricted to one market when
// marketID is non-empty.
func (c *Client) CancelOpenOrders(ctx context.Context, marketID string) ([]core.CancelConfirmation, error) {
	params := core.Params{}
	if marketID != "" {
		params["market_id"] = marketID
	}

	result, err := c.do(ctx, core.OpCancelOpenOrders, params)
	if err != nil {
		return nil, err
	}

	confirmations, ok := result.([]core.CancelConfirmation)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return confirmations, nil
}

// do runs one operation end to end: build the request descriptor, sign it
// when the operation requires authentication, dispatch it and parse the
// response. Every call is a one-shot request/response with no retries.
func (c *Client) do(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	req, err := c.protocol.BuildRequest(ctx, op, params)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var resp *resty.Response
	if req.RequireAuth {
		resp, err = c.doSignedRequest(ctx, req)
	} else {
		resp, err = c.doRequest(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	result, err := c.protocol.ParseResponse(op, resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, req *core.Request) (*resty.Response, error) {
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}

func (c *Client) doSignedRequest(ctx context.Context, req *core.Request) (*resty.Response, error) {
	if !c.config.Credentials.Complete() {
		return nil, core.ErrNoCredentials
	}

	if err := c.protocol.SignRequest(req, c.config.Credentials); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return resp, nil
}

func (c *Client) dispatch(ctx context.Context, req *core.Request) (*resty.Response, error) {
	opts := make([]httpclient.RequestOption, 0, 3)
	if len(req.Headers) > 0 {
		opts = append(opts, httpclient.WithHeaders(req.Headers))
	}
	if len(req.Query) > 0 {
		opts = append(opts, httpclient.WithQueryParams(req.Query))
	}
	if len(req.Body) > 0 {
		opts = append(opts, httpclient.WithBody(req.Body))
	}

	switch req.Method {
	case http.MethodGet:
		return c.httpClient.Get(ctx, req.Path, opts...)
	case http.MethodPost:
		return c.httpClient.Post(ctx, req.Path, opts...)
	case http.MethodPut:
		return c.httpClient.Put(ctx, req.Path, opts...)
	case http.MethodDelete:
		return c.httpClient.Delete(ctx, req.Path, opts...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}
}
