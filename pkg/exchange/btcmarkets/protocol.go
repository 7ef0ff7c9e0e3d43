package btcmarkets

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"resty.dev/v3"

	"btcmarkets/pkg/core"
)

const (
	// ProductionURL is the REST API host. The exchange has no sandbox.
	ProductionURL = "https://api.btcmarkets.net"
	// FeedURL is the websocket market data endpoint.
	FeedURL = "wss://socket.btcmarkets.net/v2"
)

// Authentication headers required on every signed request.
const (
	HeaderAPIKey    = "BM-AUTH-APIKEY"
	HeaderTimestamp = "BM-AUTH-TIMESTAMP"
	HeaderSignature = "BM-AUTH-SIGNATURE"
)

// Protocol implements the core.Protocol interface for the BTC Markets v3 API.
// It builds request descriptors, signs them with HMAC-SHA512 and parses
// responses into canonical types.
type Protocol struct{}

var _ core.Protocol = (*Protocol)(nil)

// NewProtocol creates a new BTC Markets protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "btcmarkets".
func (p *Protocol) Name() string {
	return "btcmarkets"
}

// Version returns the BTC Markets API version string.
func (p *Protocol) Version() string {
	return "3"
}

// BaseURL returns the base URL for the BTC Markets REST API.
func (p *Protocol) BaseURL() string {
	return ProductionURL
}

// SupportedOperations returns the list of operations supported by this protocol.
func (p *Protocol) SupportedOperations() []core.Operation {
	return []core.Operation{
		core.OpGetMarkets,
		core.OpGetOrderBook,
		core.OpGetTradingFees,
		core.OpGetBalances,
		core.OpPlaceOrder,
		core.OpReplaceOrder,
		core.OpListOrders,
		core.OpGetOrder,
		core.OpCancelOrder,
		core.OpCancelOpenOrders,
	}
}

// Sign computes the request signature over method + path + timestamp + body:
// base64(HMAC-SHA512(secret, ...)). The body is the exact serialized JSON
// that will be dispatched and is left out entirely when the request has
// none. Query parameters are never part of the signed string.
func (p *Protocol) Sign(creds *core.Credentials, method, path, timestamp string, body []byte) (string, error) {
	if !creds.Complete() {
		return "", core.ErrNoCredentials
	}

	mac := hmac.New(sha512.New, creds.Secret)
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write([]byte(timestamp))
	if len(body) > 0 {
		mac.Write(body)
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// SignRequest stamps req with the current millisecond timestamp and attaches
// the BM-AUTH authentication headers. It fails with core.ErrNoCredentials
// when the key or secret is missing.
func (p *Protocol) SignRequest(req *core.Request, creds *core.Credentials) error {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return p.signRequestAt(req, creds, ts)
}

func (p *Protocol) signRequestAt(req *core.Request, creds *core.Credentials, timestamp string) error {
	signature, err := p.Sign(creds, req.Method, req.Path, timestamp, req.Body)
	if err != nil {
		return err
	}

	req.SetHeader(HeaderAPIKey, creds.APIKey)
	req.SetHeader(HeaderTimestamp, timestamp)
	req.SetHeader(HeaderSignature, signature)
	return nil
}

// BuildRequest constructs a request descriptor for the given operation.
// It validates required parameters and serializes any JSON body once, so
// the signed bytes match the dispatched bytes.
func (p *Protocol) BuildRequest(ctx context.Context, op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpGetMarkets:
		return core.NewRequest(http.MethodGet, "/v3/markets"), nil
	case core.OpGetOrderBook:
		return p.buildGetOrderBookRequest(params)
	case core.OpGetTradingFees:
		return core.NewRequest(http.MethodGet, "/v3/accounts/me/trading-fees").SetRequireAuth(true), nil
	case core.OpGetBalances:
		return core.NewRequest(http.MethodGet, "/v3/accounts/me/balances").SetRequireAuth(true), nil
	case core.OpPlaceOrder:
		return p.buildPlaceOrderRequest(params)
	case core.OpReplaceOrder:
		return p.buildReplaceOrderRequest(params)
	case core.OpListOrders:
		return p.buildListOrdersRequest(params)
	case core.OpGetOrder:
		return p.buildGetOrderRequest(params)
	case core.OpCancelOrder:
		return p.buildCancelOrderRequest(params)
	case core.OpCancelOpenOrders:
		return p.buildCancelOpenOrdersRequest(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

func (p *Protocol) buildGetOrderBookRequest(params core.Params) (*core.Request, error) {
	marketID, err := getRequiredStringParam(params, "market_id")
	if err != nil {
		return nil, err
	}

	return core.NewRequest(http.MethodGet, fmt.Sprintf("/v3/markets/%s/orderbook", marketID)), nil
}

// orderPayload is the POST /v3/orders body. Field order matters: the
// serialized bytes feed the signature, and the exchange documents this order.
type orderPayload struct {
	MarketID string `json:"marketId"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Side     string `json:"side"`
}

type replacePayload struct {
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

func (p *Protocol) buildPlaceOrderRequest(params core.Params) (*core.Request, error) {
	payload := orderPayload{}
	var err error
	if payload.MarketID, err = getRequiredStringParam(params, "market_id"); err != nil {
		return nil, err
	}
	if payload.Price, err = getRequiredStringParam(params, "price"); err != nil {
		return nil, err
	}
	if payload.Amount, err = getRequiredStringParam(params, "amount"); err != nil {
		return nil, err
	}
	if payload.Type, err = getRequiredStringParam(params, "type"); err != nil {
		return nil, err
	}
	if payload.Side, err = getRequiredStringParam(params, "side"); err != nil {
		return nil, err
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	return core.NewRequest(http.MethodPost, "/v3/orders").
		SetBody(body).
		SetRequireAuth(true), nil
}

func (p *Protocol) buildReplaceOrderRequest(params core.Params) (*core.Request, error) {
	orderID, err := getRequiredStringParam(params, "order_id")
	if err != nil {
		return nil, err
	}

	payload := replacePayload{}
	if payload.Price, err = getRequiredStringParam(params, "price"); err != nil {
		return nil, err
	}
	if payload.Amount, err = getRequiredStringParam(params, "amount"); err != nil {
		return nil, err
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal replace payload: %w", err)
	}

	return core.NewRequest(http.MethodPut, "/v3/orders/"+orderID).
		SetBody(body).
		SetRequireAuth(true), nil
}

func (p *Protocol) buildListOrdersRequest(params core.Params) (*core.Request, error) {
	req := core.NewRequest(http.MethodGet, "/v3/orders").SetRequireAuth(true)

	if marketID := getStringParam(params, "market_id"); marketID != "" {
		req.SetQuery("market_id", marketID)
	}
	if status := getStringParam(params, "status"); status != "" {
		req.SetQuery("status", status)
	}

	return req, nil
}

func (p *Protocol) buildGetOrderRequest(params core.Params) (*core.Request, error) {
	orderID, err := getRequiredStringParam(params, "order_id")
	if err != nil {
		return nil, err
	}

	return core.NewRequest(http.MethodGet, "/v3/orders/"+orderID).SetRequireAuth(true), nil
}

func (p *Protocol) buildCancelOrderRequest(params core.Params) (*core.Request, error) {
	orderID, err := getRequiredStringParam(params, "order_id")
	if err != nil {
		return nil, err
	}

	return core.NewRequest(http.MethodDelete, "/v3/orders/"+orderID).SetRequireAuth(true), nil
}

func (p *Protocol) buildCancelOpenOrdersRequest(params core.Params) (*core.Request, error) {
	req := core.NewRequest(http.MethodDelete, "/v3/orders").SetRequireAuth(true)

	if marketID := getStringParam(params, "market_id"); marketID != "" {
		req.SetQuery("market_id", marketID)
	}

	return req, nil
}

// ParseResponse parses an HTTP response and normalizes it to canonical types.
// Non-200 responses map to *core.APIError, carrying the exchange error code
// and message when the body provides them and the bare status otherwise.
func (p *Protocol) ParseResponse(op core.Operation, resp *resty.Response) (any, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}

	if resp.StatusCode() != http.StatusOK {
		var apiErr bmAPIError
		if err := sonic.Unmarshal(resp.Bytes(), &apiErr); err == nil && apiErr.Code != "" && apiErr.Message != "" {
			return nil, core.NewAPIErrorWithCode(
				mapErrorCode(resp.StatusCode(), apiErr.Code),
				resp.StatusCode(),
				apiErr.Code,
				apiErr.Message,
			)
		}
		return nil, core.NewAPIError(mapStatusCode(resp.StatusCode()), resp.StatusCode())
	}

	n := NewNormalizer()

	switch op {
	case core.OpGetMarkets:
		var data []bmMarket
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal markets: %w", err)
		}
		return n.NormalizeMarkets(data)

	case core.OpGetOrderBook:
		var data bmOrderBook
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal order book: %w", err)
		}
		return n.NormalizeOrderBook(&data)

	case core.OpGetTradingFees:
		var data bmTradingFees
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal trading fees: %w", err)
		}
		return n.NormalizeTradingFees(&data)

	case core.OpGetBalances:
		var data []bmBalance
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal balances: %w", err)
		}
		return n.NormalizeBalances(data)

	case core.OpPlaceOrder, core.OpReplaceOrder, core.OpGetOrder:
		var data bmOrder
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		return n.NormalizeOrder(&data)

	case core.OpListOrders:
		var data []bmOrder
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		return n.NormalizeOrders(data)

	case core.OpCancelOrder:
		var data bmCancelConfirmation
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal cancel confirmation: %w", err)
		}
		return n.NormalizeCancelConfirmation(&data), nil

	case core.OpCancelOpenOrders:
		var data []bmCancelConfirmation
		if err := sonic.Unmarshal(resp.Bytes(), &data); err != nil {
			return nil, fmt.Errorf("unmarshal cancel confirmations: %w", err)
		}
		return n.NormalizeCancelConfirmations(data), nil

	default:
		var result any
		if err := sonic.Unmarshal(resp.Bytes(), &result); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		return result, nil
	}
}

type bmAPIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapErrorCode classifies an exchange error code, falling back to the HTTP
// status for codes it does not recognize.
func mapErrorCode(statusCode int, code string) core.ErrorType {
	switch code {
	case "InvalidApiKey", "InvalidAuthTimestamp", "InvalidAuthSignature", "InvalidTimeWindow":
		return core.ErrorTypeAuthentication
	case "InsufficientFund":
		return core.ErrorTypeInsufficientFunds
	case "OrderNotFound", "MarketNotFound":
		return core.ErrorTypeNotFound
	case "InvalidPrice", "InvalidAmount", "InvalidOrderType", "InvalidSide", "InvalidTriggerPrice":
		return core.ErrorTypeInvalidOrder
	case "InvalidMarketId", "InvalidOrderId", "InvalidPaginationParams":
		return core.ErrorTypeBadRequest
	case "TooManyOpenOrders":
		return core.ErrorTypeInvalidOrder
	default:
		return mapStatusCode(statusCode)
	}
}

func mapStatusCode(statusCode int) core.ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return core.ErrorTypeAuthentication
	case statusCode == http.StatusNotFound:
		return core.ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return core.ErrorTypeRateLimit
	case statusCode >= 500:
		return core.ErrorTypeServerError
	case statusCode >= 400:
		return core.ErrorTypeBadRequest
	default:
		return core.ErrorTypeUnknown
	}
}

func getRequiredStringParam(params core.Params, key string) (string, error) {
	val, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}

	if str == "" {
		return "", fmt.Errorf("parameter %s cannot be empty", key)
	}

	return str, nil
}

func getStringParam(params core.Params, key string) string {
	if val, ok := params[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
