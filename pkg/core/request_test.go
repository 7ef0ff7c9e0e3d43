package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(http.MethodGet, "/v3/markets")

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v3/markets", req.Path)
	assert.NotNil(t, req.Query)
	assert.NotNil(t, req.Headers)
	assert.Nil(t, req.Body)
	assert.False(t, req.RequireAuth)
}

func TestRequest_Chaining(t *testing.T) {
	body := []byte(`{"price":"1.00000000"}`)
	req := NewRequest(http.MethodPost, "/v3/orders").
		SetQuery("market_id", "BTC-AUD").
		SetQueryParams(map[string]string{"status": "open"}).
		SetBody(body).
		SetHeader("X-Test", "1").
		SetRequireAuth(true)

	assert.Equal(t, "BTC-AUD", req.Query["market_id"])
	assert.Equal(t, "open", req.Query["status"])
	assert.Equal(t, body, req.Body)
	assert.Equal(t, "1", req.Headers["X-Test"])
	assert.True(t, req.RequireAuth)
}

func TestRequest_SetQuery_NilMap(t *testing.T) {
	req := &Request{Method: http.MethodGet, Path: "/v3/orders"}
	req.SetQuery("market_id", "BTC-AUD")
	require.NotNil(t, req.Query)
	assert.Equal(t, "BTC-AUD", req.Query["market_id"])

	req.SetHeader("X-Test", "1")
	require.NotNil(t, req.Headers)
	assert.Equal(t, "1", req.Headers["X-Test"])
}
