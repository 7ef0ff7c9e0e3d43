package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcmarkets/pkg/core"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{}, zerolog.Nop())
	require.Error(t, err)

	_, err = NewClient(&Config{BaseURL: "not a url"}, zerolog.Nop())
	require.Error(t, err)
}

func TestClient_Get(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v3/markets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		_, _ = w.Write([]byte(`[]`))
	})

	client, err := NewClient(&Config{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Headers: map[string]string{"Accept": "application/json"},
	}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	resp, err := client.Get(context.Background(), "/v3/markets")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "[]", resp.String())
}

func TestClient_Post_RawBody(t *testing.T) {
	body := `{"marketId":"BTC-AUD","price":"1.00000000"}`

	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		// Raw byte bodies must be dispatched verbatim: they have been signed.
		assert.Equal(t, body, string(got))

		w.WriteHeader(http.StatusOK)
	})

	client, err := NewClient(&Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	resp, err := client.Post(context.Background(), "/v3/orders", WithBody([]byte(body)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestClient_RequestOptions(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "value", r.Header.Get("X-Single"))
		assert.Equal(t, "a", r.Header.Get("X-A"))
		assert.Equal(t, "BTC-AUD", r.URL.Query().Get("market_id"))
		assert.Equal(t, "open", r.URL.Query().Get("status"))
	})

	client, err := NewClient(&Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = client.Get(context.Background(), "/v3/orders",
		WithHeader("X-Single", "value"),
		WithHeaders(map[string]string{"X-A": "a"}),
		WithQueryParam("market_id", "BTC-AUD"),
		WithQueryParams(map[string]string{"status": "open"}),
	)
	require.NoError(t, err)
}

func TestClient_ClosedClient(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	client, err := NewClient(&Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, client.Close())
	// Closing twice is a no-op.
	require.NoError(t, client.Close())

	_, err = client.Get(context.Background(), "/v3/markets")
	require.ErrorIs(t, err, core.ErrClientClosed)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	client, err := NewClient(&Config{BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, "/v3/markets")
	require.Error(t, err)
}
