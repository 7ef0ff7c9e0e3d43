// Package btcmarkets implements a client for the BTC Markets cryptocurrency
// exchange. It covers the v3 REST API for market data and trading, with
// HMAC-SHA512 request signing, and a websocket feed for real-time updates.
//
// BTC Markets API Documentation: https://docs.btcmarkets.net
package btcmarkets
