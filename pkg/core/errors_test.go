package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		want      string
	}{
		{"unknown", ErrorTypeUnknown, "UNKNOWN"},
		{"network", ErrorTypeNetwork, "NETWORK"},
		{"timeout", ErrorTypeTimeout, "TIMEOUT"},
		{"rate_limit", ErrorTypeRateLimit, "RATE_LIMIT"},
		{"authentication", ErrorTypeAuthentication, "AUTHENTICATION"},
		{"bad_request", ErrorTypeBadRequest, "BAD_REQUEST"},
		{"not_found", ErrorTypeNotFound, "NOT_FOUND"},
		{"server_error", ErrorTypeServerError, "SERVER_ERROR"},
		{"insufficient_funds", ErrorTypeInsufficientFunds, "INSUFFICIENT_FUNDS"},
		{"invalid_order", ErrorTypeInvalidOrder, "INVALID_ORDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.String())
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "with_code",
			err: &APIError{
				Type:       ErrorTypeBadRequest,
				StatusCode: 400,
				Code:       "InvalidMarketId",
				Message:    "market id is invalid",
			},
			want: "BAD_REQUEST (400/InvalidMarketId): market id is invalid",
		},
		{
			name: "message_only",
			err: &APIError{
				Type:       ErrorTypeServerError,
				StatusCode: 500,
				Message:    "internal error",
			},
			want: "SERVER_ERROR (500): internal error",
		},
		{
			name: "status_only",
			err: &APIError{
				Type:       ErrorTypeServerError,
				StatusCode: 502,
			},
			want: "SERVER_ERROR (502)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(ErrorTypeNotFound, 404)

	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, 404, err.StatusCode)
	assert.Empty(t, err.Code)
	assert.False(t, err.Timestamp.IsZero())
}

func TestNewAPIErrorWithCode(t *testing.T) {
	err := NewAPIErrorWithCode(ErrorTypeAuthentication, 401, "InvalidApiKey", "invalid api key")

	assert.Equal(t, ErrorTypeAuthentication, err.Type)
	assert.Equal(t, 401, err.StatusCode)
	assert.Equal(t, "InvalidApiKey", err.Code)
	assert.Equal(t, "invalid api key", err.Message)
}

func TestIsAuthenticationError(t *testing.T) {
	authErr := NewAPIError(ErrorTypeAuthentication, 401)
	notFoundErr := NewAPIError(ErrorTypeNotFound, 404)

	assert.True(t, IsAuthenticationError(authErr))
	assert.True(t, IsAuthenticationError(ErrNoCredentials))
	assert.True(t, IsAuthenticationError(fmt.Errorf("place order: %w", ErrNoCredentials)))
	assert.False(t, IsAuthenticationError(notFoundErr))
	assert.False(t, IsAuthenticationError(nil))
}

func TestIsNotFoundError(t *testing.T) {
	notFoundErr := NewAPIErrorWithCode(ErrorTypeNotFound, 404, "OrderNotFound", "order not found")

	assert.True(t, IsNotFoundError(notFoundErr))
	assert.True(t, IsNotFoundError(fmt.Errorf("get order: %w", notFoundErr)))
	assert.False(t, IsNotFoundError(NewAPIError(ErrorTypeBadRequest, 400)))
	assert.False(t, IsNotFoundError(errors.New("plain error")))
}

func TestIsInsufficientFundsError(t *testing.T) {
	fundsErr := NewAPIErrorWithCode(ErrorTypeInsufficientFunds, 400, "InsufficientFund", "insufficient fund")

	assert.True(t, IsInsufficientFundsError(fundsErr))
	assert.False(t, IsInsufficientFundsError(NewAPIError(ErrorTypeBadRequest, 400)))
	assert.False(t, IsInsufficientFundsError(nil))
}

func TestIsInvalidOrderError(t *testing.T) {
	orderErr := NewAPIErrorWithCode(ErrorTypeInvalidOrder, 400, "InvalidPrice", "price out of range")

	assert.True(t, IsInvalidOrderError(orderErr))
	assert.False(t, IsInvalidOrderError(NewAPIError(ErrorTypeServerError, 500)))
}
