package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an API error.
type ErrorType int

// Error type constants categorize errors for programmatic handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates the exchange rejected the call for exceeding its limits.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid or missing credentials.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates the account lacks the required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned by authenticated operations when the API
	// key or secret is not configured. It is raised before any network call.
	ErrNoCredentials = errors.New("api key or api secret not set")
	// ErrNotConnected is returned when the websocket feed is not connected.
	ErrNotConnected = errors.New("websocket not connected")
)

// APIError represents a structured error returned from the exchange.
// Code and Message are only populated when the response body carried them.
type APIError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific error code (e.g. "InvalidMarketId").
	Code string `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message,omitempty"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d/%s): %s", e.Type, e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s (%d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%d)", e.Type, e.StatusCode)
}

// NewAPIError creates an APIError carrying only the HTTP status.
func NewAPIError(errorType ErrorType, statusCode int) *APIError {
	return &APIError{
		Type:       errorType,
		StatusCode: statusCode,
		Timestamp:  time.Now(),
	}
}

// NewAPIErrorWithCode creates an APIError including the exchange error code
// and message taken from the response body.
func NewAPIErrorWithCode(errorType ErrorType, statusCode int, code, message string) *APIError {
	return &APIError{
		Type:       errorType,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// IsAuthenticationError returns true if the error is an authentication failure.
func IsAuthenticationError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeAuthentication
	}
	return errors.Is(err, ErrNoCredentials)
}

// IsNotFoundError returns true if the error indicates a missing resource.
func IsNotFoundError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeNotFound
	}
	return false
}

// IsInsufficientFundsError returns true if the account lacked the required balance.
func IsInsufficientFundsError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeInsufficientFunds
	}
	return false
}

// IsInvalidOrderError returns true if the order violated exchange rules.
func IsInvalidOrderError(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type == ErrorTypeInvalidOrder
	}
	return false
}
