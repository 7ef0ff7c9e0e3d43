package core

import (
	"context"

	"resty.dev/v3"
)

// Protocol defines the seam between the typed client facade and the
// exchange wire format: request building, response parsing and
// authentication live behind it.
type Protocol interface {
	// Name returns the exchange identifier.
	Name() string

	// Version returns the API version being used.
	Version() string

	// BaseURL returns the REST API base URL.
	BaseURL() string

	// BuildRequest constructs a request descriptor for the specified operation.
	// The params map contains operation-specific parameters.
	BuildRequest(ctx context.Context, op Operation, params Params) (*Request, error)

	// ParseResponse deserializes the HTTP response and normalizes it to
	// canonical types, mapping non-200 responses to *APIError.
	ParseResponse(op Operation, resp *resty.Response) (any, error)

	// SignRequest stamps the request with a millisecond timestamp and adds
	// the authentication headers. It fails with ErrNoCredentials when the
	// credentials are incomplete.
	SignRequest(req *Request, creds *Credentials) error

	// SupportedOperations returns the list of operations this protocol supports.
	SupportedOperations() []Operation
}
