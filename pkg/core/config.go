package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds API authentication credentials.
// The secret is used verbatim as the HMAC key, exactly as issued.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// Secret is the private key used for signing requests.
	Secret []byte `json:"secret"`
}

// Complete reports whether both the key and the secret are present.
// Authenticated calls require both and fail before any network activity otherwise.
func (c *Credentials) Complete() bool {
	return c != nil && c.APIKey != "" && len(c.Secret) > 0
}

// Config contains all configuration options for a client.
type Config struct {
	// BaseURL is the REST API host.
	BaseURL string `json:"base_url" validate:"required,url"`
	// FeedURL is the websocket market data endpoint.
	FeedURL string `json:"feed_url" validate:"omitempty,url"`
	// Credentials are required only for authenticated operations.
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for HTTP requests. Zero means no
	// client-side timeout; callers can always impose one via context.
	Timeout time.Duration `json:"timeout" validate:"min=0"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config pointing at the production API with a 10s timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  "https://api.btcmarkets.net",
		FeedURL:  "wss://socket.btcmarkets.net/v2",
		Timeout:  10 * time.Second,
		LogLevel: "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithBaseURL overrides the REST API host and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}
