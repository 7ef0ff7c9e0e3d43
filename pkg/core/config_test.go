package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "https://api.btcmarkets.net", config.BaseURL)
	assert.Equal(t, "wss://socket.btcmarkets.net/v2", config.FeedURL)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, "info", config.LogLevel)
	assert.Nil(t, config.Credentials)
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
}

func TestConfig_Validate_MissingBaseURL(t *testing.T) {
	config := &Config{}
	require.Error(t, config.Validate())
}

func TestConfig_Validate_BadLogLevel(t *testing.T) {
	config := DefaultConfig()
	config.LogLevel = "loud"
	require.Error(t, config.Validate())
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "key", Secret: []byte("secret")}
	config := DefaultConfig().
		WithCredentials(creds).
		WithBaseURL("https://localhost:8080").
		WithTimeout(3 * time.Second)

	assert.Equal(t, creds, config.Credentials)
	assert.Equal(t, "https://localhost:8080", config.BaseURL)
	assert.Equal(t, 3*time.Second, config.Timeout)
}

func TestCredentials_Complete(t *testing.T) {
	tests := []struct {
		name  string
		creds *Credentials
		want  bool
	}{
		{"nil", nil, false},
		{"empty", &Credentials{}, false},
		{"key_only", &Credentials{APIKey: "key"}, false},
		{"secret_only", &Credentials{Secret: []byte("secret")}, false},
		{"complete", &Credentials{APIKey: "key", Secret: []byte("secret")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creds.Complete())
		})
	}
}
