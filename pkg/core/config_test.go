package core

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.False(t, config.Sandbox)
	assert.Empty(t, config.BaseURL)
	assert.Nil(t, config.Credentials)
	assert.Equal(t, 5*time.Second, config.RecvWindow)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 10*time.Second, config.ConnectTimeout)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, config.RetryWaitMin)
	assert.Equal(t, 1*time.Second, config.RetryWaitMax)
	assert.Equal(t, 6000, config.RequestWeightPerMinute)
	assert.Equal(t, 10, config.OrdersPerSecond)
	assert.True(t, config.CircuitBreakerEnabled)
	assert.Equal(t, 5, config.CircuitBreakerFailThreshold)
	assert.Equal(t, 2, config.CircuitBreakerSuccessThreshold)
	assert.Equal(t, 30*time.Second, config.CircuitBreakerTimeout)
	assert.Equal(t, "info", config.LogLevel)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid_config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid_base_url",
			mutate:  func(c *Config) { c.BaseURL = "not a url" },
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name:    "invalid_timeout",
			mutate:  func(c *Config) { c.Timeout = -1 * time.Second },
			wantErr: true,
			errMsg:  "Timeout",
		},
		{
			name:    "negative_max_retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: true,
			errMsg:  "MaxRetries",
		},
		{
			name:    "recv_window_too_large",
			mutate:  func(c *Config) { c.RecvWindow = MaxRecvWindow + time.Millisecond },
			wantErr: true,
			errMsg:  "RecvWindow",
		},
		{
			name:   "recv_window_zero",
			mutate: func(c *Config) { c.RecvWindow = 0 },
		},
		{
			name:    "invalid_request_weight",
			mutate:  func(c *Config) { c.RequestWeightPerMinute = 0 },
			wantErr: true,
			errMsg:  "RequestWeightPerMinute",
		},
		{
			name:    "weight_budget_below_heaviest_request",
			mutate:  func(c *Config) { c.RequestWeightPerMinute = 19 },
			wantErr: true,
			errMsg:  "RequestWeightPerMinute must be at least 20",
		},
		{
			name:   "weight_budget_at_heaviest_request",
			mutate: func(c *Config) { c.RequestWeightPerMinute = 20 },
		},
		{
			name:    "orders_budget_below_otoco",
			mutate:  func(c *Config) { c.OrdersPerSecond = 2 },
			wantErr: true,
			errMsg:  "OrdersPerSecond must be at least 3",
		},
		{
			name:    "invalid_orders_per_second",
			mutate:  func(c *Config) { c.OrdersPerSecond = 0 },
			wantErr: true,
			errMsg:  "OrdersPerSecond",
		},
		{
			name:    "retry_wait_inverted",
			mutate:  func(c *Config) { c.RetryWaitMin, c.RetryWaitMax = 2*time.Second, time.Second },
			wantErr: true,
			errMsg:  "RetryWaitMax",
		},
		{
			name:    "invalid_log_level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
			errMsg:  "LogLevel",
		},
		{
			name:    "credentials_missing_secret",
			mutate:  func(c *Config) { c.Credentials = &Credentials{APIKey: "key"} },
			wantErr: true,
			errMsg:  "SecretKey",
		},
		{
			name:    "invalid_circuit_breaker_fail_threshold",
			mutate:  func(c *Config) { c.CircuitBreakerFailThreshold = 0 },
			wantErr: true,
			errMsg:  "CircuitBreakerFailThreshold",
		},
		{
			name:    "invalid_circuit_breaker_success_threshold",
			mutate:  func(c *Config) { c.CircuitBreakerSuccessThreshold = 0 },
			wantErr: true,
			errMsg:  "CircuitBreakerSuccessThreshold",
		},
		{
			name:    "invalid_circuit_breaker_timeout",
			mutate:  func(c *Config) { c.CircuitBreakerTimeout = 0 },
			wantErr: true,
			errMsg:  "CircuitBreakerTimeout",
		},
		{
			name: "circuit_breaker_disabled_skips_validation",
			mutate: func(c *Config) {
				c.CircuitBreakerEnabled = false
				c.CircuitBreakerFailThreshold = 0
				c.CircuitBreakerSuccessThreshold = 0
				c.CircuitBreakerTimeout = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errMsg), "expected error to contain %q, got %q", tt.errMsg, err.Error())
				assert.True(t, IsErrorCode(err, ErrCodeInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Endpoint(t *testing.T) {
	assert.Equal(t, MainnetBaseURL, DefaultConfig().Endpoint())
	assert.Equal(t, TestnetBaseURL, DefaultConfig().WithSandbox(true).Endpoint())
	assert.Equal(t, "http://127.0.0.1:9000", DefaultConfig().WithSandbox(true).WithBaseURL("http://127.0.0.1:9000").Endpoint())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPISecret, "env-secret")
	t.Setenv(EnvTestnet, "true")

	config := ConfigFromEnv()

	require.NotNil(t, config.Credentials)
	assert.Equal(t, "env-key", config.Credentials.APIKey)
	assert.Equal(t, "env-secret", config.Credentials.SecretKey)
	assert.True(t, config.Sandbox)
}

func TestConfigFromEnv_Unset(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPISecret, "")
	t.Setenv(EnvTestnet, "not-a-bool")

	config := ConfigFromEnv()

	assert.Nil(t, config.Credentials)
	assert.False(t, config.Sandbox)
}

func TestConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := DefaultConfig().WithLogLevel("warn").Logger(&buf)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestConfig_WithCredentials(t *testing.T) {
	config := DefaultConfig()
	creds := &Credentials{
		APIKey:    "test-key",
		SecretKey: "test-secret",
	}

	result := config.WithCredentials(creds)

	assert.Equal(t, config, result)
	assert.Equal(t, creds, config.Credentials)
}

func TestConfig_WithSandbox(t *testing.T) {
	config := DefaultConfig()
	result := config.WithSandbox(true)

	assert.Equal(t, config, result)
	assert.True(t, config.Sandbox)
}

func TestConfig_WithTimeout(t *testing.T) {
	config := DefaultConfig()
	result := config.WithTimeout(5 * time.Second)

	assert.Equal(t, config, result)
	assert.Equal(t, 5*time.Second, config.Timeout)
}

func TestConfig_WithRecvWindow(t *testing.T) {
	config := DefaultConfig()
	result := config.WithRecvWindow(10 * time.Second)

	assert.Equal(t, config, result)
	assert.Equal(t, 10*time.Second, config.RecvWindow)
}

func TestConfig_WithRateLimit(t *testing.T) {
	config := DefaultConfig()
	result := config.WithRateLimit(1200, 5)

	assert.Equal(t, config, result)
	assert.Equal(t, 1200, config.RequestWeightPerMinute)
	assert.Equal(t, 5, config.OrdersPerSecond)
}

func TestConfig_WithCircuitBreaker(t *testing.T) {
	config := DefaultConfig()
	result := config.WithCircuitBreaker(false)

	assert.Equal(t, config, result)
	assert.False(t, config.CircuitBreakerEnabled)
}
