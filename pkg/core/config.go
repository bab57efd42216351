package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Endpoints for the Binance spot REST API.
const (
	MainnetBaseURL = "https://api.binance.com"
	TestnetBaseURL = "https://testnet.binance.vision"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAPIKey    = "BINANCE_API_KEY"
	EnvAPISecret = "BINANCE_API_SECRET"
	EnvTestnet   = "BINANCE_TESTNET"
)

// MaxRecvWindow is the largest recvWindow the API accepts.
const MaxRecvWindow = 60 * time.Second

// Credentials holds API authentication credentials.
type Credentials struct {
	// APIKey is the public API key identifier sent in the X-MBX-APIKEY header.
	APIKey string `json:"api_key" validate:"required"`
	// SecretKey is the private key used for signing requests. It never leaves
	// the process.
	SecretKey string `json:"-" validate:"required"`
}

// Config contains all configuration options for a spot client.
type Config struct {
	// BaseURL overrides the endpoint selected by Sandbox when set.
	BaseURL     string       `json:"base_url" validate:"omitempty,url"`
	Sandbox     bool         `json:"sandbox"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// RecvWindow is added to signed requests that do not carry one. Zero
	// leaves the server default in place.
	RecvWindow time.Duration `json:"recv_window" validate:"min=0,max=60s"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout        time.Duration `json:"timeout" validate:"min=1ms"`
	ConnectTimeout time.Duration `json:"connect_timeout" validate:"min=0"`
	MaxRetries     int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin   time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax   time.Duration `json:"retry_wait_max" validate:"min=0"`

	RequestWeightPerMinute int `json:"request_weight_per_minute" validate:"min=1"`
	OrdersPerSecond        int `json:"orders_per_second" validate:"min=1"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with defaults for the production
// spot API: 30s request timeout, 10s connect timeout, 3 retries, 5s recvWindow,
// 6000 weight/min, 10 orders/s, circuit breaker with 5 failures/2 successes/30s.
func DefaultConfig() *Config {
	return &Config{
		Sandbox:        false,
		RecvWindow:     5 * time.Second,
		Timeout:        30 * time.Second,
		ConnectTimeout: 10 * time.Second,
		MaxRetries:     3,
		RetryWaitMin:   100 * time.Millisecond,
		RetryWaitMax:   1 * time.Second,

		RequestWeightPerMinute: 6000,
		OrdersPerSecond:        10,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

// ConfigFromEnv returns DefaultConfig with credentials and testnet selection
// taken from the environment. Missing variables leave the defaults untouched.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	key, secret := os.Getenv(EnvAPIKey), os.Getenv(EnvAPISecret)
	if key != "" || secret != "" {
		cfg.Credentials = &Credentials{APIKey: key, SecretKey: secret}
	}
	if v := os.Getenv(EnvTestnet); v != "" {
		if testnet, err := strconv.ParseBool(v); err == nil {
			cfg.Sandbox = testnet
		}
	}
	return cfg
}

var validate = validator.New()

// Validate checks the config. Errors carry ErrCodeInvalidConfig.
func (c *Config) Validate() error {
	if err := c.check(); err != nil {
		return WrapError(ErrorTypeBadRequest, ErrCodeInvalidConfig, err)
	}
	return nil
}

func (c *Config) check() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		return errors.New("RetryWaitMax must not be less than RetryWaitMin")
	}
	weight, orders := MaxCost()
	if c.RequestWeightPerMinute < weight {
		return fmt.Errorf("RequestWeightPerMinute must be at least %d, the largest request weight", weight)
	}
	if c.OrdersPerSecond < orders {
		return fmt.Errorf("OrdersPerSecond must be at least %d, the most orders one request places", orders)
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Config) Endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Sandbox {
		return TestnetBaseURL
	}
	return MainnetBaseURL
}

// Logger returns a zerolog logger writing to w at the configured level.
// An unknown or empty level falls back to info.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithSandbox enables or disables sandbox mode and returns the config for chaining.
func (c *Config) WithSandbox(sandbox bool) *Config {
	c.Sandbox = sandbox
	return c
}

// WithBaseURL overrides the endpoint and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRecvWindow sets the recvWindow added to signed requests.
func (c *Config) WithRecvWindow(window time.Duration) *Config {
	c.RecvWindow = window
	return c
}

// WithRateLimit sets the request weight budget per minute and the order rate.
func (c *Config) WithRateLimit(weightPerMinute, ordersPerSecond int) *Config {
	c.RequestWeightPerMinute = weightPerMinute
	c.OrdersPerSecond = ordersPerSecond
	return c
}

// WithCircuitBreaker enables or disables the circuit breaker.
func (c *Config) WithCircuitBreaker(enabled bool) *Config {
	c.CircuitBreakerEnabled = enabled
	return c
}

// WithLogLevel sets the log level and returns the config for chaining.
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}
