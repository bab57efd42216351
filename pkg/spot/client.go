// Package spot is a client for the Binance spot trading REST API.
//
// Signed calls follow one path: rate limit wait, recvWindow and timestamp
// injection, HMAC signature, API key header, then a verbatim send of the
// canonical query or form body. Responses are returned as raw JSON; the
// Decode helpers turn them into core types.
package spot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"bintang/internal/circuitbreaker"
	httpclient "bintang/internal/http"
	"bintang/internal/keyring"
	"bintang/internal/ratelimit"
	"bintang/pkg/auth"
	"bintang/pkg/core"
)

// Transport sends one request and returns the response body. The query and
// body must be put on the wire unchanged.
type Transport interface {
	Send(ctx context.Context, method, path, query, body string, headers map[string]string) ([]byte, error)
	Close() error
}

// Client calls the spot API. It is safe for concurrent use.
type Client struct {
	config    *core.Config
	transport Transport
	signer    *auth.Signer
	keyRing   *keyring.KeyRing
	limiter   *ratelimit.RateLimiter
	breaker   *circuitbreaker.Breaker
	logger    zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger    zerolog.Logger
	KeyRing   *keyring.KeyRing
	Signer    *auth.Signer
	Transport Transport
}

// WithLogger sets the logger. Keys, secrets and signatures are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithKeyRing signs requests with keys taken from kr instead of the
// configured credentials.
func WithKeyRing(kr *keyring.KeyRing) Option {
	return func(o *Options) {
		o.KeyRing = kr
	}
}

// WithSigner signs requests with s instead of the configured credentials.
func WithSigner(s *auth.Signer) Option {
	return func(o *Options) {
		o.Signer = s
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return func(o *Options) {
		o.Transport = t
	}
}

// New creates a Client from config. Credentials in config are validated
// unless a signer or key ring is given.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	signer := options.Signer
	if signer == nil && options.KeyRing == nil && config.Credentials != nil {
		s, err := auth.FromCredentials(config.Credentials, auth.WithLogger(options.Logger))
		if err != nil {
			return nil, fmt.Errorf("create signer: %w", err)
		}
		signer = s
	}

	transport := options.Transport
	if transport == nil {
		client, err := httpclient.NewClient(&httpclient.Config{
			BaseURL:        config.Endpoint(),
			Timeout:        config.Timeout,
			ConnectTimeout: config.ConnectTimeout,
			MaxRetries:     config.MaxRetries,
			RetryWaitMin:   config.RetryWaitMin,
			RetryWaitMax:   config.RetryWaitMax,
			Logger:         options.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		transport = client
	}

	return &Client{
		config:    config,
		transport: transport,
		signer:    signer,
		keyRing:   options.KeyRing,
		limiter:   ratelimit.NewSpot(config.RequestWeightPerMinute, config.OrdersPerSecond),
		breaker:   circuitbreaker.NewFromConfig(config, isBreakerFailure),
		logger:    options.Logger,
	}, nil
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// RateLimits returns the local rate limiter counters.
func (c *Client) RateLimits() ratelimit.MetricsSnapshot {
	return c.limiter.Metrics()
}

// BreakerState returns the circuit breaker state, closed when the breaker is
// disabled.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// Do calls the endpoint of op with params and returns the raw response.
// params is not modified.
func (c *Client) Do(ctx context.Context, op core.Operation, params core.Params) ([]byte, error) {
	req, err := op.NewRequest(params)
	if err != nil {
		return nil, err
	}

	var signer *auth.Signer
	if req.Signed {
		if signer, err = c.acquireSigner(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := c.wait(ctx, req); err != nil {
		return nil, fmt.Errorf("%s: rate limit: %w", op, err)
	}

	if signer != nil {
		if err := c.sign(signer, req); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	query, body := req.Encoded(), ""
	if req.Method == http.MethodPost {
		query, body = "", query
	}

	ctx = httpclient.WithRetryHook(ctx, func(err error) { c.retried(ctx, op, req, err) })

	var data []byte
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		var sendErr error
		data, sendErr = c.transport.Send(ctx, req.Method, req.Path, query, body, req.Headers)
		return mapError(sendErr)
	})
	if err != nil {
		if signer != nil && c.keyRing != nil {
			c.keyRing.OnError(signer, err)
		}
		c.logger.Debug().
			Str("operation", op.String()).
			Err(err).
			Msg("request failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// retried accounts for an attempt the transport is about to repeat: the
// breaker records its outcome and the retry is charged the request weight.
func (c *Client) retried(ctx context.Context, op core.Operation, req *core.Request, err error) {
	err = mapError(err)
	c.breaker.Record(!isBreakerFailure(err))
	c.logger.Debug().
		Str("operation", op.String()).
		Err(err).
		Msg("retrying request")
	if werr := c.limiter.WaitN(ctx, ratelimit.BucketWeight, req.Weight); werr != nil {
		c.logger.Debug().Str("operation", op.String()).Err(werr).Msg("retry rate limit wait")
	}
}

func (c *Client) acquireSigner() (*auth.Signer, error) {
	if c.keyRing != nil {
		return c.keyRing.Acquire()
	}
	if c.signer == nil {
		return nil, core.WrapError(core.ErrorTypeAuthentication, core.ErrCodeNoCredentials, core.ErrNoCredentials)
	}
	return c.signer, nil
}

func (c *Client) wait(ctx context.Context, req *core.Request) error {
	if err := c.limiter.WaitN(ctx, ratelimit.BucketWeight, req.Weight); err != nil {
		return err
	}
	return c.limiter.WaitN(ctx, ratelimit.BucketOrders, req.OrderCount)
}

// sign adds recvWindow when configured and absent, then the timestamp and
// signature, then the API key header.
func (c *Client) sign(signer *auth.Signer, req *core.Request) error {
	if c.config.RecvWindow > 0 && !req.Params.Has(core.ParamRecvWindow) {
		req.Params.Set(core.ParamRecvWindow, strconv.FormatInt(c.config.RecvWindow.Milliseconds(), 10))
	}
	if err := signer.SignRequest(req.Params); err != nil {
		return err
	}
	req.SetHeaders(signer.CreateHeaders())
	return nil
}
