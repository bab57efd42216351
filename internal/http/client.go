package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"bintang/pkg/core"
)

// ContentTypeForm is the content type of signed POST bodies.
const ContentTypeForm = "application/x-www-form-urlencoded"

// HTTPError is returned for responses with a status code of 400 or above.
// Body holds the raw response so callers can decode the API error payload.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

// ErrNoResponse reports a failed attempt that produced no HTTP response.
var ErrNoResponse = errors.New("no response")

// RetryHook is called before each retry with the failure of the attempt
// being retried.
type RetryHook func(err error)

type retryHookKey struct{}

// WithRetryHook returns a context that makes Send call hook before every
// retry of a request sent with it.
func WithRetryHook(ctx context.Context, hook RetryHook) context.Context {
	return context.WithValue(ctx, retryHookKey{}, hook)
}

func attemptError(resp *resty.Response, err error) error {
	switch {
	case err != nil:
		return err
	case resp == nil || resp.RawResponse == nil:
		return ErrNoResponse
	default:
		return &HTTPError{StatusCode: resp.StatusCode(), Body: resp.Bytes()}
	}
}

type Client struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

type Config struct {
	BaseURL        string            `validate:"required,url"`
	Timeout        time.Duration     `validate:"min=1ms"`
	ConnectTimeout time.Duration     `validate:"min=0"`
	MaxRetries     int               `validate:"min=0"`
	RetryWaitMin   time.Duration     `validate:"min=0"`
	RetryWaitMax   time.Duration     `validate:"min=0"`
	Headers        map[string]string `validate:"omitempty"`
	Logger         zerolog.Logger    `validate:"-"`
}

func NewClient(config *Config) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.ConnectTimeout > 0 {
		transport.DialContext = (&net.Dialer{Timeout: config.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext
		transport.TLSHandshakeTimeout = config.ConnectTimeout
	}

	client := resty.NewWithClient(&http.Client{Transport: transport})
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(config.MaxRetries)
	client.SetRetryWaitTime(config.RetryWaitMin)
	client.SetRetryMaxWaitTime(config.RetryWaitMax)

	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	c := &Client{
		client: client,
		logger: config.Logger,
	}

	// Only the path is logged. The query string carries the signature.
	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		c.logger.Debug().
			Str("method", req.Method).
			Str("path", pathOf(req.URL)).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug().
			Str("method", resp.Request.Method).
			Str("path", pathOf(resp.Request.URL)).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	return c, nil
}

func pathOf(url string) string {
	path, _, _ := strings.Cut(url, "?")
	return path
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Send performs one request and returns the response body. query is appended
// to path and body is sent as a form body, both byte for byte: neither is
// parsed or re-encoded, so a signature computed over them stays valid.
func (c *Client) Send(ctx context.Context, method, path, query, body string, headers map[string]string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	url := path
	if query != "" {
		url += "?" + query
	}

	req := c.client.R().SetContext(ctx).SetHeaders(headers)
	if hook, ok := ctx.Value(retryHookKey{}).(RetryHook); ok {
		req.AddRetryHooks(func(resp *resty.Response, err error) {
			hook(attemptError(resp, err))
		})
	}

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = req.Get(url)
	case http.MethodDelete:
		resp, err = req.Delete(url)
	case http.MethodPost:
		resp, err = req.
			SetHeader("Content-Type", ContentTypeForm).
			SetBody(body).
			Post(url)
	default:
		return nil, core.WrapError(core.ErrorTypeBadRequest, core.ErrCodeUnsupported,
			fmt.Errorf("%s: %w", method, core.ErrUnsupportedMethod))
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	data := resp.Bytes()
	if resp.IsError() {
		return nil, &HTTPError{StatusCode: resp.StatusCode(), Body: data}
	}
	return data, nil
}
