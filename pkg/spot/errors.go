package spot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	httpclient "bintang/internal/http"
	"bintang/pkg/core"
)

const exchangeName = core.ExchangeName

// APIError is the error payload of a rejected request. It is kept as the
// RawError of the ExchangeError built from it.
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Msg)
}

// mapError turns a transport error into an ExchangeError. Context
// cancellation is returned unchanged.
func mapError(err error) error {
	var (
		httpErr *httpclient.HTTPError
		exErr   *core.ExchangeError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &httpErr):
		return parseAPIError(httpErr.StatusCode, httpErr.Body)
	case errors.As(err, &exErr):
		return err
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, core.ErrClientClosed):
		return core.WrapError(core.ErrorTypeUnknown, core.ErrCodeClientClosed, err)
	case errors.Is(err, context.DeadlineExceeded):
		e := core.NewExchangeError(exchangeName, core.ErrorTypeTimeout, 0, err.Error()).WithCode(core.ErrCodeTimeout)
		e.RawError = err
		return e
	default:
		e := core.NewExchangeError(exchangeName, core.ErrorTypeNetwork, 0, err.Error()).WithCode(core.ErrCodeNetwork)
		e.RawError = err
		return e
	}
}

func parseAPIError(status int, body []byte) *core.ExchangeError {
	var apiErr APIError
	if err := sonic.Unmarshal(body, &apiErr); err != nil || apiErr.Code == 0 {
		errType, code := classifyStatus(status)
		return core.NewExchangeError(exchangeName, errType, status, strings.TrimSpace(string(body))).WithCode(code)
	}

	errType, code := classifyCode(apiErr.Code, apiErr.Msg, status)
	e := core.NewExchangeError(exchangeName, errType, status, apiErr.Msg)
	if code != "" {
		e.WithCode(code)
	} else {
		e.Code = strconv.Itoa(apiErr.Code)
	}
	e.RawError = &apiErr
	return e
}

func classifyStatus(status int) (core.ErrorType, core.ErrorCode) {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusTeapot:
		return core.ErrorTypeRateLimit, core.ErrCodeRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return core.ErrorTypeAuthentication, core.ErrCodeAuth
	case status == http.StatusNotFound:
		return core.ErrorTypeNotFound, core.ErrCodeNotFound
	case status >= 500:
		return core.ErrorTypeServerError, core.ErrCodeServerError
	default:
		return core.ErrorTypeBadRequest, core.ErrCodeBadRequest
	}
}

// classifyCode maps an API error code. An empty ErrorCode keeps the numeric
// code on the error.
func classifyCode(code int, msg string, status int) (core.ErrorType, core.ErrorCode) {
	switch code {
	case -1003, -1015:
		return core.ErrorTypeRateLimit, core.ErrCodeRateLimit
	case -1021:
		return core.ErrorTypeAuthentication, core.ErrCodeTimestamp
	case -1022:
		return core.ErrorTypeAuthentication, core.ErrCodeInvalidSignature
	case -1002, -2014, -2015:
		return core.ErrorTypeAuthentication, core.ErrCodeAuth
	case -1007:
		return core.ErrorTypeTimeout, core.ErrCodeTimeout
	case -1000, -1001, -1006, -1008:
		return core.ErrorTypeServerError, core.ErrCodeServerError
	case -1121:
		return core.ErrorTypeBadRequest, core.ErrCodeInvalidSymbol
	case -2010:
		if strings.Contains(strings.ToLower(msg), "insufficient balance") {
			return core.ErrorTypeInsufficientFunds, core.ErrCodeInsufficientFunds
		}
		return core.ErrorTypeInvalidOrder, core.ErrCodeInvalidOrder
	case -2013:
		return core.ErrorTypeNotFound, core.ErrCodeNotFound
	}

	switch {
	case code <= -1100 && code > -1200:
		return core.ErrorTypeBadRequest, ""
	case code <= -2000 && code > -3000:
		return core.ErrorTypeInvalidOrder, ""
	}
	errType, _ := classifyStatus(status)
	return errType, ""
}

// isBreakerFailure reports whether err says the service is unhealthy.
// Rejections of a well-formed request do not trip the breaker.
func isBreakerFailure(err error) bool {
	return core.IsNetworkError(err) || core.IsTimeoutError(err) || core.IsServerError(err)
}
