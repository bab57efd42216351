package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest("GET", "/api/v3/ticker/price")

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/api/v3/ticker/price", req.Path)
	assert.NotNil(t, req.Params)
	assert.NotNil(t, req.Headers)
	assert.Equal(t, 1, req.Weight)
	assert.False(t, req.Signed)
}

func TestRequest_SetParam(t *testing.T) {
	req := NewRequest("GET", "/api/v3/ticker/price")
	result := req.SetParam("symbol", "BTCUSDT")

	assert.Equal(t, req, result)
	assert.Equal(t, "BTCUSDT", req.Params["symbol"])
}

func TestRequest_SetParams(t *testing.T) {
	req := NewRequest("GET", "/api/v3/allOrders")
	result := req.SetParams(Params{"symbol": "BTCUSDT", "limit": "10"})

	assert.Equal(t, req, result)
	assert.Equal(t, "limit=10&symbol=BTCUSDT", req.Encoded())
}

func TestRequest_SetParams_NilMap(t *testing.T) {
	req := &Request{Method: "GET"}
	req.SetParams(Params{"symbol": "BTCUSDT"}).SetParam("limit", "5")

	assert.Equal(t, "limit=5&symbol=BTCUSDT", req.Encoded())
}

func TestRequest_SetHeaders(t *testing.T) {
	req := NewRequest("GET", "/api/v3/openOrders")
	result := req.SetHeaders(map[string]string{"X-MBX-APIKEY": "key"}).SetHeader("X-Custom", "value")

	assert.Equal(t, req, result)
	assert.Equal(t, "key", req.Headers["X-MBX-APIKEY"])
	assert.Equal(t, "value", req.Headers["X-Custom"])
}

func TestRequest_Chained(t *testing.T) {
	req := NewRequest("POST", "/api/v3/order").
		SetParam("symbol", "BTCUSDT").
		SetWeight(2).
		SetOrderCount(1).
		SetSigned(true)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/v3/order", req.Path)
	assert.Equal(t, "BTCUSDT", req.Params["symbol"])
	assert.Equal(t, 2, req.Weight)
	assert.Equal(t, 1, req.OrderCount)
	assert.True(t, req.Signed)
}
