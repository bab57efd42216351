package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bintang/pkg/core"
)

func TestList_OCO(t *testing.T) {
	list := OCO("BTCUSDT").Sell().Quantity("1").
		Above(Leg().LimitMaker().Price("52000")).
		Below(Leg().StopLossLimit().Price("47900").StopPrice("48000")).
		ClientListID("oco 1")

	params, err := list.Params()
	require.NoError(t, err)

	assert.Equal(t, core.Params{
		"symbol":            "BTCUSDT",
		"side":              "SELL",
		"quantity":          "1",
		"aboveType":         "LIMIT_MAKER",
		"abovePrice":        "52000",
		"belowType":         "STOP_LOSS_LIMIT",
		"belowPrice":        "47900",
		"belowStopPrice":    "48000",
		"belowTimeInForce":  "GTC",
		"listClientOrderId": "oco+1",
	}, params)
	assert.Equal(t, core.OpNewOrderListOCO, list.Operation())
	assert.Equal(t, core.ContingencyOCO, list.Kind())
}

func TestList_OTO(t *testing.T) {
	list := OTO("BTCUSDT").
		Working(Leg().Buy().Limit().Price("50000").Quantity("0.1").ClientOrderID("w")).
		Pending(Leg().Sell().Limit().Price("55000").Quantity("0.1").FOK()).
		ResponseType(core.RespResult).
		SelfTradePrevention(core.STPExpireBoth)

	params, err := list.Params()
	require.NoError(t, err)

	assert.Equal(t, core.Params{
		"symbol":                  "BTCUSDT",
		"workingType":             "LIMIT",
		"workingSide":             "BUY",
		"workingPrice":            "50000",
		"workingQuantity":         "0.1",
		"workingTimeInForce":      "GTC",
		"workingClientOrderId":    "w",
		"pendingType":             "LIMIT",
		"pendingSide":             "SELL",
		"pendingPrice":            "55000",
		"pendingQuantity":         "0.1",
		"pendingTimeInForce":      "FOK",
		"newOrderRespType":        "RESULT",
		"selfTradePreventionMode": "EXPIRE_BOTH",
	}, params)
	assert.Equal(t, core.OpNewOrderListOTO, list.Operation())
}

func TestList_OTOCO(t *testing.T) {
	list := OTOCO("BTCUSDT").Sell().Quantity("0.1").
		Working(Leg().Buy().Limit().Price("50000").Quantity("0.1")).
		PendingAbove(Leg().LimitMaker().Price("55000")).
		PendingBelow(Leg().StopLoss().TrailingDelta(250))

	params, err := list.Params()
	require.NoError(t, err)

	assert.Equal(t, core.Params{
		"symbol":                    "BTCUSDT",
		"workingType":               "LIMIT",
		"workingSide":               "BUY",
		"workingPrice":              "50000",
		"workingQuantity":           "0.1",
		"workingTimeInForce":        "GTC",
		"pendingSide":               "SELL",
		"pendingQuantity":           "0.1",
		"pendingAboveType":          "LIMIT_MAKER",
		"pendingAbovePrice":         "55000",
		"pendingBelowType":          "STOP_LOSS",
		"pendingBelowTrailingDelta": "250",
	}, params)
	assert.Equal(t, core.OpNewOrderListOTOCO, list.Operation())
}

func TestList_Params_Errors(t *testing.T) {
	tests := []struct {
		name       string
		list       *List
		errContain []string
	}{
		{
			name:       "oco without legs",
			list:       OCO("BTCUSDT").Sell().Quantity("1"),
			errContain: []string{"above order is required", "below order is required"},
		},
		{
			name: "oco without side and quantity",
			list: OCO("BTCUSDT").
				Above(Leg().LimitMaker().Price("2")).
				Below(Leg().StopLoss().StopPrice("1")),
			errContain: []string{"side is required", "quantity is required"},
		},
		{
			name: "leg error names the leg",
			list: OCO("BTCUSDT").Sell().Quantity("1").
				Above(Leg().LimitMaker()).
				Below(Leg().StopLoss().StopPrice("1")),
			errContain: []string{"above order: price is required for LIMIT_MAKER orders"},
		},
		{
			name: "oto leg needs side and quantity",
			list: OTO("BTCUSDT").
				Working(Leg().Limit().Price("1")).
				Pending(Leg().Sell().Market().Quantity("1")),
			errContain: []string{"working order", "side is required", "quantity is required"},
		},
		{
			name: "oto rejects list side",
			list: OTO("BTCUSDT").Buy().
				Working(Leg().Buy().Market().Quantity("1")).
				Pending(Leg().Sell().Market().Quantity("1")),
			errContain: []string{"OTO lists take side and quantity per order"},
		},
		{
			name: "foreign leg",
			list: OTO("BTCUSDT").
				Working(Leg().Buy().Market().Quantity("1")).
				Pending(Leg().Sell().Market().Quantity("1")).
				Above(Leg().LimitMaker().Price("1")),
			errContain: []string{"OTO lists have no above order"},
		},
		{
			name:       "bad quantity and symbol",
			list:       OTOCO("").Buy().Quantity("-2"),
			errContain: []string{"quantity must be positive", "symbol is required", "working order is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := tt.list.Params()
			require.Error(t, err)
			assert.Nil(t, params)
			for _, msg := range tt.errContain {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestLegacyOCO_Params(t *testing.T) {
	params, err := NewLegacyOCO("LTCBTC").Sell().Quantity("1").
		Price("0.0021").StopPrice("0.0019").StopLimitPrice("0.0018").
		LimitClientOrderID("lim").StopClientOrderID("stp").ClientListID("list 1").
		ResponseType(core.RespACK).
		Params()
	require.NoError(t, err)

	assert.Equal(t, core.Params{
		"symbol":               "LTCBTC",
		"side":                 "SELL",
		"quantity":             "1",
		"price":                "0.0021",
		"stopPrice":            "0.0019",
		"stopLimitPrice":       "0.0018",
		"stopLimitTimeInForce": "GTC",
		"limitClientOrderId":   "lim",
		"stopClientOrderId":    "stp",
		"listClientOrderId":    "list+1",
		"newOrderRespType":     "ACK",
	}, params)
}

func TestLegacyOCO_Params_Errors(t *testing.T) {
	_, err := NewLegacyOCO("LTCBTC").StopLimitTimeInForce(core.IOC).TrailingDelta(0).Params()

	require.Error(t, err)
	for _, msg := range []string{
		"side is required",
		"quantity is required",
		"price is required",
		"stop price or trailing delta is required",
		"needs a stop limit price",
		"trailing delta must be positive",
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestLegacyOCO_TrailingDelta(t *testing.T) {
	params, err := NewLegacyOCO("LTCBTC").Buy().Quantity("1").Price("0.001").TrailingDelta(30).
		LimitIcebergQty("0.5").SelfTradePrevention(core.STPExpireMaker).Params()
	require.NoError(t, err)

	assert.Equal(t, "30", params["trailingDelta"])
	assert.Equal(t, "0.5", params["limitIcebergQty"])
	assert.Equal(t, "EXPIRE_MAKER", params["selfTradePreventionMode"])
	assert.NotContains(t, params, "stopPrice")
	assert.NotContains(t, params, "stopLimitTimeInForce")
}
