package order

import (
	"errors"
	"strconv"

	"bintang/pkg/core"
)

// LegacyOCO builds the parameters of the older OCO endpoint, which names its
// two orders limit and stop instead of above and below.
type LegacyOCO struct {
	symbol   string
	side     core.OrderSide
	sideSet  bool
	quantity string

	price          string
	stopPrice      string
	stopLimitPrice string
	stopLimitTIF   core.TimeInForce
	stopLimitSet   bool
	trailingDelta  string

	limitIcebergQty string
	stopIcebergQty  string

	ids  core.Params
	opts core.Params
	errs []error
}

// NewLegacyOCO starts a legacy OCO pair on symbol.
func NewLegacyOCO(symbol string) *LegacyOCO {
	return &LegacyOCO{symbol: symbol, ids: core.Params{}, opts: core.Params{}}
}

func (o *LegacyOCO) decimal(dst *string, name, value string) *LegacyOCO {
	v, err := parseDecimal(name, value)
	if err != nil {
		o.errs = append(o.errs, err)
		return o
	}
	*dst = v
	return o
}

func (o *LegacyOCO) Side(side core.OrderSide) *LegacyOCO {
	o.side, o.sideSet = side, true
	return o
}

func (o *LegacyOCO) Buy() *LegacyOCO  { return o.Side(core.SideBuy) }
func (o *LegacyOCO) Sell() *LegacyOCO { return o.Side(core.SideSell) }

func (o *LegacyOCO) Quantity(qty string) *LegacyOCO {
	return o.decimal(&o.quantity, "quantity", qty)
}

// Price sets the price of the limit maker order.
func (o *LegacyOCO) Price(price string) *LegacyOCO {
	return o.decimal(&o.price, "price", price)
}

// StopPrice sets the trigger price of the stop order.
func (o *LegacyOCO) StopPrice(price string) *LegacyOCO {
	return o.decimal(&o.stopPrice, "stop price", price)
}

// StopLimitPrice turns the stop order into a stop limit order. Its time in
// force defaults to GTC.
func (o *LegacyOCO) StopLimitPrice(price string) *LegacyOCO {
	return o.decimal(&o.stopLimitPrice, "stop limit price", price)
}

func (o *LegacyOCO) StopLimitTimeInForce(tif core.TimeInForce) *LegacyOCO {
	o.stopLimitTIF, o.stopLimitSet = tif, true
	return o
}

func (o *LegacyOCO) TrailingDelta(bips int64) *LegacyOCO {
	if bips <= 0 {
		o.errs = append(o.errs, errors.New("trailing delta must be positive"))
		return o
	}
	o.trailingDelta = strconv.FormatInt(bips, 10)
	return o
}

func (o *LegacyOCO) LimitIcebergQty(qty string) *LegacyOCO {
	return o.decimal(&o.limitIcebergQty, "limit iceberg quantity", qty)
}

func (o *LegacyOCO) StopIcebergQty(qty string) *LegacyOCO {
	return o.decimal(&o.stopIcebergQty, "stop iceberg quantity", qty)
}

func (o *LegacyOCO) ClientListID(id string) *LegacyOCO {
	o.ids.SetEscaped("listClientOrderId", id)
	return o
}

func (o *LegacyOCO) LimitClientOrderID(id string) *LegacyOCO {
	o.ids.SetEscaped("limitClientOrderId", id)
	return o
}

func (o *LegacyOCO) StopClientOrderID(id string) *LegacyOCO {
	o.ids.SetEscaped("stopClientOrderId", id)
	return o
}

func (o *LegacyOCO) ResponseType(t core.OrderResponseType) *LegacyOCO {
	o.opts.Set("newOrderRespType", t.String())
	return o
}

func (o *LegacyOCO) SelfTradePrevention(mode core.SelfTradePreventionMode) *LegacyOCO {
	o.opts.Set("selfTradePreventionMode", mode.String())
	return o
}

// Params returns the parameters of the pair, or every validation error joined.
func (o *LegacyOCO) Params() (core.Params, error) {
	errs := append([]error(nil), o.errs...)
	if o.symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if !o.sideSet {
		errs = append(errs, errors.New("side is required"))
	}
	if o.quantity == "" {
		errs = append(errs, errors.New("quantity is required"))
	}
	if o.price == "" {
		errs = append(errs, errors.New("price is required"))
	}
	if o.stopPrice == "" && o.trailingDelta == "" {
		errs = append(errs, errors.New("stop price or trailing delta is required"))
	}
	if o.stopLimitSet && o.stopLimitPrice == "" {
		errs = append(errs, errors.New("stop limit time in force needs a stop limit price"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	p := core.Params{
		"symbol":   o.symbol,
		"side":     o.side.String(),
		"quantity": o.quantity,
		"price":    o.price,
	}
	p.SetIfNotEmpty("stopPrice", o.stopPrice)
	p.SetIfNotEmpty("trailingDelta", o.trailingDelta)
	p.SetIfNotEmpty("limitIcebergQty", o.limitIcebergQty)
	p.SetIfNotEmpty("stopIcebergQty", o.stopIcebergQty)
	if o.stopLimitPrice != "" {
		tif := core.GTC
		if o.stopLimitSet {
			tif = o.stopLimitTIF
		}
		p.Set("stopLimitPrice", o.stopLimitPrice)
		p.Set("stopLimitTimeInForce", tif.String())
	}
	for k, v := range o.ids {
		p[k] = v
	}
	for k, v := range o.opts {
		p[k] = v
	}
	return p, nil
}
