// Package order builds the parameter sets for order placement calls.
//
// Builders accumulate validation errors and report them from Params, so a
// chain can be written without checking each step:
//
//	params, err := order.New("BTCUSDT").
//	    Buy().
//	    Limit().
//	    Price("50000").
//	    Quantity("0.001").
//	    Params()
package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"bintang/pkg/core"
)

// Builder describes a single order. Created with New it builds the
// parameters of a standalone order; created with Leg it describes one order
// of an order list.
type Builder struct {
	symbol string
	leg    bool

	side      core.OrderSide
	sideSet   bool
	orderType core.OrderType
	typeSet   bool
	tif       core.TimeInForce
	tifSet    bool

	price         string
	stopPrice     string
	trailingDelta string
	quantity      string
	quoteOrderQty string
	icebergQty    string
	clientOrderID string
	strategyID    string
	strategyType  string

	respType core.OrderResponseType
	respSet  bool
	stp      core.SelfTradePreventionMode
	stpSet   bool
	extra    core.Params
	errs     []error
}

// New starts a standalone order on symbol.
func New(symbol string) *Builder {
	return &Builder{symbol: symbol}
}

// Leg starts one order of an order list. The symbol, response type and
// self-trade prevention mode belong to the list.
func Leg() *Builder {
	return &Builder{leg: true}
}

func (b *Builder) fail(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

// Side sets the order side (buy or sell).
func (b *Builder) Side(side core.OrderSide) *Builder {
	b.side, b.sideSet = side, true
	return b
}

// Buy sets the order side to buy.
func (b *Builder) Buy() *Builder { return b.Side(core.SideBuy) }

// Sell sets the order side to sell.
func (b *Builder) Sell() *Builder { return b.Side(core.SideSell) }

// Type sets the order type.
func (b *Builder) Type(orderType core.OrderType) *Builder {
	b.orderType, b.typeSet = orderType, true
	return b
}

func (b *Builder) Market() *Builder          { return b.Type(core.TypeMarket) }
func (b *Builder) Limit() *Builder           { return b.Type(core.TypeLimit) }
func (b *Builder) LimitMaker() *Builder      { return b.Type(core.TypeLimitMaker) }
func (b *Builder) StopLoss() *Builder        { return b.Type(core.TypeStopLoss) }
func (b *Builder) StopLossLimit() *Builder   { return b.Type(core.TypeStopLossLimit) }
func (b *Builder) TakeProfit() *Builder      { return b.Type(core.TypeTakeProfit) }
func (b *Builder) TakeProfitLimit() *Builder { return b.Type(core.TypeTakeProfitLimit) }

// Price sets the limit price from a decimal string.
func (b *Builder) Price(price string) *Builder {
	return b.setDecimal(&b.price, "price", price)
}

// PriceDecimal sets the limit price.
func (b *Builder) PriceDecimal(price apd.Decimal) *Builder {
	return b.setDecimalValue(&b.price, "price", &price)
}

// StopPrice sets the trigger price from a decimal string.
func (b *Builder) StopPrice(price string) *Builder {
	return b.setDecimal(&b.stopPrice, "stop price", price)
}

// StopPriceDecimal sets the trigger price.
func (b *Builder) StopPriceDecimal(price apd.Decimal) *Builder {
	return b.setDecimalValue(&b.stopPrice, "stop price", &price)
}

// TrailingDelta sets the trailing stop distance in basis points.
func (b *Builder) TrailingDelta(bips int64) *Builder {
	if bips <= 0 {
		return b.fail(fmt.Errorf("trailing delta must be positive, got %d", bips))
	}
	b.trailingDelta = strconv.FormatInt(bips, 10)
	return b
}

// Quantity sets the base asset quantity from a decimal string.
func (b *Builder) Quantity(qty string) *Builder {
	return b.setDecimal(&b.quantity, "quantity", qty)
}

// QuantityDecimal sets the base asset quantity.
func (b *Builder) QuantityDecimal(qty apd.Decimal) *Builder {
	return b.setDecimalValue(&b.quantity, "quantity", &qty)
}

// QuoteOrderQty sets the quote asset amount of a market order.
func (b *Builder) QuoteOrderQty(qty string) *Builder {
	return b.setDecimal(&b.quoteOrderQty, "quote order quantity", qty)
}

// IcebergQty sets the visible quantity of an iceberg order.
func (b *Builder) IcebergQty(qty string) *Builder {
	return b.setDecimal(&b.icebergQty, "iceberg quantity", qty)
}

// TimeInForce sets the time-in-force policy. Types with a limit price
// default to GTC.
func (b *Builder) TimeInForce(tif core.TimeInForce) *Builder {
	b.tif, b.tifSet = tif, true
	return b
}

func (b *Builder) GTC() *Builder { return b.TimeInForce(core.GTC) }
func (b *Builder) IOC() *Builder { return b.TimeInForce(core.IOC) }
func (b *Builder) FOK() *Builder { return b.TimeInForce(core.FOK) }

// ClientOrderID sets a client-assigned identifier. It is query-escaped.
func (b *Builder) ClientOrderID(id string) *Builder {
	b.clientOrderID = id
	return b
}

// Strategy tags the order with a strategy id and a type of at least 1000000.
func (b *Builder) Strategy(id string, strategyType int) *Builder {
	if strategyType < 1000000 {
		return b.fail(fmt.Errorf("strategy type must be at least 1000000, got %d", strategyType))
	}
	b.strategyID = id
	b.strategyType = strconv.Itoa(strategyType)
	return b
}

// ResponseType selects the response detail of a standalone order.
func (b *Builder) ResponseType(t core.OrderResponseType) *Builder {
	b.respType, b.respSet = t, true
	return b
}

// SelfTradePrevention sets the self-trade prevention mode of a standalone order.
func (b *Builder) SelfTradePrevention(mode core.SelfTradePreventionMode) *Builder {
	b.stp, b.stpSet = mode, true
	return b
}

// Set adds a parameter the builder has no method for. The value is used as-is.
func (b *Builder) Set(key, value string) *Builder {
	if b.extra == nil {
		b.extra = make(core.Params)
	}
	b.extra.Set(key, value)
	return b
}

func (b *Builder) setDecimal(dst *string, name, value string) *Builder {
	v, err := parseDecimal(name, value)
	if err != nil {
		return b.fail(err)
	}
	*dst = v
	return b
}

func (b *Builder) setDecimalValue(dst *string, name string, d *apd.Decimal) *Builder {
	v, err := formatDecimal(name, d)
	if err != nil {
		return b.fail(err)
	}
	*dst = v
	return b
}

// parseDecimal checks that value is a positive decimal and returns it in
// plain notation.
func parseDecimal(name, value string) (string, error) {
	var d apd.Decimal
	if _, _, err := d.SetString(value); err != nil {
		return "", fmt.Errorf("parse %s %q: %w", name, value, err)
	}
	return formatDecimal(name, &d)
}

func formatDecimal(name string, d *apd.Decimal) (string, error) {
	if d.Form != apd.Finite || d.Sign() <= 0 {
		return "", fmt.Errorf("%s must be positive, got %s", name, d.String())
	}
	return d.Text('f'), nil
}

// validate reports missing fields. needQty is false for legs whose quantity
// is set on the list.
func (b *Builder) validate(needSide, needQty bool) []error {
	errs := append([]error(nil), b.errs...)
	if !b.leg && b.symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if needSide && !b.sideSet {
		errs = append(errs, errors.New("side is required"))
	}
	if !b.typeSet {
		errs = append(errs, errors.New("order type is required"))
		return errs
	}
	if needQty && b.quantity == "" && (b.quoteOrderQty == "" || b.orderType != core.TypeMarket) {
		errs = append(errs, fmt.Errorf("quantity is required for %s orders", b.orderType))
	}
	if b.quoteOrderQty != "" && b.orderType != core.TypeMarket {
		errs = append(errs, fmt.Errorf("quote order quantity is only valid for MARKET orders, got %s", b.orderType))
	}
	if b.orderType.NeedsPrice() && b.price == "" {
		errs = append(errs, fmt.Errorf("price is required for %s orders", b.orderType))
	}
	if b.orderType.NeedsStopPrice() && b.stopPrice == "" && b.trailingDelta == "" {
		errs = append(errs, fmt.Errorf("stop price or trailing delta is required for %s orders", b.orderType))
	}
	return errs
}

func needsTimeInForce(t core.OrderType) bool {
	return t == core.TypeLimit || t == core.TypeStopLossLimit || t == core.TypeTakeProfitLimit
}

// key joins a list prefix and a field name: ("working", "price") gives
// "workingPrice", ("", "price") gives "price".
func key(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + strings.ToUpper(name[:1]) + name[1:]
}

// write stores the order fields in p under prefix.
func (b *Builder) write(p core.Params, prefix string, withSide, withQty bool) {
	p.Set(key(prefix, "type"), b.orderType.String())
	if withSide {
		p.Set(key(prefix, "side"), b.side.String())
	}
	if withQty {
		p.SetIfNotEmpty(key(prefix, "quantity"), b.quantity)
	}
	p.SetIfNotEmpty(key(prefix, "price"), b.price)
	p.SetIfNotEmpty(key(prefix, "stopPrice"), b.stopPrice)
	p.SetIfNotEmpty(key(prefix, "trailingDelta"), b.trailingDelta)
	p.SetIfNotEmpty(key(prefix, "icebergQty"), b.icebergQty)
	if b.strategyID != "" {
		p.SetEscaped(key(prefix, "strategyId"), b.strategyID)
	}
	p.SetIfNotEmpty(key(prefix, "strategyType"), b.strategyType)

	switch {
	case b.tifSet:
		p.Set(key(prefix, "timeInForce"), b.tif.String())
	case needsTimeInForce(b.orderType):
		p.Set(key(prefix, "timeInForce"), core.GTC.String())
	}

	if b.clientOrderID != "" {
		name := key(prefix, "clientOrderId")
		if prefix == "" {
			name = "newClientOrderId"
		}
		p.SetEscaped(name, b.clientOrderID)
	}
}

// Params returns the parameters of a standalone order, or every validation
// error joined.
func (b *Builder) Params() (core.Params, error) {
	if b.leg {
		return nil, errors.New("order list legs have no standalone parameters")
	}
	if errs := b.validate(true, true); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	p := core.Params{"symbol": b.symbol}
	b.write(p, "", true, true)
	p.SetIfNotEmpty("quoteOrderQty", b.quoteOrderQty)
	if b.respSet {
		p.Set("newOrderRespType", b.respType.String())
	}
	if b.stpSet {
		p.Set("selfTradePreventionMode", b.stp.String())
	}
	for k, v := range b.extra {
		p.Set(k, v)
	}
	return p, nil
}

// SORParams returns the parameters of a smart order routing order. Only
// LIMIT and MARKET orders with a base quantity can be routed.
func (b *Builder) SORParams() (core.Params, error) {
	var errs []error
	if b.typeSet && b.orderType != core.TypeLimit && b.orderType != core.TypeMarket {
		errs = append(errs, fmt.Errorf("%s orders cannot be routed", b.orderType))
	}
	if b.quoteOrderQty != "" {
		errs = append(errs, errors.New("routed orders take a base quantity"))
	}
	p, err := b.Params()
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

// ReplaceParams returns the parameters that cancel an existing order and
// place this one in its place. The order to cancel is named by orderID when
// positive, otherwise by origClientOrderID.
func (b *Builder) ReplaceParams(mode core.CancelReplaceMode, orderID int64, origClientOrderID string) (core.Params, error) {
	p, err := b.Params()
	if orderID <= 0 && origClientOrderID == "" {
		err = errors.Join(err, errors.New("order to cancel is required"))
	}
	if err != nil {
		return nil, err
	}

	p.Set("cancelReplaceMode", mode.String())
	if orderID > 0 {
		p.Set("cancelOrderId", strconv.FormatInt(orderID, 10))
	} else {
		p.SetEscaped("cancelOrigClientOrderId", origClientOrderID)
	}
	return p, nil
}
