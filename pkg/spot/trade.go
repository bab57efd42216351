package spot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"

	"bintang/pkg/core"
	"bintang/pkg/order"
)

// OrderID names an order by its exchange id.
func OrderID(id int64) core.Params {
	return core.Params{"orderId": strconv.FormatInt(id, 10)}
}

// OrigClientOrderID names an order by the client id it was placed with.
func OrigClientOrderID(id string) core.Params {
	return core.Params{}.SetEscaped("origClientOrderId", id)
}

// OrderListID names an order list by its exchange id.
func OrderListID(id int64) core.Params {
	return core.Params{"orderListId": strconv.FormatInt(id, 10)}
}

// ListClientOrderID names an order list by its client id.
func ListClientOrderID(id string) core.Params {
	return core.Params{}.SetEscaped("listClientOrderId", id)
}

func requireOne(params core.Params, keys ...string) error {
	for _, k := range keys {
		if params.Has(k) {
			return nil
		}
	}
	return fmt.Errorf("one of %v is required", keys)
}

func withSymbol(symbol string, params core.Params) (core.Params, error) {
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	p := params.Clone()
	p.Set("symbol", symbol)
	return p, nil
}

// NewOrder places the order described by b.
func (c *Client) NewOrder(ctx context.Context, b *order.Builder) ([]byte, error) {
	params, err := b.Params()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpNewOrder, err)
	}
	return c.Do(ctx, core.OpNewOrder, params)
}

// TestOrder validates the order described by b without placing it. With
// commissionRates the response carries the commission that would apply.
func (c *Client) TestOrder(ctx context.Context, b *order.Builder, commissionRates bool) ([]byte, error) {
	params, err := b.Params()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpTestOrder, err)
	}
	if commissionRates {
		params.Set("computeCommissionRates", "true")
	}
	return c.Do(ctx, core.OpTestOrder, params)
}

// QueryOrder returns the order named by ref (OrderID or OrigClientOrderID).
func (c *Client) QueryOrder(ctx context.Context, symbol string, ref core.Params) ([]byte, error) {
	params, err := withSymbol(symbol, ref)
	if err == nil {
		err = requireOne(params, "orderId", "origClientOrderId")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpQueryOrder, err)
	}
	return c.Do(ctx, core.OpQueryOrder, params)
}

// CancelOrder cancels the order named by ref (OrderID or OrigClientOrderID).
func (c *Client) CancelOrder(ctx context.Context, symbol string, ref core.Params) ([]byte, error) {
	params, err := withSymbol(symbol, ref)
	if err == nil {
		err = requireOne(params, "orderId", "origClientOrderId")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpCancelOrder, err)
	}
	return c.Do(ctx, core.OpCancelOrder, params)
}

// CancelOpenOrders cancels every open order on symbol, order lists included.
func (c *Client) CancelOpenOrders(ctx context.Context, symbol string) ([]byte, error) {
	params, err := withSymbol(symbol, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpCancelOpenOrders, err)
	}
	return c.Do(ctx, core.OpCancelOpenOrders, params)
}

// CancelReplaceOrder cancels the order with orderID, or origClientOrderID
// when orderID is zero, and places b.
func (c *Client) CancelReplaceOrder(ctx context.Context, b *order.Builder, mode core.CancelReplaceMode, orderID int64, origClientOrderID string) ([]byte, error) {
	params, err := b.ReplaceParams(mode, orderID, origClientOrderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpCancelReplaceOrder, err)
	}
	return c.Do(ctx, core.OpCancelReplaceOrder, params)
}

// OpenOrders returns the open orders on symbol, or on every symbol when
// symbol is empty.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]byte, error) {
	return c.Do(ctx, core.OpOpenOrders, core.Params{}.SetIfNotEmpty("symbol", symbol))
}

// AllOrders returns orders on symbol in every state. filter may carry
// orderId, startTime, endTime and limit.
func (c *Client) AllOrders(ctx context.Context, symbol string, filter core.Params) ([]byte, error) {
	params, err := withSymbol(symbol, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpAllOrders, err)
	}
	return c.Do(ctx, core.OpAllOrders, params)
}

// NewOCO places an OCO pair through the older OCO endpoint.
func (c *Client) NewOCO(ctx context.Context, o *order.LegacyOCO) ([]byte, error) {
	params, err := o.Params()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpNewOCO, err)
	}
	return c.Do(ctx, core.OpNewOCO, params)
}

// NewOrderList places the list on the endpoint matching its kind.
func (c *Client) NewOrderList(ctx context.Context, l *order.List) ([]byte, error) {
	op := l.Operation()
	params, err := l.Params()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c.Do(ctx, op, params)
}

// NewOrderListOCO places an OCO list.
func (c *Client) NewOrderListOCO(ctx context.Context, l *order.List) ([]byte, error) {
	return c.newOrderList(ctx, core.ContingencyOCO, l)
}

// NewOrderListOTO places an OTO list.
func (c *Client) NewOrderListOTO(ctx context.Context, l *order.List) ([]byte, error) {
	return c.newOrderList(ctx, core.ContingencyOTO, l)
}

// NewOrderListOTOCO places an OTOCO list.
func (c *Client) NewOrderListOTOCO(ctx context.Context, l *order.List) ([]byte, error) {
	return c.newOrderList(ctx, core.ContingencyOTOCO, l)
}

func (c *Client) newOrderList(ctx context.Context, kind core.ContingencyType, l *order.List) ([]byte, error) {
	if l.Kind() != kind {
		return nil, fmt.Errorf("%s list passed where %s was expected", l.Kind(), kind)
	}
	return c.NewOrderList(ctx, l)
}

// CancelOrderList cancels the list named by ref (OrderListID or
// ListClientOrderID).
func (c *Client) CancelOrderList(ctx context.Context, symbol string, ref core.Params) ([]byte, error) {
	params, err := withSymbol(symbol, ref)
	if err == nil {
		err = requireOne(params, "orderListId", "listClientOrderId")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpCancelOrderList, err)
	}
	return c.Do(ctx, core.OpCancelOrderList, params)
}

// QueryOrderList returns the list named by ref (OrderListID or
// ListClientOrderID).
func (c *Client) QueryOrderList(ctx context.Context, ref core.Params) ([]byte, error) {
	params := ref.Clone()
	if err := requireOne(params, "orderListId", "origClientOrderId", "listClientOrderId"); err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpQueryOrderList, err)
	}
	// The query endpoint names the list client id origClientOrderId.
	if id, ok := params.Get("listClientOrderId"); ok {
		delete(params, "listClientOrderId")
		params.Set("origClientOrderId", id)
	}
	return c.Do(ctx, core.OpQueryOrderList, params)
}

// AllOrderLists returns order lists in every state. filter may carry
// fromId, startTime, endTime and limit.
func (c *Client) AllOrderLists(ctx context.Context, filter core.Params) ([]byte, error) {
	return c.Do(ctx, core.OpAllOrderLists, filter)
}

// OpenOrderLists returns the open order lists.
func (c *Client) OpenOrderLists(ctx context.Context) ([]byte, error) {
	return c.Do(ctx, core.OpOpenOrderLists, nil)
}

// NewSOROrder places the order described by b through smart order routing.
func (c *Client) NewSOROrder(ctx context.Context, b *order.Builder) ([]byte, error) {
	params, err := b.SORParams()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpNewSOROrder, err)
	}
	return c.Do(ctx, core.OpNewSOROrder, params)
}

// TestSOROrder validates a routed order without placing it.
func (c *Client) TestSOROrder(ctx context.Context, b *order.Builder, commissionRates bool) ([]byte, error) {
	params, err := b.SORParams()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", core.OpTestSOROrder, err)
	}
	if commissionRates {
		params.Set("computeCommissionRates", "true")
	}
	return c.Do(ctx, core.OpTestSOROrder, params)
}

// TickerPrice returns the latest price of one symbol, several symbols, or
// every symbol when none is given. It needs no credentials.
func (c *Client) TickerPrice(ctx context.Context, symbols ...string) ([]byte, error) {
	params := core.Params{}
	switch len(symbols) {
	case 0:
	case 1:
		params.Set("symbol", symbols[0])
	default:
		list, err := sonic.MarshalString(symbols)
		if err != nil {
			return nil, fmt.Errorf("%s: encode symbols: %w", core.OpTickerPrice, err)
		}
		params.SetEscaped("symbols", list)
	}
	return c.Do(ctx, core.OpTickerPrice, params)
}
