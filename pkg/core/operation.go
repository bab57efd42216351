package core

import "net/http"

// Operation represents a spot REST API call.
type Operation int

// Operation constants define all supported spot API calls.
const (
	// OpNewOrder places a new order.
	OpNewOrder Operation = iota
	// OpTestOrder validates a new order without sending it to the matching engine.
	OpTestOrder
	// OpQueryOrder retrieves a single order.
	OpQueryOrder
	// OpCancelOrder cancels an active order.
	OpCancelOrder
	// OpCancelOpenOrders cancels every active order on a symbol.
	OpCancelOpenOrders
	// OpCancelReplaceOrder cancels an order and places a new one atomically.
	OpCancelReplaceOrder
	// OpOpenOrders lists open orders.
	OpOpenOrders
	// OpAllOrders lists all orders of a symbol.
	OpAllOrders
	// OpNewOCO places an OCO through the legacy endpoint.
	OpNewOCO
	OpNewOrderListOCO
	OpNewOrderListOTO
	OpNewOrderListOTOCO
	OpCancelOrderList
	OpQueryOrderList
	OpAllOrderLists
	OpOpenOrderLists
	// OpNewSOROrder places an order using smart order routing.
	OpNewSOROrder
	OpTestSOROrder
	// OpTickerPrice retrieves the latest price. It is the only unsigned call.
	OpTickerPrice
)

// Endpoint describes how an operation is sent.
type Endpoint struct {
	Method string
	Path   string
	// Weight is the request weight charged against the per-minute budget.
	Weight int
	// Orders is the number of orders the call places.
	Orders int
	Signed bool
}

var endpoints = [...]struct {
	name string
	Endpoint
}{
	OpNewOrder:           {"NEW_ORDER", Endpoint{http.MethodPost, "/api/v3/order", 1, 1, true}},
	OpTestOrder:          {"TEST_ORDER", Endpoint{http.MethodPost, "/api/v3/order/test", 1, 0, true}},
	OpQueryOrder:         {"QUERY_ORDER", Endpoint{http.MethodGet, "/api/v3/order", 4, 0, true}},
	OpCancelOrder:        {"CANCEL_ORDER", Endpoint{http.MethodDelete, "/api/v3/order", 1, 0, true}},
	OpCancelOpenOrders:   {"CANCEL_OPEN_ORDERS", Endpoint{http.MethodDelete, "/api/v3/openOrders", 1, 0, true}},
	OpCancelReplaceOrder: {"CANCEL_REPLACE_ORDER", Endpoint{http.MethodPost, "/api/v3/order/cancelReplace", 1, 1, true}},
	OpOpenOrders:         {"OPEN_ORDERS", Endpoint{http.MethodGet, "/api/v3/openOrders", 6, 0, true}},
	OpAllOrders:          {"ALL_ORDERS", Endpoint{http.MethodGet, "/api/v3/allOrders", 20, 0, true}},
	OpNewOCO:             {"NEW_OCO", Endpoint{http.MethodPost, "/api/v3/order/oco", 1, 2, true}},
	OpNewOrderListOCO:    {"NEW_ORDER_LIST_OCO", Endpoint{http.MethodPost, "/api/v3/orderList/oco", 1, 2, true}},
	OpNewOrderListOTO:    {"NEW_ORDER_LIST_OTO", Endpoint{http.MethodPost, "/api/v3/orderList/oto", 1, 2, true}},
	OpNewOrderListOTOCO:  {"NEW_ORDER_LIST_OTOCO", Endpoint{http.MethodPost, "/api/v3/orderList/otoco", 1, 3, true}},
	OpCancelOrderList:    {"CANCEL_ORDER_LIST", Endpoint{http.MethodDelete, "/api/v3/orderList", 1, 0, true}},
	OpQueryOrderList:     {"QUERY_ORDER_LIST", Endpoint{http.MethodGet, "/api/v3/orderList", 4, 0, true}},
	OpAllOrderLists:      {"ALL_ORDER_LISTS", Endpoint{http.MethodGet, "/api/v3/allOrderList", 20, 0, true}},
	OpOpenOrderLists:     {"OPEN_ORDER_LISTS", Endpoint{http.MethodGet, "/api/v3/openOrderList", 6, 0, true}},
	OpNewSOROrder:        {"NEW_SOR_ORDER", Endpoint{http.MethodPost, "/api/v3/sor/order", 1, 1, true}},
	OpTestSOROrder:       {"TEST_SOR_ORDER", Endpoint{http.MethodPost, "/api/v3/sor/order/test", 1, 0, true}},
	OpTickerPrice:        {"TICKER_PRICE", Endpoint{http.MethodGet, "/api/v3/ticker/price", 2, 0, false}},
}

// Operations returns every supported operation.
func Operations() []Operation {
	ops := make([]Operation, len(endpoints))
	for i := range endpoints {
		ops[i] = Operation(i)
	}
	return ops
}

// MaxCost returns the largest weight and order count charged by any single
// operation. Rate limit budgets below these can never admit that operation.
func MaxCost() (weight, orders int) {
	for _, e := range endpoints {
		weight = max(weight, e.Weight)
		orders = max(orders, e.Orders)
	}
	return weight, orders
}

// Valid reports whether o names a supported operation.
func (o Operation) Valid() bool {
	return o >= 0 && int(o) < len(endpoints)
}

// String returns the string representation of the operation.
func (o Operation) String() string {
	if !o.Valid() {
		return "UNKNOWN"
	}
	return endpoints[o].name
}

// Endpoint returns the method, path and rate limit cost of the operation.
func (o Operation) Endpoint() (Endpoint, bool) {
	if !o.Valid() {
		return Endpoint{}, false
	}
	return endpoints[o].Endpoint, true
}

// NewRequest returns a request for the operation carrying a copy of params.
func (o Operation) NewRequest(params Params) (*Request, error) {
	ep, ok := o.Endpoint()
	if !ok {
		return nil, WrapError(ErrorTypeBadRequest, ErrCodeUnsupported, ErrUnsupportedOperation)
	}
	return NewRequest(ep.Method, ep.Path).
		SetParams(params).
		SetWeight(ep.Weight).
		SetOrderCount(ep.Orders).
		SetSigned(ep.Signed), nil
}
