package core

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "UNKNOWN"
	}
	return names[i]
}

func parseEnum[T ~int](kind string, names []string, s string) (T, error) {
	for i, name := range names {
		if name == s {
			return T(i), nil
		}
	}
	return 0, WrapError(ErrorTypeBadRequest, ErrCodeInvalidEnum, fmt.Errorf("%w: %s %q", ErrInvalidEnum, kind, s))
}

func marshalEnum(name string) ([]byte, error) {
	return []byte(strconv.Quote(name)), nil
}

func unmarshalEnum[T ~int](kind string, names []string, data []byte) (T, error) {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kind, err)
	}
	return parseEnum[T](kind, names, s)
}

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

var orderSideNames = []string{"BUY", "SELL"}

// String returns the wire representation of the order side ("BUY" or "SELL").
func (s OrderSide) String() string { return enumName(orderSideNames, int(s)) }

// ParseOrderSide converts a wire string to an OrderSide.
func ParseOrderSide(s string) (OrderSide, error) {
	return parseEnum[OrderSide]("order side", orderSideNames, s)
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) { return marshalEnum(s.String()) }

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
func (s *OrderSide) UnmarshalJSON(data []byte) (err error) {
	*s, err = unmarshalEnum[OrderSide]("order side", orderSideNames, data)
	return err
}

// OrderType represents the type of order to place on an exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeLimit executes at a specified price or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available price.
	TypeMarket
	// TypeStopLoss triggers a market order when price reaches stop price.
	TypeStopLoss
	// TypeStopLossLimit triggers a limit order when price reaches stop price.
	TypeStopLossLimit
	// TypeTakeProfit triggers a market order when price reaches target.
	TypeTakeProfit
	// TypeTakeProfitLimit triggers a limit order when price reaches target.
	TypeTakeProfitLimit
	// TypeLimitMaker is a limit order rejected if it would match immediately.
	TypeLimitMaker
)

var orderTypeNames = []string{
	"LIMIT", "MARKET", "STOP_LOSS", "STOP_LOSS_LIMIT", "TAKE_PROFIT", "TAKE_PROFIT_LIMIT", "LIMIT_MAKER",
}

// String returns the wire representation of the order type.
func (t OrderType) String() string { return enumName(orderTypeNames, int(t)) }

// ParseOrderType converts a wire string to an OrderType.
func ParseOrderType(s string) (OrderType, error) {
	return parseEnum[OrderType]("order type", orderTypeNames, s)
}

// NeedsPrice reports whether orders of this type carry a limit price.
func (t OrderType) NeedsPrice() bool {
	return t == TypeLimit || t == TypeStopLossLimit || t == TypeTakeProfitLimit || t == TypeLimitMaker
}

// NeedsStopPrice reports whether orders of this type carry a trigger price.
func (t OrderType) NeedsStopPrice() bool {
	return t == TypeStopLoss || t == TypeStopLossLimit || t == TypeTakeProfit || t == TypeTakeProfitLimit
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) { return marshalEnum(t.String()) }

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) (err error) {
	*t, err = unmarshalEnum[OrderType]("order type", orderTypeNames, data)
	return err
}

// OrderStatus represents the current state of an order.
type OrderStatus int

// Order status constants define the lifecycle state of an order.
const (
	// StatusUnknown is the zero value: the response carried no status, as
	// with ACK placement responses.
	StatusUnknown OrderStatus = iota
	// StatusNew indicates the order has been accepted by the exchange.
	StatusNew
	// StatusPartiallyFilled indicates the order has been partially filled.
	StatusPartiallyFilled
	// StatusFilled indicates the order has been completely filled.
	StatusFilled
	// StatusCanceled indicates the order has been canceled.
	StatusCanceled
	// StatusPendingCancel indicates a cancel request is being processed.
	StatusPendingCancel
	// StatusRejected indicates the order was rejected by the exchange.
	StatusRejected
	// StatusExpired indicates the order has expired.
	StatusExpired
	// StatusExpiredInMatch indicates the order expired through self-trade prevention.
	StatusExpiredInMatch
	// StatusPendingNew indicates a pending order of a list waiting for its
	// working order to fill.
	StatusPendingNew
)

// orderStatusNames is indexed by status minus one; StatusUnknown has no wire
// form.
var orderStatusNames = []string{
	"NEW", "PARTIALLY_FILLED", "FILLED", "CANCELED", "PENDING_CANCEL", "REJECTED", "EXPIRED", "EXPIRED_IN_MATCH",
	"PENDING_NEW",
}

// String returns the wire representation of the order status.
func (s OrderStatus) String() string { return enumName(orderStatusNames, int(s)-1) }

// ParseOrderStatus converts a wire string to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	v, err := parseEnum[OrderStatus]("order status", orderStatusNames, s)
	if err != nil {
		return StatusUnknown, err
	}
	return v + 1, nil
}

// IsTerminal returns true if the order is in a terminal state (no further changes possible).
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCanceled || s == StatusRejected ||
		s == StatusExpired || s == StatusExpiredInMatch
}

// MarshalJSON implements json.Marshaler for OrderStatus.
func (s OrderStatus) MarshalJSON() ([]byte, error) { return marshalEnum(s.String()) }

// UnmarshalJSON implements json.Unmarshaler for OrderStatus.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum[OrderStatus]("order status", orderStatusNames, data)
	if err != nil {
		return err
	}
	*s = v + 1
	return nil
}

// TimeInForce defines how long an order remains active.
type TimeInForce int

// Time in force constants define order lifetime behavior.
const (
	// GTC (Good Till Canceled) keeps the order active until filled or canceled.
	GTC TimeInForce = iota
	// IOC (Immediate Or Cancel) requires immediate execution; unfilled portion is canceled.
	IOC
	// FOK (Fill Or Kill) requires complete immediate execution or cancellation.
	FOK
)

var timeInForceNames = []string{"GTC", "IOC", "FOK"}

// String returns the wire representation of time in force.
func (t TimeInForce) String() string { return enumName(timeInForceNames, int(t)) }

// ParseTimeInForce converts a wire string to a TimeInForce.
func ParseTimeInForce(s string) (TimeInForce, error) {
	return parseEnum[TimeInForce]("time in force", timeInForceNames, s)
}

// MarshalJSON implements json.Marshaler for TimeInForce.
func (t TimeInForce) MarshalJSON() ([]byte, error) { return marshalEnum(t.String()) }

// UnmarshalJSON implements json.Unmarshaler for TimeInForce.
func (t *TimeInForce) UnmarshalJSON(data []byte) (err error) {
	*t, err = unmarshalEnum[TimeInForce]("time in force", timeInForceNames, data)
	return err
}

// OrderResponseType selects how much detail an order placement returns.
type OrderResponseType int

const (
	RespACK OrderResponseType = iota
	RespResult
	RespFull
)

var orderResponseTypeNames = []string{"ACK", "RESULT", "FULL"}

func (t OrderResponseType) String() string { return enumName(orderResponseTypeNames, int(t)) }

// ParseOrderResponseType converts a wire string to an OrderResponseType.
func ParseOrderResponseType(s string) (OrderResponseType, error) {
	return parseEnum[OrderResponseType]("order response type", orderResponseTypeNames, s)
}

// SelfTradePreventionMode controls what happens when an order would match
// another order of the same account.
type SelfTradePreventionMode int

const (
	STPNone SelfTradePreventionMode = iota
	STPExpireTaker
	STPExpireMaker
	STPExpireBoth
	STPDecrement
)

var stpModeNames = []string{"NONE", "EXPIRE_TAKER", "EXPIRE_MAKER", "EXPIRE_BOTH", "DECREMENT"}

func (m SelfTradePreventionMode) String() string { return enumName(stpModeNames, int(m)) }

// ParseSelfTradePreventionMode converts a wire string to a SelfTradePreventionMode.
func ParseSelfTradePreventionMode(s string) (SelfTradePreventionMode, error) {
	return parseEnum[SelfTradePreventionMode]("self trade prevention mode", stpModeNames, s)
}

// MarshalJSON implements json.Marshaler for SelfTradePreventionMode.
func (m SelfTradePreventionMode) MarshalJSON() ([]byte, error) { return marshalEnum(m.String()) }

// UnmarshalJSON implements json.Unmarshaler for SelfTradePreventionMode.
func (m *SelfTradePreventionMode) UnmarshalJSON(data []byte) (err error) {
	*m, err = unmarshalEnum[SelfTradePreventionMode]("self trade prevention mode", stpModeNames, data)
	return err
}

// CancelReplaceMode decides whether a failed cancel stops the replacement order.
type CancelReplaceMode int

const (
	StopOnFailure CancelReplaceMode = iota
	AllowFailure
)

var cancelReplaceModeNames = []string{"STOP_ON_FAILURE", "ALLOW_FAILURE"}

func (m CancelReplaceMode) String() string { return enumName(cancelReplaceModeNames, int(m)) }

// ParseCancelReplaceMode converts a wire string to a CancelReplaceMode.
func ParseCancelReplaceMode(s string) (CancelReplaceMode, error) {
	return parseEnum[CancelReplaceMode]("cancel replace mode", cancelReplaceModeNames, s)
}

// ContingencyType is the kind of an order list.
type ContingencyType int

const (
	// ContingencyOCO is one-cancels-the-other.
	ContingencyOCO ContingencyType = iota
	// ContingencyOTO is one-triggers-the-other.
	ContingencyOTO
	// ContingencyOTOCO is one-triggers-one-cancels-the-other.
	ContingencyOTOCO
)

var contingencyTypeNames = []string{"OCO", "OTO", "OTOCO"}

func (t ContingencyType) String() string { return enumName(contingencyTypeNames, int(t)) }

// ParseContingencyType converts a wire string to a ContingencyType.
func ParseContingencyType(s string) (ContingencyType, error) {
	return parseEnum[ContingencyType]("contingency type", contingencyTypeNames, s)
}

// MarshalJSON implements json.Marshaler for ContingencyType.
func (t ContingencyType) MarshalJSON() ([]byte, error) { return marshalEnum(t.String()) }

// UnmarshalJSON implements json.Unmarshaler for ContingencyType.
func (t *ContingencyType) UnmarshalJSON(data []byte) (err error) {
	*t, err = unmarshalEnum[ContingencyType]("contingency type", contingencyTypeNames, data)
	return err
}

// ListStatusType is the status of an order list.
type ListStatusType int

const (
	ListStatusExecStarted ListStatusType = iota
	ListStatusAllDone
	ListStatusReject
)

var listStatusTypeNames = []string{"EXEC_STARTED", "ALL_DONE", "REJECT"}

func (t ListStatusType) String() string { return enumName(listStatusTypeNames, int(t)) }

// ParseListStatusType converts a wire string to a ListStatusType.
func ParseListStatusType(s string) (ListStatusType, error) {
	return parseEnum[ListStatusType]("list status type", listStatusTypeNames, s)
}

// MarshalJSON implements json.Marshaler for ListStatusType.
func (t ListStatusType) MarshalJSON() ([]byte, error) { return marshalEnum(t.String()) }

// UnmarshalJSON implements json.Unmarshaler for ListStatusType.
func (t *ListStatusType) UnmarshalJSON(data []byte) (err error) {
	*t, err = unmarshalEnum[ListStatusType]("list status type", listStatusTypeNames, data)
	return err
}

// ListOrderStatus is the order status of an order list.
type ListOrderStatus int

const (
	ListOrderExecuting ListOrderStatus = iota
	ListOrderAllDone
	ListOrderReject
)

var listOrderStatusNames = []string{"EXECUTING", "ALL_DONE", "REJECT"}

func (s ListOrderStatus) String() string { return enumName(listOrderStatusNames, int(s)) }

// ParseListOrderStatus converts a wire string to a ListOrderStatus.
func ParseListOrderStatus(s string) (ListOrderStatus, error) {
	return parseEnum[ListOrderStatus]("list order status", listOrderStatusNames, s)
}

// MarshalJSON implements json.Marshaler for ListOrderStatus.
func (s ListOrderStatus) MarshalJSON() ([]byte, error) { return marshalEnum(s.String()) }

// UnmarshalJSON implements json.Unmarshaler for ListOrderStatus.
func (s *ListOrderStatus) UnmarshalJSON(data []byte) (err error) {
	*s, err = unmarshalEnum[ListOrderStatus]("list order status", listOrderStatusNames, data)
	return err
}

// TickerPrice is the latest price for a symbol.
type TickerPrice struct {
	Symbol string      `json:"symbol"`
	Price  apd.Decimal `json:"price"`
}

// Fill is one execution reported with a FULL order response.
type Fill struct {
	Price           apd.Decimal `json:"price"`
	Quantity        apd.Decimal `json:"qty"`
	Commission      apd.Decimal `json:"commission"`
	CommissionAsset string      `json:"commissionAsset"`
	TradeID         int64       `json:"tradeId"`
}

// Order is an order as reported by the order placement and query endpoints.
// Fields absent from a given response keep their zero value. An ACK response
// has only the identifiers and TransactTime; its Status is StatusUnknown.
type Order struct {
	// Symbol is the trading pair for this order.
	Symbol string `json:"symbol"`
	// OrderID is the exchange-assigned order identifier.
	OrderID int64 `json:"orderId"`
	// OrderListID is -1 unless the order belongs to an order list.
	OrderListID   int64  `json:"orderListId"`
	ClientOrderID string `json:"clientOrderId"`
	// TransactTime is set on placement and cancel responses, in milliseconds.
	TransactTime int64 `json:"transactTime,omitempty"`

	Price               apd.Decimal `json:"price"`
	OrigQty             apd.Decimal `json:"origQty"`
	ExecutedQty         apd.Decimal `json:"executedQty"`
	OrigQuoteOrderQty   apd.Decimal `json:"origQuoteOrderQty"`
	CummulativeQuoteQty apd.Decimal `json:"cummulativeQuoteQty"`
	StopPrice           apd.Decimal `json:"stopPrice"`
	IcebergQty          apd.Decimal `json:"icebergQty"`

	Status      OrderStatus `json:"status"`
	TimeInForce TimeInForce `json:"timeInForce"`
	Type        OrderType   `json:"type"`
	Side        OrderSide   `json:"side"`

	// Time and UpdateTime are set by the query endpoints, in milliseconds.
	Time        int64 `json:"time,omitempty"`
	UpdateTime  int64 `json:"updateTime,omitempty"`
	IsWorking   bool  `json:"isWorking"`
	WorkingTime int64 `json:"workingTime,omitempty"`

	SelfTradePreventionMode SelfTradePreventionMode `json:"selfTradePreventionMode"`
	StrategyID              int64                   `json:"strategyId,omitempty"`
	StrategyType            int64                   `json:"strategyType,omitempty"`
	TrailingDelta           int64                   `json:"trailingDelta,omitempty"`
	UsedSor                 bool                    `json:"usedSor,omitempty"`

	Fills []Fill `json:"fills,omitempty"`
}

// OrderListItem identifies one order of an order list.
type OrderListItem struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
}

// OrderList is an OCO, OTO or OTOCO order list.
type OrderList struct {
	OrderListID       int64           `json:"orderListId"`
	ContingencyType   ContingencyType `json:"contingencyType"`
	ListStatusType    ListStatusType  `json:"listStatusType"`
	ListOrderStatus   ListOrderStatus `json:"listOrderStatus"`
	ListClientOrderID string          `json:"listClientOrderId"`
	TransactionTime   int64           `json:"transactionTime"`
	Symbol            string          `json:"symbol"`
	Orders            []OrderListItem `json:"orders"`
	// OrderReports is only present on placement and cancel responses.
	OrderReports []Order `json:"orderReports,omitempty"`
}
