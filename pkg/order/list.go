package order

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"bintang/pkg/core"
)

// List builds an order list: an OCO pair, or a working order with one (OTO)
// or two (OTOCO) pending orders triggered by its fill.
type List struct {
	kind   core.ContingencyType
	symbol string

	side     core.OrderSide
	sideSet  bool
	quantity string

	listClientOrderID string
	respType          core.OrderResponseType
	respSet           bool
	stp               core.SelfTradePreventionMode
	stpSet            bool

	legs map[string]*Builder
	errs []error
}

// OCO starts a one-cancels-the-other list: an above and a below order
// sharing a side and a quantity.
func OCO(symbol string) *List {
	return &List{kind: core.ContingencyOCO, symbol: symbol, legs: make(map[string]*Builder)}
}

// OTO starts a one-triggers-the-other list.
func OTO(symbol string) *List {
	return &List{kind: core.ContingencyOTO, symbol: symbol, legs: make(map[string]*Builder)}
}

// OTOCO starts a list where the working order triggers a pending OCO pair.
// Side and Quantity apply to the pending pair.
func OTOCO(symbol string) *List {
	return &List{kind: core.ContingencyOTOCO, symbol: symbol, legs: make(map[string]*Builder)}
}

// Kind returns the contingency type of the list.
func (l *List) Kind() core.ContingencyType {
	return l.kind
}

// Operation returns the operation that places the list.
func (l *List) Operation() core.Operation {
	switch l.kind {
	case core.ContingencyOTO:
		return core.OpNewOrderListOTO
	case core.ContingencyOTOCO:
		return core.OpNewOrderListOTOCO
	default:
		return core.OpNewOrderListOCO
	}
}

func (l *List) Side(side core.OrderSide) *List {
	l.side, l.sideSet = side, true
	return l
}

func (l *List) Buy() *List  { return l.Side(core.SideBuy) }
func (l *List) Sell() *List { return l.Side(core.SideSell) }

// Quantity sets the quantity shared by the OCO pair.
func (l *List) Quantity(qty string) *List {
	v, err := parseDecimal("quantity", qty)
	if err != nil {
		l.errs = append(l.errs, err)
		return l
	}
	l.quantity = v
	return l
}

// QuantityDecimal sets the quantity shared by the OCO pair.
func (l *List) QuantityDecimal(qty apd.Decimal) *List {
	v, err := formatDecimal("quantity", &qty)
	if err != nil {
		l.errs = append(l.errs, err)
		return l
	}
	l.quantity = v
	return l
}

// ClientListID sets a client-assigned identifier for the whole list.
func (l *List) ClientListID(id string) *List {
	l.listClientOrderID = id
	return l
}

func (l *List) ResponseType(t core.OrderResponseType) *List {
	l.respType, l.respSet = t, true
	return l
}

func (l *List) SelfTradePrevention(mode core.SelfTradePreventionMode) *List {
	l.stp, l.stpSet = mode, true
	return l
}

// Above sets the order placed above the market price of an OCO pair.
func (l *List) Above(leg *Builder) *List { return l.setLeg("above", leg) }

// Below sets the order placed below the market price of an OCO pair.
func (l *List) Below(leg *Builder) *List { return l.setLeg("below", leg) }

// Working sets the order that triggers the rest of the list.
func (l *List) Working(leg *Builder) *List { return l.setLeg("working", leg) }

// Pending sets the triggered order of an OTO list.
func (l *List) Pending(leg *Builder) *List { return l.setLeg("pending", leg) }

// PendingAbove sets the upper triggered order of an OTOCO list.
func (l *List) PendingAbove(leg *Builder) *List { return l.setLeg("pendingAbove", leg) }

// PendingBelow sets the lower triggered order of an OTOCO list.
func (l *List) PendingBelow(leg *Builder) *List { return l.setLeg("pendingBelow", leg) }

func (l *List) setLeg(prefix string, leg *Builder) *List {
	l.legs[prefix] = leg
	return l
}

// legSlot describes where a leg goes and which fields it carries itself.
type legSlot struct {
	prefix   string
	withSide bool
	withQty  bool
}

func (l *List) layout() []legSlot {
	switch l.kind {
	case core.ContingencyOTO:
		return []legSlot{{"working", true, true}, {"pending", true, true}}
	case core.ContingencyOTOCO:
		return []legSlot{{"working", true, true}, {"pendingAbove", false, false}, {"pendingBelow", false, false}}
	default:
		return []legSlot{{"above", false, false}, {"below", false, false}}
	}
}

// sharedPrefix is the prefix of the side and quantity set on the list.
func (l *List) sharedPrefix() (string, bool) {
	switch l.kind {
	case core.ContingencyOCO:
		return "", true
	case core.ContingencyOTOCO:
		return "pending", true
	default:
		return "", false
	}
}

// Params returns the parameters of the list, or every validation error
// joined. Leg errors name the leg.
func (l *List) Params() (core.Params, error) {
	errs := append([]error(nil), l.errs...)
	if l.symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}

	prefix, shared := l.sharedPrefix()
	if shared {
		if !l.sideSet {
			errs = append(errs, errors.New("side is required"))
		}
		if l.quantity == "" {
			errs = append(errs, errors.New("quantity is required"))
		}
	} else if l.sideSet || l.quantity != "" {
		errs = append(errs, fmt.Errorf("%s lists take side and quantity per order", l.kind))
	}

	slots := l.layout()
	known := make(map[string]bool, len(slots))
	for _, slot := range slots {
		known[slot.prefix] = true
		leg, ok := l.legs[slot.prefix]
		if !ok || leg == nil {
			errs = append(errs, fmt.Errorf("%s order is required", slot.prefix))
			continue
		}
		if legErrs := leg.validate(slot.withSide, slot.withQty); len(legErrs) > 0 {
			errs = append(errs, fmt.Errorf("%s order: %w", slot.prefix, errors.Join(legErrs...)))
		}
	}
	for name := range l.legs {
		if !known[name] {
			errs = append(errs, fmt.Errorf("%s lists have no %s order", l.kind, name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	p := core.Params{"symbol": l.symbol}
	if shared {
		p.Set(key(prefix, "side"), l.side.String())
		p.Set(key(prefix, "quantity"), l.quantity)
	}
	for _, slot := range slots {
		l.legs[slot.prefix].write(p, slot.prefix, slot.withSide, slot.withQty)
	}
	if l.listClientOrderID != "" {
		p.SetEscaped("listClientOrderId", l.listClientOrderID)
	}
	if l.respSet {
		p.Set("newOrderRespType", l.respType.String())
	}
	if l.stpSet {
		p.Set("selfTradePreventionMode", l.stp.String())
	}
	return p, nil
}
