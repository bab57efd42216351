package spot

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"

	"bintang/pkg/core"
)

// DecodeOrder decodes a single order response.
func DecodeOrder(data []byte) (*core.Order, error) {
	var o core.Order
	if err := sonic.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}

// DecodeOrders decodes a list of orders.
func DecodeOrders(data []byte) ([]core.Order, error) {
	var orders []core.Order
	if err := sonic.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// DecodeOrderList decodes a single order list response.
func DecodeOrderList(data []byte) (*core.OrderList, error) {
	var l core.OrderList
	if err := sonic.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode order list: %w", err)
	}
	return &l, nil
}

// DecodeOrderLists decodes a list of order lists.
func DecodeOrderLists(data []byte) ([]core.OrderList, error) {
	var lists []core.OrderList
	if err := sonic.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("decode order lists: %w", err)
	}
	return lists, nil
}

// DecodeTickerPrice decodes a ticker price response, which is an object for
// one symbol and an array otherwise.
func DecodeTickerPrice(data []byte) ([]core.TickerPrice, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tickers []core.TickerPrice
		if err := sonic.Unmarshal(trimmed, &tickers); err != nil {
			return nil, fmt.Errorf("decode ticker prices: %w", err)
		}
		return tickers, nil
	}

	var ticker core.TickerPrice
	if err := sonic.Unmarshal(trimmed, &ticker); err != nil {
		return nil, fmt.Errorf("decode ticker price: %w", err)
	}
	return []core.TickerPrice{ticker}, nil
}
