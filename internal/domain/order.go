package domain

import "time"

// OrderType distinguishes limit orders from market orders.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// OrderSide indicates whether an order is a bid (buy) or ask (sell).
type OrderSide string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"
)

// Opposite returns the other side of the book.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBid {
		return OrderSideAsk
	}
	return OrderSideBid
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusAccepted        OrderStatus = "accepted"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// ValidTransition reports whether an order may move from one status to
// another. Filled, canceled, and rejected are terminal.
func ValidTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusAccepted:
		switch to {
		case OrderStatusPartiallyFilled, OrderStatusFilled,
			OrderStatusCanceled, OrderStatusRejected:
			return true
		}
	case OrderStatusPartiallyFilled:
		switch to {
		case OrderStatusPartiallyFilled, OrderStatusFilled, OrderStatusCanceled:
			return true
		}
	}
	return false
}

// Order represents a resting or newly submitted intent to trade.
// LeavesQty is mutated only by the matching engine while the order
// rests; Sequence is assigned once at admission and never recomputed.
type Order struct {
	OrderID    string
	AccountID  string
	Symbol     string
	Side       OrderSide
	Type       OrderType
	Price      int64 // ticks, 0 for market orders
	InitialQty int64
	LeavesQty  int64
	FilledQty  int64
	Status     OrderStatus
	Sequence   uint64
	CreatedAt  time.Time
	Trades     []*Trade
}

// Resting reports whether the order is eligible to sit on the book.
func (o *Order) Resting() bool {
	return o.LeavesQty > 0 &&
		(o.Status == OrderStatusAccepted || o.Status == OrderStatusPartiallyFilled)
}

// Terminal reports whether the order has reached a final state.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected:
		return true
	}
	return false
}

// Clone returns a copy of the order that is safe to read after the
// book's serialization has been released. Trades are shared: a trade
// record is never mutated once created.
func (o *Order) Clone() *Order {
	c := *o
	c.Trades = append([]*Trade(nil), o.Trades...)
	return &c
}

// AveragePrice computes the volume-weighted average execution price
// as sum(trade.price × trade.quantity) / filled_qty using integer
// arithmetic. Returns (price, true) when trades exist, or (0, false)
// when no fills have been executed.
func (o *Order) AveragePrice() (int64, bool) {
	if len(o.Trades) == 0 || o.FilledQty == 0 {
		return 0, false
	}
	var total int64
	for _, t := range o.Trades {
		total += t.Price * t.Quantity
	}
	return total / o.FilledQty, true
}
