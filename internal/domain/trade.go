package domain

import "time"

// Trade is an immutable execution record created atomically with each
// match. The engine never mutates a past trade.
type Trade struct {
	TradeID          string
	Symbol           string
	AggressorOrderID string
	RestingOrderID   string
	Price            int64 // ticks, always the resting order's price
	Quantity         int64
	MakerFee         int64 // ticks, charged to the resting side
	TakerFee         int64 // ticks, charged to the aggressor
	Sequence         uint64
	ExecutedAt       time.Time
}

// Notional returns price × quantity in ticks.
func (t *Trade) Notional() int64 {
	return t.Price * t.Quantity
}
