package domain

import "time"

// EventType identifies one kind of outbound engine event.
type EventType string

const (
	EventOrderAccepted       EventType = "order_accepted"
	EventOrderAmended        EventType = "order_amended"
	EventOrderRejected       EventType = "order_rejected"
	EventTradeExecuted       EventType = "trade_executed"
	EventOrderStatusChanged  EventType = "order_status_changed"
	EventInstrumentActivated EventType = "instrument_activated"
	EventInstrumentRetired   EventType = "instrument_retired"
)

// Event is the envelope handed to the persistence journal, the trade
// feed, and the original caller. Sequence is the venue-wide monotonic
// stamp used as the durability and replay cursor. Exactly one payload
// field is set, matching Type.
type Event struct {
	Sequence uint64    `json:"sequence"`
	Type     EventType `json:"type"`
	Symbol   string    `json:"symbol"`
	At       time.Time `json:"at"`

	Accepted   *OrderAccepted       `json:"accepted,omitempty"`
	Amended    *OrderAccepted       `json:"amended,omitempty"`
	Rejected   *OrderRejected       `json:"rejected,omitempty"`
	Trade      *TradeExecuted       `json:"trade,omitempty"`
	Status     *OrderStatusChanged  `json:"status,omitempty"`
	Activated  *InstrumentActivated `json:"activated,omitempty"`
	RetiredSym string               `json:"retired_symbol,omitempty"`
}

// OrderAccepted carries a full snapshot of an order admitted to a book.
// The snapshot is sufficient to reinsert the order during replay.
type OrderAccepted struct {
	OrderID    string      `json:"order_id"`
	AccountID  string      `json:"account_id"`
	Side       OrderSide   `json:"side"`
	Type       OrderType   `json:"order_type"`
	Price      int64       `json:"price"`
	InitialQty int64       `json:"initial_qty"`
	LeavesQty  int64       `json:"leaves_qty"`
	Status     OrderStatus `json:"status"`
	Sequence   uint64      `json:"order_sequence"`
}

// OrderRejected reports a request dropped with no state change.
// OrderID is empty when the reject happened before admission.
type OrderRejected struct {
	OrderID string `json:"order_id,omitempty"`
	Reason  string `json:"reason"`
}

// TradeExecuted reports one fill, in emission order.
type TradeExecuted struct {
	TradeID          string `json:"trade_id"`
	AggressorOrderID string `json:"aggressor_order_id"`
	RestingOrderID   string `json:"resting_order_id"`
	Price            int64  `json:"price"`
	Quantity         int64  `json:"quantity"`
	MakerFee         int64  `json:"maker_fee"`
	TakerFee         int64  `json:"taker_fee"`
	Sequence         uint64 `json:"trade_sequence"`
}

// OrderStatusChanged reports a status transition on a known order.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	Status    OrderStatus `json:"status"`
	LeavesQty int64       `json:"leaves_qty"`
}

// InstrumentActivated carries the reference data of a newly activated
// instrument so replay can recreate its book.
type InstrumentActivated struct {
	InstrumentID    string  `json:"instrument_id"`
	Symbol          string  `json:"symbol"`
	MarginAsset     string  `json:"margin_asset"`
	UnderlyingAsset string  `json:"underlying_asset"`
	MakerFeeRate    float64 `json:"maker_fee_rate"`
	TakerFeeRate    float64 `json:"taker_fee_rate"`
	RoutingFeeRate  float64 `json:"routing_fee_rate"`
}
