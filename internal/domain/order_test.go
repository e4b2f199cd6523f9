package domain

import "testing"

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"accepted to partially_filled", OrderStatusAccepted, OrderStatusPartiallyFilled, true},
		{"accepted to filled", OrderStatusAccepted, OrderStatusFilled, true},
		{"accepted to canceled", OrderStatusAccepted, OrderStatusCanceled, true},
		{"accepted to rejected", OrderStatusAccepted, OrderStatusRejected, true},
		{"partially_filled to partially_filled", OrderStatusPartiallyFilled, OrderStatusPartiallyFilled, true},
		{"partially_filled to filled", OrderStatusPartiallyFilled, OrderStatusFilled, true},
		{"partially_filled to canceled", OrderStatusPartiallyFilled, OrderStatusCanceled, true},
		{"partially_filled to rejected", OrderStatusPartiallyFilled, OrderStatusRejected, false},
		{"partially_filled to accepted", OrderStatusPartiallyFilled, OrderStatusAccepted, false},
		{"filled is terminal", OrderStatusFilled, OrderStatusCanceled, false},
		{"canceled is terminal", OrderStatusCanceled, OrderStatusAccepted, false},
		{"rejected is terminal", OrderStatusRejected, OrderStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestOrderResting(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  bool
	}{
		{"accepted with leaves", Order{Status: OrderStatusAccepted, LeavesQty: 10}, true},
		{"partially filled with leaves", Order{Status: OrderStatusPartiallyFilled, LeavesQty: 5}, true},
		{"filled", Order{Status: OrderStatusFilled, LeavesQty: 0}, false},
		{"canceled", Order{Status: OrderStatusCanceled, LeavesQty: 5}, false},
		{"accepted with zero leaves", Order{Status: OrderStatusAccepted, LeavesQty: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.Resting(); got != tt.want {
				t.Errorf("Resting() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected}
	for _, s := range terminal {
		o := Order{Status: s}
		if !o.Terminal() {
			t.Errorf("Terminal() = false for status %s, want true", s)
		}
	}
	live := []OrderStatus{OrderStatusAccepted, OrderStatusPartiallyFilled}
	for _, s := range live {
		o := Order{Status: s}
		if o.Terminal() {
			t.Errorf("Terminal() = true for status %s, want false", s)
		}
	}
}

func TestOrderAveragePrice(t *testing.T) {
	t.Run("no fills", func(t *testing.T) {
		o := Order{}
		if _, ok := o.AveragePrice(); ok {
			t.Error("AveragePrice() = ok for order with no trades")
		}
	})

	t.Run("single fill", func(t *testing.T) {
		o := Order{
			FilledQty: 10,
			Trades:    []*Trade{{Price: 10050, Quantity: 10}},
		}
		got, ok := o.AveragePrice()
		if !ok {
			t.Fatal("AveragePrice() not ok")
		}
		if got != 10050 {
			t.Errorf("AveragePrice() = %d, want 10050", got)
		}
	})

	t.Run("volume weighted across fills", func(t *testing.T) {
		// 10 @ 100.00 and 30 @ 102.00 → (100000 + 306000) / 40 = 10150
		o := Order{
			FilledQty: 40,
			Trades: []*Trade{
				{Price: 10000, Quantity: 10},
				{Price: 10200, Quantity: 30},
			},
		}
		got, ok := o.AveragePrice()
		if !ok {
			t.Fatal("AveragePrice() not ok")
		}
		if got != 10150 {
			t.Errorf("AveragePrice() = %d, want 10150", got)
		}
	})
}

func TestOrderSideOpposite(t *testing.T) {
	if OrderSideBid.Opposite() != OrderSideAsk {
		t.Error("bid.Opposite() != ask")
	}
	if OrderSideAsk.Opposite() != OrderSideBid {
		t.Error("ask.Opposite() != bid")
	}
}
