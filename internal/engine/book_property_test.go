package engine

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/soletrade/venue/internal/domain"
)

// drawOrder generates a random incoming order with a small price range
// so crosses are frequent.
func drawOrder(t *rapid.T, id int) *domain.Order {
	side := domain.OrderSideBid
	if rapid.Bool().Draw(t, "isAsk") {
		side = domain.OrderSideAsk
	}
	typ := domain.OrderTypeLimit
	if rapid.IntRange(0, 9).Draw(t, "isMarket") == 0 {
		typ = domain.OrderTypeMarket
	}
	o := &domain.Order{
		OrderID:    fmt.Sprintf("o-%d", id),
		AccountID:  fmt.Sprintf("acct-%d", rapid.IntRange(0, 3).Draw(t, "account")),
		Side:       side,
		Type:       typ,
		InitialQty: rapid.Int64Range(1, 50).Draw(t, "qty"),
	}
	if typ == domain.OrderTypeLimit {
		o.Price = rapid.Int64Range(9990, 10010).Draw(t, "price")
	}
	return o
}

func TestProperty_QuantityConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBook()
		n := rapid.IntRange(1, 60).Draw(t, "orders")

		for i := 0; i < n; i++ {
			o := drawOrder(t, i)
			res, err := b.SubmitNew(o)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}

			var executed int64
			for _, ex := range res.Executions {
				executed += ex.Trade.Quantity
			}
			if o.FilledQty != executed {
				t.Fatalf("order %s: filled=%d but executions sum to %d", o.OrderID, o.FilledQty, executed)
			}
			if o.FilledQty+o.LeavesQty != o.InitialQty {
				t.Fatalf("order %s: filled=%d + leaves=%d != initial=%d",
					o.OrderID, o.FilledQty, o.LeavesQty, o.InitialQty)
			}
			for _, ex := range res.Executions {
				if ex.Trade.Quantity <= 0 {
					t.Fatalf("trade with non-positive quantity %d", ex.Trade.Quantity)
				}
			}
		}
	})
}

func TestProperty_BookNeverCrossed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBook()
		n := rapid.IntRange(1, 60).Draw(t, "orders")

		for i := 0; i < n; i++ {
			if _, err := b.SubmitNew(drawOrder(t, i)); err != nil {
				t.Fatalf("submit: %v", err)
			}

			// After each pass the best bid must sit below the best ask.
			if bid, ask, ok := b.Spread(); ok && bid >= ask {
				t.Fatalf("crossed book: bid=%d ask=%d", bid, ask)
			}
		}
	})
}

func TestProperty_TradesWithinLimits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBook()
		n := rapid.IntRange(1, 60).Draw(t, "orders")

		for i := 0; i < n; i++ {
			o := drawOrder(t, i)
			res, err := b.SubmitNew(o)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}

			for _, ex := range res.Executions {
				if o.Type != domain.OrderTypeLimit {
					continue
				}
				// The trade prints at the resting price, never through
				// the aggressor's limit.
				if o.Side == domain.OrderSideBid && ex.Trade.Price > o.Price {
					t.Fatalf("bid limit %d traded at %d", o.Price, ex.Trade.Price)
				}
				if o.Side == domain.OrderSideAsk && ex.Trade.Price < o.Price {
					t.Fatalf("ask limit %d traded at %d", o.Price, ex.Trade.Price)
				}
			}
		}
	})
}

func TestProperty_MarketOrdersNeverRest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBook()
		n := rapid.IntRange(1, 60).Draw(t, "orders")

		for i := 0; i < n; i++ {
			o := drawOrder(t, i)
			if _, err := b.SubmitNew(o); err != nil {
				t.Fatalf("submit: %v", err)
			}
			if o.Type != domain.OrderTypeMarket {
				continue
			}
			if b.sideQueue(o.Side).Contains(o.OrderID) {
				t.Fatalf("market order %s resting on the book", o.OrderID)
			}
			if o.LeavesQty > 0 && o.Status != domain.OrderStatusCanceled {
				t.Fatalf("market residual with status %s", o.Status)
			}
		}
	})
}

func TestProperty_NoPhantomLiquidity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBook()
		n := rapid.IntRange(1, 60).Draw(t, "orders")

		for i := 0; i < n; i++ {
			if _, err := b.SubmitNew(drawOrder(t, i)); err != nil {
				t.Fatalf("submit: %v", err)
			}
			for _, q := range []*OrderQueue{b.bids, b.asks} {
				q.Walk(func(o *domain.Order) bool {
					if o.LeavesQty <= 0 {
						t.Fatalf("order %s resting with leaves %d", o.OrderID, o.LeavesQty)
					}
					return true
				})
			}
		}
	})
}

func TestProperty_TradeSequencesMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBook()
		n := rapid.IntRange(1, 60).Draw(t, "orders")

		var last uint64
		for i := 0; i < n; i++ {
			res, err := b.SubmitNew(drawOrder(t, i))
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			for _, ex := range res.Executions {
				if ex.Trade.Sequence <= last {
					t.Fatalf("trade sequence %d not greater than %d", ex.Trade.Sequence, last)
				}
				last = ex.Trade.Sequence
			}
		}
	})
}
