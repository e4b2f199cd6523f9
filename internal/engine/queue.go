package engine

import (
	"github.com/google/btree"

	"github.com/soletrade/venue/internal/domain"
)

// queueEntry is the B-tree key for one resting order: price plus the
// admission sequence. The sequence is assigned once and never changes,
// so an entry's position is stable for the lifetime of the order.
type queueEntry struct {
	Price    int64
	Sequence uint64
	Order    *domain.Order
}

// bidLess defines ordering for the bid side: price descending, then
// sequence ascending. Min() returns the best bid (highest price,
// earliest arrival).
func bidLess(a, b queueEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Sequence < b.Sequence
}

// askLess defines ordering for the ask side: price ascending, then
// sequence ascending. Min() returns the best ask (lowest price,
// earliest arrival).
func askLess(a, b queueEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Sequence < b.Sequence
}

// OrderQueue holds the resting orders for one side of one instrument,
// ordered by price-time priority. It is the sole owner of resting
// LeavesQty. The queue has no internal locking: the owning OrderBook
// serializes all access.
type OrderQueue struct {
	side  domain.OrderSide
	tree  *btree.BTreeG[queueEntry]
	index map[string]queueEntry // order_id → entry
}

// NewOrderQueue creates an empty queue for the given side.
func NewOrderQueue(side domain.OrderSide) *OrderQueue {
	const degree = 32
	less := askLess
	if side == domain.OrderSideBid {
		less = bidLess
	}
	return &OrderQueue{
		side:  side,
		tree:  btree.NewG[queueEntry](degree, less),
		index: make(map[string]queueEntry),
	}
}

// Insert adds an order at the position dictated by price-time ordering.
// Returns ErrDuplicateOrderID if the order id is already present.
func (q *OrderQueue) Insert(o *domain.Order) error {
	if _, ok := q.index[o.OrderID]; ok {
		return domain.ErrDuplicateOrderID
	}
	entry := queueEntry{Price: o.Price, Sequence: o.Sequence, Order: o}
	q.tree.ReplaceOrInsert(entry)
	q.index[o.OrderID] = entry
	return nil
}

// PeekBest returns the order with matching priority (best price,
// earliest sequence) without removing it.
func (q *OrderQueue) PeekBest() (*domain.Order, bool) {
	entry, ok := q.tree.Min()
	if !ok {
		return nil, false
	}
	return entry.Order, true
}

// PopBest removes and returns the best-priority order.
func (q *OrderQueue) PopBest() (*domain.Order, bool) {
	entry, ok := q.tree.DeleteMin()
	if !ok {
		return nil, false
	}
	delete(q.index, entry.Order.OrderID)
	return entry.Order, true
}

// Reduce decrements LeavesQty of a resting order in place. The entry's
// key is untouched, so price-time priority is preserved. The caller is
// responsible for popping the order once LeavesQty reaches zero.
func (q *OrderQueue) Reduce(orderID string, delta int64) error {
	entry, ok := q.index[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if delta <= 0 || delta > entry.Order.LeavesQty {
		return domain.ErrInvalidQuantity
	}
	entry.Order.LeavesQty -= delta
	return nil
}

// Remove deletes an order from any position in the queue. Used by cancel.
func (q *OrderQueue) Remove(orderID string) (*domain.Order, error) {
	entry, ok := q.index[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	delete(q.index, orderID)
	q.tree.Delete(entry)
	return entry.Order, nil
}

// Contains reports whether an order id is resting in this queue.
func (q *OrderQueue) Contains(orderID string) bool {
	_, ok := q.index[orderID]
	return ok
}

// BestPrice returns the top-of-book price for this side.
func (q *OrderQueue) BestPrice() (int64, bool) {
	entry, ok := q.tree.Min()
	if !ok {
		return 0, false
	}
	return entry.Price, true
}

// Len returns the number of resting orders.
func (q *OrderQueue) Len() int {
	return q.tree.Len()
}

// Walk iterates resting orders in priority order. The callback returns
// true to continue, false to stop.
func (q *OrderQueue) Walk(fn func(*domain.Order) bool) {
	q.tree.Ascend(func(entry queueEntry) bool {
		return fn(entry.Order)
	})
}
