package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soletrade/venue/internal/domain"
)

// Execution is one fill produced by the matching loop, paired with the
// resting order's state after the fill so the reporter can emit status
// changes in the exact order they were generated.
type Execution struct {
	Trade         *domain.Trade
	RestingOrder  *domain.Order
	RestingStatus domain.OrderStatus
	RestingLeaves int64
}

// Result is the ordered outcome of one request applied to a book:
// fills first, in generation order, then the final state of the
// subject order. Canceled is populated only when a book is drained.
type Result struct {
	Order      *domain.Order
	Executions []Execution
	Canceled   []*domain.Order
}

// PriceLevel is one aggregated price level in a depth snapshot.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// OrderBook owns the bid and ask queues for a single instrument and
// runs the matching algorithm. All mutations happen under a single
// mutex held for the entire pass: the book is the unit of sequential
// consistency, and the queues have no locks of their own. Nothing in
// the critical section touches I/O.
type OrderBook struct {
	instrument *domain.Instrument
	seq        *Sequencer

	gate sync.Mutex // serializes whole request/report cycles, see Serialize

	mu      sync.Mutex
	bids    *OrderQueue
	asks    *OrderQueue
	known   map[string]struct{} // every order id ever admitted
	retired bool
}

// NewOrderBook creates an empty book for the given instrument.
func NewOrderBook(instrument *domain.Instrument, seq *Sequencer) *OrderBook {
	return &OrderBook{
		instrument: instrument,
		seq:        seq,
		bids:       NewOrderQueue(domain.OrderSideBid),
		asks:       NewOrderQueue(domain.OrderSideAsk),
		known:      make(map[string]struct{}),
	}
}

// Instrument returns the book's immutable reference data.
func (b *OrderBook) Instrument() *domain.Instrument {
	return b.instrument
}

// Serialize runs fn while holding the book's request gate. The book
// mutex orders matching alone; a request is only complete once its
// events are stamped and handed to the journal, so callers that report
// outcomes wrap the whole cycle here. Two requests on one book then
// cannot interleave between matching and reporting, and order state
// read inside fn cannot change under the reader.
func (b *OrderBook) Serialize(fn func() error) error {
	b.gate.Lock()
	defer b.gate.Unlock()
	return fn()
}

func (b *OrderBook) sideQueue(side domain.OrderSide) *OrderQueue {
	if side == domain.OrderSideBid {
		return b.bids
	}
	return b.asks
}

// marketable reports whether the incoming order crosses the given
// resting price. Market orders are marketable against any price.
func marketable(o *domain.Order, restingPrice int64) bool {
	if o.Type == domain.OrderTypeMarket {
		return true
	}
	if o.Side == domain.OrderSideBid {
		return restingPrice <= o.Price
	}
	return restingPrice >= o.Price
}

// SubmitNew processes an incoming order: admit, match against the
// opposite queue while marketable, then rest the remainder (limit) or
// cancel it (market, IOC semantics). The caller provides AccountID,
// Side, Type, Price, and InitialQty; the book assigns OrderID when
// empty, plus Sequence, CreatedAt, LeavesQty, and Status.
//
// Returns ErrDuplicateOrderID if the id has ever been admitted to this
// book, with no state mutated.
func (b *OrderBook) SubmitNew(o *domain.Order) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.retired {
		return nil, domain.ErrInstrumentRetired
	}
	if o.OrderID == "" {
		o.OrderID = uuid.New().String()
	}
	if _, dup := b.known[o.OrderID]; dup {
		return nil, domain.ErrDuplicateOrderID
	}

	// Admission: stamp once, never recomputed while the order rests.
	b.known[o.OrderID] = struct{}{}
	o.Symbol = b.instrument.Symbol
	o.Sequence = b.seq.Next()
	o.CreatedAt = time.Now()
	o.LeavesQty = o.InitialQty
	o.FilledQty = 0
	o.Status = domain.OrderStatusAccepted

	res := &Result{Order: o}
	b.match(o, res)

	if o.LeavesQty > 0 {
		switch o.Type {
		case domain.OrderTypeLimit:
			if o.FilledQty > 0 {
				o.Status = domain.OrderStatusPartiallyFilled
			}
			// Remainder rests on the order's own side.
			_ = b.sideQueue(o.Side).Insert(o)
		default:
			// Market residual never queues.
			o.Status = domain.OrderStatusCanceled
		}
	}

	return res, nil
}

// match runs the matching loop for an admitted order against the
// opposite queue. Each iteration is one atomic fill: the trade record
// and both LeavesQty decrements happen together before the loop moves
// on.
func (b *OrderBook) match(o *domain.Order, res *Result) {
	opposite := b.sideQueue(o.Side.Opposite())

	for o.LeavesQty > 0 {
		resting, ok := opposite.PeekBest()
		if !ok || !marketable(o, resting.Price) {
			break
		}

		execQty := o.LeavesQty
		if resting.LeavesQty < execQty {
			execQty = resting.LeavesQty
		}

		// Price-time priority rewards the resting side: the trade
		// prints at the resting price, never worse than the
		// aggressor's limit.
		price := resting.Price
		notional := price * execQty
		trade := &domain.Trade{
			TradeID:          uuid.New().String(),
			Symbol:           b.instrument.Symbol,
			AggressorOrderID: o.OrderID,
			RestingOrderID:   resting.OrderID,
			Price:            price,
			Quantity:         execQty,
			MakerFee:         b.instrument.MakerFee(notional),
			TakerFee:         b.instrument.TakerFee(notional),
			Sequence:         b.seq.Next(),
			ExecutedAt:       time.Now(),
		}

		o.LeavesQty -= execQty
		o.FilledQty += execQty
		resting.FilledQty += execQty

		if resting.LeavesQty == execQty {
			opposite.PopBest()
			resting.LeavesQty = 0
			resting.Status = domain.OrderStatusFilled
		} else {
			_ = opposite.Reduce(resting.OrderID, execQty)
			resting.Status = domain.OrderStatusPartiallyFilled
		}

		o.Trades = append(o.Trades, trade)
		resting.Trades = append(resting.Trades, trade)
		res.Executions = append(res.Executions, Execution{
			Trade:         trade,
			RestingOrder:  resting,
			RestingStatus: resting.Status,
			RestingLeaves: resting.LeavesQty,
		})

		if o.LeavesQty == 0 {
			o.Status = domain.OrderStatusFilled
		}
	}
}

// findResting locates a resting order by id on either side.
func (b *OrderBook) findResting(orderID string) (*domain.Order, *OrderQueue) {
	if entry, ok := b.bids.index[orderID]; ok {
		return entry.Order, b.bids
	}
	if entry, ok := b.asks.index[orderID]; ok {
		return entry.Order, b.asks
	}
	return nil, nil
}

// Amend changes the price and/or remaining quantity of a resting order.
// A price change or a quantity increase forfeits queue position: the
// order is removed and reinserted with a fresh sequence. A quantity
// decrease is applied in place, preserving priority. Amend never
// re-triggers matching.
func (b *OrderBook) Amend(orderID, accountID string, newPrice, newQty *int64) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, queue := b.findResting(orderID)
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if o.AccountID != accountID {
		return nil, domain.ErrForbidden
	}

	leaves := o.LeavesQty
	if newQty != nil {
		leaves = *newQty
		if leaves <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}
	priceChanged := newPrice != nil && *newPrice != o.Price
	if newPrice != nil && *newPrice <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	switch {
	case priceChanged || leaves > o.LeavesQty:
		// Standard exchange rule: price and size-up changes lose
		// time priority.
		if _, err := queue.Remove(orderID); err != nil {
			return nil, err
		}
		if newPrice != nil {
			o.Price = *newPrice
		}
		o.LeavesQty = leaves
		o.InitialQty = o.FilledQty + leaves
		o.Sequence = b.seq.Next()
		_ = queue.Insert(o)
	case leaves < o.LeavesQty:
		if err := queue.Reduce(orderID, o.LeavesQty-leaves); err != nil {
			return nil, err
		}
		o.InitialQty = o.FilledQty + leaves
	}

	return &Result{Order: o}, nil
}

// Cancel removes a resting order. No trades are produced.
func (b *OrderBook) Cancel(orderID, accountID string) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, queue := b.findResting(orderID)
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if o.AccountID != accountID {
		return nil, domain.ErrForbidden
	}

	if _, err := queue.Remove(orderID); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatusCanceled
	return &Result{Order: o}, nil
}

// Drain retires the book: every resting order is removed and marked
// Canceled, best priority first, bids before asks. Further submissions
// are rejected. Avoids orphaned liquidity when an instrument retires.
func (b *OrderBook) Drain() []*domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.retired = true
	var canceled []*domain.Order
	for _, q := range []*OrderQueue{b.bids, b.asks} {
		for {
			o, ok := q.PopBest()
			if !ok {
				break
			}
			o.Status = domain.OrderStatusCanceled
			canceled = append(canceled, o)
		}
	}
	return canceled
}

// Depth returns up to n aggregated price levels per side, bids by
// price descending, asks ascending.
func (b *OrderBook) Depth(n int) (bids, asks []PriceLevel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return levels(b.bids, n), levels(b.asks, n)
}

func levels(q *OrderQueue, n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	out := make([]PriceLevel, 0, n)
	q.Walk(func(o *domain.Order) bool {
		if len(out) > 0 && out[len(out)-1].Price == o.Price {
			out[len(out)-1].TotalQuantity += o.LeavesQty
			out[len(out)-1].OrderCount++
			return true
		}
		if len(out) >= n {
			return false
		}
		out = append(out, PriceLevel{Price: o.Price, TotalQuantity: o.LeavesQty, OrderCount: 1})
		return true
	})
	return out
}

// Spread returns the current top-of-book prices as (bid, ask).
func (b *OrderBook) Spread() (bid, ask int64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bid, bidOK := b.bids.BestPrice()
	ask, askOK := b.asks.BestPrice()
	return bid, ask, bidOK && askOK
}

// BidCount returns the number of resting bids.
func (b *OrderBook) BidCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bids.Len()
}

// AskCount returns the number of resting asks.
func (b *OrderBook) AskCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.asks.Len()
}

// RestoreResting reinserts an order snapshot during journal replay,
// keeping its original admission sequence. Replay bypasses matching:
// the journaled fills are applied separately via ApplyFill. The id may
// already be known from a replayed fill that preceded the accept
// snapshot (an aggressor whose remainder rested); only an id that is
// still queued is a true duplicate.
func (b *OrderBook) RestoreResting(o *domain.Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, _ := b.findResting(o.OrderID); existing != nil {
		return domain.ErrDuplicateOrderID
	}
	b.known[o.OrderID] = struct{}{}
	if !o.Resting() {
		return nil
	}
	return b.sideQueue(o.Side).Insert(o)
}

// RestoreAmended re-applies a journaled amend: any previous position
// for the order id is dropped and the snapshot reinserted under its
// recorded sequence.
func (b *OrderBook) RestoreAmended(o *domain.Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.known[o.OrderID] = struct{}{}
	if existing, queue := b.findResting(o.OrderID); existing != nil {
		_, _ = queue.Remove(o.OrderID)
	}
	if !o.Resting() {
		return nil
	}
	return b.sideQueue(o.Side).Insert(o)
}

// ApplyFill re-applies a journaled fill against the resting side,
// popping the order once its remaining quantity is exhausted. The
// aggressor id is recorded for duplicate detection only: its own
// resting state, if any, arrives as a separate accepted event.
func (b *OrderBook) ApplyFill(aggressorID, restingID string, qty int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.known[aggressorID] = struct{}{}
	o, queue := b.findResting(restingID)
	if o == nil {
		// Resting order already consumed by a later event.
		return nil
	}
	if qty >= o.LeavesQty {
		qty = o.LeavesQty
	}
	o.FilledQty += qty
	if qty == o.LeavesQty {
		if _, err := queue.Remove(restingID); err != nil {
			return err
		}
		o.LeavesQty = 0
		o.Status = domain.OrderStatusFilled
		return nil
	}
	o.Status = domain.OrderStatusPartiallyFilled
	return queue.Reduce(restingID, qty)
}

// RemoveResting drops a resting order during replay of a canceled
// status event. Missing orders are ignored: replay is idempotent.
func (b *OrderBook) RemoveResting(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if o, queue := b.findResting(orderID); o != nil {
		_, _ = queue.Remove(orderID)
		o.Status = domain.OrderStatusCanceled
	}
}
