// Package reporter is the translation layer between matching outcomes
// and the external event vocabulary. It holds no order-book state and
// performs no matching: it stamps each outcome with the venue sequence,
// preserves the emission order produced by the book, and fans events
// out to the journal, the trade feed, and the caller. Callers invoke it
// inside the book's request gate, so one request's events reach the
// journal contiguously and in stamping order.
package reporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/engine"
	"github.com/soletrade/venue/internal/store"
)

// Sink persists events. Appends must be asynchronous: the reporter is
// called on the matching path.
type Sink interface {
	Append(domain.Event)
}

// Feed broadcasts executed trades to downstream consumers.
type Feed interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Reporter fans matching outcomes out to the journal, the feed, and
// the query-side stores.
type Reporter struct {
	seq    *engine.Sequencer
	sink   Sink
	feed   Feed // nil when no feed is configured
	orders *store.OrderStore
	trades *store.TradeStore
	logger *slog.Logger
}

// New creates a Reporter. feed may be nil.
func New(
	seq *engine.Sequencer,
	sink Sink,
	feed Feed,
	orders *store.OrderStore,
	trades *store.TradeStore,
	logger *slog.Logger,
) *Reporter {
	return &Reporter{
		seq:    seq,
		sink:   sink,
		feed:   feed,
		orders: orders,
		trades: trades,
		logger: logger,
	}
}

func (r *Reporter) envelope(t domain.EventType, symbol string) domain.Event {
	return domain.Event{
		Sequence: r.seq.Next(),
		Type:     t,
		Symbol:   symbol,
		At:       time.Now(),
	}
}

func snapshot(o *domain.Order) *domain.OrderAccepted {
	return &domain.OrderAccepted{
		OrderID:    o.OrderID,
		AccountID:  o.AccountID,
		Side:       o.Side,
		Type:       o.Type,
		Price:      o.Price,
		InitialQty: o.InitialQty,
		LeavesQty:  o.LeavesQty,
		Status:     o.Status,
		Sequence:   o.Sequence,
	}
}

// Submit translates a new-order outcome: one TradeExecuted plus one
// OrderStatusChanged per fill, in generation order, then the accept
// acknowledgment carrying the incoming order's final state.
func (r *Reporter) Submit(res *engine.Result) []domain.Event {
	events := make([]domain.Event, 0, 2*len(res.Executions)+1)
	symbol := res.Order.Symbol

	for _, ex := range res.Executions {
		tradeEv := r.envelope(domain.EventTradeExecuted, symbol)
		tradeEv.Trade = &domain.TradeExecuted{
			TradeID:          ex.Trade.TradeID,
			AggressorOrderID: ex.Trade.AggressorOrderID,
			RestingOrderID:   ex.Trade.RestingOrderID,
			Price:            ex.Trade.Price,
			Quantity:         ex.Trade.Quantity,
			MakerFee:         ex.Trade.MakerFee,
			TakerFee:         ex.Trade.TakerFee,
			Sequence:         ex.Trade.Sequence,
		}
		events = append(events, tradeEv)

		statusEv := r.envelope(domain.EventOrderStatusChanged, symbol)
		statusEv.Status = &domain.OrderStatusChanged{
			OrderID:   ex.Trade.RestingOrderID,
			Status:    ex.RestingStatus,
			LeavesQty: ex.RestingLeaves,
		}
		events = append(events, statusEv)

		r.trades.Append(ex.Trade)
	}

	acceptEv := r.envelope(domain.EventOrderAccepted, symbol)
	acceptEv.Accepted = snapshot(res.Order)
	events = append(events, acceptEv)

	r.orders.Put(res.Order)
	r.dispatch(events)
	return events
}

// Amend reports a repositioned order. The snapshot carries the fresh
// sequence and terms so replay can rebuild the new queue position.
func (r *Reporter) Amend(res *engine.Result) []domain.Event {
	ev := r.envelope(domain.EventOrderAmended, res.Order.Symbol)
	ev.Amended = snapshot(res.Order)
	events := []domain.Event{ev}
	r.dispatch(events)
	return events
}

// Cancel reports a canceled order.
func (r *Reporter) Cancel(res *engine.Result) []domain.Event {
	ev := r.envelope(domain.EventOrderStatusChanged, res.Order.Symbol)
	ev.Status = &domain.OrderStatusChanged{
		OrderID:   res.Order.OrderID,
		Status:    domain.OrderStatusCanceled,
		LeavesQty: res.Order.LeavesQty,
	}
	events := []domain.Event{ev}
	r.dispatch(events)
	return events
}

// Reject reports a dropped request. Rejects mutate no state and are
// returned to the caller only, never journaled.
func (r *Reporter) Reject(symbol, orderID string, cause error) domain.Event {
	ev := r.envelope(domain.EventOrderRejected, symbol)
	ev.Rejected = &domain.OrderRejected{
		OrderID: orderID,
		Reason:  domain.RejectReason(cause),
	}
	return ev
}

// Activated reports a newly listed instrument.
func (r *Reporter) Activated(instrument *domain.Instrument) []domain.Event {
	ev := r.envelope(domain.EventInstrumentActivated, instrument.Symbol)
	ev.Activated = &domain.InstrumentActivated{
		InstrumentID:    instrument.InstrumentID,
		Symbol:          instrument.Symbol,
		MarginAsset:     instrument.MarginAsset,
		UnderlyingAsset: instrument.UnderlyingAsset,
		MakerFeeRate:    instrument.MakerFeeRate,
		TakerFeeRate:    instrument.TakerFeeRate,
		RoutingFeeRate:  instrument.RoutingFeeRate,
	}
	events := []domain.Event{ev}
	r.dispatch(events)
	return events
}

// Retired reports an instrument leaving trading: one Canceled outcome
// per drained resting order, then the retirement marker.
func (r *Reporter) Retired(symbol string, canceled []*domain.Order) []domain.Event {
	events := make([]domain.Event, 0, len(canceled)+1)
	for _, o := range canceled {
		ev := r.envelope(domain.EventOrderStatusChanged, symbol)
		ev.Status = &domain.OrderStatusChanged{
			OrderID:   o.OrderID,
			Status:    domain.OrderStatusCanceled,
			LeavesQty: o.LeavesQty,
		}
		events = append(events, ev)
	}
	ev := r.envelope(domain.EventInstrumentRetired, symbol)
	ev.RetiredSym = symbol
	events = append(events, ev)

	r.dispatch(events)
	return events
}

// dispatch hands events to the sinks in emission order. The journal
// must observe the exact fill sequence; the feed receives trades only.
func (r *Reporter) dispatch(events []domain.Event) {
	for _, ev := range events {
		r.sink.Append(ev)
		if r.feed != nil && ev.Type == domain.EventTradeExecuted {
			if err := r.feed.Publish(context.Background(), ev); err != nil {
				r.logger.Error("trade feed publish failed",
					slog.Uint64("sequence", ev.Sequence),
					slog.String("error", err.Error()))
			}
		}
	}
}
