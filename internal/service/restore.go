package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/engine"
	"github.com/soletrade/venue/internal/journal"
	"github.com/soletrade/venue/internal/store"
)

// Restorer rebuilds in-memory book state after a restart by replaying
// the persisted event log. Replay is idempotent: events are applied in
// sequence order, duplicates are skipped, and a fill against an
// already-consumed resting order is a no-op.
type Restorer struct {
	journal  *journal.Journal
	registry *engine.Registry
	seq      *engine.Sequencer
	orders   *store.OrderStore
	trades   *store.TradeStore
	logger   *slog.Logger
}

// NewRestorer creates a Restorer over the given journal and engine
// state.
func NewRestorer(
	j *journal.Journal,
	registry *engine.Registry,
	seq *engine.Sequencer,
	orders *store.OrderStore,
	trades *store.TradeStore,
	logger *slog.Logger,
) *Restorer {
	return &Restorer{
		journal:  j,
		registry: registry,
		seq:      seq,
		orders:   orders,
		trades:   trades,
		logger:   logger,
	}
}

// Restore replays the journal from the start (book and query state
// live in memory only, so every event is needed to rebuild them),
// verifies the log reaches the last durable checkpoint, and advances
// the venue sequencer past the last persisted event so fresh sequences
// never collide.
func (r *Restorer) Restore() error {
	start := time.Now()
	count := 0

	checkpoint, err := r.journal.Checkpoint()
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}

	last, err := r.journal.Replay(0, func(ev domain.Event) error {
		count++
		return r.apply(ev)
	})
	if err != nil {
		return fmt.Errorf("journal replay: %w", err)
	}
	// The checkpoint names the last sequence known durable; a log that
	// ends before it has lost committed events.
	if last < checkpoint {
		return fmt.Errorf("journal truncated: checkpoint %d beyond last event %d", checkpoint, last)
	}

	floor, err := r.journal.LastSequence()
	if err != nil {
		return fmt.Errorf("read last sequence: %w", err)
	}
	r.seq.Advance(floor)

	if count > 0 {
		r.logger.Info("book state restored from journal",
			slog.Int("events", count),
			slog.Uint64("last_sequence", floor),
			slog.Uint64("checkpoint", checkpoint),
			slog.Duration("took", time.Since(start)))
	}
	return nil
}

func (r *Restorer) apply(ev domain.Event) error {
	switch ev.Type {
	case domain.EventInstrumentActivated:
		return r.applyActivated(ev)
	case domain.EventOrderAccepted:
		return r.applyAccepted(ev)
	case domain.EventOrderAmended:
		return r.applyAmended(ev)
	case domain.EventTradeExecuted:
		return r.applyTrade(ev)
	case domain.EventOrderStatusChanged:
		return r.applyStatus(ev)
	case domain.EventInstrumentRetired:
		// Drained orders were journaled as canceled status events
		// ahead of this marker, so the drain result is discarded.
		_, err := r.registry.Retire(ev.Symbol)
		if errors.Is(err, domain.ErrUnknownInstrument) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Restorer) applyActivated(ev domain.Event) error {
	p := ev.Activated
	if p == nil {
		return fmt.Errorf("event %d: missing activation payload", ev.Sequence)
	}
	_, err := r.registry.Activate(&domain.Instrument{
		InstrumentID:    p.InstrumentID,
		Symbol:          p.Symbol,
		MarginAsset:     p.MarginAsset,
		UnderlyingAsset: p.UnderlyingAsset,
		MakerFeeRate:    p.MakerFeeRate,
		TakerFeeRate:    p.TakerFeeRate,
		RoutingFeeRate:  p.RoutingFeeRate,
		CreatedAt:       ev.At,
	}, nil)
	if errors.Is(err, domain.ErrInstrumentExists) {
		return nil
	}
	return err
}

func (r *Restorer) applyAccepted(ev domain.Event) error {
	if ev.Accepted == nil {
		return fmt.Errorf("event %d: missing accept payload", ev.Sequence)
	}
	// Reuse the stored record when one exists (a re-replayed log) so
	// the order index and the queue keep sharing one Order and applied
	// fills stick.
	o, err := r.orders.Get(ev.Accepted.OrderID)
	if err != nil {
		o = orderFromSnapshot(ev.Accepted, ev.Symbol, ev.At)
		r.orders.Put(o)
	}

	book, err := r.registry.Get(ev.Symbol)
	if err != nil {
		// Instrument retired later in the log; the resting order
		// was canceled by the drain events that follow.
		return nil
	}
	if err := book.RestoreResting(o); err != nil && !errors.Is(err, domain.ErrDuplicateOrderID) {
		return err
	}
	return nil
}

func (r *Restorer) applyAmended(ev domain.Event) error {
	if ev.Amended == nil {
		return fmt.Errorf("event %d: missing amend payload", ev.Sequence)
	}
	book, err := r.registry.Get(ev.Symbol)
	if err != nil {
		return nil
	}

	// Mutate the already-restored record when one exists so the order
	// index and the queue keep sharing one Order.
	o, err := r.orders.Get(ev.Amended.OrderID)
	if err != nil {
		o = orderFromSnapshot(ev.Amended, ev.Symbol, ev.At)
		r.orders.Put(o)
	} else {
		applySnapshot(o, ev.Amended)
	}
	return book.RestoreAmended(o)
}

func (r *Restorer) applyTrade(ev domain.Event) error {
	p := ev.Trade
	if p == nil {
		return fmt.Errorf("event %d: missing trade payload", ev.Sequence)
	}
	trade := &domain.Trade{
		TradeID:          p.TradeID,
		Symbol:           ev.Symbol,
		AggressorOrderID: p.AggressorOrderID,
		RestingOrderID:   p.RestingOrderID,
		Price:            p.Price,
		Quantity:         p.Quantity,
		MakerFee:         p.MakerFee,
		TakerFee:         p.TakerFee,
		Sequence:         p.Sequence,
		ExecutedAt:       ev.At,
	}
	r.trades.Append(trade)

	if resting, err := r.orders.Get(p.RestingOrderID); err == nil {
		resting.Trades = append(resting.Trades, trade)
	}

	book, err := r.registry.Get(ev.Symbol)
	if err != nil {
		return nil
	}
	return book.ApplyFill(p.AggressorOrderID, p.RestingOrderID, p.Quantity)
}

func (r *Restorer) applyStatus(ev domain.Event) error {
	p := ev.Status
	if p == nil {
		return fmt.Errorf("event %d: missing status payload", ev.Sequence)
	}
	// Fill-driven transitions were applied by the trade events; only
	// cancels carry book state of their own.
	if p.Status != domain.OrderStatusCanceled {
		return nil
	}
	if book, err := r.registry.Get(ev.Symbol); err == nil {
		book.RemoveResting(p.OrderID)
	}
	if o, err := r.orders.Get(p.OrderID); err == nil {
		o.Status = domain.OrderStatusCanceled
	}
	return nil
}

func orderFromSnapshot(s *domain.OrderAccepted, symbol string, at time.Time) *domain.Order {
	return &domain.Order{
		OrderID:    s.OrderID,
		AccountID:  s.AccountID,
		Symbol:     symbol,
		Side:       s.Side,
		Type:       s.Type,
		Price:      s.Price,
		InitialQty: s.InitialQty,
		LeavesQty:  s.LeavesQty,
		FilledQty:  s.InitialQty - s.LeavesQty,
		Status:     s.Status,
		Sequence:   s.Sequence,
		CreatedAt:  at,
	}
}

func applySnapshot(o *domain.Order, s *domain.OrderAccepted) {
	o.Price = s.Price
	o.InitialQty = s.InitialQty
	o.LeavesQty = s.LeavesQty
	o.FilledQty = s.InitialQty - s.LeavesQty
	o.Status = s.Status
	o.Sequence = s.Sequence
}
