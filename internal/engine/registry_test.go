package engine

import (
	"errors"
	"testing"

	"github.com/soletrade/venue/internal/domain"
)

func testInstrument(symbol string) *domain.Instrument {
	return &domain.Instrument{
		InstrumentID:    "inst-" + symbol,
		Symbol:          symbol,
		MarginAsset:     "USD",
		UnderlyingAsset: symbol,
	}
}

func TestRegistryActivateAndGet(t *testing.T) {
	r := NewRegistry(NewSequencer())

	book, err := r.Activate(testInstrument("BTCUSD"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book == nil {
		t.Fatal("expected book")
	}

	got, err := r.Get("BTCUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != book {
		t.Error("Get returned a different book")
	}

	if _, err := r.Get("ETHUSD"); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Errorf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestRegistryActivateDuplicate(t *testing.T) {
	r := NewRegistry(NewSequencer())
	_, _ = r.Activate(testInstrument("BTCUSD"), nil)

	if _, err := r.Activate(testInstrument("BTCUSD"), nil); !errors.Is(err, domain.ErrInstrumentExists) {
		t.Errorf("expected ErrInstrumentExists, got %v", err)
	}
}

func TestRegistryActivateOnReady(t *testing.T) {
	r := NewRegistry(NewSequencer())

	var ready *OrderBook
	book, err := r.Activate(testInstrument("BTCUSD"), func(b *OrderBook) {
		ready = b
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ready != book {
		t.Error("onReady received a different book")
	}

	// onReady is not invoked for a rejected activation.
	ready = nil
	if _, err := r.Activate(testInstrument("BTCUSD"), func(b *OrderBook) {
		ready = b
	}); !errors.Is(err, domain.ErrInstrumentExists) {
		t.Fatalf("expected ErrInstrumentExists, got %v", err)
	}
	if ready != nil {
		t.Error("onReady invoked for rejected activation")
	}
}

func TestRegistryRetire(t *testing.T) {
	r := NewRegistry(NewSequencer())
	book, _ := r.Activate(testInstrument("BTCUSD"), nil)

	_, _ = book.SubmitNew(newOrder("o1", "a1", domain.OrderSideBid, 10000, 5))
	_, _ = book.SubmitNew(newOrder("o2", "a2", domain.OrderSideAsk, 10100, 3))

	canceled, err := r.Retire("BTCUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(canceled) != 2 {
		t.Errorf("expected 2 auto-canceled orders, got %d", len(canceled))
	}

	// Routing for the symbol now fails, and the symbol is never reusable.
	if _, err := r.Get("BTCUSD"); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Errorf("expected ErrUnknownInstrument after retire, got %v", err)
	}
	if _, err := r.Activate(testInstrument("BTCUSD"), nil); !errors.Is(err, domain.ErrInstrumentRetired) {
		t.Errorf("expected ErrInstrumentRetired on re-activation, got %v", err)
	}

	if _, err := r.Retire("BTCUSD"); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Errorf("expected ErrUnknownInstrument on second retire, got %v", err)
	}
}

func TestRegistryInstruments(t *testing.T) {
	r := NewRegistry(NewSequencer())
	_, _ = r.Activate(testInstrument("BTCUSD"), nil)
	_, _ = r.Activate(testInstrument("ETHUSD"), nil)

	instruments := r.Instruments()
	if len(instruments) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(instruments))
	}
}
