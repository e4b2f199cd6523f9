package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/engine"
	"github.com/soletrade/venue/internal/reporter"
)

// ActivateInstrumentRequest lists a new instrument for trading.
type ActivateInstrumentRequest struct {
	Symbol          string
	MarginAsset     string
	UnderlyingAsset string
	MakerFeeRate    float64
	TakerFeeRate    float64
	RoutingFeeRate  float64
}

// InstrumentService owns the administrative instrument lifecycle.
type InstrumentService struct {
	registry *engine.Registry
	reporter *reporter.Reporter
}

// NewInstrumentService creates a new InstrumentService.
func NewInstrumentService(registry *engine.Registry, rep *reporter.Reporter) *InstrumentService {
	return &InstrumentService{registry: registry, reporter: rep}
}

// Activate validates the reference data, creates the order book, and
// journals the activation.
func (s *InstrumentService) Activate(req ActivateInstrumentRequest) (*domain.Instrument, error) {
	if !symbolRegex.MatchString(req.Symbol) {
		return nil, &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	if !symbolRegex.MatchString(req.MarginAsset) {
		return nil, &domain.ValidationError{
			Message: "margin_asset must match ^[A-Z]{1,10}$",
		}
	}
	if !symbolRegex.MatchString(req.UnderlyingAsset) {
		return nil, &domain.ValidationError{
			Message: "underlying_asset must match ^[A-Z]{1,10}$",
		}
	}
	for name, rate := range map[string]float64{
		"maker_fee_rate":   req.MakerFeeRate,
		"taker_fee_rate":   req.TakerFeeRate,
		"routing_fee_rate": req.RoutingFeeRate,
	} {
		if rate < 0 || rate >= 1 {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("%s must be in [0, 1)", name),
			}
		}
	}

	instrument := &domain.Instrument{
		InstrumentID:    uuid.New().String(),
		Symbol:          req.Symbol,
		MarginAsset:     req.MarginAsset,
		UnderlyingAsset: req.UnderlyingAsset,
		MakerFeeRate:    req.MakerFeeRate,
		TakerFeeRate:    req.TakerFeeRate,
		RoutingFeeRate:  req.RoutingFeeRate,
		CreatedAt:       time.Now(),
	}

	// The activation is journaled before the registry publishes the
	// book, so no order event for the symbol can precede it in the log.
	_, err := s.registry.Activate(instrument, func(*engine.OrderBook) {
		s.reporter.Activated(instrument)
	})
	if err != nil {
		return nil, err
	}
	return instrument, nil
}

// Retire removes an instrument from trading, auto-canceling every
// resting order on its book. The drain and its cancel events share the
// book's request gate, so an in-flight submission either journals
// fully before the retirement or is rejected.
func (s *InstrumentService) Retire(symbol string) ([]domain.Event, error) {
	book, err := s.registry.Get(symbol)
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	err = book.Serialize(func() error {
		canceled, err := s.registry.Retire(symbol)
		if err != nil {
			return err
		}
		events = s.reporter.Retired(symbol, canceled)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// List returns the reference data of all live instruments, sorted by
// symbol.
func (s *InstrumentService) List() []*domain.Instrument {
	instruments := s.registry.Instruments()
	sort.Slice(instruments, func(i, j int) bool {
		return instruments[i].Symbol < instruments[j].Symbol
	})
	return instruments
}
