package service

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/engine"
	"github.com/soletrade/venue/internal/reporter"
	"github.com/soletrade/venue/internal/store"
)

var (
	accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	symbolRegex    = regexp.MustCompile(`^[A-Z]{1,10}$`)
)

// SubmitOrderRequest represents the input for order submission. The
// caller has already been authenticated and AccountID resolved by the
// API layer.
type SubmitOrderRequest struct {
	AccountID string
	Symbol    string
	Side      domain.OrderSide
	Type      domain.OrderType
	Price     *float64 // required for limit, must be nil for market
	Quantity  int64
}

// AmendOrderRequest changes the price and/or remaining quantity of a
// resting order. At least one of NewPrice and NewQuantity must be set.
type AmendOrderRequest struct {
	AccountID   string
	OrderID     string
	NewPrice    *float64
	NewQuantity *int64
}

// CancelOrderRequest removes a resting order.
type CancelOrderRequest struct {
	AccountID string
	OrderID   string
}

// OrderResult is the outcome of one order request: the subject order's
// final state plus the ordered event list produced by the reporter.
type OrderResult struct {
	Order  *domain.Order
	Events []domain.Event
}

// OrderService validates order requests, routes them to the matching
// engine, and reports outcomes.
type OrderService struct {
	registry *engine.Registry
	reporter *reporter.Reporter
	orders   *store.OrderStore
	maxQty   int64
}

// NewOrderService creates a new OrderService. maxQty is the configured
// per-order quantity ceiling.
func NewOrderService(
	registry *engine.Registry,
	rep *reporter.Reporter,
	orders *store.OrderStore,
	maxQty int64,
) *OrderService {
	return &OrderService{
		registry: registry,
		reporter: rep,
		orders:   orders,
		maxQty:   maxQty,
	}
}

// Submit validates the request and runs the order through the matching
// engine. On rejection the returned result carries a single
// OrderRejected event alongside the error.
func (s *OrderService) Submit(req SubmitOrderRequest) (*OrderResult, error) {
	if req.Type != domain.OrderTypeLimit && req.Type != domain.OrderTypeMarket {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown order type: %s. Must be one of: limit, market", req.Type),
		}
	}
	if !accountIDRegex.MatchString(req.AccountID) {
		return nil, &domain.ValidationError{
			Message: "account_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if req.Side != domain.OrderSideBid && req.Side != domain.OrderSideAsk {
		return nil, &domain.ValidationError{
			Message: "side must be 'bid' or 'ask'",
		}
	}
	if !symbolRegex.MatchString(req.Symbol) {
		return nil, &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	if req.Quantity <= 0 || req.Quantity > s.maxQty {
		return s.reject(req.Symbol, "", domain.ErrInvalidQuantity)
	}

	var priceTicks int64
	switch req.Type {
	case domain.OrderTypeLimit:
		if req.Price == nil {
			return nil, &domain.ValidationError{
				Message: "price is required for limit orders",
			}
		}
		ticks, err := domain.DollarsToTicks(*req.Price)
		if err != nil || ticks <= 0 {
			return s.reject(req.Symbol, "", domain.ErrInvalidPrice)
		}
		priceTicks = ticks
	default:
		if req.Price != nil {
			return nil, &domain.ValidationError{
				Message: "price must not be set for market orders",
			}
		}
	}

	book, err := s.registry.Get(req.Symbol)
	if err != nil {
		return s.reject(req.Symbol, "", err)
	}

	order := &domain.Order{
		OrderID:    uuid.New().String(),
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Type:       req.Type,
		Price:      priceTicks,
		InitialQty: req.Quantity,
	}

	// Matching and reporting form one critical section per book: the
	// journal must observe events in the order the book produced them,
	// and the returned order copy must not see a later request's fills.
	var result *OrderResult
	err = book.Serialize(func() error {
		res, err := book.SubmitNew(order)
		if err != nil {
			return err
		}
		result = &OrderResult{Order: order.Clone(), Events: s.reporter.Submit(res)}
		return nil
	})
	if err != nil {
		return s.reject(req.Symbol, order.OrderID, err)
	}
	return result, nil
}

// Amend repositions or reduces a resting order. Amends never
// re-trigger matching.
func (s *OrderService) Amend(req AmendOrderRequest) (*OrderResult, error) {
	if req.NewPrice == nil && req.NewQuantity == nil {
		return nil, &domain.ValidationError{
			Message: "amend requires new_price and/or new_quantity",
		}
	}

	o, err := s.orders.Get(req.OrderID)
	if err != nil {
		return s.reject("", req.OrderID, domain.ErrOrderNotFound)
	}

	var newTicks *int64
	if req.NewPrice != nil {
		ticks, err := domain.DollarsToTicks(*req.NewPrice)
		if err != nil || ticks <= 0 {
			return s.reject(o.Symbol, req.OrderID, domain.ErrInvalidPrice)
		}
		newTicks = &ticks
	}

	book, err := s.registry.Get(o.Symbol)
	if err != nil {
		return s.reject(o.Symbol, req.OrderID, err)
	}

	var result *OrderResult
	err = book.Serialize(func() error {
		res, err := book.Amend(req.OrderID, req.AccountID, newTicks, req.NewQuantity)
		if err != nil {
			return err
		}
		result = &OrderResult{Order: res.Order.Clone(), Events: s.reporter.Amend(res)}
		return nil
	})
	if err != nil {
		return s.reject(o.Symbol, req.OrderID, err)
	}
	return result, nil
}

// Cancel removes a resting order. No trades are produced.
func (s *OrderService) Cancel(req CancelOrderRequest) (*OrderResult, error) {
	o, err := s.orders.Get(req.OrderID)
	if err != nil {
		return s.reject("", req.OrderID, domain.ErrOrderNotFound)
	}

	book, err := s.registry.Get(o.Symbol)
	if err != nil {
		return s.reject(o.Symbol, req.OrderID, err)
	}

	var result *OrderResult
	err = book.Serialize(func() error {
		res, err := book.Cancel(req.OrderID, req.AccountID)
		if err != nil {
			return err
		}
		result = &OrderResult{Order: res.Order.Clone(), Events: s.reporter.Cancel(res)}
		return nil
	})
	if err != nil {
		return s.reject(o.Symbol, req.OrderID, err)
	}
	return result, nil
}

// GetOrder retrieves an order by id.
func (s *OrderService) GetOrder(orderID string) (*domain.Order, error) {
	o, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	return s.snapshotOrder(o), nil
}

// ListOrders returns an account's orders, newest first, optionally
// filtered by status.
func (s *OrderService) ListOrders(accountID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int) {
	orders, total := s.orders.ListByAccount(accountID, status, page, limit)
	out := make([]*domain.Order, len(orders))
	for i, o := range orders {
		out[i] = s.snapshotOrder(o)
	}
	return out, total
}

// snapshotOrder copies an order under its book's request gate so the
// copy cannot observe a half-applied fill. Orders whose book is gone
// are terminal and copied directly.
func (s *OrderService) snapshotOrder(o *domain.Order) *domain.Order {
	book, err := s.registry.Get(o.Symbol)
	if err != nil {
		return o.Clone()
	}
	var c *domain.Order
	_ = book.Serialize(func() error {
		c = o.Clone()
		return nil
	})
	return c
}

// reject wraps an engine error into a result carrying the reject event
// returned to the caller. Rejects are never journaled.
func (s *OrderService) reject(symbol, orderID string, cause error) (*OrderResult, error) {
	ev := s.reporter.Reject(symbol, orderID, cause)
	return &OrderResult{Events: []domain.Event{ev}}, cause
}
