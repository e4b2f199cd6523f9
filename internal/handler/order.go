package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/service"
)

// accountHeader carries the account resolved by the upstream auth
// layer. Authentication itself is outside this service.
const accountHeader = "X-Account-ID"

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	Symbol   string   `json:"symbol"`
	Side     string   `json:"side"`
	Type     string   `json:"type"`
	Price    *float64 `json:"price"`
	Quantity int64    `json:"quantity"`
}

// amendOrderRequest is the JSON request body for POST /orders/{order_id}/amend.
type amendOrderRequest struct {
	NewPrice    *float64 `json:"new_price"`
	NewQuantity *int64   `json:"new_quantity"`
}

// tradeResponse is a single execution in an order response.
type tradeResponse struct {
	TradeID          string  `json:"trade_id"`
	AggressorOrderID string  `json:"aggressor_order_id"`
	RestingOrderID   string  `json:"resting_order_id"`
	Price            float64 `json:"price"`
	Quantity         int64   `json:"quantity"`
	MakerFee         float64 `json:"maker_fee"`
	TakerFee         float64 `json:"taker_fee"`
	Sequence         uint64  `json:"sequence"`
	ExecutedAt       string  `json:"executed_at"`
}

// orderResponse is the JSON representation of an order. Price is null
// for market orders.
type orderResponse struct {
	OrderID      string          `json:"order_id"`
	AccountID    string          `json:"account_id"`
	Symbol       string          `json:"symbol"`
	Side         string          `json:"side"`
	Type         string          `json:"type"`
	Price        *float64        `json:"price"`
	InitialQty   int64           `json:"initial_quantity"`
	LeavesQty    int64           `json:"leaves_quantity"`
	FilledQty    int64           `json:"filled_quantity"`
	Status       string          `json:"status"`
	Sequence     uint64          `json:"sequence"`
	CreatedAt    string          `json:"created_at"`
	AveragePrice *float64        `json:"average_price"`
	Trades       []tradeResponse `json:"trades"`
}

func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:    o.OrderID,
		AccountID:  o.AccountID,
		Symbol:     o.Symbol,
		Side:       string(o.Side),
		Type:       string(o.Type),
		InitialQty: o.InitialQty,
		LeavesQty:  o.LeavesQty,
		FilledQty:  o.FilledQty,
		Status:     string(o.Status),
		Sequence:   o.Sequence,
		CreatedAt:  o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Trades:     make([]tradeResponse, 0, len(o.Trades)),
	}
	if o.Type == domain.OrderTypeLimit {
		p := domain.TicksToDollars(o.Price)
		resp.Price = &p
	}
	if avg, ok := o.AveragePrice(); ok {
		v := domain.TicksToDollars(avg)
		resp.AveragePrice = &v
	}
	for _, t := range o.Trades {
		resp.Trades = append(resp.Trades, buildTradeResponse(t))
	}
	return resp
}

func buildTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:          t.TradeID,
		AggressorOrderID: t.AggressorOrderID,
		RestingOrderID:   t.RestingOrderID,
		Price:            domain.TicksToDollars(t.Price),
		Quantity:         t.Quantity,
		MakerFee:         domain.TicksToDollars(t.MakerFee),
		TakerFee:         domain.TicksToDollars(t.TakerFee),
		Sequence:         t.Sequence,
		ExecutedAt:       t.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(accountHeader)
	if id == "" {
		respondError(w, http.StatusUnauthorized, "missing_account",
			accountHeader+" header is required")
		return "", false
	}
	return id, true
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req submitOrderRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.orderSvc.Submit(service.SubmitOrderRequest{
		AccountID: account,
		Symbol:    req.Symbol,
		Side:      domain.OrderSide(req.Side),
		Type:      domain.OrderType(req.Type),
		Price:     req.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, buildOrderResponse(result.Order))
}

// AmendOrder handles POST /orders/{order_id}/amend.
func (h *OrderHandler) AmendOrder(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req amendOrderRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.orderSvc.Amend(service.AmendOrderRequest{
		AccountID:   account,
		OrderID:     chi.URLParam(r, "order_id"),
		NewPrice:    req.NewPrice,
		NewQuantity: req.NewQuantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, buildOrderResponse(result.Order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	result, err := h.orderSvc.Cancel(service.CancelOrderRequest{
		AccountID: account,
		OrderID:   chi.URLParam(r, "order_id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, buildOrderResponse(result.Order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.GetOrder(chi.URLParam(r, "order_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildOrderResponse(order))
}

// listOrdersResponse is the JSON response for listing an account's orders.
type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Total  int             `json:"total"`
}

// ListOrders handles GET /accounts/{account_id}/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account_id")

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "validation_error", "page must be a positive integer")
			return
		}
		page = n
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	var status *domain.OrderStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.OrderStatus(v)
		switch s {
		case domain.OrderStatusAccepted, domain.OrderStatusPartiallyFilled,
			domain.OrderStatusFilled, domain.OrderStatusCanceled, domain.OrderStatusRejected:
			status = &s
		default:
			respondError(w, http.StatusBadRequest, "validation_error", "unknown status filter")
			return
		}
	}

	orders, total := h.orderSvc.ListOrders(account, status, page, limit)
	resp := listOrdersResponse{
		Orders: make([]orderResponse, 0, len(orders)),
		Page:   page,
		Limit:  limit,
		Total:  total,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, buildOrderResponse(o))
	}
	respondJSON(w, http.StatusOK, resp)
}
