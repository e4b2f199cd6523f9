package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/service"
)

// MarketHandler serves the read-only market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// priceLevelResponse is one aggregated price level in a depth snapshot.
type priceLevelResponse struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Orders   int     `json:"orders"`
}

// bookResponse is the JSON depth snapshot for GET /instruments/{symbol}/book.
type bookResponse struct {
	Symbol     string               `json:"symbol"`
	Bids       []priceLevelResponse `json:"bids"`
	Asks       []priceLevelResponse `json:"asks"`
	Spread     *float64             `json:"spread"`
	SnapshotAt string               `json:"snapshot_at"`
}

// GetBook handles GET /instruments/{symbol}/book.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.marketSvc.Book(chi.URLParam(r, "symbol"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := bookResponse{
		Symbol:     book.Symbol,
		Bids:       make([]priceLevelResponse, 0, len(book.Bids)),
		Asks:       make([]priceLevelResponse, 0, len(book.Asks)),
		SnapshotAt: book.SnapshotAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	for _, lvl := range book.Bids {
		resp.Bids = append(resp.Bids, priceLevelResponse{
			Price:    domain.TicksToDollars(lvl.Price),
			Quantity: lvl.TotalQuantity,
			Orders:   lvl.OrderCount,
		})
	}
	for _, lvl := range book.Asks {
		resp.Asks = append(resp.Asks, priceLevelResponse{
			Price:    domain.TicksToDollars(lvl.Price),
			Quantity: lvl.TotalQuantity,
			Orders:   lvl.OrderCount,
		})
	}
	if book.Spread != nil {
		spread := domain.TicksToDollars(*book.Spread)
		resp.Spread = &spread
	}
	respondJSON(w, http.StatusOK, resp)
}

// priceResponse is the JSON body for GET /instruments/{symbol}/price.
type priceResponse struct {
	Symbol      string   `json:"symbol"`
	LastPrice   *float64 `json:"last_price"`
	TradeCount  int      `json:"trade_count"`
	LastTradeAt *string  `json:"last_trade_at"`
}

// GetPrice handles GET /instruments/{symbol}/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.marketSvc.Price(chi.URLParam(r, "symbol"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := priceResponse{
		Symbol:     price.Symbol,
		TradeCount: price.TradeCount,
	}
	if price.LastPrice != nil {
		p := domain.TicksToDollars(*price.LastPrice)
		resp.LastPrice = &p
	}
	if price.LastTradeAt != nil {
		at := price.LastTradeAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.LastTradeAt = &at
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListTrades handles GET /instruments/{symbol}/trades.
func (h *MarketHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	trades, err := h.marketSvc.Trades(symbol)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		resp = append(resp, buildTradeResponse(t))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"trades": resp,
	})
}
