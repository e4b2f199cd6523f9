package service

import (
	"time"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/engine"
	"github.com/soletrade/venue/internal/store"
)

// BookResponse is an aggregated depth snapshot for one symbol.
type BookResponse struct {
	Symbol     string
	Bids       []engine.PriceLevel
	Asks       []engine.PriceLevel
	Spread     *int64 // nil if either side empty
	SnapshotAt time.Time
}

// PriceResponse reports the most recent execution for one symbol.
type PriceResponse struct {
	Symbol      string
	LastPrice   *int64 // nil when no trades ever
	TradeCount  int
	LastTradeAt *time.Time
}

// MarketService serves read-only market data: depth, top of book, and
// trade history.
type MarketService struct {
	registry *engine.Registry
	trades   *store.TradeStore
	depth    int
}

// NewMarketService creates a new MarketService. depth caps the number
// of price levels returned per side.
func NewMarketService(registry *engine.Registry, trades *store.TradeStore, depth int) *MarketService {
	return &MarketService{registry: registry, trades: trades, depth: depth}
}

// Book returns aggregated depth and the current spread for a symbol.
func (s *MarketService) Book(symbol string) (*BookResponse, error) {
	book, err := s.registry.Get(symbol)
	if err != nil {
		return nil, err
	}

	bids, asks := book.Depth(s.depth)
	resp := &BookResponse{
		Symbol:     symbol,
		Bids:       bids,
		Asks:       asks,
		SnapshotAt: time.Now(),
	}
	if bid, ask, ok := book.Spread(); ok {
		spread := ask - bid
		resp.Spread = &spread
	}
	return resp, nil
}

// Price returns the last trade price for a symbol.
func (s *MarketService) Price(symbol string) (*PriceResponse, error) {
	if _, err := s.registry.Get(symbol); err != nil {
		return nil, err
	}

	trades := s.trades.BySymbol(symbol)
	resp := &PriceResponse{
		Symbol:     symbol,
		TradeCount: len(trades),
	}
	if last, ok := s.trades.Last(symbol); ok {
		price := last.Price
		at := last.ExecutedAt
		resp.LastPrice = &price
		resp.LastTradeAt = &at
	}
	return resp, nil
}

// Trades returns the chronological execution history for a symbol.
func (s *MarketService) Trades(symbol string) ([]*domain.Trade, error) {
	if _, err := s.registry.Get(symbol); err != nil {
		return nil, err
	}
	return s.trades.BySymbol(symbol), nil
}
