package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soletrade/venue/internal/domain"
	"github.com/soletrade/venue/internal/service"
)

// InstrumentHandler handles the administrative instrument endpoints.
type InstrumentHandler struct {
	instrumentSvc *service.InstrumentService
}

// NewInstrumentHandler creates a new InstrumentHandler.
func NewInstrumentHandler(instrumentSvc *service.InstrumentService) *InstrumentHandler {
	return &InstrumentHandler{instrumentSvc: instrumentSvc}
}

// activateInstrumentRequest is the JSON request body for POST /instruments.
type activateInstrumentRequest struct {
	Symbol          string  `json:"symbol"`
	MarginAsset     string  `json:"margin_asset"`
	UnderlyingAsset string  `json:"underlying_asset"`
	MakerFeeRate    float64 `json:"maker_fee_rate"`
	TakerFeeRate    float64 `json:"taker_fee_rate"`
	RoutingFeeRate  float64 `json:"routing_fee_rate"`
}

// instrumentResponse is the JSON representation of an instrument.
type instrumentResponse struct {
	InstrumentID    string  `json:"instrument_id"`
	Symbol          string  `json:"symbol"`
	MarginAsset     string  `json:"margin_asset"`
	UnderlyingAsset string  `json:"underlying_asset"`
	MakerFeeRate    float64 `json:"maker_fee_rate"`
	TakerFeeRate    float64 `json:"taker_fee_rate"`
	RoutingFeeRate  float64 `json:"routing_fee_rate"`
	CreatedAt       string  `json:"created_at"`
}

func buildInstrumentResponse(i *domain.Instrument) instrumentResponse {
	return instrumentResponse{
		InstrumentID:    i.InstrumentID,
		Symbol:          i.Symbol,
		MarginAsset:     i.MarginAsset,
		UnderlyingAsset: i.UnderlyingAsset,
		MakerFeeRate:    i.MakerFeeRate,
		TakerFeeRate:    i.TakerFeeRate,
		RoutingFeeRate:  i.RoutingFeeRate,
		CreatedAt:       i.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ActivateInstrument handles POST /instruments.
func (h *InstrumentHandler) ActivateInstrument(w http.ResponseWriter, r *http.Request) {
	var req activateInstrumentRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	instrument, err := h.instrumentSvc.Activate(service.ActivateInstrumentRequest{
		Symbol:          req.Symbol,
		MarginAsset:     req.MarginAsset,
		UnderlyingAsset: req.UnderlyingAsset,
		MakerFeeRate:    req.MakerFeeRate,
		TakerFeeRate:    req.TakerFeeRate,
		RoutingFeeRate:  req.RoutingFeeRate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, buildInstrumentResponse(instrument))
}

// ListInstruments handles GET /instruments.
func (h *InstrumentHandler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments := h.instrumentSvc.List()
	resp := make([]instrumentResponse, 0, len(instruments))
	for _, i := range instruments {
		resp = append(resp, buildInstrumentResponse(i))
	}
	respondJSON(w, http.StatusOK, map[string]any{"instruments": resp})
}

// RetireInstrument handles DELETE /instruments/{symbol}.
func (h *InstrumentHandler) RetireInstrument(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	events, err := h.instrumentSvc.Retire(symbol)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Every event bar the retirement marker is an auto-cancel.
	respondJSON(w, http.StatusOK, map[string]any{
		"symbol":          symbol,
		"canceled_orders": len(events) - 1,
	})
}
