package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soletrade/venue/internal/domain"
)

func TestRespondJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	respondJSON(rr, http.StatusCreated, map[string]string{"hello": "world"})

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("body = %v", body)
	}
}

func TestRespondError(t *testing.T) {
	rr := httptest.NewRecorder()
	respondError(rr, http.StatusNotFound, "order_not_found", "no such order")

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	var body apiError
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "order_not_found" || body.Message != "no such order" {
		t.Errorf("body = %+v", body)
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Symbol string `json:"symbol"`
	}

	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     bool
	}{
		{"valid", "application/json", `{"symbol":"BTCUSD"}`, false},
		{"charset suffix", "application/json; charset=utf-8", `{"symbol":"BTCUSD"}`, false},
		{"missing content type", "", `{"symbol":"BTCUSD"}`, true},
		{"wrong content type", "text/plain", `{"symbol":"BTCUSD"}`, true},
		{"malformed json", "application/json", `{"symbol":`, true},
		{"unknown field", "application/json", `{"symbol":"BTCUSD","bogus":1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			var p payload
			err := readJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&domain.ValidationError{Message: "bad input"}, http.StatusBadRequest, "validation_error"},
		{domain.ErrDuplicateOrderID, http.StatusConflict, "duplicate_order_id"},
		{domain.ErrInstrumentExists, http.StatusConflict, "instrument_exists"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{domain.ErrUnknownInstrument, http.StatusNotFound, "unknown_instrument"},
		{domain.ErrInstrumentRetired, http.StatusGone, "instrument_retired"},
		{domain.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
		{domain.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
		{fmt.Errorf("%w: book", domain.ErrInstrumentRetired), http.StatusGone, "instrument_retired"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeDomainError(rr, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			var body apiError
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}
