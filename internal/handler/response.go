package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/soletrade/venue/internal/domain"
)

// Request bodies are tiny JSON documents; anything past this is not a
// legitimate order-entry payload.
const maxBodyBytes = 1 << 20

// apiError is the envelope every failing endpoint returns: a stable
// machine-readable code plus a human-readable message.
type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// respondJSON serializes v with the given status. An encode failure is
// dropped: the status line is already on the wire.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError emits the apiError envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, apiError{Code: code, Message: message})
}

// readJSON decodes a request body into v. Unknown fields are rejected
// so a misspelled parameter fails loudly instead of being ignored, and
// the body is capped at maxBodyBytes.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("Content-Type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("request body must be valid JSON")
	}
	return nil
}

// writeDomainError maps the service and engine sentinels onto HTTP
// statuses. Validation failures carry their own message; everything
// unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		respondError(w, http.StatusBadRequest, "validation_error", vErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateOrderID):
		respondError(w, http.StatusConflict, "duplicate_order_id", "an order with this id has already been admitted")
	case errors.Is(err, domain.ErrInstrumentExists):
		respondError(w, http.StatusConflict, "instrument_exists", "an instrument with this symbol is already live")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", "account does not own the order in question")
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", "order does not exist or is not resting")
	case errors.Is(err, domain.ErrUnknownInstrument):
		respondError(w, http.StatusNotFound, "unknown_instrument", "no live instrument for this symbol")
	case errors.Is(err, domain.ErrInstrumentRetired):
		respondError(w, http.StatusGone, "instrument_retired", "instrument has been retired from trading")
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive and within the configured ceiling")
	case errors.Is(err, domain.ErrInvalidPrice):
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be positive with at most 2 decimal places")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
