package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRejectReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"duplicate order id", ErrDuplicateOrderID, "duplicate_order_id"},
		{"forbidden", ErrForbidden, "forbidden"},
		{"order not found", ErrOrderNotFound, "not_found"},
		{"unknown instrument", ErrUnknownInstrument, "unknown_instrument"},
		{"instrument retired", ErrInstrumentRetired, "unknown_instrument"},
		{"invalid quantity", ErrInvalidQuantity, "invalid_quantity"},
		{"invalid price", ErrInvalidPrice, "invalid_price"},
		{"wrapped sentinel", fmt.Errorf("submit: %w", ErrInvalidQuantity), "invalid_quantity"},
		{"unknown error", errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RejectReason(tt.err); got != tt.want {
				t.Errorf("RejectReason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Message: "quantity must be positive"}
	if err.Error() != "quantity must be positive" {
		t.Errorf("Error() = %q", err.Error())
	}

	var vErr *ValidationError
	wrapped := fmt.Errorf("request: %w", err)
	if !errors.As(wrapped, &vErr) {
		t.Error("errors.As failed to unwrap ValidationError")
	}
}
