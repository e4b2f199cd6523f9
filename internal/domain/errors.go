package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrDuplicateOrderID  = errors.New("duplicate_order_id")
	ErrForbidden         = errors.New("forbidden")
	ErrOrderNotFound     = errors.New("order_not_found")
	ErrUnknownInstrument = errors.New("unknown_instrument")
	ErrInstrumentRetired = errors.New("instrument_retired")
	ErrInstrumentExists  = errors.New("instrument_already_exists")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidPrice      = errors.New("invalid_price")
)

// RejectReason maps an engine error to the reject-reason vocabulary
// reported to callers. Unknown errors map to "internal_error".
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateOrderID):
		return "duplicate_order_id"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, ErrUnknownInstrument), errors.Is(err, ErrInstrumentRetired):
		return "unknown_instrument"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	}
	return "internal_error"
}

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
