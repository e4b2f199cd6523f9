package domain

import (
	"fmt"
	"math"
)

// DollarsToTicks converts a float64 dollar amount to int64 price ticks
// (cents). It validates that the input has at most 2 decimal places and
// returns an error if more precision is provided. Uses math.Round after
// multiplying by 100 to handle floating-point representation issues.
func DollarsToTicks(f float64) (int64, error) {
	// Multiply by 1000 to check for a third decimal place.
	// Round to avoid floating-point artifacts (e.g., 1.10 * 1000 = 1099.9999...).
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("prices must have at most 2 decimal places")
	}

	ticks := math.Round(f * 100)
	return int64(ticks), nil
}

// TicksToDollars converts an int64 tick value to a float64 dollar amount.
func TicksToDollars(t int64) float64 {
	return float64(t) / 100.0
}
