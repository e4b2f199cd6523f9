package domain

import (
	"math"
	"time"
)

// Instrument is immutable reference data for one tradable symbol.
// Created by an administrative action; read-only to the matching engine.
type Instrument struct {
	InstrumentID    string
	Symbol          string
	MarginAsset     string
	UnderlyingAsset string
	MakerFeeRate    float64
	TakerFeeRate    float64
	RoutingFeeRate  float64
	CreatedAt       time.Time
}

// MakerFee returns the maker fee in ticks for a given notional,
// rounded to the nearest tick.
func (i *Instrument) MakerFee(notional int64) int64 {
	return roundFee(i.MakerFeeRate, notional)
}

// TakerFee returns the taker fee in ticks for a given notional,
// rounded to the nearest tick.
func (i *Instrument) TakerFee(notional int64) int64 {
	return roundFee(i.TakerFeeRate, notional)
}

func roundFee(rate float64, notional int64) int64 {
	return int64(math.Round(rate * float64(notional)))
}
