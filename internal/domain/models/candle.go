package models

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV bar.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceSeries is a chronologically ascending OHLCV history for one symbol.
type PriceSeries []Candle

// Validate checks ordering and per-bar price invariants.
func (s PriceSeries) Validate() error {
	for i, c := range s {
		if c.Close <= 0 {
			return fmt.Errorf("bar %d: close must be positive, got %v", i, c.Close)
		}
		if c.High < c.Open || c.High < c.Close {
			return fmt.Errorf("bar %d: high %v below open/close", i, c.High)
		}
		if c.Low > c.Open || c.Low > c.Close {
			return fmt.Errorf("bar %d: low %v above open/close", i, c.Low)
		}
		if i > 0 && !s[i-1].Timestamp.Before(c.Timestamp) {
			return fmt.Errorf("bar %d: timestamp %v not after previous", i, c.Timestamp)
		}
	}
	return nil
}

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Highs returns the high column.
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

// Lows returns the low column.
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}
	return out
}

// Volumes returns the volume column.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s PriceSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}
