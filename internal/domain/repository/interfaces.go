package repository

import (
	"context"

	"QuantPulse/internal/domain/models"
)

// MarketDataStore supplies OHLCV history. An empty series is a valid
// answer; models degrade on it rather than error.
type MarketDataStore interface {
	GetPriceSeries(ctx context.Context, symbol string, limit int) (models.PriceSeries, error)
}

// FundamentalsStore supplies point-in-time fundamentals. Any metric may be
// absent from the snapshot.
type FundamentalsStore interface {
	GetSnapshot(ctx context.Context, symbol string) (models.FundamentalSnapshot, error)
}

// FlowStore supplies exchange flow history for flow-capable symbols.
type FlowStore interface {
	GetFlowSeries(ctx context.Context, symbol string, limit int) (models.FlowSeries, error)
}

// Metrics abstracts the engine's observability recorder.
type Metrics interface {
	RecordComputation(model string, status string)
	RecordConfidence(model, symbol string, confidence float64)
	RecordDuration(model string, seconds float64)
	RecordCacheLookup(hit bool)
}
