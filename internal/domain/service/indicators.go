package service

import (
	"context"

	"QuantPulse/internal/domain/models"
)

// Each model family exposes one narrow interface. Implementations never
// return an error for computation failure; the result's Outcome carries it.

// Valuator estimates fair value from fundamentals and price history.
type Valuator interface {
	Valuate(ctx context.Context, symbol string, fundamentals models.FundamentalSnapshot, prices models.PriceSeries, cfg models.DCFConfig) models.DCFResult
}

// FactorModel derives style factor loadings and expected returns.
type FactorModel interface {
	Analyze(ctx context.Context, symbol string, fundamentals models.FundamentalSnapshot, cfg models.FactorConfig) models.FactorResult
}

// Forecaster fits a time series model and forecasts a fixed horizon.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, prices models.PriceSeries, cfg models.ARIMAConfig) models.ARIMAResult
}

// FeatureEngineer builds the deterministic feature matrix and sequence
// windows consumed by external ML backends.
type FeatureEngineer interface {
	BuildFeatures(ctx context.Context, prices models.PriceSeries, cfg models.FeatureConfig) (models.FeatureMatrix, error)
	PrepareSequences(ctx context.Context, m models.FeatureMatrix, cfg models.FeatureConfig) (models.SequenceSet, error)
}

// PatternAnalyzer runs geometric chart-pattern construction.
type PatternAnalyzer interface {
	Analyze(ctx context.Context, symbol string, prices models.PriceSeries, cfg models.IchimokuConfig) models.IchimokuResult
}

// RegimeClassifier classifies volatility regimes and forecasts transitions.
type RegimeClassifier interface {
	Classify(ctx context.Context, symbol string, prices models.PriceSeries, cfg models.RegimeConfig) models.RegimeResult
}

// FlowAnalyzer analyzes exchange in/outflow series.
type FlowAnalyzer interface {
	Analyze(ctx context.Context, symbol string, flows models.FlowSeries, fundamentals models.FundamentalSnapshot, cfg models.FlowConfig) models.FlowResult
}
