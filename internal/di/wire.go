//go:build wireinject
// +build wireinject

package di

import (
	"QuantPulse/pkg/config"
	"QuantPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideCache,
		ProvideMetrics,

		// Data stores
		ProvideFileStore,
		ProvideMarketDataStore,
		ProvideFundamentalsStore,
		ProvideFlowStore,

		// Indicator models
		ProvideValuator,
		ProvideFactorModel,
		ProvideForecaster,
		ProvidePatternAnalyzer,
		ProvideRegimeClassifier,
		ProvideFlowAnalyzer,

		// Use cases
		ProvideEnsemble,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
