// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"QuantPulse/pkg/config"
	"QuantPulse/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	fileStore := ProvideFileStore(cfg, logger)
	marketDataStore := ProvideMarketDataStore(fileStore)
	fundamentalsStore := ProvideFundamentalsStore(fileStore)
	flowStore := ProvideFlowStore(fileStore)
	valuator := ProvideValuator(logger)
	factorModel := ProvideFactorModel(logger)
	service, err := ProvideCache(cfg)
	if err != nil {
		return nil, err
	}
	metrics := ProvideMetrics()
	forecaster := ProvideForecaster(cfg, logger, service, metrics)
	patternAnalyzer := ProvidePatternAnalyzer(logger)
	regimeClassifier := ProvideRegimeClassifier(logger)
	flowAnalyzer := ProvideFlowAnalyzer(logger)
	ensembleUseCase := ProvideEnsemble(cfg, marketDataStore, fundamentalsStore, flowStore, valuator, factorModel, forecaster, patternAnalyzer, regimeClassifier, flowAnalyzer, metrics, service, logger)
	app := ProvideApp(cfg, ensembleUseCase, service, logger)
	return app, nil
}
