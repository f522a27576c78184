package di

import (
	"fmt"

	"QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	internalrepo "QuantPulse/internal/repository"
	"QuantPulse/internal/services/flow"
	"QuantPulse/internal/services/regime"
	"QuantPulse/internal/services/technical"
	"QuantPulse/internal/services/timeseries"
	"QuantPulse/internal/services/valuation"
	"QuantPulse/internal/usecase"
	"QuantPulse/pkg/cache"
	"QuantPulse/pkg/config"
	applogger "QuantPulse/pkg/logger"
	"QuantPulse/pkg/metrics"
	"QuantPulse/pkg/server"
)

// ProvideLogger creates the application logger from YAML config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideCache creates the configured cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	default:
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxSize),
			cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		), nil
	}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideFileStore creates the flat-file market data store.
func ProvideFileStore(cfg *config.Config, log *applogger.Logger) *internalrepo.FileStore {
	return internalrepo.NewFileStore(cfg.Engine.DataDir, log)
}

// ProvideMarketDataStore binds the file store as the OHLCV source.
func ProvideMarketDataStore(fs *internalrepo.FileStore) repository.MarketDataStore { return fs }

// ProvideFundamentalsStore binds the file store as the fundamentals source.
func ProvideFundamentalsStore(fs *internalrepo.FileStore) repository.FundamentalsStore { return fs }

// ProvideFlowStore binds the file store as the exchange flow source.
func ProvideFlowStore(fs *internalrepo.FileStore) repository.FlowStore { return fs }

// ProvideValuator creates the DCF valuation service.
func ProvideValuator(log *applogger.Logger) domsvc.Valuator {
	return valuation.NewDCFService(log)
}

// ProvideFactorModel creates the factor analysis service.
func ProvideFactorModel(log *applogger.Logger) domsvc.FactorModel {
	return valuation.NewFactorService(log)
}

// ProvideForecaster creates the ARIMA forecasting service.
func ProvideForecaster(cfg *config.Config, log *applogger.Logger, c cache.Service, m repository.Metrics) domsvc.Forecaster {
	svc := timeseries.NewARIMAService(log, c, cfg.Cache.TTL)
	svc.SetMetrics(m)
	return svc
}

// ProvidePatternAnalyzer creates the Ichimoku analysis service.
func ProvidePatternAnalyzer(log *applogger.Logger) domsvc.PatternAnalyzer {
	return technical.NewIchimokuService(log)
}

// ProvideRegimeClassifier creates the volatility regime service.
func ProvideRegimeClassifier(log *applogger.Logger) domsvc.RegimeClassifier {
	return regime.NewVolatilityService(log)
}

// ProvideFlowAnalyzer creates the exchange flow service.
func ProvideFlowAnalyzer(log *applogger.Logger) domsvc.FlowAnalyzer {
	return flow.NewFlowService(log)
}

// ProvideEnsemble creates the ensemble use case over all models.
func ProvideEnsemble(
	cfg *config.Config,
	market repository.MarketDataStore,
	fund repository.FundamentalsStore,
	flows repository.FlowStore,
	valuator domsvc.Valuator,
	factor domsvc.FactorModel,
	forecaster domsvc.Forecaster,
	pattern domsvc.PatternAnalyzer,
	classifier domsvc.RegimeClassifier,
	analyzer domsvc.FlowAnalyzer,
	m repository.Metrics,
	c cache.Service,
	log *applogger.Logger,
) *usecase.EnsembleUseCase {
	uc := usecase.NewEnsembleUseCase(
		market, fund, flows,
		valuator, factor, forecaster, pattern, classifier, analyzer,
		m, log, cfg.Engine.Timeout,
	)
	uc.SetCache(c, cfg.Cache.TTL)
	return uc
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	ensemble *usecase.EnsembleUseCase,
	c cache.Service,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, ensemble, c, log)
}
