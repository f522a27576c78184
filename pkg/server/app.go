package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"QuantPulse/internal/usecase"
	"QuantPulse/pkg/cache"
	"QuantPulse/pkg/config"
	xhttp "QuantPulse/pkg/http"
	applogger "QuantPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	ensemble   *usecase.EnsembleUseCase
	cache      cache.Service
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	ensemble *usecase.EnsembleUseCase,
	cacheSvc cache.Service,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		ensemble: ensemble,
		cache:    cacheSvc,
		log:      log,
	}
}

// Run starts the engine and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(newHealthHandler(a.cfg),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	go a.evaluateLoop(ctx)
	a.log.Info("engine started",
		applogger.Strings("symbols", a.cfg.Engine.Symbols),
		applogger.Duration("interval", a.cfg.Engine.Interval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// evaluateLoop runs one pass over the configured symbols, then repeats on
// the configured interval. A zero interval means single-shot.
func (a *App) evaluateLoop(ctx context.Context) {
	a.runBatch(ctx)
	if a.cfg.Engine.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(a.cfg.Engine.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runBatch(ctx)
		}
	}
}

func (a *App) runBatch(ctx context.Context) {
	for _, symbol := range a.cfg.Engine.Symbols {
		res, err := a.ensemble.Evaluate(ctx, usecase.EvaluateParams{
			Symbol:      symbol,
			HistoryBars: a.cfg.Engine.HistoryBars,
		})
		if err != nil {
			a.log.Error("evaluation error",
				applogger.String("symbol", symbol), applogger.Error(err))
			continue
		}
		a.log.Info("consensus",
			applogger.String("symbol", symbol),
			applogger.String("status", string(res.Outcome.Status)),
			applogger.Float64("value", res.Value),
			applogger.Float64("confidence", res.Confidence),
			applogger.String("signal", string(res.Signal)),
			applogger.String("risk", string(res.Risk)))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
