package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuantPulse/internal/domain/models"
	domrepo "QuantPulse/internal/domain/repository"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/pkg/cache"
	applogger "QuantPulse/pkg/logger"
)

// EnsembleUseCase fans a symbol's data out to all registered models and
// combines their contributions into a confidence-weighted consensus.
type EnsembleUseCase struct {
	market     domrepo.MarketDataStore
	fund       domrepo.FundamentalsStore
	flows      domrepo.FlowStore
	valuator   domsvc.Valuator
	factor     domsvc.FactorModel
	forecaster domsvc.Forecaster
	pattern    domsvc.PatternAnalyzer
	regime     domsvc.RegimeClassifier
	flow       domsvc.FlowAnalyzer
	metrics    domrepo.Metrics
	log        *applogger.Logger
	timeout    time.Duration
	cache      cache.Service
	cacheTTL   time.Duration
}

func NewEnsembleUseCase(
	market domrepo.MarketDataStore,
	fund domrepo.FundamentalsStore,
	flows domrepo.FlowStore,
	valuator domsvc.Valuator,
	factor domsvc.FactorModel,
	forecaster domsvc.Forecaster,
	pattern domsvc.PatternAnalyzer,
	regime domsvc.RegimeClassifier,
	flow domsvc.FlowAnalyzer,
	metrics domrepo.Metrics,
	log *applogger.Logger,
	timeout time.Duration,
) *EnsembleUseCase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EnsembleUseCase{
		market: market, fund: fund, flows: flows,
		valuator: valuator, factor: factor, forecaster: forecaster,
		pattern: pattern, regime: regime, flow: flow,
		metrics: metrics, log: log, timeout: timeout,
	}
}

// SetCache enables consensus result caching. Repeat evaluations of a
// symbol within ttl return the stored result without re-running models.
func (uc *EnsembleUseCase) SetCache(c cache.Service, ttl time.Duration) {
	uc.cache = c
	if ttl <= 0 {
		ttl = time.Minute
	}
	uc.cacheTTL = ttl
}

// EvaluateParams selects the symbol and history depth for one run.
type EvaluateParams struct {
	Symbol      string
	HistoryBars int
}

// Evaluate runs every model over the symbol's data. Individual model
// degradation never fails the run; zero valid contributions yields a
// neutral fallback consensus.
func (uc *EnsembleUseCase) Evaluate(ctx context.Context, p EvaluateParams) (*models.ConsensusResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.HistoryBars <= 0 {
		p.HistoryBars = 600
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	cacheKey := "ensemble:consensus:" + p.Symbol
	if uc.cache != nil {
		var cached models.ConsensusResult
		err := uc.cache.Get(ctx, cacheKey, &cached)
		if uc.metrics != nil {
			uc.metrics.RecordCacheLookup(err == nil)
		}
		if err == nil {
			return &cached, nil
		}
	}

	res := &models.ConsensusResult{
		Outcome:   models.OK(),
		Symbol:    p.Symbol,
		Timestamp: time.Now(),
		Errors:    map[string]string{},
	}

	prices, err := uc.market.GetPriceSeries(ctx, p.Symbol, p.HistoryBars)
	if err != nil {
		res.Errors["market_data"] = err.Error()
	}
	fundamentals, err := uc.fund.GetSnapshot(ctx, p.Symbol)
	if err != nil {
		res.Errors["fundamentals"] = err.Error()
		fundamentals = models.NewFundamentalSnapshot(p.Symbol)
	}
	var flowSeries models.FlowSeries
	if uc.flows != nil {
		flowSeries, err = uc.flows.GetFlowSeries(ctx, p.Symbol, p.HistoryBars)
		if err != nil {
			res.Errors["flows"] = err.Error()
		}
	}
	lastClose := prices.LastClose()

	type item struct {
		result models.UnifiedResult
		reason string
	}
	runs := []struct {
		name string
		fn   func() (models.UnifiedResult, models.Outcome)
	}{
		{"dcf", func() (models.UnifiedResult, models.Outcome) {
			r := uc.valuator.Valuate(ctx, p.Symbol, fundamentals, prices, models.DefaultDCFConfig())
			return models.UnifiedResult{
				Model:      "dcf",
				Value:      r.FairValuePerShare,
				Confidence: r.Confidence,
				Signal:     primarySignal(r.Signals),
				Risk:       riskFromOutcome(r.Outcome),
			}, r.Outcome
		}},
		{"factor", func() (models.UnifiedResult, models.Outcome) {
			r := uc.factor.Analyze(ctx, p.Symbol, fundamentals, models.DefaultFactorConfig())
			return models.UnifiedResult{
				Model:      "factor",
				Value:      lastClose * (1 + r.ExpectedReturn5F),
				Confidence: r.Confidence,
				Signal:     primarySignal(r.Signals),
				Risk:       riskFromOutcome(r.Outcome),
			}, r.Outcome
		}},
		{"arima", func() (models.UnifiedResult, models.Outcome) {
			r := uc.forecaster.Forecast(ctx, p.Symbol, prices, models.DefaultARIMAConfig())
			value := 0.0
			if len(r.Forecast) > 0 {
				value = r.Forecast[len(r.Forecast)-1]
			}
			return models.UnifiedResult{
				Model:      "arima",
				Value:      value,
				Confidence: r.Confidence,
				Signal:     primarySignal(r.Signals),
				Risk:       riskFromOutcome(r.Outcome),
			}, r.Outcome
		}},
		{"ichimoku", func() (models.UnifiedResult, models.Outcome) {
			r := uc.pattern.Analyze(ctx, p.Symbol, prices, models.DefaultIchimokuConfig())
			value := 0.0
			if n := len(r.Lines.Kijun); n > 0 {
				// the base line reads as the equilibrium price
				value = r.Lines.Kijun[n-1]
			}
			return models.UnifiedResult{
				Model:      "ichimoku",
				Value:      value,
				Confidence: r.Confidence,
				Signal:     trendSignal(r.TrendScore),
				Risk:       riskFromOutcome(r.Outcome),
			}, r.Outcome
		}},
		{"regime", func() (models.UnifiedResult, models.Outcome) {
			r := uc.regime.Classify(ctx, p.Symbol, prices, models.DefaultRegimeConfig())
			return models.UnifiedResult{
				Model:      "regime",
				Value:      lastClose, // direction-neutral level contribution
				Confidence: r.Confidence,
				Signal:     r.Signal,
				Risk:       r.Risk,
			}, r.Outcome
		}},
	}
	if len(flowSeries) > 0 && uc.flow != nil {
		runs = append(runs, struct {
			name string
			fn   func() (models.UnifiedResult, models.Outcome)
		}{"flow", func() (models.UnifiedResult, models.Outcome) {
			r := uc.flow.Analyze(ctx, p.Symbol, flowSeries, fundamentals, models.DefaultFlowConfig())
			return models.UnifiedResult{
				Model:      "flow",
				Value:      lastClose,
				Confidence: r.Confidence,
				Signal:     r.Signal,
				Risk:       riskFromOutcome(r.Outcome),
			}, r.Outcome
		}})
	}

	ch := make(chan item, len(runs))
	var wg sync.WaitGroup
	for _, run := range runs {
		wg.Add(1)
		go func(name string, fn func() (models.UnifiedResult, models.Outcome)) {
			defer wg.Done()
			start := time.Now()
			ur, outcome := fn()
			if uc.metrics != nil {
				uc.metrics.RecordComputation(name, string(outcome.Status))
				uc.metrics.RecordConfidence(name, p.Symbol, ur.Confidence)
				uc.metrics.RecordDuration(name, time.Since(start).Seconds())
			}
			reason := ""
			if outcome.Status != models.StatusOK {
				reason = outcome.Reason
			}
			ch <- item{result: ur, reason: reason}
		}(run.name, run.fn)
	}
	go func() { wg.Wait(); close(ch) }()

	var contributions []models.UnifiedResult
	for it := range ch {
		contributions = append(contributions, it.result)
		if it.reason != "" {
			res.Errors[it.result.Model] = it.reason
		}
	}

	Combine(res, contributions)
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKey, res, uc.cacheTTL); err != nil && uc.log != nil {
			uc.log.Warn("consensus cache store failed", applogger.Error(err))
		}
	}
	if uc.log != nil {
		uc.log.Info("ensemble evaluated",
			applogger.String("symbol", p.Symbol),
			applogger.Float64("value", res.Value),
			applogger.Float64("confidence", res.Confidence),
			applogger.String("signal", string(res.Signal)),
			applogger.Int("contributors", len(res.Contributors)))
	}
	return res, nil
}

// Combine folds contributions into the consensus fields of res. Invalid
// contributions (confidence at the floor or zero value) are excluded from
// the weighted average and the variance.
func Combine(res *models.ConsensusResult, contributions []models.UnifiedResult) {
	var survivors []models.UnifiedResult
	for _, c := range contributions {
		if c.Valid() {
			survivors = append(survivors, c)
		}
	}
	res.Contributors = survivors
	res.Excluded = len(contributions) - len(survivors)

	if len(survivors) == 0 {
		res.Outcome = models.Fallback("no valid model results")
		res.Signal = models.SignalHold
		res.Risk = models.RiskHigh
		res.Confidence = 0
		return
	}

	var wSum, vSum, cSum float64
	for _, c := range survivors {
		wSum += c.Confidence
		vSum += c.Value * c.Confidence
		cSum += c.Confidence * c.Confidence
	}
	res.Value = vSum / wSum
	res.Confidence = cSum / wSum

	var varSum float64
	for _, c := range survivors {
		d := c.Value - res.Value
		varSum += d * d * c.Confidence
	}
	res.Variance = varSum / wSum

	res.Signal = consensusSignal(survivors)
	res.Risk = modalRisk(survivors)
}

func primarySignal(signals []models.Signal) models.Signal {
	for _, s := range signals {
		if s.IsPrimary() {
			return s
		}
	}
	return models.SignalHold
}

func trendSignal(score float64) models.Signal {
	switch {
	case score > 0.3:
		return models.SignalBuy
	case score < -0.3:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func riskFromOutcome(o models.Outcome) models.RiskLevel {
	switch o.Status {
	case models.StatusOK:
		return models.RiskLow
	case models.StatusDegraded:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

var signalScore = map[models.Signal]float64{
	models.SignalStrongBuy:  2,
	models.SignalBuy:        1,
	models.SignalHold:       0,
	models.SignalSell:       -1,
	models.SignalStrongSell: -2,
}

func consensusSignal(survivors []models.UnifiedResult) models.Signal {
	var wSum, score float64
	for _, c := range survivors {
		score += signalScore[c.Signal] * c.Confidence
		wSum += c.Confidence
	}
	if wSum == 0 {
		return models.SignalHold
	}
	avg := score / wSum
	switch {
	case avg >= 1.5:
		return models.SignalStrongBuy
	case avg >= 0.5:
		return models.SignalBuy
	case avg <= -1.5:
		return models.SignalStrongSell
	case avg <= -0.5:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// modalRisk picks the most frequent risk label, breaking ties toward the
// higher risk.
func modalRisk(survivors []models.UnifiedResult) models.RiskLevel {
	counts := map[models.RiskLevel]int{}
	for _, c := range survivors {
		counts[c.Risk]++
	}
	best := models.RiskLow
	bestCount := -1
	for _, r := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		if counts[r] >= bestCount && counts[r] > 0 {
			if counts[r] > bestCount || rankRisk(r) > rankRisk(best) {
				best = r
				bestCount = counts[r]
			}
		}
	}
	if bestCount <= 0 {
		return models.RiskMedium
	}
	return best
}

func rankRisk(r models.RiskLevel) int {
	switch r {
	case models.RiskHigh:
		return 3
	case models.RiskMedium:
		return 2
	default:
		return 1
	}
}
