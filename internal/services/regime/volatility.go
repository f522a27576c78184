package regime

import (
	"context"
	"fmt"
	"math"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/stats"
	applogger "QuantPulse/pkg/logger"
)

// Band boundaries are lower-inclusive: [low, high).
var bandUpper = map[models.RegimeState]float64{
	models.RegimeLow:     0.12,
	models.RegimeNormal:  0.20,
	models.RegimeHigh:    0.35,
	models.RegimeExtreme: math.Inf(1),
}

// transitionMatrix rows follow models.RegimeStates order and each sums to 1.
var transitionMatrix = map[models.RegimeState][]float64{
	models.RegimeLow:     {0.85, 0.12, 0.03, 0.00},
	models.RegimeNormal:  {0.15, 0.70, 0.13, 0.02},
	models.RegimeHigh:    {0.05, 0.25, 0.60, 0.10},
	models.RegimeExtreme: {0.02, 0.08, 0.40, 0.50},
}

var expectedDurations = map[models.RegimeState]int{
	models.RegimeLow:     60,
	models.RegimeNormal:  45,
	models.RegimeHigh:    30,
	models.RegimeExtreme: 15,
}

// regimeCenters are the representative volatilities for the softmax-style
// current-state probability kernel. This is deliberately a different
// probability model than the transition matrix.
var regimeCenters = map[models.RegimeState]float64{
	models.RegimeLow:     0.08,
	models.RegimeNormal:  0.16,
	models.RegimeHigh:    0.27,
	models.RegimeExtreme: 0.45,
}

// VolatilityService classifies realized volatility into discrete regimes
// and forecasts transitions through a fixed Markov matrix.
type VolatilityService struct {
	log *applogger.Logger
}

func NewVolatilityService(log *applogger.Logger) *VolatilityService {
	return &VolatilityService{log: log}
}

func (s *VolatilityService) Classify(ctx context.Context, symbol string, prices models.PriceSeries, cfg models.RegimeConfig) (res models.RegimeResult) {
	res = models.RegimeResult{Symbol: symbol, Outcome: models.OK()}
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("regime classification panicked", applogger.String("symbol", symbol), applogger.Any("panic", r))
			}
			res = fallbackRegime(symbol, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if cfg.ShortWindow <= 0 {
		cfg = models.DefaultRegimeConfig()
	}

	returns := stats.SimpleReturns(prices.Closes())
	if len(returns) < cfg.ShortWindow {
		res.Outcome = models.Degraded("insufficient history")
		res.Current = models.RegimeNormal
		res.Signal = models.SignalHold
		res.Confidence = 0.2
		res.Risk = models.RiskMedium
		res.TransitionProbs = transitionRow(models.RegimeNormal)
		res.ExpectedDuration = expectedDurations[models.RegimeNormal]
		res.Interpretation = "Not enough history to classify a volatility regime."
		return res
	}

	res.ShortVol = stats.AnnualizedVol(returns, cfg.ShortWindow, stats.TradingDaysPerYear)
	res.LongVol = stats.AnnualizedVol(returns, cfg.LongWindow, stats.TradingDaysPerYear)
	if res.LongVol > 0 {
		res.VolRatio = res.ShortVol / res.LongVol
	} else {
		res.VolRatio = 1
	}

	res.Current = ClassifyVol(res.ShortVol)
	res.VolZScore = volZScore(returns, res.ShortVol, cfg.ShortWindow)
	res.Clustering = clustering(returns)
	res.Probability = kernelProbability(res.ShortVol)[res.Current]
	res.Persistence = persistence(returns, res.Current, cfg.ShortWindow)
	res.TransitionProbs = transitionRow(res.Current)
	res.ExpectedDuration = expectedDurations[res.Current]
	res.Forecast = forecastTransition(res.Current, cfg.ForecastPeriods)

	res.Signal = regimeSignal(res.Current, res.VolZScore)
	res.Confidence = stats.Clamp(
		res.Probability*0.6+res.Persistence*0.2+(1-math.Min(0.3, math.Abs(res.VolRatio-1)))*0.2,
		0.2, 0.9)
	res.Risk = regimeRisk(res.Current, res.Persistence)
	res.Interpretation = regimeInterpretation(symbol, res)
	return res
}

// ClassifyVol maps annualized volatility to its band, lower-inclusive.
func ClassifyVol(vol float64) models.RegimeState {
	for _, state := range models.RegimeStates {
		if vol < bandUpper[state] {
			return state
		}
	}
	return models.RegimeExtreme
}

func transitionRow(state models.RegimeState) models.RegimeDistribution {
	row := transitionMatrix[state]
	out := models.RegimeDistribution{}
	for i, st := range models.RegimeStates {
		out[st] = row[i]
	}
	return out
}

// TransitionRow exposes a copy of a matrix row for diagnostics and tests.
func TransitionRow(state models.RegimeState) models.RegimeDistribution {
	return transitionRow(state)
}

func volZScore(returns []float64, shortVol float64, window int) float64 {
	if len(returns) < 60 {
		return 0
	}
	vols := make([]float64, 0, len(returns))
	for i := 20; i <= len(returns); i++ {
		vols = append(vols, stats.AnnualizedVol(returns[:i], 20, stats.TradingDaysPerYear))
	}
	sd := stats.Std(vols)
	if sd == 0 {
		return 0
	}
	return (shortVol - stats.Mean(vols)) / sd
}

// clustering measures volatility clustering as the lag-1 autocorrelation
// of squared returns.
func clustering(returns []float64) float64 {
	sq := make([]float64, len(returns))
	for i, r := range returns {
		sq[i] = r * r
	}
	return stats.Autocorrelation(sq, 1)
}

// kernelProbability is the exponential distance kernel over regime-center
// volatilities, normalized to sum to 1.
func kernelProbability(vol float64) models.RegimeDistribution {
	out := models.RegimeDistribution{}
	total := 0.0
	for _, state := range models.RegimeStates {
		w := math.Exp(-math.Abs(vol-regimeCenters[state]) * 10)
		out[state] = w
		total += w
	}
	for state := range out {
		out[state] /= total
	}
	return out
}

// persistence is the fraction of recent rolling-window classifications
// that match the current regime.
func persistence(returns []float64, current models.RegimeState, window int) float64 {
	if len(returns) < 20 {
		return 0.5
	}
	checks := 10
	if avail := len(returns) - window; avail < checks {
		checks = avail
	}
	if checks <= 0 {
		return 0.5
	}
	matches := 0
	for i := 0; i < checks; i++ {
		end := len(returns) - i
		vol := stats.AnnualizedVol(returns[:end], window, stats.TradingDaysPerYear)
		if ClassifyVol(vol) == current {
			matches++
		}
	}
	return float64(matches) / float64(checks)
}

// forecastTransition iterates the Markov chain from a one-hot vector at
// the current regime. The kernel distribution describes where we are, the
// chain describes where we go next; the two stay separate.
func forecastTransition(current models.RegimeState, periods int) models.TransitionForecast {
	if periods < 1 {
		periods = 1
	}
	vec := make([]float64, len(models.RegimeStates))
	for i, st := range models.RegimeStates {
		if st == current {
			vec[i] = 1
		}
	}
	out := models.TransitionForecast{Periods: make([]models.RegimeDistribution, 0, periods)}
	for p := 0; p < periods; p++ {
		next := make([]float64, len(vec))
		for i, st := range models.RegimeStates {
			row := transitionMatrix[st]
			for j := range next {
				next[j] += vec[i] * row[j]
			}
		}
		vec = next
		dist := models.RegimeDistribution{}
		for i, st := range models.RegimeStates {
			dist[st] = vec[i]
		}
		out.Periods = append(out.Periods, dist)
	}
	final := out.Periods[len(out.Periods)-1]
	best := models.RegimeStates[0]
	for _, st := range models.RegimeStates {
		if final[st] > final[best] {
			best = st
		}
	}
	out.MostLikely = best
	out.Stability = final[current]
	return out
}

// regimeSignal is intentionally contrarian at the extreme: a very high
// z-score inside EXTREME reads as capitulation.
func regimeSignal(state models.RegimeState, z float64) models.Signal {
	switch state {
	case models.RegimeLow:
		return models.SignalBuy
	case models.RegimeNormal:
		if z > 0.5 {
			return models.SignalHold
		}
		return models.SignalBuy
	case models.RegimeHigh:
		if z > 1.0 {
			return models.SignalSell
		}
		return models.SignalHold
	default:
		if z > 2.0 {
			return models.SignalBuy
		}
		return models.SignalSell
	}
}

func regimeRisk(state models.RegimeState, persistence float64) models.RiskLevel {
	switch state {
	case models.RegimeExtreme:
		return models.RiskHigh
	case models.RegimeHigh:
		return models.RiskMedium
	case models.RegimeLow:
		// long calm stretches breed complacency
		if persistence > 0.8 {
			return models.RiskMedium
		}
		return models.RiskLow
	default:
		return models.RiskLow
	}
}

func regimeInterpretation(symbol string, res models.RegimeResult) string {
	return fmt.Sprintf("%s is in a %s volatility regime (%.1f%% annualized, persistence %.0f%%); expected duration about %d periods.",
		symbol, res.Current, res.ShortVol*100, res.Persistence*100, res.ExpectedDuration)
}

func fallbackRegime(symbol, reason string) models.RegimeResult {
	return models.RegimeResult{
		Outcome:          models.Fallback(reason),
		Symbol:           symbol,
		Current:          models.RegimeNormal,
		Signal:           models.SignalHold,
		Confidence:       0,
		Risk:             models.RiskHigh,
		TransitionProbs:  transitionRow(models.RegimeNormal),
		ExpectedDuration: expectedDurations[models.RegimeNormal],
		Interpretation:   "Regime classification unavailable.",
	}
}

var _ domsvc.RegimeClassifier = (*VolatilityService)(nil)
