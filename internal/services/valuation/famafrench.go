package valuation

import (
	"context"
	"fmt"
	"math"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/stats"
	applogger "QuantPulse/pkg/logger"
)

// FactorService estimates Fama-French style factor loadings from
// fundamental tiers and derives 3-factor and 5-factor expected returns.
// Loadings and R-squared values are heuristic mappings, not regression
// fits, and results are flagged accordingly.
type FactorService struct {
	log *applogger.Logger
}

func NewFactorService(log *applogger.Logger) *FactorService {
	return &FactorService{log: log}
}

func (s *FactorService) Analyze(ctx context.Context, symbol string, fundamentals models.FundamentalSnapshot, cfg models.FactorConfig) (res models.FactorResult) {
	res = models.FactorResult{Symbol: symbol, Outcome: models.OK(), Heuristic: true}
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("factor analysis panicked", applogger.String("symbol", symbol), applogger.Any("panic", r))
			}
			res = fallbackFactor(symbol, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if cfg.MarketReturn == 0 && cfg.RiskFreeRate == 0 {
		cfg = models.DefaultFactorConfig()
	}

	res.Loadings = deriveLoadings(fundamentals)
	res.Premiums = estimatePremiums(cfg)

	l := res.Loadings
	p := res.Premiums
	res.ExpectedReturn3F = cfg.RiskFreeRate + l.Market*p.Market + l.Size*p.Size + l.Value*p.Value
	res.ExpectedReturn5F = res.ExpectedReturn3F + l.Profitability*p.Profitability + l.Investment*p.Investment

	if cfg.HasActualReturn {
		res.Alpha = cfg.ActualReturn - res.ExpectedReturn5F
		res.HasAlpha = true
	}

	meanAbs3 := (math.Abs(l.Market) + math.Abs(l.Size) + math.Abs(l.Value)) / 3
	meanAbs5 := (math.Abs(l.Market) + math.Abs(l.Size) + math.Abs(l.Value) + math.Abs(l.Profitability) + math.Abs(l.Investment)) / 5
	res.RSquared3F = math.Min(0.9, meanAbs3*0.6)
	res.RSquared5F = math.Min(0.95, meanAbs5*0.7)

	res.Style = classifyStyle(l)
	res.Contributions = contributions(l, p)
	res.Confidence = factorConfidence(l, res.RSquared5F)
	res.Signals = factorSignals(res)
	res.Interpretation = factorInterpretation(symbol, res)
	return res
}

// deriveLoadings maps fundamental tiers onto factor exposures,
// each clamped to [-2, 2].
func deriveLoadings(f models.FundamentalSnapshot) models.FactorLoadings {
	l := models.FactorLoadings{Market: f.LookupDefault(models.MetricBeta, 1.0)}

	marketCap := f.LookupDefault(models.MetricMarketCap, 0)
	switch {
	case marketCap <= 0:
		l.Size = 0
	case marketCap < 5e9:
		l.Size = 0.8
	case marketCap < 20e9:
		l.Size = 0.2
	default:
		l.Size = -0.3
	}

	if pb, ok := f.Lookup(models.MetricPriceToBook); ok {
		switch {
		case pb < 1:
			l.Value = 0.6
		case pb < 2:
			l.Value = 0.3
		case pb < 4:
			l.Value = -0.1
		default:
			l.Value = -0.4
		}
	}

	if roe, ok := f.Lookup(models.MetricROE); ok {
		switch {
		case roe > 0.15:
			l.Profitability = 0.5
		case roe > 0.10:
			l.Profitability = 0.2
		case roe > 0.05:
			l.Profitability = -0.1
		default:
			l.Profitability = -0.4
		}
	}

	revGrowth, hasRev := f.Lookup(models.MetricRevenueGrowth)
	earnGrowth, hasEarn := f.Lookup(models.MetricEarningsGrowth)
	if hasRev || hasEarn {
		n := 0.0
		sum := 0.0
		if hasRev {
			sum += revGrowth
			n++
		}
		if hasEarn {
			sum += earnGrowth
			n++
		}
		growth := sum / n
		switch {
		case growth > 0.15:
			l.Investment = -0.4
		case growth > 0.08:
			l.Investment = -0.1
		case growth > 0.03:
			l.Investment = 0.1
		default:
			l.Investment = 0.3
		}
	}

	l.Market = stats.Clamp(l.Market, -2, 2)
	l.Size = stats.Clamp(l.Size, -2, 2)
	l.Value = stats.Clamp(l.Value, -2, 2)
	l.Profitability = stats.Clamp(l.Profitability, -2, 2)
	l.Investment = stats.Clamp(l.Investment, -2, 2)
	return l
}

func estimatePremiums(cfg models.FactorConfig) models.FactorPremiums {
	p := models.FactorPremiums{Market: cfg.MarketReturn - cfg.RiskFreeRate}
	if p.Market > 0.05 {
		p.Size = 0.02
	} else {
		p.Size = 0.01
	}
	if cfg.Inflation < 0.03 {
		p.Value = 0.03
	} else {
		p.Value = 0.02
	}
	p.Profitability = 0.025
	p.Investment = 0.02
	return p
}

func classifyStyle(l models.FactorLoadings) string {
	size := "blend"
	if l.Size > 0.3 {
		size = "small-cap"
	} else if l.Size < -0.3 {
		size = "large-cap"
	}
	value := "core"
	if l.Value > 0.3 {
		value = "value"
	} else if l.Value < -0.3 {
		value = "growth"
	}
	return size + " " + value
}

func contributions(l models.FactorLoadings, p models.FactorPremiums) []models.FactorContribution {
	items := []struct {
		name    string
		loading float64
		premium float64
	}{
		{"market", l.Market, p.Market},
		{"size", l.Size, p.Size},
		{"value", l.Value, p.Value},
		{"profitability", l.Profitability, p.Profitability},
		{"investment", l.Investment, p.Investment},
	}
	out := make([]models.FactorContribution, 0, len(items))
	for _, it := range items {
		out = append(out, models.FactorContribution{
			Name:         it.name,
			Loading:      it.loading,
			Premium:      it.premium,
			Contribution: it.loading * it.premium,
		})
	}
	return out
}

func factorConfidence(l models.FactorLoadings, r2 float64) float64 {
	significant := 0
	extremes := 0
	for _, v := range []float64{l.Market, l.Size, l.Value, l.Profitability, l.Investment} {
		if math.Abs(v) > 0.1 {
			significant++
		}
		if math.Abs(v) > 1.5 {
			extremes++
		}
	}
	conf := 0.6 + r2*0.3 + float64(significant)/5*0.2 - float64(extremes)*0.05
	return stats.Clamp(conf, 0.3, 0.95)
}

func factorSignals(res models.FactorResult) []models.Signal {
	if !res.HasAlpha {
		return []models.Signal{models.SignalHold}
	}
	switch {
	case res.Alpha > 0.05:
		return []models.Signal{models.SignalBuy}
	case res.Alpha < -0.05:
		return []models.Signal{models.SignalSell}
	default:
		return []models.Signal{models.SignalHold}
	}
}

func factorInterpretation(symbol string, res models.FactorResult) string {
	msg := fmt.Sprintf("%s profiles as %s with 5-factor expected return %.1f%%.",
		symbol, res.Style, res.ExpectedReturn5F*100)
	if res.HasAlpha {
		msg += fmt.Sprintf(" Alpha vs the factor model is %.1f%%.", res.Alpha*100)
	}
	return msg
}

func fallbackFactor(symbol, reason string) models.FactorResult {
	return models.FactorResult{
		Outcome:        models.Fallback(reason),
		Symbol:         symbol,
		Loadings:       models.FactorLoadings{Market: 1.0},
		Heuristic:      true,
		Signals:        []models.Signal{models.SignalHold},
		Confidence:     0,
		Interpretation: "Factor analysis unavailable.",
	}
}

var _ domsvc.FactorModel = (*FactorService)(nil)
