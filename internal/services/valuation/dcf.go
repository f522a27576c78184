package valuation

import (
	"context"
	"fmt"
	"math"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	applogger "QuantPulse/pkg/logger"
)

// DCFService values a symbol by discounted cash flow with decaying growth
// and a Gordon Growth terminal value.
type DCFService struct {
	log *applogger.Logger
}

func NewDCFService(log *applogger.Logger) *DCFService {
	return &DCFService{log: log}
}

// Valuate runs the full DCF pipeline: projection, terminal value,
// sensitivity grid, scenario blend, and signal derivation. It never
// returns an error; failure is encoded in the result Outcome.
func (s *DCFService) Valuate(ctx context.Context, symbol string, fundamentals models.FundamentalSnapshot, prices models.PriceSeries, cfg models.DCFConfig) (res models.DCFResult) {
	res = models.DCFResult{Symbol: symbol, Outcome: models.OK()}
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("dcf valuation panicked", applogger.String("symbol", symbol), applogger.Any("panic", r))
			}
			res = fallbackDCF(symbol, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if cfg.ProjectionYears <= 0 {
		cfg = models.DefaultDCFConfig()
	}

	// Gordon Growth requires discount > terminal growth strictly.
	if cfg.DiscountRate <= cfg.TerminalGrowth {
		adjusted := cfg.TerminalGrowth + 0.02
		if s.log != nil {
			s.log.Warn("discount rate at or below terminal growth, adjusting",
				applogger.String("symbol", symbol),
				applogger.Float64("discount_rate", cfg.DiscountRate),
				applogger.Float64("adjusted", adjusted))
		}
		cfg.DiscountRate = adjusted
		res.Adjusted = true
	}
	res.DiscountRate = cfg.DiscountRate

	price := prices.LastClose()
	res.CurrentPrice = price

	fin, estimated := prepareFinancials(fundamentals, price)
	if estimated {
		res.Outcome = models.Degraded("fundamentals missing, estimated from price")
	}

	// Project cash flows with decaying growth.
	res.ProjectedFCF = make([]float64, 0, cfg.ProjectionYears)
	pvSum := 0.0
	fcfYear := fin.fcf
	for year := 1; year <= cfg.ProjectionYears; year++ {
		adjGrowth := cfg.GrowthRate * math.Pow(0.95, float64(year-1))
		fcfYear = fin.fcf * math.Pow(1+adjGrowth, float64(year))
		res.ProjectedFCF = append(res.ProjectedFCF, fcfYear)
		pvSum += fcfYear / math.Pow(1+cfg.DiscountRate, float64(year))
	}

	res.TerminalValue = fcfYear * (1 + cfg.TerminalGrowth) / (cfg.DiscountRate - cfg.TerminalGrowth)
	pvTerminal := res.TerminalValue / math.Pow(1+cfg.DiscountRate, float64(cfg.ProjectionYears))
	res.EnterpriseValue = pvSum + pvTerminal

	res.EquityValue = res.EnterpriseValue - fin.netDebt + fin.cash
	if res.EquityValue < 0 {
		res.EquityValue = 0
	}

	if fin.shares <= 0 {
		res.Outcome = models.Degraded("shares outstanding unavailable")
		res.Signals = []models.Signal{models.SignalHold}
		res.Confidence = 0.1
		res.Interpretation = "Fair value per share unavailable: shares outstanding missing."
		return res
	}
	res.FairValuePerShare = res.EquityValue / fin.shares

	if price > 0 {
		res.UpsidePct = (res.FairValuePerShare - price) / price * 100
	}

	res.Signals = dcfSignals(res.UpsidePct)
	res.ValuationZone = valuationZone(price, res.FairValuePerShare)
	res.Sensitivity = s.sensitivityGrid(fin, cfg)
	res.Scenarios, res.WeightedFairValue = s.scenarios(fin, cfg)
	res.Multiples = models.DCFMultiples{}
	if fin.revenue > 0 {
		res.Multiples.EVToRevenue = res.EnterpriseValue / fin.revenue
	}
	if res.FairValuePerShare > 0 {
		res.Multiples.PriceToFairValue = price / res.FairValuePerShare
	}

	res.Confidence = dcfConfidence(fundamentals, len(prices))
	res.Interpretation = dcfInterpretation(symbol, res.UpsidePct, res.FairValuePerShare)
	return res
}

type financials struct {
	fcf     float64
	revenue float64
	shares  float64
	netDebt float64
	cash    float64
}

// prepareFinancials fills missing inputs with documented estimates from
// the current price so the model still produces a shaped result.
func prepareFinancials(f models.FundamentalSnapshot, price float64) (financials, bool) {
	estimated := false
	marketCap, ok := f.Lookup(models.MetricMarketCap)
	if !ok && price > 0 {
		marketCap = price * 1e9
		estimated = true
	}
	revenue, ok := f.Lookup(models.MetricRevenue)
	if !ok {
		revenue = marketCap * 1.2
		estimated = true
	}
	fcf, ok := f.Lookup(models.MetricFreeCashFlow)
	if !ok {
		fcf = revenue * 0.15
		estimated = true
	}
	cash, ok := f.Lookup(models.MetricCash)
	if !ok {
		cash = revenue * 0.1
		estimated = true
	}
	return financials{
		fcf:     fcf,
		revenue: revenue,
		shares:  f.LookupDefault(models.MetricSharesOutstanding, 0),
		netDebt: f.LookupDefault(models.MetricNetDebt, 0),
		cash:    cash,
	}, estimated
}

// fairValue is the quick constant-growth projection used by the
// sensitivity grid and scenarios. Only the headline valuation applies
// the decaying-growth schedule.
func fairValue(fin financials, growth, discount, terminal float64, years int) float64 {
	if discount <= terminal || fin.shares <= 0 {
		return 0
	}
	pvSum := 0.0
	fcfYear := fin.fcf
	for year := 1; year <= years; year++ {
		fcfYear = fin.fcf * math.Pow(1+growth, float64(year))
		pvSum += fcfYear / math.Pow(1+discount, float64(year))
	}
	tv := fcfYear * (1 + terminal) / (discount - terminal)
	ev := pvSum + tv/math.Pow(1+discount, float64(years))
	equity := ev - fin.netDebt + fin.cash
	if equity < 0 {
		equity = 0
	}
	return equity / fin.shares
}

func (s *DCFService) sensitivityGrid(fin financials, cfg models.DCFConfig) []models.SensitivityCell {
	growths := []float64{cfg.GrowthRate - 0.02, cfg.GrowthRate, cfg.GrowthRate + 0.02}
	discounts := []float64{cfg.DiscountRate - 0.01, cfg.DiscountRate, cfg.DiscountRate + 0.01}
	cells := make([]models.SensitivityCell, 0, 9)
	for _, g := range growths {
		for _, d := range discounts {
			if d <= cfg.TerminalGrowth {
				continue
			}
			cells = append(cells, models.SensitivityCell{
				GrowthRate:   g,
				DiscountRate: d,
				FairValue:    fairValue(fin, g, d, cfg.TerminalGrowth, cfg.ProjectionYears),
			})
		}
	}
	return cells
}

func (s *DCFService) scenarios(fin financials, cfg models.DCFConfig) ([]models.DCFScenario, float64) {
	presets := []struct {
		name      string
		growthMul float64
		discAdj   float64
		termMul   float64
	}{
		{"bear", 0.5, 0.02, 0.8},
		{"base", 1.0, 0.0, 1.0},
		{"bull", 1.5, -0.01, 1.2},
	}
	out := make([]models.DCFScenario, 0, len(presets))
	weighted := 0.0
	for _, p := range presets {
		growth := cfg.GrowthRate * p.growthMul
		terminal := cfg.TerminalGrowth * p.termMul
		discount := cfg.DiscountRate + p.discAdj
		if discount <= terminal {
			discount = terminal + 0.01
		}
		fv := fairValue(fin, growth, discount, terminal, cfg.ProjectionYears)
		sc := models.DCFScenario{
			Name:        p.name,
			GrowthRate:  growth,
			Discount:    discount,
			Terminal:    terminal,
			FairValue:   fv,
			Probability: 1.0 / 3.0,
		}
		weighted += sc.FairValue * sc.Probability
		out = append(out, sc)
	}
	return out, weighted
}

func dcfSignals(upsidePct float64) []models.Signal {
	var primary models.Signal
	switch {
	case upsidePct > 20:
		primary = models.SignalStrongBuy
	case upsidePct > 10:
		primary = models.SignalBuy
	case upsidePct > -10:
		primary = models.SignalHold
	case upsidePct > -20:
		primary = models.SignalSell
	default:
		primary = models.SignalStrongSell
	}
	signals := []models.Signal{primary}
	switch {
	case upsidePct > 50:
		signals = append(signals, models.SignalDeeplyUndervalued)
	case upsidePct < -50:
		signals = append(signals, models.SignalDeeplyOvervalued)
	case math.Abs(upsidePct) < 5:
		signals = append(signals, models.SignalFairlyValued)
	}
	if upsidePct > 15 {
		signals = append(signals, models.SignalValueOpportunity)
	} else if upsidePct < -15 {
		signals = append(signals, models.SignalOvervaluationRisk)
	}
	return signals
}

func valuationZone(price, fair float64) string {
	if fair <= 0 || price <= 0 {
		return ""
	}
	ratio := price / fair
	switch {
	case ratio < 0.7:
		return "DEEP_VALUE"
	case ratio < 0.9:
		return "UNDERVALUED"
	case ratio < 1.1:
		return "FAIR_VALUE"
	case ratio < 1.3:
		return "OVERVALUED"
	default:
		return "EXPENSIVE"
	}
}

func dcfConfidence(f models.FundamentalSnapshot, bars int) float64 {
	conf := 0.5
	if _, ok := f.Lookup(models.MetricRevenue); ok {
		conf += 0.1
	}
	if _, ok := f.Lookup(models.MetricNetDebt); ok {
		conf += 0.1
	}
	if _, ok := f.Lookup(models.MetricCash); ok {
		conf += 0.1
	}
	if bars >= 252 {
		conf += 0.1
	}
	if bars >= 1260 {
		conf += 0.1
	}
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

func dcfInterpretation(symbol string, upsidePct, fair float64) string {
	switch {
	case upsidePct > 30:
		return fmt.Sprintf("%s appears significantly undervalued: fair value %.2f implies %.1f%% upside.", symbol, fair, upsidePct)
	case upsidePct > 15:
		return fmt.Sprintf("%s appears undervalued: fair value %.2f implies %.1f%% upside.", symbol, fair, upsidePct)
	case upsidePct < -30:
		return fmt.Sprintf("%s appears significantly overvalued: fair value %.2f implies %.1f%% downside.", symbol, fair, -upsidePct)
	case upsidePct < -15:
		return fmt.Sprintf("%s appears overvalued: fair value %.2f implies %.1f%% downside.", symbol, fair, -upsidePct)
	default:
		return fmt.Sprintf("%s trades near its estimated fair value of %.2f.", symbol, fair)
	}
}

func fallbackDCF(symbol, reason string) models.DCFResult {
	return models.DCFResult{
		Outcome:        models.Fallback(reason),
		Symbol:         symbol,
		Signals:        []models.Signal{models.SignalError},
		Confidence:     0,
		Interpretation: "Valuation unavailable.",
	}
}

var _ domsvc.Valuator = (*DCFService)(nil)
