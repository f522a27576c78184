package valuation

import (
	"context"
	"math"
	"testing"
	"time"

	"QuantPulse/internal/domain/models"
)

func snapshot(symbol string, metrics map[string]float64) models.FundamentalSnapshot {
	return models.FundamentalSnapshot{Symbol: symbol, Metrics: metrics}
}

func series(n int, close float64) models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, n)
	for i := range out {
		out[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      close, High: close + 1, Low: close - 1, Close: close,
			Volume: 1e6,
		}
	}
	return out
}

func fullFundamentals() models.FundamentalSnapshot {
	return snapshot("TEST", map[string]float64{
		models.MetricMarketCap:         1e11,
		models.MetricRevenue:           5e10,
		models.MetricFreeCashFlow:      5e9,
		models.MetricSharesOutstanding: 1e9,
		models.MetricNetDebt:           2e9,
		models.MetricCash:              1e10,
	})
}

func TestValuateFullFundamentals(t *testing.T) {
	svc := NewDCFService(nil)
	res := svc.Valuate(context.Background(), "TEST", fullFundamentals(), series(300, 100), models.DefaultDCFConfig())

	if res.Outcome.Status != models.StatusOK {
		t.Fatalf("status = %s (%s), want ok", res.Outcome.Status, res.Outcome.Reason)
	}
	if res.FairValuePerShare <= 0 {
		t.Fatalf("fair value = %v, want positive", res.FairValuePerShare)
	}
	if len(res.ProjectedFCF) != 5 {
		t.Fatalf("projected years = %d, want 5", len(res.ProjectedFCF))
	}
	primaries := 0
	for _, s := range res.Signals {
		if s.IsPrimary() {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("primary signals = %d, want exactly 1", primaries)
	}
	if res.Confidence < 0.5 || res.Confidence > 0.95 {
		t.Fatalf("confidence = %v, want within [0.5, 0.95]", res.Confidence)
	}
	if len(res.Scenarios) != 3 {
		t.Fatalf("scenarios = %d, want 3", len(res.Scenarios))
	}
	probSum := 0.0
	for _, sc := range res.Scenarios {
		probSum += sc.Probability
	}
	if math.Abs(probSum-1) > 1e-9 {
		t.Fatalf("scenario probabilities sum to %v, want 1", probSum)
	}
	if len(res.Sensitivity) != 9 {
		t.Fatalf("sensitivity cells = %d, want 9", len(res.Sensitivity))
	}
}

func TestValuateZeroGrowthClosedForm(t *testing.T) {
	svc := NewDCFService(nil)
	cfg := models.DCFConfig{ProjectionYears: 5, GrowthRate: 0, DiscountRate: 0.10, TerminalGrowth: 0.025}
	res := svc.Valuate(context.Background(), "TEST", fullFundamentals(), series(300, 100), cfg)

	// with zero growth every projected year is the base FCF, so the PV
	// reduces to an annuity plus a discounted Gordon terminal value
	fcf := 5e9
	pvSum := 0.0
	for y := 1; y <= 5; y++ {
		pvSum += fcf / math.Pow(1.10, float64(y))
	}
	tv := fcf * 1.025 / (0.10 - 0.025)
	equity := pvSum + tv/math.Pow(1.10, 5) - 2e9 + 1e10
	want := equity / 1e9

	if math.Abs(res.FairValuePerShare-want) > 1e-6 {
		t.Fatalf("fair value = %v, want %v", res.FairValuePerShare, want)
	}
}

func TestValuateDiscountRateGuard(t *testing.T) {
	svc := NewDCFService(nil)
	cfg := models.DCFConfig{ProjectionYears: 5, GrowthRate: 0.05, DiscountRate: 0.02, TerminalGrowth: 0.025}
	res := svc.Valuate(context.Background(), "TEST", fullFundamentals(), series(100, 100), cfg)

	if !res.Adjusted {
		t.Fatalf("expected the discount rate to be adjusted")
	}
	if math.Abs(res.DiscountRate-0.045) > 1e-12 {
		t.Fatalf("discount rate = %v, want terminal + 0.02", res.DiscountRate)
	}
	if math.IsNaN(res.FairValuePerShare) || math.IsInf(res.FairValuePerShare, 0) {
		t.Fatalf("fair value = %v, want finite", res.FairValuePerShare)
	}
	if res.TerminalValue <= 0 {
		t.Fatalf("terminal value = %v, want positive", res.TerminalValue)
	}
}

func TestValuateGrowthMonotonicity(t *testing.T) {
	svc := NewDCFService(nil)
	low := models.DCFConfig{ProjectionYears: 5, GrowthRate: 0.03, DiscountRate: 0.10, TerminalGrowth: 0.025}
	high := models.DCFConfig{ProjectionYears: 5, GrowthRate: 0.08, DiscountRate: 0.10, TerminalGrowth: 0.025}

	fvLow := svc.Valuate(context.Background(), "TEST", fullFundamentals(), series(100, 100), low)
	fvHigh := svc.Valuate(context.Background(), "TEST", fullFundamentals(), series(100, 100), high)

	if fvHigh.FairValuePerShare <= fvLow.FairValuePerShare {
		t.Fatalf("fair value %v at growth 0.08 not above %v at growth 0.03",
			fvHigh.FairValuePerShare, fvLow.FairValuePerShare)
	}
}

func TestValuateFCFMonotonicity(t *testing.T) {
	svc := NewDCFService(nil)
	cfg := models.DCFConfig{ProjectionYears: 5, GrowthRate: 0.05, DiscountRate: 0.10, TerminalGrowth: 0.025}

	metrics := func(fcf float64) models.FundamentalSnapshot {
		return snapshot("TEST", map[string]float64{
			models.MetricMarketCap:         1e11,
			models.MetricRevenue:           5e10,
			models.MetricFreeCashFlow:      fcf,
			models.MetricSharesOutstanding: 1e9,
			models.MetricNetDebt:           2e9,
			models.MetricCash:              1e10,
		})
	}

	prev := 0.0
	for _, fcf := range []float64{2e9, 5e9, 8e9} {
		res := svc.Valuate(context.Background(), "TEST", metrics(fcf), series(100, 100), cfg)
		if res.FairValuePerShare <= prev {
			t.Fatalf("fair value %v at fcf %v not above %v", res.FairValuePerShare, fcf, prev)
		}
		prev = res.FairValuePerShare
	}
}

func TestSensitivityUsesConstantGrowth(t *testing.T) {
	svc := NewDCFService(nil)
	cfg := models.DCFConfig{ProjectionYears: 5, GrowthRate: 0.05, DiscountRate: 0.10, TerminalGrowth: 0.025}
	res := svc.Valuate(context.Background(), "TEST", fullFundamentals(), series(100, 100), cfg)

	// the headline valuation decays growth after year one, so the base
	// sensitivity cell and base scenario must land strictly above it
	var base *models.SensitivityCell
	for i := range res.Sensitivity {
		c := &res.Sensitivity[i]
		if c.GrowthRate == cfg.GrowthRate && c.DiscountRate == cfg.DiscountRate {
			base = c
		}
	}
	if base == nil {
		t.Fatalf("base sensitivity cell missing")
	}
	if base.FairValue <= res.FairValuePerShare {
		t.Fatalf("base cell fair value %v not above headline %v", base.FairValue, res.FairValuePerShare)
	}
	for _, sc := range res.Scenarios {
		if sc.Name == "base" && sc.FairValue <= res.FairValuePerShare {
			t.Fatalf("base scenario fair value %v not above headline %v", sc.FairValue, res.FairValuePerShare)
		}
	}
}

func TestValuateMissingShares(t *testing.T) {
	svc := NewDCFService(nil)
	res := svc.Valuate(context.Background(), "TEST",
		models.NewFundamentalSnapshot("TEST"), series(100, 100), models.DefaultDCFConfig())

	if res.Outcome.Status != models.StatusDegraded {
		t.Fatalf("status = %s, want degraded", res.Outcome.Status)
	}
	if res.FairValuePerShare != 0 {
		t.Fatalf("fair value = %v, want 0 without shares outstanding", res.FairValuePerShare)
	}
	if len(res.Signals) != 1 || res.Signals[0] != models.SignalHold {
		t.Fatalf("signals = %v, want a lone HOLD", res.Signals)
	}
	if res.Confidence != 0.1 {
		t.Fatalf("confidence = %v, want 0.1", res.Confidence)
	}
}

func TestValuationZones(t *testing.T) {
	cases := []struct {
		price, fair float64
		want        string
	}{
		{60, 100, "DEEP_VALUE"},
		{80, 100, "UNDERVALUED"},
		{100, 100, "FAIR_VALUE"},
		{120, 100, "OVERVALUED"},
		{150, 100, "EXPENSIVE"},
		{100, 0, ""},
	}
	for _, tc := range cases {
		if got := valuationZone(tc.price, tc.fair); got != tc.want {
			t.Fatalf("valuationZone(%v, %v) = %q, want %q", tc.price, tc.fair, got, tc.want)
		}
	}
}

func TestDCFSignalLadder(t *testing.T) {
	cases := []struct {
		upside float64
		want   models.Signal
	}{
		{25, models.SignalStrongBuy},
		{15, models.SignalBuy},
		{0, models.SignalHold},
		{-15, models.SignalSell},
		{-25, models.SignalStrongSell},
	}
	for _, tc := range cases {
		got := dcfSignals(tc.upside)
		if got[0] != tc.want {
			t.Fatalf("dcfSignals(%v)[0] = %s, want %s", tc.upside, got[0], tc.want)
		}
	}

	deep := dcfSignals(60)
	found := false
	for _, s := range deep {
		if s == models.SignalDeeplyUndervalued {
			found = true
		}
	}
	if !found {
		t.Fatalf("dcfSignals(60) = %v, want DEEPLY_UNDERVALUED tag", deep)
	}
}
