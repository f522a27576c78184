package valuation

import (
	"context"
	"math"
	"testing"

	"QuantPulse/internal/domain/models"
)

func TestAnalyzeSmallCapValue(t *testing.T) {
	svc := NewFactorService(nil)
	f := snapshot("TEST", map[string]float64{
		models.MetricBeta:          1.2,
		models.MetricMarketCap:     2e9,
		models.MetricPriceToBook:   0.8,
		models.MetricROE:           0.18,
		models.MetricRevenueGrowth: 0.20,
	})
	res := svc.Analyze(context.Background(), "TEST", f, models.DefaultFactorConfig())

	if res.Outcome.Status != models.StatusOK {
		t.Fatalf("status = %s, want ok", res.Outcome.Status)
	}
	if !res.Heuristic {
		t.Fatalf("expected the result to be flagged heuristic")
	}
	if res.Loadings.Size != 0.8 {
		t.Fatalf("size loading = %v, want 0.8 for a 2B market cap", res.Loadings.Size)
	}
	if res.Loadings.Value != 0.6 {
		t.Fatalf("value loading = %v, want 0.6 at price/book 0.8", res.Loadings.Value)
	}
	if res.Style != "small-cap value" {
		t.Fatalf("style = %q, want small-cap value", res.Style)
	}
	if res.ExpectedReturn5F <= res.ExpectedReturn3F-1e-12 && res.Loadings.Profitability > 0 {
		t.Fatalf("5F return %v below 3F return %v despite positive profitability loading",
			res.ExpectedReturn5F, res.ExpectedReturn3F)
	}
	if res.Confidence < 0.3 || res.Confidence > 0.95 {
		t.Fatalf("confidence = %v, want within [0.3, 0.95]", res.Confidence)
	}
	if len(res.Contributions) != 5 {
		t.Fatalf("contributions = %d, want 5", len(res.Contributions))
	}
}

func TestAnalyzeEmptySnapshotDefaults(t *testing.T) {
	svc := NewFactorService(nil)
	res := svc.Analyze(context.Background(), "TEST",
		models.NewFundamentalSnapshot("TEST"), models.DefaultFactorConfig())

	if res.Loadings.Market != 1.0 {
		t.Fatalf("market beta = %v, want the 1.0 default", res.Loadings.Market)
	}
	if res.Loadings.Size != 0 || res.Loadings.Value != 0 {
		t.Fatalf("loadings = %+v, want zero size and value without fundamentals", res.Loadings)
	}
	// CAPM collapse: only the market term is active
	want := 0.03 + 1.0*(0.10-0.03)
	if math.Abs(res.ExpectedReturn3F-want) > 1e-12 {
		t.Fatalf("3F return = %v, want %v", res.ExpectedReturn3F, want)
	}
}

func TestLoadingsClamped(t *testing.T) {
	f := snapshot("TEST", map[string]float64{models.MetricBeta: 7.5})
	l := deriveLoadings(f)
	if l.Market != 2 {
		t.Fatalf("market loading = %v, want clamp at 2", l.Market)
	}
}

func TestAlphaSignals(t *testing.T) {
	svc := NewFactorService(nil)
	f := snapshot("TEST", map[string]float64{models.MetricBeta: 1.0})

	cfg := models.DefaultFactorConfig()
	cfg.HasActualReturn = true
	cfg.ActualReturn = 0.50
	res := svc.Analyze(context.Background(), "TEST", f, cfg)
	if !res.HasAlpha {
		t.Fatalf("expected alpha to be populated")
	}
	if res.Signals[0] != models.SignalBuy {
		t.Fatalf("signal = %s, want BUY on strongly positive alpha", res.Signals[0])
	}

	cfg.ActualReturn = -0.50
	res = svc.Analyze(context.Background(), "TEST", f, cfg)
	if res.Signals[0] != models.SignalSell {
		t.Fatalf("signal = %s, want SELL on strongly negative alpha", res.Signals[0])
	}

	cfg.HasActualReturn = false
	res = svc.Analyze(context.Background(), "TEST", f, cfg)
	if res.HasAlpha {
		t.Fatalf("alpha should be absent without an actual return")
	}
	if res.Signals[0] != models.SignalHold {
		t.Fatalf("signal = %s, want HOLD without alpha", res.Signals[0])
	}
}

func TestRSquaredBounds(t *testing.T) {
	svc := NewFactorService(nil)
	f := snapshot("TEST", map[string]float64{
		models.MetricBeta:        2.0,
		models.MetricMarketCap:   1e9,
		models.MetricPriceToBook: 0.5,
	})
	res := svc.Analyze(context.Background(), "TEST", f, models.DefaultFactorConfig())

	if res.RSquared3F < 0 || res.RSquared3F > 0.9 {
		t.Fatalf("3F r-squared = %v, want within [0, 0.9]", res.RSquared3F)
	}
	if res.RSquared5F < 0 || res.RSquared5F > 0.95 {
		t.Fatalf("5F r-squared = %v, want within [0, 0.95]", res.RSquared5F)
	}
}
