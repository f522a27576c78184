package timeseries

import (
	"context"
	"math"
	"testing"
	"time"

	"QuantPulse/internal/domain/models"
	"QuantPulse/pkg/cache"
)

func series(closes []float64) models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1e6,
		}
	}
	return out
}

// driftingCloses builds a gently trending series with deterministic wiggle.
func driftingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 0.2*float64(i) + 2*math.Sin(float64(i)*0.7)
	}
	return out
}

func TestForecastInsufficientHistory(t *testing.T) {
	svc := NewARIMAService(nil, nil, 0)
	res := svc.Forecast(context.Background(), "TEST", series(driftingCloses(10)), models.DefaultARIMAConfig())

	if res.Outcome.Status != models.StatusDegraded {
		t.Fatalf("status = %s, want degraded", res.Outcome.Status)
	}
	if len(res.Signals) != 1 || res.Signals[0] != models.SignalInsufficientData {
		t.Fatalf("signals = %v, want INSUFFICIENT_DATA", res.Signals)
	}
	if res.Confidence != 0.2 {
		t.Fatalf("confidence = %v, want 0.2", res.Confidence)
	}
}

func TestForecastBandsBracketPointEstimates(t *testing.T) {
	svc := NewARIMAService(nil, nil, 0)
	res := svc.Forecast(context.Background(), "TEST", series(driftingCloses(120)), models.DefaultARIMAConfig())

	if res.Outcome.Status != models.StatusOK {
		t.Fatalf("status = %s (%s), want ok", res.Outcome.Status, res.Outcome.Reason)
	}
	if len(res.Forecast) == 0 || len(res.Forecast) > 10 {
		t.Fatalf("forecast length = %d, want within (0, 10]", len(res.Forecast))
	}
	if len(res.ForecastLower) != len(res.Forecast) || len(res.ForecastUpper) != len(res.Forecast) {
		t.Fatalf("band lengths %d/%d do not match forecast length %d",
			len(res.ForecastLower), len(res.ForecastUpper), len(res.Forecast))
	}
	for i, f := range res.Forecast {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("forecast[%d] = %v, want finite", i, f)
		}
		if res.ForecastLower[i] > f || res.ForecastUpper[i] < f {
			t.Fatalf("bands [%v, %v] do not bracket forecast %v at step %d",
				res.ForecastLower[i], res.ForecastUpper[i], f, i)
		}
	}
	if res.AIC >= res.BIC+1e-9 && len(res.Residuals) > 8 {
		// BIC penalizes harder than AIC once log(n) > 2
		t.Fatalf("AIC %v not below BIC %v", res.AIC, res.BIC)
	}
}

func TestForecastHorizonCappedByHistory(t *testing.T) {
	svc := NewARIMAService(nil, nil, 0)
	res := svc.Forecast(context.Background(), "TEST", series(driftingCloses(24)), models.DefaultARIMAConfig())

	if res.Outcome.Status != models.StatusOK {
		t.Fatalf("status = %s (%s), want ok", res.Outcome.Status, res.Outcome.Reason)
	}
	if len(res.Forecast) > 6 {
		t.Fatalf("forecast length = %d, want capped at len/4 = 6", len(res.Forecast))
	}
}

func TestOrderMemoized(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	svc := NewARIMAService(nil, c, time.Minute)
	ctx := context.Background()

	res := svc.Forecast(ctx, "MEMO", series(driftingCloses(120)), models.DefaultARIMAConfig())
	if res.Outcome.Status != models.StatusOK {
		t.Fatalf("status = %s, want ok", res.Outcome.Status)
	}
	ok, err := c.Exists(ctx, "arima:order:MEMO")
	if err != nil || !ok {
		t.Fatalf("order cache entry missing after fit (ok=%v err=%v)", ok, err)
	}

	// A poisoned cache entry must win over re-selection.
	forced := models.ARIMAOrder{P: 2, D: 1, Q: 1}
	if err := c.Set(ctx, "arima:order:MEMO", forced, time.Minute); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	res = svc.Forecast(ctx, "MEMO", series(driftingCloses(120)), models.DefaultARIMAConfig())
	if res.Order != forced {
		t.Fatalf("order = %+v, want cached %+v", res.Order, forced)
	}
}

func TestStationarityOnMeanReverting(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 3*math.Sin(float64(i)*1.3)
	}
	st := stationarityTest(closes)
	if !st.Stationary {
		t.Fatalf("oscillating series classified non-stationary: %+v", st)
	}
	if !st.Heuristic {
		t.Fatalf("stationarity result should be flagged heuristic")
	}
}

func TestStationarityOnStrongTrend(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}
	st := stationarityTest(closes)
	if st.Stationary {
		t.Fatalf("trending series classified stationary: %+v", st)
	}
	if st.ADFPValue <= 0.05 {
		t.Fatalf("p-value = %v, want above 0.05 for a trend", st.ADFPValue)
	}
}

func TestBoundOrderLimits(t *testing.T) {
	cfg := models.ARIMAConfig{MaxP: 2, MaxD: 1, MaxQ: 1, ForecastHorizon: 5}
	got := boundOrder(models.ARIMAOrder{P: 9, D: 2, Q: 4}, cfg)
	if got.P != 2 || got.D != 1 || got.Q != 1 {
		t.Fatalf("bounded order = %+v, want (2,1,1)", got)
	}
	got = boundOrder(models.ARIMAOrder{P: 0, D: -1, Q: -1}, cfg)
	if got.P != 1 || got.D != 0 || got.Q != 0 {
		t.Fatalf("bounded order = %+v, want (1,0,0)", got)
	}
}
