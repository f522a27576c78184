package regime

import (
	"context"
	"math"
	"testing"
	"time"

	"QuantPulse/internal/domain/models"
)

func pricesFromCloses(closes []float64) models.PriceSeries {
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

// calmCloses oscillates a fraction of a percent per bar, well inside LOW.
func calmCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 * (1 + 0.001*math.Sin(float64(i)))
	}
	return out
}

// wildCloses swings several percent per bar, deep in EXTREME.
func wildCloses(n int) []float64 {
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		if i%2 == 0 {
			price *= 1.05
		} else {
			price *= 0.95
		}
		out[i] = price
	}
	return out
}

func TestTransitionMatrixRowsSumToOne(t *testing.T) {
	for _, state := range models.RegimeStates {
		row := TransitionRow(state)
		sum := 0.0
		for _, st := range models.RegimeStates {
			sum += row[st]
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("transition row for %s sums to %v, want 1", state, sum)
		}
	}
}

func TestClassifyVolBands(t *testing.T) {
	cases := []struct {
		vol  float64
		want models.RegimeState
	}{
		{0.05, models.RegimeLow},
		{0.11999, models.RegimeLow},
		{0.12, models.RegimeNormal},
		{0.19999, models.RegimeNormal},
		{0.20, models.RegimeHigh},
		{0.34999, models.RegimeHigh},
		{0.35, models.RegimeExtreme},
		{2.0, models.RegimeExtreme},
	}
	for _, tc := range cases {
		if got := ClassifyVol(tc.vol); got != tc.want {
			t.Fatalf("ClassifyVol(%v) = %s, want %s", tc.vol, got, tc.want)
		}
	}
}

func TestClassifyCalmSeries(t *testing.T) {
	svc := NewVolatilityService(nil)
	res := svc.Classify(context.Background(), "TEST", pricesFromCloses(calmCloses(120)), models.DefaultRegimeConfig())

	if res.Outcome.Status != models.StatusOK {
		t.Fatalf("status = %s (%s), want ok", res.Outcome.Status, res.Outcome.Reason)
	}
	if res.Current != models.RegimeLow {
		t.Fatalf("regime = %s, want LOW for a calm series", res.Current)
	}
	if res.Risk != models.RiskLow && res.Risk != models.RiskMedium {
		t.Fatalf("risk = %s, want Low or complacency Medium", res.Risk)
	}
	if res.Signal != models.SignalBuy {
		t.Fatalf("signal = %s, want BUY in a LOW regime", res.Signal)
	}
	if res.ExpectedDuration != 60 {
		t.Fatalf("expected duration = %d, want 60", res.ExpectedDuration)
	}
	if res.Confidence < 0.2 || res.Confidence > 0.9 {
		t.Fatalf("confidence = %v, want within [0.2, 0.9]", res.Confidence)
	}
}

func TestClassifyWildSeries(t *testing.T) {
	svc := NewVolatilityService(nil)
	res := svc.Classify(context.Background(), "TEST", pricesFromCloses(wildCloses(120)), models.DefaultRegimeConfig())

	if res.Current != models.RegimeExtreme {
		t.Fatalf("regime = %s, want EXTREME for 5%% daily swings", res.Current)
	}
	if res.Risk != models.RiskHigh {
		t.Fatalf("risk = %s, want High in EXTREME", res.Risk)
	}
	if res.ExpectedDuration != 15 {
		t.Fatalf("expected duration = %d, want 15", res.ExpectedDuration)
	}
}

func TestClassifyInsufficientHistory(t *testing.T) {
	svc := NewVolatilityService(nil)
	res := svc.Classify(context.Background(), "TEST", pricesFromCloses(calmCloses(5)), models.DefaultRegimeConfig())

	if res.Outcome.Status != models.StatusDegraded {
		t.Fatalf("status = %s, want degraded", res.Outcome.Status)
	}
	if res.Current != models.RegimeNormal {
		t.Fatalf("regime = %s, want the NORMAL default", res.Current)
	}
	if res.Confidence != 0.2 {
		t.Fatalf("confidence = %v, want 0.2", res.Confidence)
	}
}

func TestKernelProbabilityNormalized(t *testing.T) {
	for _, vol := range []float64{0.05, 0.16, 0.30, 0.60} {
		dist := kernelProbability(vol)
		sum := 0.0
		for _, st := range models.RegimeStates {
			sum += dist[st]
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("kernel probabilities for vol %v sum to %v, want 1", vol, sum)
		}
	}
	// the nearest center dominates
	dist := kernelProbability(0.08)
	for _, st := range models.RegimeStates[1:] {
		if dist[models.RegimeLow] <= dist[st] {
			t.Fatalf("p(LOW)=%v not dominant at vol 0.08 (p(%s)=%v)", dist[models.RegimeLow], st, dist[st])
		}
	}
}

func TestForecastTransitionConverges(t *testing.T) {
	fc := forecastTransition(models.RegimeLow, 5)

	if len(fc.Periods) != 5 {
		t.Fatalf("forecast periods = %d, want 5", len(fc.Periods))
	}
	for i, dist := range fc.Periods {
		sum := 0.0
		for _, st := range models.RegimeStates {
			sum += dist[st]
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("forecast period %d sums to %v, want 1", i, sum)
		}
	}
	if fc.Stability <= 0 || fc.Stability > 1 {
		t.Fatalf("stability = %v, want within (0, 1]", fc.Stability)
	}
}

func TestForecastStartsFromCurrentRegime(t *testing.T) {
	// one step from a certain state is exactly that state's matrix row
	for _, state := range models.RegimeStates {
		fc := forecastTransition(state, 3)
		row := TransitionRow(state)
		for _, st := range models.RegimeStates {
			if math.Abs(fc.Periods[0][st]-row[st]) > 1e-12 {
				t.Fatalf("first period P(%s) from %s = %v, want row value %v",
					st, state, fc.Periods[0][st], row[st])
			}
		}
	}

	svc := NewVolatilityService(nil)
	res := svc.Classify(context.Background(), "TEST", pricesFromCloses(calmCloses(120)), models.DefaultRegimeConfig())
	if res.Current != models.RegimeLow {
		t.Fatalf("regime = %s, want LOW", res.Current)
	}
	if got := res.Forecast.Periods[0][models.RegimeLow]; math.Abs(got-0.85) > 1e-12 {
		t.Fatalf("first forecast P(LOW) = %v, want 0.85", got)
	}
}

func TestRegimeSignalContrarianAtExtreme(t *testing.T) {
	if got := regimeSignal(models.RegimeExtreme, 2.5); got != models.SignalBuy {
		t.Fatalf("signal = %s, want contrarian BUY at extreme z-score", got)
	}
	if got := regimeSignal(models.RegimeExtreme, 1.0); got != models.SignalSell {
		t.Fatalf("signal = %s, want SELL in EXTREME", got)
	}
	if got := regimeSignal(models.RegimeHigh, 1.5); got != models.SignalSell {
		t.Fatalf("signal = %s, want SELL in HIGH at elevated z-score", got)
	}
}

func TestComplacencyRisk(t *testing.T) {
	if got := regimeRisk(models.RegimeLow, 0.9); got != models.RiskMedium {
		t.Fatalf("risk = %s, want Medium for a persistent LOW regime", got)
	}
	if got := regimeRisk(models.RegimeLow, 0.5); got != models.RiskLow {
		t.Fatalf("risk = %s, want Low", got)
	}
}
