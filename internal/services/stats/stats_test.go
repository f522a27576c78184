package stats

import (
	"math"
	"testing"
)

func TestLogReturnsLength(t *testing.T) {
	rets := LogReturns([]float64{100, 110, 105})
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	want := math.Log(110.0 / 100.0)
	if math.Abs(rets[0]-want) > 1e-12 {
		t.Fatalf("unexpected first return %v", rets[0])
	}
}

func TestLogReturnsEmpty(t *testing.T) {
	if got := LogReturns(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := LogReturns([]float64{100}); got != nil {
		t.Fatalf("expected nil for single point, got %v", got)
	}
}

func TestSimpleReturnsZeroPrev(t *testing.T) {
	rets := SimpleReturns([]float64{0, 10})
	if rets[0] != 0 {
		t.Fatalf("expected 0 on zero previous close, got %v", rets[0])
	}
}

func TestStdTwoPoints(t *testing.T) {
	got := Std([]float64{1, 3})
	want := math.Sqrt(2)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("std = %v, want %v", got, want)
	}
}

func TestRollingMeanShortWindow(t *testing.T) {
	out := RollingMean([]float64{2, 4, 6, 8}, 2)
	if out[0] != 2 {
		t.Fatalf("first value should use available data, got %v", out[0])
	}
	if out[3] != 7 {
		t.Fatalf("expected trailing mean 7, got %v", out[3])
	}
}

func TestLinearRegressionPerfectLine(t *testing.T) {
	reg := LinearRegression([]float64{1, 3, 5, 7})
	if math.Abs(reg.Slope-2) > 1e-12 {
		t.Fatalf("slope = %v, want 2", reg.Slope)
	}
	if math.Abs(reg.R-1) > 1e-12 {
		t.Fatalf("r = %v, want 1", reg.R)
	}
}

func TestLinearRegressionConstant(t *testing.T) {
	reg := LinearRegression([]float64{5, 5, 5})
	if reg.Slope != 0 || reg.R != 0 {
		t.Fatalf("constant series should be flat, got %+v", reg)
	}
}

func TestAutocorrelationAlternating(t *testing.T) {
	ac := Autocorrelation([]float64{1, -1, 1, -1, 1, -1, 1, -1}, 1)
	if ac >= 0 {
		t.Fatalf("alternating series should have negative lag-1 autocorr, got %v", ac)
	}
}

func TestAnnualizedVolWindowLargerThanSeries(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.02}
	if got := AnnualizedVol(rets, 100, TradingDaysPerYear); got <= 0 {
		t.Fatalf("expected positive vol using all data, got %v", got)
	}
}

func TestEMAConverges(t *testing.T) {
	xs := make([]float64, 100)
	for i := range xs {
		xs[i] = 10
	}
	ema := EMA(xs, 12)
	if math.Abs(ema[99]-10) > 1e-9 {
		t.Fatalf("ema of constant series should converge to it, got %v", ema[99])
	}
}

func TestParseCompactNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.50B", 1.5e9, true},
		{"320M", 3.2e8, true},
		{"2T", 2e12, true},
		{"1,250K", 1.25e6, true},
		{"42", 42, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseCompactNumber(c.in)
		if ok != c.ok {
			t.Fatalf("%q: ok = %v, want %v", c.in, ok, c.ok)
		}
		if ok && math.Abs(got-c.want) > 1e-6 {
			t.Fatalf("%q: got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	got, ok := ParsePercent("2.5%")
	if !ok || math.Abs(got-0.025) > 1e-12 {
		t.Fatalf("got %v ok=%v", got, ok)
	}
	if _, ok := ParsePercent("n/a"); ok {
		t.Fatalf("expected failure on non-numeric input")
	}
}
