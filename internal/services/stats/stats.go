package stats

import "math"

// TradingDaysPerYear is the annualization base for daily bars.
const TradingDaysPerYear = 252

// SimpleReturns computes r_t = C_t/C_{t-1} - 1.
// Returns a slice of length len(closes)-1, or nil if insufficient data.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// LogReturns computes r_t = ln(C_t / C_{t-1}).
// Returns a slice of length len(closes)-1, or nil if insufficient data.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std returns the sample standard deviation, or 0 for fewer than 2 points.
func Std(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	v := sum2 / float64(n-1)
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// Tail returns the last n elements, or all of xs when it is shorter.
func Tail(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

// RollingMean computes the trailing mean over a window. Indices before a
// full window use all available history.
func RollingMean(xs []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// RollingStd computes the trailing sample std over a window, using all
// available history before a full window.
func RollingStd(xs []float64, window int) []float64 {
	if window < 2 {
		window = 2
	}
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i + 1 - window
		if lo < 0 {
			lo = 0
		}
		out[i] = Std(xs[lo : i+1])
	}
	return out
}

// AnnualizedVol returns the annualized std of the last `window` returns.
// A window longer than the series uses all available data.
func AnnualizedVol(returns []float64, window int, periodsPerYear float64) float64 {
	w := Tail(returns, window)
	if len(w) < 2 {
		return 0
	}
	return Std(w) * math.Sqrt(periodsPerYear)
}

// Regression holds simple linear regression output over index positions.
type Regression struct {
	Slope     float64
	Intercept float64
	R         float64
}

// LinearRegression fits y against its index positions 0..n-1.
// Returns a zero Regression for fewer than 2 points or constant input.
func LinearRegression(ys []float64) Regression {
	n := len(ys)
	if n < 2 {
		return Regression{}
	}
	var sx, sy, sxx, sxy, syy float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
		syy += y * y
	}
	fn := float64(n)
	denX := fn*sxx - sx*sx
	if denX == 0 {
		return Regression{}
	}
	slope := (fn*sxy - sx*sy) / denX
	intercept := (sy - slope*sx) / fn
	denY := fn*syy - sy*sy
	r := 0.0
	if denY > 0 {
		r = (fn*sxy - sx*sy) / math.Sqrt(denX*denY)
	}
	return Regression{Slope: slope, Intercept: intercept, R: r}
}

// Autocorrelation computes the lag-k autocorrelation, or 0 when the series
// is too short or has no variance.
func Autocorrelation(xs []float64, lag int) float64 {
	n := len(xs)
	if lag <= 0 || n <= lag+1 {
		return 0
	}
	m := Mean(xs)
	var num, den float64
	for i := 0; i < n; i++ {
		d := xs[i] - m
		den += d * d
		if i >= lag {
			num += d * (xs[i-lag] - m)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// EMA computes an exponential moving average with the given period,
// seeded from the first value.
func EMA(xs []float64, period int) []float64 {
	if len(xs) == 0 || period < 1 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1)
	out := make([]float64, len(xs))
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
