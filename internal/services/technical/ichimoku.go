package technical

import (
	"context"
	"fmt"
	"math"
	"strings"

	"QuantPulse/internal/domain/models"
	domsvc "QuantPulse/internal/domain/service"
	"QuantPulse/internal/services/stats"
	applogger "QuantPulse/pkg/logger"
)

// IchimokuService builds the five-line Ichimoku construction and derives
// rule-based crossover and cloud tags.
type IchimokuService struct {
	log *applogger.Logger
}

func NewIchimokuService(log *applogger.Logger) *IchimokuService {
	return &IchimokuService{log: log}
}

func (s *IchimokuService) Analyze(ctx context.Context, symbol string, prices models.PriceSeries, cfg models.IchimokuConfig) (res models.IchimokuResult) {
	res = models.IchimokuResult{Symbol: symbol, Outcome: models.OK()}
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("ichimoku analysis panicked", applogger.String("symbol", symbol), applogger.Any("panic", r))
			}
			res = fallbackIchimoku(symbol, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if cfg.SenkouBPeriod <= 0 {
		cfg = models.DefaultIchimokuConfig()
	}

	closes := prices.Closes()
	n := len(closes)
	if n < cfg.SenkouBPeriod {
		res.Outcome = models.Degraded("insufficient history")
		res.Lines = flatLines(closes)
		res.Signals = []models.Signal{models.SignalInsufficientData}
		res.Confidence = 0.1
		res.Interpretation = fmt.Sprintf("Need at least %d bars for a full Ichimoku construction, got %d.", cfg.SenkouBPeriod, n)
		return res
	}

	highs := prices.Highs()
	lows := prices.Lows()

	tenkan := midpointLine(highs, lows, cfg.TenkanPeriod)
	kijun := midpointLine(highs, lows, cfg.KijunPeriod)
	senkouBRaw := midpointLine(highs, lows, cfg.SenkouBPeriod)

	senkouARaw := make([]float64, n)
	for i := range senkouARaw {
		senkouARaw[i] = (tenkan[i] + kijun[i]) / 2
	}

	disp := cfg.Displacement
	res.Lines = models.IchimokuLines{
		Tenkan:  tenkan,
		Kijun:   kijun,
		SenkouA: shiftForward(senkouARaw, disp),
		SenkouB: shiftForward(senkouBRaw, disp),
		Chikou:  shiftBackward(closes, disp),
	}
	res.Lines.CloudTop = make([]float64, n)
	res.Lines.CloudBottom = make([]float64, n)
	for i := 0; i < n; i++ {
		res.Lines.CloudTop[i] = math.Max(res.Lines.SenkouA[i], res.Lines.SenkouB[i])
		res.Lines.CloudBottom[i] = math.Min(res.Lines.SenkouA[i], res.Lines.SenkouB[i])
	}

	res.Signals = deriveSignals(closes, res.Lines, disp)
	res.Confidence = math.Min(0.95, 0.3+float64(n-cfg.SenkouBPeriod)*0.01)
	res.TrendScore = trendScore(res.Signals)
	res.Cloud = analyzeCloud(res.Lines)
	res.Chikou = analyzeChikou(closes, res.Lines.Chikou, disp)
	res.Momentum = analyzeMomentum(closes, res.Lines)
	res.Support, res.Resistance = supportResistance(closes, res.Lines)
	res.Interpretation = interpret(symbol, res)
	return res
}

// midpointLine computes (period-high + period-low)/2, using all available
// history for indices before a full window.
func midpointLine(highs, lows []float64, period int) []float64 {
	out := make([]float64, len(highs))
	for i := range highs {
		lo := i + 1 - period
		if lo < 0 {
			lo = 0
		}
		hi := highs[lo]
		lw := lows[lo]
		for j := lo + 1; j <= i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lw {
				lw = lows[j]
			}
		}
		out[i] = (hi + lw) / 2
	}
	return out
}

// shiftForward moves the line `disp` periods ahead, zero-padding the gap.
func shiftForward(xs []float64, disp int) []float64 {
	out := make([]float64, len(xs))
	for i := disp; i < len(xs); i++ {
		out[i] = xs[i-disp]
	}
	return out
}

// shiftBackward moves the line `disp` periods back, zero-padding the tail.
func shiftBackward(xs []float64, disp int) []float64 {
	out := make([]float64, len(xs))
	for i := 0; i+disp < len(xs); i++ {
		out[i] = xs[i+disp]
	}
	return out
}

func flatLines(closes []float64) models.IchimokuLines {
	cp := func() []float64 { return append([]float64(nil), closes...) }
	return models.IchimokuLines{
		Tenkan: cp(), Kijun: cp(), SenkouA: cp(), SenkouB: cp(),
		Chikou: cp(), CloudTop: cp(), CloudBottom: cp(),
	}
}

func deriveSignals(closes []float64, l models.IchimokuLines, disp int) []models.Signal {
	n := len(closes)
	last := n - 1
	price := closes[last]
	var signals []models.Signal

	if n >= 2 {
		if l.Tenkan[last] > l.Kijun[last] && l.Tenkan[last-1] <= l.Kijun[last-1] {
			signals = append(signals, models.SignalTenkanKijunBullishCross)
		} else if l.Tenkan[last] < l.Kijun[last] && l.Tenkan[last-1] >= l.Kijun[last-1] {
			signals = append(signals, models.SignalTenkanKijunBearishCross)
		}
	}

	if price > l.Kijun[last] {
		signals = append(signals, models.SignalPriceAboveKijun)
	} else if price < l.Kijun[last] {
		signals = append(signals, models.SignalPriceBelowKijun)
	}

	top := l.CloudTop[last]
	bottom := l.CloudBottom[last]
	if top == 0 {
		// shift gap sentinel: no cloud yet at this index
		top = price
		bottom = price
	}
	switch {
	case price > top:
		signals = append(signals, models.SignalPriceAboveCloud)
	case price < bottom:
		signals = append(signals, models.SignalPriceBelowCloud)
	default:
		signals = append(signals, models.SignalPriceInCloud)
	}

	if l.SenkouA[last] > l.SenkouB[last] {
		signals = append(signals, models.SignalBullishCloud)
	} else if l.SenkouA[last] < l.SenkouB[last] {
		signals = append(signals, models.SignalBearishCloud)
	}

	if idx := n - 1 - disp; idx >= 0 {
		if l.Chikou[idx] > closes[idx] {
			signals = append(signals, models.SignalChikouBullish)
		} else if l.Chikou[idx] < closes[idx] {
			signals = append(signals, models.SignalChikouBearish)
		}
	}

	bull, bear := directionCounts(signals)
	if bull >= 3 {
		signals = append(signals, models.SignalStrongBullishTrend)
	} else if bear >= 3 {
		signals = append(signals, models.SignalStrongBearishTrend)
	}
	return signals
}

func directionCounts(signals []models.Signal) (bull, bear int) {
	for _, sig := range signals {
		s := string(sig)
		if strings.Contains(s, "BULLISH") || strings.Contains(s, "ABOVE") {
			bull++
		}
		if strings.Contains(s, "BEARISH") || strings.Contains(s, "BELOW") {
			bear++
		}
	}
	return bull, bear
}

func trendScore(signals []models.Signal) float64 {
	bull, bear := directionCounts(signals)
	return stats.Clamp(float64(bull-bear)/6, -1, 1)
}

func analyzeCloud(l models.IchimokuLines) models.CloudAnalysis {
	last := len(l.SenkouA) - 1
	a, b := l.SenkouA[last], l.SenkouB[last]
	out := models.CloudAnalysis{Thickness: math.Abs(a - b), Trend: "stable"}
	if a >= b {
		out.Color = "bullish"
	} else {
		out.Color = "bearish"
	}
	if last >= 5 {
		prev := math.Abs(l.SenkouA[last-5] - l.SenkouB[last-5])
		if out.Thickness > prev*1.1 {
			out.Trend = "expanding"
		} else if out.Thickness < prev*0.9 {
			out.Trend = "contracting"
		}
	}
	return out
}

func analyzeChikou(closes, chikou []float64, disp int) models.ChikouAnalysis {
	idx := len(closes) - 1 - disp
	if idx < 0 {
		return models.ChikouAnalysis{Direction: "neutral"}
	}
	past := closes[idx]
	cur := chikou[idx]
	out := models.ChikouAnalysis{Direction: "neutral"}
	if cur > past {
		out.Direction = "bullish"
	} else if cur < past {
		out.Direction = "bearish"
	}
	if past > 0 && math.Abs(cur-past)/past > 0.01 {
		out.ClearSpace = true
	}
	return out
}

func analyzeMomentum(closes []float64, l models.IchimokuLines) models.MomentumAnalysis {
	return models.MomentumAnalysis{
		TenkanSlope: stats.LinearRegression(stats.Tail(l.Tenkan, 5)).Slope,
		KijunSlope:  stats.LinearRegression(stats.Tail(l.Kijun, 5)).Slope,
		PriceSlope:  stats.LinearRegression(stats.Tail(closes, 5)).Slope,
	}
}

func supportResistance(closes []float64, l models.IchimokuLines) (support, resistance float64) {
	last := len(closes) - 1
	price := closes[last]
	levels := []float64{l.Kijun[last], l.CloudTop[last], l.CloudBottom[last]}
	for _, lv := range levels {
		if lv <= 0 {
			continue
		}
		if lv < price && lv > support {
			support = lv
		}
		if lv > price && (resistance == 0 || lv < resistance) {
			resistance = lv
		}
	}
	return support, resistance
}

func interpret(symbol string, res models.IchimokuResult) string {
	switch {
	case res.TrendScore >= 0.5:
		return fmt.Sprintf("%s shows a strong bullish Ichimoku configuration (trend score %.2f).", symbol, res.TrendScore)
	case res.TrendScore > 0:
		return fmt.Sprintf("%s leans bullish on Ichimoku (trend score %.2f).", symbol, res.TrendScore)
	case res.TrendScore <= -0.5:
		return fmt.Sprintf("%s shows a strong bearish Ichimoku configuration (trend score %.2f).", symbol, res.TrendScore)
	case res.TrendScore < 0:
		return fmt.Sprintf("%s leans bearish on Ichimoku (trend score %.2f).", symbol, res.TrendScore)
	default:
		return fmt.Sprintf("%s is in Ichimoku equilibrium.", symbol)
	}
}

func fallbackIchimoku(symbol, reason string) models.IchimokuResult {
	return models.IchimokuResult{
		Outcome:        models.Fallback(reason),
		Symbol:         symbol,
		Signals:        []models.Signal{models.SignalError},
		Confidence:     0,
		Interpretation: "Ichimoku analysis unavailable.",
	}
}

var _ domsvc.PatternAnalyzer = (*IchimokuService)(nil)
