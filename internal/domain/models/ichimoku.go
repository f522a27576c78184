package models

// IchimokuLines are the five indicator lines plus the derived cloud
// boundaries. Forward-shifted spans are zero-padded for the displacement
// gap; consumers treat a zero as "no value yet".
type IchimokuLines struct {
	Tenkan      []float64
	Kijun       []float64
	SenkouA     []float64
	SenkouB     []float64
	Chikou      []float64
	CloudTop    []float64
	CloudBottom []float64
}

// CloudAnalysis summarizes the current cloud geometry.
type CloudAnalysis struct {
	Color     string // "bullish" or "bearish"
	Thickness float64
	Trend     string // "expanding", "contracting", "stable"
}

// ChikouAnalysis summarizes the lagging span versus historical price.
type ChikouAnalysis struct {
	Direction  string // "bullish", "bearish", "neutral"
	ClearSpace bool   // chikou at least 1% away from price
}

// MomentumAnalysis holds short-window slopes of the main lines.
type MomentumAnalysis struct {
	TenkanSlope float64
	KijunSlope  float64
	PriceSlope  float64
}

// IchimokuResult is the full five-line construction with rule-based tags.
type IchimokuResult struct {
	Outcome Outcome
	Symbol  string

	Lines IchimokuLines

	TrendScore float64 // [-1, 1], rule agreement out of 6
	Cloud      CloudAnalysis
	Chikou     ChikouAnalysis
	Momentum   MomentumAnalysis
	Support    float64
	Resistance float64

	Signals        []Signal
	Confidence     float64
	Interpretation string
}
