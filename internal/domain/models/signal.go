package models

// Signal is a discrete categorical recommendation tag derived
// deterministically from computed thresholds.
type Signal string

// Primary valuation signals.
const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// Degradation tags.
const (
	SignalInsufficientData Signal = "INSUFFICIENT_DATA"
	SignalError            Signal = "ERROR"
)

// Secondary valuation tags.
const (
	SignalDeeplyUndervalued Signal = "DEEPLY_UNDERVALUED"
	SignalDeeplyOvervalued  Signal = "DEEPLY_OVERVALUED"
	SignalFairlyValued      Signal = "FAIRLY_VALUED"
	SignalValueOpportunity  Signal = "VALUE_OPPORTUNITY"
	SignalOvervaluationRisk Signal = "OVERVALUATION_RISK"
)

// Ichimoku rule tags.
const (
	SignalTenkanKijunBullishCross Signal = "TENKAN_KIJUN_BULLISH_CROSS"
	SignalTenkanKijunBearishCross Signal = "TENKAN_KIJUN_BEARISH_CROSS"
	SignalPriceAboveKijun         Signal = "PRICE_ABOVE_KIJUN"
	SignalPriceBelowKijun         Signal = "PRICE_BELOW_KIJUN"
	SignalPriceAboveCloud         Signal = "PRICE_ABOVE_CLOUD"
	SignalPriceBelowCloud         Signal = "PRICE_BELOW_CLOUD"
	SignalPriceInCloud            Signal = "PRICE_IN_CLOUD"
	SignalBullishCloud            Signal = "BULLISH_CLOUD"
	SignalBearishCloud            Signal = "BEARISH_CLOUD"
	SignalChikouBullish           Signal = "CHIKOU_BULLISH"
	SignalChikouBearish           Signal = "CHIKOU_BEARISH"
	SignalStrongBullishTrend      Signal = "STRONG_BULLISH_TREND"
	SignalStrongBearishTrend      Signal = "STRONG_BEARISH_TREND"
)

// IsPrimary reports whether s is one of the five primary valuation signals.
func (s Signal) IsPrimary() bool {
	switch s {
	case SignalStrongBuy, SignalBuy, SignalHold, SignalSell, SignalStrongSell:
		return true
	}
	return false
}

// RiskLevel is a qualitative risk label attached to model results.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)
