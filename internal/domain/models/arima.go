package models

// ARIMAOrder is the (p, d, q) tuple selected for a fit.
type ARIMAOrder struct {
	P int
	D int
	Q int
}

// StationarityTest mirrors the shape of an ADF-style test. Heuristic is set
// when the statistics come from the variance ratio approximation rather
// than a full unit-root procedure.
type StationarityTest struct {
	ADFStatistic float64
	ADFPValue    float64
	Stationary   bool
	Heuristic    bool
}

// LjungBoxTest is a residual autocorrelation check placeholder.
type LjungBoxTest struct {
	Statistic float64
	PValue    float64
	Heuristic bool
}

// ARIMAResult carries the fitted model and its fixed-horizon forecast.
type ARIMAResult struct {
	Outcome Outcome
	Symbol  string

	Order        ARIMAOrder
	Stationarity StationarityTest

	FittedValues []float64
	Residuals    []float64
	AIC          float64
	BIC          float64
	LjungBox     LjungBoxTest

	Forecast      []float64
	ForecastLower []float64
	ForecastUpper []float64
	ForecastSE    float64

	Signals        []Signal
	Confidence     float64
	Interpretation string
}
