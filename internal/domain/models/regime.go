package models

// RegimeState is a discrete volatility classification bucket.
type RegimeState string

const (
	RegimeLow     RegimeState = "LOW"
	RegimeNormal  RegimeState = "NORMAL"
	RegimeHigh    RegimeState = "HIGH"
	RegimeExtreme RegimeState = "EXTREME"
)

// RegimeStates lists all states in transition matrix row order.
var RegimeStates = []RegimeState{RegimeLow, RegimeNormal, RegimeHigh, RegimeExtreme}

// RegimeDistribution is a probability vector over the four states.
type RegimeDistribution map[RegimeState]float64

// TransitionForecast is the result of iterating the current regime
// distribution through the transition matrix.
type TransitionForecast struct {
	Periods    []RegimeDistribution
	MostLikely RegimeState
	Stability  float64 // probability of remaining in the current state
}

// RegimeResult classifies current volatility and carries the forward
// transition forecast. Current-state probability and the transition rows
// are two distinct probability models on purpose.
type RegimeResult struct {
	Outcome Outcome
	Symbol  string

	Current          RegimeState
	ShortVol         float64
	LongVol          float64
	VolRatio         float64
	VolZScore        float64
	Clustering       float64
	Probability      float64
	Persistence      float64
	TransitionProbs  RegimeDistribution
	ExpectedDuration int
	Forecast         TransitionForecast

	Signal         Signal
	Confidence     float64
	Risk           RiskLevel
	Interpretation string
}
