package models

// FactorLoadings are the five style factor exposures, each clamped to [-2, 2].
type FactorLoadings struct {
	Market        float64
	Size          float64
	Value         float64
	Profitability float64
	Investment    float64
}

// FactorPremiums are the estimated per-factor return premiums.
type FactorPremiums struct {
	Market        float64
	Size          float64
	Value         float64
	Profitability float64
	Investment    float64
}

// FactorContribution attributes expected return to a single factor.
type FactorContribution struct {
	Name         string
	Loading      float64
	Premium      float64
	Contribution float64
}

// FactorResult is the factor model output. RSquared values are heuristic
// approximations proportional to loading magnitude, not fitted statistics.
type FactorResult struct {
	Outcome Outcome
	Symbol  string

	Loadings FactorLoadings
	Premiums FactorPremiums

	ExpectedReturn3F float64
	ExpectedReturn5F float64
	Alpha            float64
	HasAlpha         bool
	RSquared3F       float64
	RSquared5F       float64
	Heuristic        bool

	Style         string
	Contributions []FactorContribution

	Signals        []Signal
	Confidence     float64
	Interpretation string
}
