package models

// SensitivityCell is one entry of the DCF growth/discount sensitivity grid.
type SensitivityCell struct {
	GrowthRate   float64
	DiscountRate float64
	FairValue    float64
}

// DCFScenario is a named preset run of the DCF model.
type DCFScenario struct {
	Name        string
	GrowthRate  float64
	Discount    float64
	Terminal    float64
	FairValue   float64
	Probability float64
}

// DCFMultiples holds derived valuation ratios.
type DCFMultiples struct {
	EVToRevenue      float64
	PriceToFairValue float64
}

// DCFResult is the discounted cash flow output for one symbol.
type DCFResult struct {
	Outcome Outcome
	Symbol  string

	FairValuePerShare float64
	EnterpriseValue   float64
	EquityValue       float64
	TerminalValue     float64
	ProjectedFCF      []float64
	CurrentPrice      float64
	UpsidePct         float64

	// DiscountRate is the rate actually used after the Gordon guard.
	DiscountRate float64
	Adjusted     bool

	Sensitivity       []SensitivityCell
	Scenarios         []DCFScenario
	WeightedFairValue float64
	Multiples         DCFMultiples
	ValuationZone     string

	Signals        []Signal
	Confidence     float64
	Interpretation string
}
