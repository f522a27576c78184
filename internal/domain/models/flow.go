package models

import "time"

// FlowPoint is one period of aggregate exchange in/outflow.
type FlowPoint struct {
	Timestamp time.Time
	Inflow    float64
	Outflow   float64
}

// FlowSeries is a chronological exchange flow history.
type FlowSeries []FlowPoint

// WhaleActivity is a proportional split of aggregate flow attributed to
// large holders. These are approximations in the absence of
// transaction-level data, hence the Heuristic flag.
type WhaleActivity struct {
	InflowShare       float64
	OutflowShare      float64
	LargeTxCount      int
	AccumulationScore float64
	DistributionScore float64
	Behavior          string
	Heuristic         bool
}

// InstitutionalFlow is the institutional-share approximation of flow.
type InstitutionalFlow struct {
	InflowShare  float64
	OutflowShare float64
	NetFlow      float64
	Phase        string
	Heuristic    bool
}

// ExchangeBreakdown carries simulated per-exchange figures.
type ExchangeBreakdown struct {
	Name        string
	MarketShare float64
	Inflow      float64
	Outflow     float64
	Liquidity   float64
	Heuristic   bool
}

// FlowResult is the exchange flow analysis output.
type FlowResult struct {
	Outcome Outcome
	Symbol  string

	NetFlow         float64
	InflowTrend     string
	OutflowTrend    string
	BalanceRatio    float64
	SellingPressure string
	Momentum        float64

	Whale         WhaleActivity
	Institutional InstitutionalFlow
	Exchanges     []ExchangeBreakdown

	Signal         Signal
	Confidence     float64
	Interpretation string
}
