package models

import "time"

// UnifiedResult is one model's contribution to the ensemble: a predicted
// value, a confidence, and its standalone signal/risk view.
type UnifiedResult struct {
	Model      string
	Value      float64
	Confidence float64
	Signal     Signal
	Risk       RiskLevel
}

// Valid reports whether the contribution should enter the consensus.
// Zero value or near-floor confidence means "model unavailable".
func (u UnifiedResult) Valid() bool {
	return u.Confidence > 0.1 && u.Value != 0
}

// ConsensusResult is the confidence-weighted combination of all valid
// contributions for one symbol.
type ConsensusResult struct {
	Outcome   Outcome
	Symbol    string
	Timestamp time.Time

	Value      float64
	Variance   float64
	Confidence float64
	Signal     Signal
	Risk       RiskLevel

	Contributors []UnifiedResult
	Excluded     int
	Errors       map[string]string
}
