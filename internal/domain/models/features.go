package models

// FeatureMatrix is the engineered feature table for a price series.
// Rows align with Timestamps; warm-up bars with incomplete features are
// dropped before the matrix is returned.
type FeatureMatrix struct {
	Names      []string
	Rows       [][]float64
	Target     []float64
	StartIndex int // index into the source series of the first retained row
}

// NumRows returns the number of feature rows.
func (m FeatureMatrix) NumRows() int { return len(m.Rows) }

// NumFeatures returns the number of feature columns.
func (m FeatureMatrix) NumFeatures() int { return len(m.Names) }

// SequenceSet is the windowed (X, y) pair set for sequence models.
// X[i] is a SequenceLength window of feature rows and Y[i] the target
// ForecastHorizon steps after the window end.
type SequenceSet struct {
	X [][][]float64
	Y []float64
}
