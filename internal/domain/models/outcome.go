package models

// Status describes how a model call concluded. A model never returns an
// error to its caller; failure is encoded here and in the result fields.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFallback Status = "fallback"
)

// Outcome tags a result with its completion status. Degraded means the
// model ran with reduced quality (short history, missing inputs); Fallback
// means the computation failed internally and the result carries neutral
// placeholder values.
type Outcome struct {
	Status Status
	Reason string
}

func OK() Outcome { return Outcome{Status: StatusOK} }

func Degraded(reason string) Outcome {
	return Outcome{Status: StatusDegraded, Reason: reason}
}

func Fallback(reason string) Outcome {
	return Outcome{Status: StatusFallback, Reason: reason}
}

// Usable reports whether the result represents a real computation.
func (o Outcome) Usable() bool { return o.Status != StatusFallback }
