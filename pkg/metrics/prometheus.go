package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	computations *prometheus.CounterVec
	confidence   *prometheus.GaugeVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		computations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_computations_total",
				Help: "Model computations by completion status",
			},
			[]string{"model", "status"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantpulse_last_confidence",
				Help: "Confidence of the last computation per model and symbol",
			},
			[]string{"model", "symbol"},
		),
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantpulse_computation_duration_seconds",
				Help:    "Duration of model computations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantpulse_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordComputation counts one model run with its outcome status.
func (r *Recorder) RecordComputation(model, status string) {
	r.computations.WithLabelValues(model, status).Inc()
}

// RecordConfidence records the confidence of the latest run.
func (r *Recorder) RecordConfidence(model, symbol string, confidence float64) {
	r.confidence.WithLabelValues(model, symbol).Set(confidence)
}

// RecordDuration records computation latency in seconds.
func (r *Recorder) RecordDuration(model string, seconds float64) {
	r.duration.WithLabelValues(model).Observe(seconds)
}

// RecordCacheLookup counts a cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}
