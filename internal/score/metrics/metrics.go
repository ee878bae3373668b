package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the score service.
type Metrics struct {
	Updates      prometheus.Counter
	DeltaApplied prometheus.Histogram
	CASRetries   prometheus.Counter
}

// New creates and registers all score metrics.
func New() *Metrics {
	return &Metrics{
		Updates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthcred_score_updates_total",
			Help: "Total number of applied score deltas",
		}),
		DeltaApplied: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthcred_score_delta_points",
			Help:    "Distribution of applied score deltas in points",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		}),
		CASRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthcred_score_cas_retries_total",
			Help: "Number of compare-and-swap retries while applying deltas",
		}),
	}
}

// IncrementUpdates records one applied delta.
func (m *Metrics) IncrementUpdates() {
	m.Updates.Inc()
}

// ObserveDelta records the magnitude of an applied delta.
func (m *Metrics) ObserveDelta(delta int) {
	if delta < 0 {
		delta = -delta
	}
	m.DeltaApplied.Observe(float64(delta))
}

// IncrementCASRetries records a lost compare-and-swap round.
func (m *Metrics) IncrementCASRetries() {
	m.CASRetries.Inc()
}
