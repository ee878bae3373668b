package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the offer matcher.
type Metrics struct {
	Matches         prometheus.Counter
	QualifiedOffers prometheus.Histogram
}

// New creates and registers all offer metrics.
func New() *Metrics {
	return &Metrics{
		Matches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthcred_offer_matches_total",
			Help: "Total number of offer match evaluations",
		}),
		QualifiedOffers: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthcred_offer_qualified_count",
			Help:    "Number of qualified offers per match evaluation",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		}),
	}
}

// RecordMatch records one match evaluation and its qualified count.
func (m *Metrics) RecordMatch(qualified int) {
	m.Matches.Inc()
	m.QualifiedOffers.Observe(float64(qualified))
}
