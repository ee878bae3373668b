package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the intake service.
type Metrics struct {
	Submissions   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	UploadBytes   prometheus.Histogram
}

// New creates and registers all intake metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthcred_intake_submissions_total",
			Help: "Intake submissions by outcome",
		}, []string{"outcome"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthcred_intake_stage_duration_seconds",
			Help:    "Time spent per submission stage",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		UploadBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthcred_intake_upload_bytes",
			Help:    "Size distribution of accepted uploads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

// RecordSubmission counts one finished submission.
func (m *Metrics) RecordSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveStage records the wall time of an upload or verify stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveUploadSize records an accepted file size.
func (m *Metrics) ObserveUploadSize(bytes int64) {
	m.UploadBytes.Observe(float64(bytes))
}
