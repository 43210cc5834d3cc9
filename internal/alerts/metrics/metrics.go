package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SourceFetchDuration *prometheus.HistogramVec
	SourceFailures      *prometheus.CounterVec
	FeedSize            prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		SourceFetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "machsafe_alerts_source_fetch_duration_seconds",
			Help:    "Latency of alert source queries, per source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}),
		SourceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "machsafe_alerts_source_failures_total",
			Help: "Total number of failed alert source queries, per source",
		}, []string{"source"}),
		FeedSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "machsafe_alerts_feed_size",
			Help:    "Number of alerts returned per aggregated feed",
			Buckets: []float64{0, 5, 10, 20, 30, 40},
		}),
	}
}

func (m *Metrics) ObserveFetch(source string, d time.Duration) {
	m.SourceFetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) IncrementFailures(source string) {
	m.SourceFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveFeedSize(n int) {
	m.FeedSize.Observe(float64(n))
}
