package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Created     *prometheus.CounterVec
	MarkedRead  prometheus.Counter
	CacheLookup *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "machsafe_notifications_created_total",
			Help: "Total number of notifications created, per priority",
		}, []string{"priority"}),
		MarkedRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "machsafe_notifications_marked_read_total",
			Help: "Total number of notifications transitioned to read",
		}),
		CacheLookup: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "machsafe_notifications_unread_cache_lookups_total",
			Help: "Unread-count cache lookups, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementCreated(priority string) {
	m.Created.WithLabelValues(priority).Inc()
}

func (m *Metrics) IncrementMarkedRead(n int) {
	m.MarkedRead.Add(float64(n))
}

func (m *Metrics) IncrementCacheHit() {
	m.CacheLookup.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncrementCacheMiss() {
	m.CacheLookup.WithLabelValues("miss").Inc()
}
