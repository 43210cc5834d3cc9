package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics make the recorder's swallowed failures observable by monitoring.
// The caller never sees a write fail; these counters are where the truth goes.
type Metrics struct {
	WritesTotal        prometheus.Counter
	WriteFailuresTotal prometheus.Counter
	DroppedTotal       prometheus.Counter
	BufferDepth        prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		WritesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "machsafe_audit_writes_total",
			Help: "Total number of audit events persisted",
		}),
		WriteFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "machsafe_audit_write_failures_total",
			Help: "Total number of audit store writes that failed after retry",
		}),
		DroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "machsafe_audit_dropped_total",
			Help: "Total number of audit events dropped from a full buffer",
		}),
		BufferDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "machsafe_audit_buffer_depth",
			Help: "Current number of audit events waiting to be persisted",
		}),
	}
}

func (m *Metrics) IncrementWrites()        { m.WritesTotal.Inc() }
func (m *Metrics) IncrementWriteFailures() { m.WriteFailuresTotal.Inc() }
func (m *Metrics) IncrementDropped()       { m.DroppedTotal.Inc() }
func (m *Metrics) SetBufferDepth(n int)    { m.BufferDepth.Set(float64(n)) }
