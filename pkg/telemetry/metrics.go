package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutboxStatusPublished = "published"
	OutboxStatusFailed    = "failed"
)

// Metrics exposes Prometheus primitives for the event outbox relay.
type Metrics struct {
	outboxDispatch     *prometheus.CounterVec
	outboxDispatchTime *prometheus.HistogramVec
	outboxBacklog      prometheus.Gauge
}

// NewMetrics registers outbox metrics on the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	outboxDispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantflow_outbox_dispatch_total",
		Help: "Outbox events handed to the event bus by status.",
	}, []string{"topic", "status"})
	outboxDispatchTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantflow_outbox_dispatch_duration_seconds",
		Help:    "Outbox batch dispatch latency.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"status"})
	outboxBacklog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tenantflow_outbox_backlog",
		Help: "Number of pending events in the outbox.",
	})

	registerer.MustRegister(outboxDispatch, outboxDispatchTime, outboxBacklog)

	return &Metrics{
		outboxDispatch:     outboxDispatch,
		outboxDispatchTime: outboxDispatchTime,
		outboxBacklog:      outboxBacklog,
	}
}

// RecordOutboxEvent counts a single event dispatch attempt.
func (m *Metrics) RecordOutboxEvent(topic, status string) {
	if m == nil {
		return
	}
	m.outboxDispatch.WithLabelValues(sanitizeLabel(topic), status).Inc()
}

// RecordOutboxBatch observes how long a relay batch took.
func (m *Metrics) RecordOutboxBatch(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.outboxDispatchTime.WithLabelValues(status).Observe(duration.Seconds())
}

// SetOutboxBacklog updates the backlog gauge.
func (m *Metrics) SetOutboxBacklog(value float64) {
	if m == nil {
		return
	}
	m.outboxBacklog.Set(value)
}

func sanitizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
