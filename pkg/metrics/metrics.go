package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the ledger engine.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	DriftDetected     prometheus.Counter
	Rebuilds          prometheus.Counter
	OutboxPublished   prometheus.Counter
	OutboxFailures    prometheus.Counter
}

// New creates the collectors and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger write operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Latency of ledger write operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		DriftDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_drift_detected_total",
			Help: "Balance projections found diverged from the ledger.",
		}),
		Rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_rebuilds_total",
			Help: "Balance projection rebuilds performed.",
		}),
		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_published_total",
			Help: "Outbox events successfully published.",
		}),
		OutboxFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_failures_total",
			Help: "Outbox publish attempts that failed.",
		}),
	}

	reg.MustRegister(
		m.Operations,
		m.OperationDuration,
		m.DriftDetected,
		m.Rebuilds,
		m.OutboxPublished,
		m.OutboxFailures,
	)
	return m
}

// NewUnregistered creates collectors without registering them, for tests.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
