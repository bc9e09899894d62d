// Package metrics records ledger activity with Prometheus collectors.
//
// utang runs once per command, so nothing is scraped. When a metrics file is
// configured the registry is written in the text exposition format at the
// end of the run, for node_exporter's textfile collector to pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/utang/internal/models"
)

const namespace = "utang"

// Metrics holds the collectors for one process run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	amounts      *prometheus.CounterVec
	usersCreated prometheus.Counter
	failures     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions written, by kind.",
		}, []string{"kind"}),
		amounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_magnitude_total",
			Help:      "Sum of entered magnitudes in minor currency units, by kind.",
		}, []string{"kind"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Counterparties created.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Failed ledger operations, by operation.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations, by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
	}

	m.registry.MustRegister(m.transactions, m.amounts, m.usersCreated, m.failures, m.duration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// TransactionWritten records one committed transaction.
func (m *Metrics) TransactionWritten(kind models.Kind, magnitude int64) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(string(kind)).Inc()
	m.amounts.WithLabelValues(string(kind)).Add(float64(magnitude))
}

// UserCreated records one committed user creation.
func (m *Metrics) UserCreated() {
	if m == nil {
		return
	}
	m.usersCreated.Inc()
}

// Observe records the duration of operation since start, and a failure if
// err is non-nil.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(operation).Inc()
	}
}

// WriteTextfile writes every collected metric to path, replacing the file
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
