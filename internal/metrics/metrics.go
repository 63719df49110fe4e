// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for auth operations
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeDenied      = "denied"
	OutcomeError       = "error"
)

// Metrics contains the custom collectors for the auth service.
type Metrics struct {
	registry       *prometheus.Registry
	AuthOperations *prometheus.CounterVec
	PasswordHash   *prometheus.HistogramVec
}

// New creates a private registry with Go and process collectors and the
// service collectors registered on it.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindcare_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		PasswordHash: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mindcare_password_hash_seconds",
				Help:    "Time spent hashing or comparing passwords",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(m.AuthOperations)
	registry.MustRegister(m.PasswordHash)

	return m
}

// RecordOperation counts one auth operation. Safe on a nil receiver.
func (m *Metrics) RecordOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthOperations.WithLabelValues(operation, outcome).Inc()
}

// ObservePasswordHash records how long a hash or compare took. Safe on a nil receiver.
func (m *Metrics) ObservePasswordHash(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.PasswordHash.WithLabelValues(operation).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
