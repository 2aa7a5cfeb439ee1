// Package metrics provides optional Prometheus instrumentation for the
// Hawkkey client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the SDK's Prometheus metrics. Attach one to a client
// via its Config; a nil Collector disables instrumentation.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthFailures    *prometheus.CounterVec
	RateLimitHits   *prometheus.CounterVec
	BudgetWarnings  prometheus.Counter
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector on a custom registry. Useful for
// testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newWith(promauto.With(reg))
}

func newWith(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hawkkey",
				Name:      "requests_total",
				Help:      "Total API requests issued by the SDK",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hawkkey",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hawkkey",
				Name:      "auth_failures_total",
				Help:      "Verify calls rejected by the service",
			},
			[]string{"reason"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hawkkey",
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected with a rate or token limit",
			},
			[]string{"kind"},
		),
		BudgetWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "hawkkey",
				Name:      "budget_warnings_total",
				Help:      "Budget warning callbacks triggered by verify",
			},
		),
	}
}

// StatusLabel returns a coarse label for a status code, keeping
// cardinality bounded.
func StatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
