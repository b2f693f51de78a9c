package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the authorization service
type Metrics struct {
	// AuthzDecisionsTotal counts guard outcomes by label:
	// outcome = allowed | unauthorized | missing_org | not_a_member | forbidden | error
	AuthzDecisionsTotal *prometheus.CounterVec

	// SummaryRequestsTotal counts membership-summary fetches
	SummaryRequestsTotal prometheus.Counter

	// SummaryCacheHitsTotal counts summary responses served from the
	// server-side cache without recomputation
	SummaryCacheHitsTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers the service metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		AuthzDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stryde_authz_decisions_total",
				Help: "Total authorization guard decisions by outcome",
			},
			[]string{"outcome"},
		),
		SummaryRequestsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stryde_membership_summary_requests_total",
				Help: "Total membership summary requests",
			},
		),
		SummaryCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stryde_membership_summary_cache_hits_total",
				Help: "Membership summary requests served from cache",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.AuthzDecisionsTotal,
		m.SummaryRequestsTotal,
		m.SummaryCacheHitsTotal,
	)

	return m
}

// RecordDecision increments the decision counter for an outcome
func (m *Metrics) RecordDecision(outcome string) {
	if m == nil {
		return
	}
	m.AuthzDecisionsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the /metrics HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
