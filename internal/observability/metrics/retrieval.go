package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipsense/retrieval/internal/core/domain"
)

// RetrievalMetrics tracks controller outcomes and cache traffic on a
// private registry.
type RetrievalMetrics struct {
	registry *prometheus.Registry

	attempts  *prometheus.CounterVec
	fallbacks prometheus.Counter
	cacheOps  *prometheus.CounterVec
}

func NewRetrievalMetrics(service string) *RetrievalMetrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retrieval",
			Subsystem: "engine",
			Name:      "attempts_total",
			Help:      "Retrieval attempts by method and outcome.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"method", "outcome"},
	)
	fallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "retrieval",
			Subsystem: "engine",
			Name:      "vector_fallbacks_total",
			Help:      "Requests that left the lexical path for the vector one.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retrieval",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache backend operations by result.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"backend", "op", "result"},
	)

	registry.MustRegister(attempts, fallbacks, cacheOps)

	return &RetrievalMetrics{
		registry:  registry,
		attempts:  attempts,
		fallbacks: fallbacks,
		cacheOps:  cacheOps,
	}
}

func (m *RetrievalMetrics) RecordAttempt(method domain.RetrievalMethod, outcome string) {
	m.attempts.WithLabelValues(string(method), outcome).Inc()
}

func (m *RetrievalMetrics) RecordFallback() {
	m.fallbacks.Inc()
}

func (m *RetrievalMetrics) RecordOp(backend, op, result string) {
	m.cacheOps.WithLabelValues(backend, op, result).Inc()
}

// Handler exposes the registry for scraping.
func (m *RetrievalMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
