// Package metrics defines the Prometheus metrics for the advisor service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Alias lookup outcome label values.
const (
	OutcomeResolved = "resolved"
	OutcomeNotFound = "not_found"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Routing metrics
	RouteDecisionsTotal *prometheus.CounterVec

	// Alias resolver metrics
	AliasLookupsTotal *prometheus.CounterVec

	// Programme detection metrics
	ProgrammeDetectionsTotal *prometheus.CounterVec

	// Retrieval metrics
	RetrievalDurationSeconds *prometheus.HistogramVec
	RetrievalResultsTotal    *prometheus.CounterVec

	// Session metrics
	ActiveSessions        prometheus.Gauge
	HistoryEvictionsTotal prometheus.Counter

	// Chat endpoint metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds prometheus.Histogram

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		RouteDecisionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hive_route_decisions_total",
				Help: "Total routing decisions by query type",
			},
			[]string{"query_type"}, // structure_only, details_only, mixed, unknown
		),
		AliasLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hive_alias_lookups_total",
				Help: "Total alias resolver lookups by outcome",
			},
			[]string{"outcome"}, // resolved, not_found
		),
		ProgrammeDetectionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hive_programme_detections_total",
				Help: "Total programme detections by evidence source",
			},
			[]string{"source"}, // explicit, context, course_code, keywords, history, none
		),
		RetrievalDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hive_retrieval_duration_seconds",
				Help:    "Retrieval store search duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store"}, // structure, details
		),
		RetrievalResultsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hive_retrieval_results_total",
				Help: "Total passages returned by retrieval store",
			},
			[]string{"store"},
		),
		ActiveSessions: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "hive_active_sessions",
				Help: "Number of sessions currently held in memory",
			},
		),
		HistoryEvictionsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "hive_history_evictions_total",
				Help: "Total history turns silently evicted by the ring buffer",
			},
		),
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hive_chat_requests_total",
				Help: "Total chat requests by status",
			},
			[]string{"status"}, // ok, clarification, rate_limited, error
		),
		ChatDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hive_chat_duration_seconds",
				Help:    "End-to-end chat request duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hive_rate_limiter_dropped_total",
				Help: "Total requests dropped by rate limiting",
			},
			[]string{"scope"}, // user
		),
	}
}
