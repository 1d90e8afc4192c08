// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts upstream calls by endpoint and outcome
	// (ok, not_found, error, rejected).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_upstream_requests_total",
			Help: "Total number of upstream metadata API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movies_upstream_request_duration_seconds",
			Help:    "Duration of upstream metadata API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// ReadThrough counts read-through lookups by resource kind and result
	// (hit, miss, not_found, error).
	ReadThrough = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_readthrough_total",
			Help: "Read-through cache lookups by resource kind and result",
		},
		[]string{"kind", "result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movies_circuit_breaker_state",
			Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_http_requests_total",
			Help: "HTTP requests served, by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// PreferenceEvents counts preference events on both ends of the queue:
	// published and publish_error on the server, consumed and rejected in
	// the consumer.
	PreferenceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_preference_events_total",
			Help: "Preference change events by outcome",
		},
		[]string{"outcome"},
	)

	// ResponseCache counts redis response cache lookups (hit, miss,
	// store_error).
	ResponseCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_response_cache_total",
			Help: "Redis response cache lookups by result",
		},
		[]string{"result"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movies_rate_limited_total",
			Help: "Requests rejected by the token bucket",
		},
	)
)
