// Package metrics defines the prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by route path and error type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by path and error type",
		},
		[]string{"path", "type"},
	)

	// HTTPRequestDuration tracks request latency by route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
)

// Rate governor metrics
var (
	// RateLimitDecisions tracks allow/deny/fail-open outcomes per policy key
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limit decisions by policy key and outcome",
		},
		[]string{"key", "outcome"},
	)
)

// Session cache metrics
var (
	// SessionCacheLookups tracks token resolution outcomes
	SessionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_cache_lookups_total",
			Help: "Session cache lookups by result (hit/miss/backfill/reject)",
		},
		[]string{"result"},
	)
)

// Energy ledger metrics
var (
	// EnergySpends tracks conditional deduction outcomes
	EnergySpends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energy_spends_total",
			Help: "Energy spend attempts by outcome (ok/insufficient/not_found/error)",
		},
		[]string{"outcome"},
	)
)

// Poll metrics
var (
	// PollVotes tracks vote recording outcomes
	PollVotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_votes_total",
			Help: "Poll vote attempts by outcome (ok/duplicate/closed)",
		},
		[]string{"outcome"},
	)

	// PollsClosed counts option rows transitioned by the expiry sweep
	PollsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_options_closed_total",
			Help: "Poll option rows closed by the expiry sweep",
		},
	)
)

// Database metrics
var (
	// DBQueryDuration tracks query latency by statement verb
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal counts failed queries by statement verb
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Database query errors by statement verb",
		},
		[]string{"query"},
	)
)

// Redis metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
