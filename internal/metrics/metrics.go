// Package metrics defines the Prometheus instrumentation for the gatekeeper.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redis operations
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

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
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

// Reconciliation loop
var (
	// ReconcileTicksTotal counts completed reconciliation ticks by result
	ReconcileTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_ticks_total",
			Help: "Completed reconciliation ticks by result (ok, skipped, scan_failed)",
		},
		[]string{"result"},
	)

	// PermissionRecordsProcessed counts scanned permission records by outcome
	PermissionRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_records_processed_total",
			Help: "Permission records processed per tick by outcome",
		},
		[]string{"outcome"},
	)

	// MemberRemovalsTotal counts removal attempts by reason and status
	MemberRemovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_removals_total",
			Help: "Member removal attempts by reason and status",
		},
		[]string{"reason", "status"},
	)

	// BalanceJobsEnqueued counts balance-check job submissions by status
	BalanceJobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "balance_jobs_enqueued_total",
			Help: "Balance-check job submissions by status",
		},
		[]string{"status"},
	)
)

// Sentiment fan-out
var (
	// PubSubMessagesReceived counts inbound pub/sub messages by channel
	PubSubMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubsub_messages_received_total",
			Help: "Inbound pub/sub messages by channel",
		},
		[]string{"channel"},
	)

	// AlertsDelivered counts outbound alert deliveries by status
	AlertsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_delivered_total",
			Help: "Outbound sentiment alerts by status (sent, failed, suppressed)",
		},
		[]string{"status"},
	)
)
