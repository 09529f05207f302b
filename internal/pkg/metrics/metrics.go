// Package metrics defines and registers all custom Prometheus metrics for the
// tournament API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tournament"

// ── Auth facade ───────────────────────────────────────────────────────────────

// AuthOperationsTotal counts facade calls by outcome.
// Labels:
//   - operation: "login", "register", "validate_token", "refresh_token", ...
//   - outcome: "success" or the error kind (e.g. "invalid_credentials")
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Total number of auth facade operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// AuthOperationDuration measures facade latency including identity backend I/O.
var AuthOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "operation_duration_seconds",
		Help:      "Duration of auth facade operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Request gates ─────────────────────────────────────────────────────────────

// RequestRejectionsTotal counts requests stopped by the auth middleware.
// Label:
//   - reason: "token_missing", "token_invalid", "validation_error",
//     "unauthorized", "forbidden", "email_not_verified"
var RequestRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "request_rejections_total",
		Help:      "Total number of requests rejected by authentication or authorization middleware.",
	},
	[]string{"reason"},
)

// ── Audit trail ───────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts events discarded because a worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the dispatcher queue was full.",
	},
)
