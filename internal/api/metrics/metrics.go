// Package metrics defines and registers the custom Prometheus metrics of the
// messenger API. HTTP request metrics come from the echoprometheus middleware;
// everything here is domain or storage level.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "messenger"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts registered.",
	},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "ok", "rejected" (unknown login or wrong password) or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Message metrics ───────────────────────────────────────────────────────────

var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages stored.",
	},
)

// MessagesDeliveredTotal counts messages returned by receive calls. A message
// fetched twice is counted twice.
var MessagesDeliveredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_delivered_total",
		Help:      "Total number of messages returned to recipients.",
	},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// StoreOperationDuration measures entity store backend calls.
// Labels:
//   - backend: "file", "memory", "mongo" or "redis"
//   - kind: entity kind ("users", "messages", "logins")
//   - op: "create", "get", "scan", "exists" or "delete"
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of entity store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend", "kind", "op"},
)

// StoreErrorsTotal counts failed entity store operations, including expected
// ones such as a create on an existing id.
var StoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Total number of entity store operations that returned an error.",
	},
	[]string{"backend", "kind", "op"},
)

// ObserveStoreOp records one store operation. Its signature matches
// entity.Observer.
func ObserveStoreOp(backend, kind, op string, elapsed time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, kind, op).Observe(elapsed.Seconds())
	if err != nil {
		StoreErrorsTotal.WithLabelValues(backend, kind, op).Inc()
	}
}
