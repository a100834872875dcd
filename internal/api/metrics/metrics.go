// Package metrics defines and registers the custom Prometheus metrics of the
// Helios session gateway. All metrics register with the default registry on
// package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helios"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOperationsTotal counts session store operations.
// Labels:
//   - operation: "signup", "login", "logout", "update", "complete_onboarding"
//   - result: "ok" or "error"
var SessionOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Total number of session operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - target: "allow" or the redirect target (e.g. "/login")
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"target"},
)

// DuplicateSubmissionsTotal counts signup/login requests rejected because one
// was already in flight for the device.
var DuplicateSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_submissions_total",
		Help:      "Total number of rejected duplicate submissions.",
	},
	[]string{"operation"},
)

// ── Activity log metrics ──────────────────────────────────────────────────────

// EventsRecordedTotal counts session events written to the activity log.
var EventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_recorded_total",
		Help:      "Total number of session events recorded.",
	},
	[]string{"kind"},
)

// EventsErrorsTotal counts session events that failed to record.
var EventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_errors_total",
		Help:      "Total number of session events that failed to record.",
	},
	[]string{"kind"},
)

// EventsDroppedTotal counts events dropped because a worker queue was full.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_dropped_total",
		Help:      "Total number of session events dropped on a full queue.",
	},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventRecordDuration measures how long writing one event takes.
var EventRecordDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_event_record_duration_seconds",
		Help:      "Duration of writing a session event to the activity log.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
