package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	leaveTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leave_transitions_total",
			Help: "Committed leave request status changes",
		},
		[]string{"from", "to"},
	)

	leaveDecisionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leave_decision_conflicts_total",
			Help: "Decisions rejected because another decision won the race",
		},
	)

	leaveNotifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leave_notify_failures_total",
			Help: "Transition notifications that could not be handed off",
		},
	)

	outboxPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Outbox events processed by the worker",
		},
		[]string{"result"},
	)
)

// RecordTransition counts a committed transition. from is empty on creation.
func RecordTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	leaveTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordDecisionConflict() {
	leaveDecisionConflictsTotal.Inc()
}

func RecordNotifyFailure() {
	leaveNotifyFailuresTotal.Inc()
}

// RecordOutboxPublish counts a worker publish attempt; result is "sent" or
// "failed".
func RecordOutboxPublish(result string) {
	outboxPublishedTotal.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
