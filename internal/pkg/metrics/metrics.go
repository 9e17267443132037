package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ground"

var (
	// VehiclesBusy is the number of vehicles currently reserved for a task.
	VehiclesBusy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vehicles_busy",
			Help:      "Number of vehicles currently reserved for a task.",
		},
		[]string{"kind"},
	)

	// TasksTotal counts finished task attempts.
	TasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Task attempts by terminal state.",
		},
		[]string{"kind", "outcome"}, // outcome: completed/failed
	)

	// TaskTransitions counts executor state entries.
	TaskTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_transitions_total",
			Help:      "Task executor state entries.",
		},
		[]string{"kind", "state"},
	)

	// IntakeDecisions counts how queue messages were settled.
	IntakeDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_decisions_total",
			Help:      "Queue messages by settlement (ack, requeue) and reason.",
		},
		[]string{"decision", "reason"},
	)

	HopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hops_total",
			Help:      "Hops confirmed as arrived by ground control.",
		},
		[]string{"kind"},
	)

	PermissionDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_denials_total",
			Help:      "Move permission requests that were denied or failed.",
		},
		[]string{"kind"},
	)

	TraversalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "traversal_duration_seconds",
			Help:      "Wall time of a whole route traversal.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"kind", "outcome"},
	)

	// OutboundLatency records calls to ground control, the supervisor and the other collaborators.
	OutboundLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbound_request_duration_seconds",
			Help:      "Latency of HTTP calls to external services.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		VehiclesBusy,
		TasksTotal,
		TaskTransitions,
		IntakeDecisions,
		HopsTotal,
		PermissionDenials,
		TraversalDuration,
		OutboundLatency,
	)
}
