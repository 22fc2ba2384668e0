package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportsCreatedTotal counts created reports, labeled by severity.
	ReportsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civiclens",
		Subsystem: "reports",
		Name:      "created_total",
		Help:      "Total number of reports created, labeled by severity.",
	}, []string{"severity"})

	// StatusTransitionsTotal counts triage moves, labeled by target status.
	StatusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civiclens",
		Subsystem: "reports",
		Name:      "status_transitions_total",
		Help:      "Total number of report status transitions, labeled by new status.",
	}, []string{"status"})

	// UpvoteTogglesTotal counts upvote toggles, labeled by result.
	UpvoteTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civiclens",
		Subsystem: "reports",
		Name:      "upvote_toggles_total",
		Help:      "Total number of upvote toggles, labeled by result (added/removed).",
	}, []string{"result"})

	// ClassificationsTotal counts classifier calls, labeled by outcome.
	ClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civiclens",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Total number of image classifications, labeled by outcome (issue/rejected/error).",
	}, []string{"outcome"})

	// RouteRequestsTotal counts dispatch route computations, labeled by outcome.
	RouteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civiclens",
		Subsystem: "dispatch",
		Name:      "route_requests_total",
		Help:      "Total number of route optimization requests, labeled by outcome (ok/no_route/error).",
	}, []string{"outcome"})

	// RouteDurationSeconds is end-to-end time per directions request.
	RouteDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "civiclens",
		Subsystem: "dispatch",
		Name:      "route_duration_seconds",
		Help:      "End-to-end time of a directions service request.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	})

	// ConnectedClients tracks live feed subscribers.
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "civiclens",
		Subsystem: "feed",
		Name:      "connected_clients",
		Help:      "Current number of connected websocket subscribers.",
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportsCreatedTotal,
			StatusTransitionsTotal,
			UpvoteTogglesTotal,
			ClassificationsTotal,
			RouteRequestsTotal,
			RouteDurationSeconds,
			ConnectedClients,
		)
	})
}
