package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconcile run names.
const (
	RunCleanup = "cleanup"
	RunSync    = "sync"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ReconcileItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_items_total",
			Help: "Items handled by the cleanup and sync runs, by outcome",
		},
		[]string{"run", "outcome"},
	)

	StorageBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storage_breaker_state",
			Help: "Object store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordReconcileItem(run, outcome string) {
	ReconcileItems.WithLabelValues(run, outcome).Inc()
}

func SetStorageBreakerState(name string, state float64) {
	StorageBreakerState.WithLabelValues(name).Set(state)
}
