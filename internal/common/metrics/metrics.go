// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RosterChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_roster_changes_total",
			Help: "Signup and unregister attempts by activity, operation and outcome",
		},
		[]string{"activity", "operation", "outcome"},
	)

	ActivityParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activity_participants",
			Help: "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_published_total",
			Help: "Roster events handed to a publisher, by sink and status",
		},
		[]string{"sink", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// HTTPRecorder feeds the HTTP collectors above from the access-log middleware.
type HTTPRecorder struct{}

func (HTTPRecorder) RecordRequest(_ context.Context, method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
