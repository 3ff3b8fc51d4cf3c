package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors of the board.
type Metrics struct {
	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Task lifecycle
	TasksCreatedTotal    prometheus.Counter
	StatusChangesTotal   *prometheus.CounterVec
	ProgressReportsTotal prometheus.Counter
	AuthorizationDenials *prometheus.CounterVec

	// Notifications
	NotificationsTotal   *prometheus.CounterVec
	NotificationDuration prometheus.Histogram
}

// New creates and registers the collectors once per process.
//
// Metrics:
//   - taskboard_http_requests_total{method,route,code}
//   - taskboard_http_request_duration_seconds{method,route}
//   - taskboard_tasks_created_total
//   - taskboard_task_status_changes_total{status}
//   - taskboard_progress_reports_total
//   - taskboard_authorization_denials_total{operation}
//   - taskboard_notifications_total{kind,result}
//   - taskboard_notification_duration_seconds
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskboard_http_requests_total",
					Help: "Total number of handled HTTP requests",
				},
				[]string{"method", "route", "code"},
			),

			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "taskboard_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),

			TasksCreatedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "taskboard_tasks_created_total",
					Help: "Total number of created tasks",
				},
			),

			StatusChangesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskboard_task_status_changes_total",
					Help: "Total number of applied task status changes",
				},
				[]string{"status"},
			),

			ProgressReportsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "taskboard_progress_reports_total",
					Help: "Total number of appended history entries",
				},
			),

			AuthorizationDenials: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskboard_authorization_denials_total",
					Help: "Total number of operations denied to the acting user",
				},
				[]string{"operation"},
			),

			NotificationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskboard_notifications_total",
					Help: "Total number of notification attempts",
				},
				[]string{"kind", "result"}, // result: "sent", "failed", "dropped"
			),

			NotificationDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "taskboard_notification_duration_seconds",
					Help:    "Duration of notification delivery in seconds",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
				},
			),
		}
	})
	return globalMetrics
}
