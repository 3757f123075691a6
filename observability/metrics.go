package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwall_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wishwall_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	WishesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishwall_wishes_submitted_total",
			Help: "Total wishes accepted into the moderation queue",
		},
	)

	WishesRejectedEmpty = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishwall_wishes_empty_total",
			Help: "Total submissions refused because the text was blank",
		},
	)

	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwall_moderation_actions_total",
			Help: "Total moderation decisions",
		},
		[]string{"status"}, // "approved" or "rejected"
	)

	MessagesCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishwall_messages_cleared_total",
			Help: "Total messages removed by clear-all",
		},
	)

	// Realtime metrics
	SnapshotsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwall_snapshots_delivered_total",
			Help: "Total views pushed to viewers",
		},
		[]string{"feed"},
	)

	DeliveriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwall_deliveries_dropped_total",
			Help: "Total view deliveries that failed or timed out",
		},
		[]string{"feed"},
	)

	ActiveViewers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wishwall_active_viewers",
			Help: "Viewers currently attached to a feed",
		},
		[]string{"feed"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wishwall_store_latency_seconds",
			Help:    "Document store operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"backend", "op"},
	)

	ProcessRSSBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wishwall_process_rss_bytes",
			Help: "Resident memory of the server process",
		},
	)

	ProcessCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wishwall_process_cpu_percent",
			Help: "CPU usage of the server process",
		},
	)
)

// ObserveStore records the latency of a store operation started at start.
func ObserveStore(backend, op string, start time.Time) {
	StoreLatency.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
