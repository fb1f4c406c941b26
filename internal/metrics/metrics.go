// Package metrics provides Prometheus metrics for BreachWatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "breachwatch"
)

// Provider metrics
var (
	// ProviderRequestsTotal counts provider API requests by endpoint and
	// status class ("2xx", "4xx", "5xx", "error").
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total requests issued to the breach intelligence provider",
		},
		[]string{"endpoint", "status"},
	)

	// ProviderWaitSeconds tracks time spent blocked on the pacing limiter.
	ProviderWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "wait_seconds",
			Help:      "Time spent waiting on the provider rate limiter",
			Buckets:   []float64{.001, .01, .1, .25, .5, 1, 2, 5},
		},
	)
)

// Monitoring engine metrics
var (
	// ChecksTotal counts address checks by outcome ("ok", "not_found",
	// "error").
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "checks_total",
			Help:      "Total monitored address checks by outcome",
		},
		[]string{"outcome"},
	)

	// NewBreachesTotal counts new-exposure transitions detected.
	NewBreachesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "new_breaches_total",
			Help:      "Total new breach exposures detected",
		},
	)

	// BatchDuration tracks full batch run duration.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "batch_duration_seconds",
			Help:      "Duration of full batch runs in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)

	// AddressesMonitored tracks the number of monitored addresses.
	AddressesMonitored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "addresses",
			Help:      "Number of monitored addresses",
		},
	)
)

// Notification metrics
var (
	// NotificationsTotal counts notification deliveries by channel and
	// status ("sent", "failed", "rate_limited").
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "notifications_total",
			Help:      "Total breach notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)
