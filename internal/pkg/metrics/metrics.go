// Package metrics provides Prometheus metrics for the Orivyx backend
// (HTTP RED + directory sync + monitor stream). Scrapeable at /metrics;
// dashboards and alerts rely on these names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orivyx"

var (
	// HTTPRequestTotal counts requests by method, path, status (RED: rate).
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, path, and status.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDurationSeconds is request latency histogram (RED: duration).
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s
		},
		[]string{"method", "path"},
	)

	// DirectoryRefreshTotal counts full user-list refreshes by result.
	DirectoryRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_refresh_total",
			Help:      "Total directory user-list refreshes by result.",
		},
		[]string{"result"},
	)

	// DirectoryMutationsTotal counts directory mutations by action and result.
	DirectoryMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_mutations_total",
			Help:      "Total directory mutations by action and result.",
		},
		[]string{"action", "result"},
	)

	// LeadsCapturedTotal counts accepted contact-form submissions.
	LeadsCapturedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_captured_total",
			Help:      "Total leads accepted through the public contact endpoint.",
		},
	)

	// MonitorFetchTotal counts outbound monitor API calls by endpoint and result.
	MonitorFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_fetch_total",
			Help:      "Total VPS monitor API fetches by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	// WebSocketConnectionsActive is the current number of monitor stream clients.
	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections_active",
			Help:      "Number of active monitor WebSocket connections.",
		},
	)
)
