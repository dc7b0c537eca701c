package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway metrics collectors
var (
	// Authentication & Authorization

	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_auth_requests_total",
			Help: "Total number of credential resolution attempts",
		},
		[]string{"status", "method"},
	)

	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"action", "decision"},
	)

	// Telemetry Ingestion

	TelemetryReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_telemetry_readings_total",
			Help: "Total number of telemetry readings processed",
		},
		[]string{"result"},
	)

	TelemetryBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_telemetry_batch_size",
			Help:    "Number of readings per batch submission",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Health Scoring

	HealthScoresComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_health_scores_computed_total",
			Help: "Total number of network health score computations",
		},
	)

	HealthScoreValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_network_health_score",
			Help: "Last computed health score per network",
		},
		[]string{"network_id", "organization"},
	)

	// Inventory gauges (updated by the periodic collector)

	NetworksTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_networks_total",
			Help: "Total number of networks registered",
		},
		[]string{"organization", "status"},
	)

	PartnersTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_partners_total",
			Help: "Total number of partner organizations",
		},
		[]string{"status"},
	)

	// HTTP Metrics

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)
