// Package metrics provides Prometheus metrics collection for the risk
// scoring service. It covers predictions, storage, the HTTP surface and
// the live dashboard feed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Prediction metrics
	Predictions       *prometheus.CounterVec   // Predictions served per model
	PredictionLatency prometheus.Histogram     // End-to-end scoring latency
	RiskScores        *prometheus.HistogramVec // Distribution of risk scores per model
	PositiveStatus    *prometheus.CounterVec   // Positive screening results per model

	// Storage metrics
	StorageErrors prometheus.Counter // Failed prediction record writes and reads

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec // Requests by route and status code
	RateLimited  prometheus.Counter     // Requests rejected by the rate limiter

	// Dashboard metrics
	WSClients prometheus.Gauge // Connected dashboard websocket clients
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served",
		}, []string{"model"}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction latency in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		RiskScores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "risk_scores",
			Help:    "Distribution of risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"model"}),
		PositiveStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "positive_status_total",
			Help: "Total number of positive screening results",
		}, []string{"model"}),
		StorageErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "storage_errors_total",
			Help: "Total number of prediction storage errors",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "code"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Number of connected dashboard clients",
		}),
	}
}
