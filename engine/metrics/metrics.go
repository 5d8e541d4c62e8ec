// Package metrics provides Prometheus metrics export for the recommendation
// engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports engine metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Candidate generation metrics
	generationLatency *prometheus.HistogramVec
	generationItems   prometheus.Histogram

	// Search fan-out metrics
	searchErrors *prometheus.CounterVec

	// Embedding backend metrics
	embeddingCalls   *prometheus.CounterVec
	embeddingLatency prometheus.Histogram

	// Feedback loop metrics
	swipes        *prometheus.CounterVec
	foldConflicts prometheus.Counter
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.generationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hunterd",
			Subsystem: "engine",
			Name:      "generation_latency_seconds",
			Help:      "Candidate pool generation latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"status"},
	)

	e.generationItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hunterd",
			Subsystem: "engine",
			Name:      "generation_items",
			Help:      "Number of items stored per generation run",
			Buckets:   []float64{0, 10, 25, 50, 75, 100},
		},
	)

	e.searchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hunterd",
			Subsystem: "search",
			Name:      "errors_total",
			Help:      "Total number of failed domain search legs",
		},
		[]string{"domain"},
	)

	e.embeddingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hunterd",
			Subsystem: "embedding",
			Name:      "calls_total",
			Help:      "Total number of embedding backend calls",
		},
		[]string{"model", "status"},
	)

	e.embeddingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hunterd",
			Subsystem: "embedding",
			Name:      "latency_seconds",
			Help:      "Embedding backend request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	e.swipes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hunterd",
			Subsystem: "feedback",
			Name:      "swipes_total",
			Help:      "Total number of recorded swipes",
		},
		[]string{"direction"},
	)

	e.foldConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hunterd",
			Subsystem: "feedback",
			Name:      "fold_conflicts_total",
			Help:      "Total number of taste vector updates retried on a version conflict",
		},
	)

	registry.MustRegister(
		e.generationLatency,
		e.generationItems,
		e.searchErrors,
		e.embeddingCalls,
		e.embeddingLatency,
		e.swipes,
		e.foldConflicts,
	)

	return e
}

// RecordGeneration records one candidate generation run.
func (e *PrometheusExporter) RecordGeneration(latency time.Duration, stored int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.generationLatency.WithLabelValues(status).Observe(latency.Seconds())
	if success {
		e.generationItems.Observe(float64(stored))
	}
}

// RecordSearchError records a failed domain search leg.
func (e *PrometheusExporter) RecordSearchError(domain string) {
	e.searchErrors.WithLabelValues(domain).Inc()
}

// RecordEmbeddingCall records one embedding backend request.
func (e *PrometheusExporter) RecordEmbeddingCall(model string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.embeddingCalls.WithLabelValues(model, status).Inc()
	e.embeddingLatency.Observe(latency.Seconds())
}

// RecordSwipe records one recorded swipe with its direction.
func (e *PrometheusExporter) RecordSwipe(direction string) {
	e.swipes.WithLabelValues(direction).Inc()
}

// RecordFoldConflict records a taste vector update lost to a concurrent writer.
func (e *PrometheusExporter) RecordFoldConflict() {
	e.foldConflicts.Inc()
}

// GetHandler returns the HTTP handler for Prometheus metrics.
func (e *PrometheusExporter) GetHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
