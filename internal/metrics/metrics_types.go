// Package metrics exposes ductnet engine metrics through Prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Graph Metrics
	GraphBuildsTotal   *prometheus.CounterVec
	GraphBuildDuration prometheus.Histogram
	GraphCacheTotal    *prometheus.CounterVec
	GraphWells         prometheus.Gauge
	GraphDirections    prometheus.Gauge

	// Routing Metrics
	RoutesTotal   *prometheus.CounterVec
	RouteDuration prometheus.Histogram
	RouteHops     prometheus.Histogram

	// Inventory Metrics
	ReconcileTotal        prometheus.Counter
	AmbiguousObservations prometheus.Counter
	UnaccountedPositive   prometheus.Gauge

	// Inference Metrics
	InferenceRunsTotal     *prometheus.CounterVec
	InferenceDuration      *prometheus.HistogramVec
	InferenceRoutes        *prometheus.GaugeVec
	InferenceUsed          *prometheus.GaugeVec
	InferenceTotal         *prometheus.GaugeVec
	ScenariosSavedTotal    *prometheus.CounterVec
	InferenceOwnersUnknown *prometheus.GaugeVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initGraphMetrics()
	r.initRoutingMetrics()
	r.initInventoryMetrics()
	r.initInferenceMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
