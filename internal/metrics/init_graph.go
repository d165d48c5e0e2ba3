package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphBuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ductnet_graph_builds_total",
			Help: "Total number of network graph builds",
		},
		[]string{"status"},
	)

	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ductnet_graph_build_duration_seconds",
			Help:    "Network graph build duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	r.GraphCacheTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ductnet_graph_cache_total",
			Help: "Graph cache lookups by result",
		},
		[]string{"result"},
	)

	r.GraphWells = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ductnet_graph_wells",
			Help: "Wells in the most recently built graph",
		},
	)

	r.GraphDirections = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ductnet_graph_directions",
			Help: "Channel directions in the most recently built graph",
		},
	)
}
