package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoutingMetrics() {
	r.RoutesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ductnet_routes_total",
			Help: "Total number of route requests by outcome",
		},
		[]string{"outcome"},
	)

	r.RouteDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ductnet_route_duration_seconds",
			Help:    "Route search duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.RouteHops = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ductnet_route_hops",
			Help:    "Directions per found route",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)
}
