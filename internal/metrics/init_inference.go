package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInventoryMetrics() {
	r.ReconcileTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ductnet_reconcile_total",
			Help: "Total number of inventory reconciliations",
		},
	)

	r.AmbiguousObservations = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ductnet_ambiguous_observations_total",
			Help: "Same-timestamp observation conflicts resolved by taking the larger count",
		},
	)

	r.UnaccountedPositive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ductnet_unaccounted_positive",
			Help: "Sum of positive unaccounted values in the last reconciliation",
		},
	)
}

func (r *Registry) initInferenceMetrics() {
	r.InferenceRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ductnet_inference_runs_total",
			Help: "Total number of inference runs",
		},
		[]string{"variant", "status"},
	)

	r.InferenceDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ductnet_inference_duration_seconds",
			Help:    "Inference run duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"variant"},
	)

	r.InferenceRoutes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ductnet_inference_routes",
			Help: "Assumed routes produced by the last run",
		},
		[]string{"variant"},
	)

	r.InferenceUsed = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ductnet_inference_used_unaccounted",
			Help: "Unaccounted units explained by the last run",
		},
		[]string{"variant"},
	)

	r.InferenceTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ductnet_inference_total_unaccounted",
			Help: "Positive unaccounted units available to the last run",
		},
		[]string{"variant"},
	)

	r.InferenceOwnersUnknown = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ductnet_inference_owners_unknown",
			Help: "Routes of the last run without a determined owner",
		},
		[]string{"variant"},
	)

	r.ScenariosSavedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ductnet_scenarios_saved_total",
			Help: "Total number of scenarios written back",
		},
		[]string{"variant"},
	)
}
