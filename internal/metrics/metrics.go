package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route outcomes
const (
	OutcomeFound    = "found"
	OutcomeNoPath   = "no_path"
	OutcomeOverlap  = "overlap"
	OutcomeBadInput = "bad_input"
)

// RecordGraphBuild records a graph build and the graph size on success
func (r *Registry) RecordGraphBuild(wells, directions int, duration time.Duration, err error) {
	r.GraphBuildDuration.Observe(duration.Seconds())
	if err != nil {
		r.GraphBuildsTotal.WithLabelValues("error").Inc()
		return
	}
	r.GraphBuildsTotal.WithLabelValues("success").Inc()
	r.GraphWells.Set(float64(wells))
	r.GraphDirections.Set(float64(directions))
}

// RecordCacheLookup records a graph cache hit or miss
func (r *Registry) RecordCacheLookup(hit bool) {
	if hit {
		r.GraphCacheTotal.WithLabelValues("hit").Inc()
	} else {
		r.GraphCacheTotal.WithLabelValues("miss").Inc()
	}
}

// RecordRoute records a route request. hops is ignored unless the outcome
// is OutcomeFound.
func (r *Registry) RecordRoute(outcome string, hops int, duration time.Duration) {
	r.RoutesTotal.WithLabelValues(outcome).Inc()
	r.RouteDuration.Observe(duration.Seconds())
	if outcome == OutcomeFound {
		r.RouteHops.Observe(float64(hops))
	}
}

// RecordReconcile records a reconciliation
func (r *Registry) RecordReconcile(ambiguous, positive int) {
	r.ReconcileTotal.Inc()
	r.AmbiguousObservations.Add(float64(ambiguous))
	r.UnaccountedPositive.Set(float64(positive))
}

// RecordInference records an inference run for a variant
func (r *Registry) RecordInference(variant string, routes, used, total, ownersUnknown int, duration time.Duration, err error) {
	r.InferenceDuration.WithLabelValues(variant).Observe(duration.Seconds())
	if err != nil {
		r.InferenceRunsTotal.WithLabelValues(variant, "error").Inc()
		return
	}
	r.InferenceRunsTotal.WithLabelValues(variant, "success").Inc()
	r.InferenceRoutes.WithLabelValues(variant).Set(float64(routes))
	r.InferenceUsed.WithLabelValues(variant).Set(float64(used))
	r.InferenceTotal.WithLabelValues(variant).Set(float64(total))
	r.InferenceOwnersUnknown.WithLabelValues(variant).Set(float64(ownersUnknown))
}

// RecordScenarioSaved records a scenario write-back
func (r *Registry) RecordScenarioSaved(variant string) {
	r.ScenariosSavedTotal.WithLabelValues(variant).Inc()
}

// WriteToTextfile writes all metrics in the Prometheus text format, for
// collection by a node exporter textfile collector
func (r *Registry) WriteToTextfile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
