// Package inventory reconciles physical cable counts with recorded
// occupancy.
//
// Every direction gets an UnaccountedValue: observed count minus the number
// of its slots occupied by recorded cables. Directions nobody counted stay
// unknown rather than zero.
package inventory

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"ductnet/internal/domain"
	"ductnet/internal/network"
)

// Result is the outcome of one reconciliation run
type Result struct {
	// Values holds one entry per direction of the graph, ordered by ID
	Values   []domain.UnaccountedValue
	Warnings []domain.AmbiguousObservationWarning

	index map[domain.DirectionID]int
}

// Value returns the reconciled value of a direction
func (r *Result) Value(id domain.DirectionID) (domain.UnaccountedValue, bool) {
	i, ok := r.index[id]
	if !ok {
		return domain.UnaccountedValue{}, false
	}
	return r.Values[i], true
}

// Map returns the values keyed by direction ID
func (r *Result) Map() map[domain.DirectionID]domain.UnaccountedValue {
	m := make(map[domain.DirectionID]domain.UnaccountedValue, len(r.Values))
	for _, v := range r.Values {
		m[v.DirectionID] = v
	}
	return m
}

// Positive returns the known values above zero, ordered by direction ID
func (r *Result) Positive() []domain.UnaccountedValue {
	var out []domain.UnaccountedValue
	for _, v := range r.Values {
		if v.Positive() > 0 {
			out = append(out, v)
		}
	}
	return out
}

// MaxPositive returns the largest positive value, or 0
func (r *Result) MaxPositive() int {
	m := 0
	for _, v := range r.Values {
		m = max(m, v.Positive())
	}
	return m
}

// TotalPositive returns the sum of positive values
func (r *Result) TotalPositive() int {
	total := 0
	for _, v := range r.Values {
		total += v.Positive()
	}
	return total
}

// KnownCount returns the number of observed directions
func (r *Result) KnownCount() int {
	n := 0
	for _, v := range r.Values {
		if v.Known {
			n++
		}
	}
	return n
}

// Reconciler turns observations into unaccounted values
type Reconciler struct {
	logger *slog.Logger
}

// New creates a reconciler. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Reconcile reconciles observations with the default logger
func Reconcile(g *network.Graph, observations []domain.InventoryObservation) (*Result, error) {
	return New(nil).Reconcile(g, observations)
}

// Reconcile computes one unaccounted value per direction. For each
// direction the most recent observation wins; conflicting counts captured at
// the same instant resolve to the larger count and produce a warning.
func (r *Reconciler) Reconcile(g *network.Graph, observations []domain.InventoryObservation) (*Result, error) {
	latest := make(map[domain.DirectionID][]domain.InventoryObservation)
	for i, obs := range observations {
		if err := checkObservation(g, i, obs); err != nil {
			return nil, err
		}
		cur := latest[obs.DirectionID]
		switch {
		case len(cur) == 0 || obs.CapturedAt.After(cur[0].CapturedAt):
			latest[obs.DirectionID] = []domain.InventoryObservation{obs}
		case obs.CapturedAt.Equal(cur[0].CapturedAt):
			latest[obs.DirectionID] = append(cur, obs)
		}
	}

	dirs := g.Directions()
	res := &Result{
		Values: make([]domain.UnaccountedValue, len(dirs)),
		index:  make(map[domain.DirectionID]int, len(dirs)),
	}
	for i, d := range dirs {
		recorded := g.RecordedCount(d.ID)
		v := domain.UnaccountedValue{DirectionID: d.ID, Recorded: recorded}

		if obs := latest[d.ID]; len(obs) > 0 {
			count, warning := resolve(d.ID, obs)
			if warning != nil {
				res.Warnings = append(res.Warnings, *warning)
				r.logger.Warn("ambiguous inventory observation",
					"direction_id", d.ID,
					"captured_at", warning.CapturedAt,
					"counts", warning.Counts,
					"chosen", warning.Chosen)
			}
			v.Known = true
			v.Observed = count
			v.Value = count - recorded
			v.CapturedAt = obs[0].CapturedAt
		}
		res.Values[i] = v
		res.index[d.ID] = i
	}

	r.logger.Debug("reconciled inventory",
		"directions", len(dirs),
		"observed", res.KnownCount(),
		"total_positive", res.TotalPositive(),
		"warnings", len(res.Warnings))
	return res, nil
}

func checkObservation(g *network.Graph, i int, obs domain.InventoryObservation) error {
	invalid := func(reason string) error {
		return &domain.InvalidTopologyError{Entity: "observation", ID: int64(i), Reason: reason}
	}
	d, ok := g.Direction(obs.DirectionID)
	if !ok {
		return invalid(fmt.Sprintf("direction %d does not exist", obs.DirectionID))
	}
	if !d.Connects(obs.WellID) {
		return invalid(fmt.Sprintf("well %d is not an endpoint of direction %d", obs.WellID, obs.DirectionID))
	}
	if obs.Count < 0 {
		return invalid(fmt.Sprintf("negative count %d", obs.Count))
	}
	return nil
}

// resolve picks the count among same-instant observations
func resolve(id domain.DirectionID, obs []domain.InventoryObservation) (int, *domain.AmbiguousObservationWarning) {
	counts := make([]int, len(obs))
	for i, o := range obs {
		counts[i] = o.Count
	}
	slices.Sort(counts)
	chosen := counts[len(counts)-1]
	if counts[0] == chosen {
		return chosen, nil
	}
	return chosen, &domain.AmbiguousObservationWarning{
		DirectionID: id,
		CapturedAt:  obs[0].CapturedAt,
		Counts:      counts,
		Chosen:      chosen,
	}
}

// Since filters observations captured at or after t
func Since(obs []domain.InventoryObservation, t time.Time) []domain.InventoryObservation {
	var out []domain.InventoryObservation
	for _, o := range obs {
		if !o.CapturedAt.Before(t) {
			out = append(out, o)
		}
	}
	return out
}
