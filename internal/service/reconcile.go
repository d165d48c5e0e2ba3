package service

import (
	"context"
	"time"

	"ductnet/internal/domain"
	"ductnet/internal/inventory"
	"ductnet/internal/network"
)

// DirectionReport is one direction's reconciled value with its severity
type DirectionReport struct {
	Direction domain.ChannelDirection `json:"direction"`
	Value     domain.UnaccountedValue `json:"value"`
	Severity  inventory.Severity      `json:"severity"`
	FreeSlots int                     `json:"free_slots"`
}

// ReconcileReport is the outcome of reconciling the current snapshot
type ReconcileReport struct {
	Revision      string                               `json:"revision"`
	Directions    []DirectionReport                    `json:"directions"`
	Warnings      []domain.AmbiguousObservationWarning `json:"warnings,omitempty"`
	KnownCount    int                                  `json:"known_count"`
	TotalPositive int                                  `json:"total_positive"`
	MaxPositive   int                                  `json:"max_positive"`

	result *inventory.Result
}

// Result returns the underlying reconciliation result
func (r *ReconcileReport) Result() *inventory.Result {
	return r.result
}

// Reconcile reconciles the snapshot's observations with recorded occupancy
// and classifies every direction
func (s *NetworkService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.reconcile(loaded.Graph, loaded.Snapshot.Observations)
}

// ReconcileSince reconciles using only observations captured at or after
// since. Directions whose observations are all older become unknown.
func (s *NetworkService) ReconcileSince(ctx context.Context, since time.Time) (*ReconcileReport, error) {
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.reconcile(loaded.Graph, inventory.Since(loaded.Snapshot.Observations, since))
}

func (s *NetworkService) reconcile(g *network.Graph, observations []domain.InventoryObservation) (*ReconcileReport, error) {
	res, err := s.reconciler.Reconcile(g, observations)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		Revision:      g.Revision(),
		Directions:    make([]DirectionReport, 0, len(res.Values)),
		Warnings:      res.Warnings,
		KnownCount:    res.KnownCount(),
		TotalPositive: res.TotalPositive(),
		MaxPositive:   res.MaxPositive(),
		result:        res,
	}
	for _, v := range res.Values {
		d, _ := g.Direction(v.DirectionID)
		report.Directions = append(report.Directions, DirectionReport{
			Direction: d,
			Value:     v,
			Severity:  s.classifier.ClassifyValue(v, report.MaxPositive),
			FreeSlots: g.FreeSlotCount(v.DirectionID),
		})
	}

	s.metrics.RecordReconcile(len(res.Warnings), report.TotalPositive)
	for _, w := range res.Warnings {
		s.events.Publish(Event{Type: EventInventoryWarning, Payload: w})
	}
	return report, nil
}
