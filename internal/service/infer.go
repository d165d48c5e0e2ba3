package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ductnet/internal/domain"
	"ductnet/internal/inference"
	"ductnet/internal/network"
)

// Infer reconciles the snapshot and proposes assumed cable routes for one
// variant
func (s *NetworkService) Infer(ctx context.Context, variant domain.Variant) (*inference.Result, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownVariant, int(variant))
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.reconcile(loaded.Graph, loaded.Snapshot.Observations)
	if err != nil {
		return nil, err
	}
	return s.infer(loaded.Graph, report, variant)
}

func (s *NetworkService) infer(g *network.Graph, report *ReconcileReport, variant domain.Variant) (*inference.Result, error) {
	start := time.Now()
	res, err := s.engine.Infer(g, report.Result().Values, variant)
	if err != nil {
		s.metrics.RecordInference(variant.String(), 0, 0, 0, 0, time.Since(start), err)
		return nil, err
	}
	s.metrics.RecordInference(variant.String(), len(res.Routes), res.UsedUnaccounted,
		res.TotalUnaccounted, res.Stats.OwnersUnknown, time.Since(start), nil)

	s.events.Publish(Event{Type: EventInferenceComplete, Payload: res.Stats})
	return res, nil
}

// InferAll runs every variant in parallel over the same graph and
// reconciliation. Results are ordered by variant.
func (s *NetworkService) InferAll(ctx context.Context) (string, []*inference.Result, error) {
	loaded, err := s.Load(ctx)
	if err != nil {
		return "", nil, err
	}
	report, err := s.reconcile(loaded.Graph, loaded.Snapshot.Observations)
	if err != nil {
		return "", nil, err
	}

	results := make([]*inference.Result, len(domain.Variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range domain.Variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.infer(loaded.Graph, report, v)
			if err != nil {
				return fmt.Errorf("variant %s: %w", v, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return loaded.Graph.Revision(), results, nil
}

// Rebuild runs every variant and stores each result as a scenario,
// replacing the previous scenario of the variant
func (s *NetworkService) Rebuild(ctx context.Context) ([]*domain.Scenario, error) {
	if s.scenarios == nil {
		return nil, ErrNoScenarioStore
	}
	revision, results, err := s.InferAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scenarios := make([]*domain.Scenario, 0, len(results))
	for _, res := range results {
		scenario := &domain.Scenario{
			ID:               uuid.New().String(),
			Variant:          res.Variant,
			Revision:         revision,
			CreatedAt:        now,
			UsedUnaccounted:  res.UsedUnaccounted,
			TotalUnaccounted: res.TotalUnaccounted,
			Routes:           res.Routes,
		}
		if err := s.scenarios.SaveScenario(ctx, scenario); err != nil {
			return nil, fmt.Errorf("save scenario %s: %w", res.Variant, err)
		}
		s.metrics.RecordScenarioSaved(res.Variant.String())
		s.logger.Info("scenario saved",
			"id", scenario.ID,
			"variant", res.Variant.String(),
			"routes", len(res.Routes),
			"used_unaccounted", res.UsedUnaccounted,
			"total_unaccounted", res.TotalUnaccounted)
		s.events.Publish(Event{Type: EventScenarioSaved, Payload: scenario})
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// Scenarios lists stored scenarios
func (s *NetworkService) Scenarios(ctx context.Context) ([]*domain.Scenario, error) {
	if s.scenarios == nil {
		return nil, ErrNoScenarioStore
	}
	return s.scenarios.ListScenarios(ctx)
}
