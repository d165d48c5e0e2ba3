package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"ductnet/internal/domain"
	"ductnet/internal/inference"
	"ductnet/internal/inventory"
	"ductnet/internal/metrics"
	"ductnet/internal/network"
	"ductnet/internal/repository"
	"ductnet/internal/routing"
	"ductnet/internal/validation"
)

// ErrNoScenarioStore is returned by Rebuild when no store was configured
var ErrNoScenarioStore = errors.New("no scenario store configured")

// Options configures a NetworkService. Zero values select defaults.
type Options struct {
	Profiles  *inference.Profiles
	Palette   *inventory.Palette
	CacheSize int
	Metrics   *metrics.Registry
	Logger    *slog.Logger
	Events    *EventBus
}

// NetworkService provides the network operations on top of a snapshot
// source
type NetworkService struct {
	source     repository.SnapshotSource
	scenarios  repository.ScenarioStore
	graphs     *lru.Cache[string, *network.Graph]
	engine     *inference.Engine
	reconciler *inventory.Reconciler
	classifier inventory.Classifier
	metrics    *metrics.Registry
	logger     *slog.Logger
	events     *EventBus
}

// NewNetworkService creates a service. scenarios may be nil when results
// are never written back.
func NewNetworkService(source repository.SnapshotSource, scenarios repository.ScenarioStore, opts Options) (*NetworkService, error) {
	if source == nil {
		return nil, errors.New("snapshot source required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 8
	}
	graphs, err := lru.New[string, *network.Graph](size)
	if err != nil {
		return nil, fmt.Errorf("create graph cache: %w", err)
	}
	profiles := inference.DefaultProfiles()
	if opts.Profiles != nil {
		profiles = *opts.Profiles
	}
	palette := inventory.DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	return &NetworkService{
		source:     source,
		scenarios:  scenarios,
		graphs:     graphs,
		engine:     inference.NewEngine(profiles, logger),
		reconciler: inventory.New(logger),
		classifier: inventory.Classifier{Palette: palette},
		metrics:    reg,
		logger:     logger,
		events:     opts.Events,
	}, nil
}

// Metrics returns the service's metrics registry
func (s *NetworkService) Metrics() *metrics.Registry {
	return s.metrics
}

// Loaded is a validated snapshot with its graph
type Loaded struct {
	Snapshot *domain.Snapshot
	Graph    *network.Graph
}

// Load reads the snapshot, validates it and returns its graph. Graphs are
// cached by snapshot revision, so an unchanged snapshot is not rebuilt.
func (s *NetworkService) Load(ctx context.Context) (*Loaded, error) {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	g, err := s.graph(snap)
	if err != nil {
		return nil, err
	}
	return &Loaded{Snapshot: snap, Graph: g}, nil
}

func (s *NetworkService) graph(snap *domain.Snapshot) (*network.Graph, error) {
	if err := validation.ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	revision := network.Fingerprint(snap)
	if g, ok := s.graphs.Get(revision); ok {
		s.metrics.RecordCacheLookup(true)
		return g, nil
	}
	s.metrics.RecordCacheLookup(false)

	start := time.Now()
	g, err := network.BuildWithRevision(snap, revision)
	if err != nil {
		s.metrics.RecordGraphBuild(0, 0, time.Since(start), err)
		return nil, err
	}
	s.metrics.RecordGraphBuild(g.WellCount(), g.DirectionCount(), time.Since(start), nil)
	s.graphs.Add(revision, g)

	s.logger.Info("network graph built",
		"revision", shortRevision(revision),
		"wells", g.WellCount(),
		"directions", g.DirectionCount(),
		"duration", time.Since(start))
	s.events.Publish(Event{
		Type:    EventGraphBuilt,
		Payload: map[string]any{"revision": revision, "wells": g.WellCount(), "directions": g.DirectionCount()},
	})
	return g, nil
}

// ImportResult summarizes an import
type ImportResult struct {
	Revision     string `json:"revision"`
	Wells        int    `json:"wells"`
	Directions   int    `json:"directions"`
	Slots        int    `json:"slots"`
	Cables       int    `json:"cables"`
	Observations int    `json:"observations"`
}

// Import copies a snapshot from one store into another. The snapshot must
// build into a valid graph before anything is written.
func (s *NetworkService) Import(ctx context.Context, from repository.SnapshotSource, to repository.SnapshotImporter) (*ImportResult, error) {
	snap, err := from.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	g, err := s.graph(snap)
	if err != nil {
		return nil, err
	}
	if err := to.ImportSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	result := &ImportResult{
		Revision:     g.Revision(),
		Wells:        len(snap.Wells),
		Directions:   len(snap.Directions),
		Slots:        len(snap.Slots),
		Cables:       len(snap.Cables),
		Observations: len(snap.Observations),
	}
	s.logger.Info("snapshot imported",
		"revision", shortRevision(result.Revision),
		"wells", result.Wells,
		"directions", result.Directions,
		"cables", result.Cables)
	s.events.Publish(Event{Type: EventSnapshotImported, Payload: result})
	return result, nil
}

// RouteResult is a routed cable with its slot allocation
type RouteResult struct {
	Revision string                   `json:"revision"`
	Path     routing.Path             `json:"path"`
	Legs     []routing.Path           `json:"legs"`
	Slots    []routing.SlotAssignment `json:"slots"`
}

// Route finds a cable route through the waypoints in order. Later legs
// never reuse directions of earlier legs. Every direction of the route
// gets a free slot assigned.
func (s *NetworkService) Route(ctx context.Context, waypoints []domain.WellID) (*RouteResult, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("route needs at least two wells, got %d", len(waypoints))
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := route(loaded.Graph, waypoints)
	s.metrics.RecordRoute(routeOutcome(err), result.Path.Hops(), time.Since(start))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("route found",
		"from", waypoints[0],
		"to", waypoints[len(waypoints)-1],
		"hops", result.Path.Hops(),
		"length_m", result.Path.LengthM)
	s.events.Publish(Event{Type: EventRouteFound, Payload: result.Path})
	return result, nil
}

func route(g *network.Graph, waypoints []domain.WellID) (*RouteResult, error) {
	result := &RouteResult{Revision: g.Revision()}
	session, err := routing.NewSession(g, waypoints[0])
	if err != nil {
		return result, err
	}
	for _, w := range waypoints[1:] {
		if _, err := session.Extend(w); err != nil {
			return result, err
		}
	}
	result.Path = session.Route()
	result.Legs = session.Legs()
	result.Slots, err = routing.AllocateSlots(g, result.Path)
	if err != nil {
		return result, err
	}
	return result, nil
}

func routeOutcome(err error) string {
	var overlap *domain.RouteOverlapError
	switch {
	case err == nil:
		return metrics.OutcomeFound
	case errors.As(err, &overlap):
		return metrics.OutcomeOverlap
	case domain.IsNoSolution(err):
		return metrics.OutcomeNoPath
	default:
		return metrics.OutcomeBadInput
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
