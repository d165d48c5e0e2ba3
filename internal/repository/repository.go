package repository

import (
	"context"

	"ductnet/internal/domain"
)

// SnapshotSource loads network records
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)
}

// SnapshotImporter replaces all network records with a snapshot
type SnapshotImporter interface {
	ImportSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// ScenarioStore persists inference runs
type ScenarioStore interface {
	// SaveScenario replaces the stored scenario of the same variant
	SaveScenario(ctx context.Context, scenario *domain.Scenario) error
	// LatestScenario returns a *domain.NotFoundError when none is stored
	LatestScenario(ctx context.Context, variant domain.Variant) (*domain.Scenario, error)
	ListScenarios(ctx context.Context) ([]*domain.Scenario, error)
}

// Repository defines the interface for network data access
type Repository interface {
	SnapshotSource
	SnapshotImporter
	ScenarioStore

	// Close releases resources
	Close() error
}
