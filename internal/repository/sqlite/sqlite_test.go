package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"ductnet/internal/domain"
	"ductnet/internal/network"
	"ductnet/internal/network/networktest"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

var capturedAt = time.Date(2024, 5, 1, 9, 30, 0, 123, time.UTC)

func testSnapshot() *domain.Snapshot {
	snap := networktest.Line(4).
		DirectionOwned(3, 1, 3, 40, 2, 7).
		Slot(1, 1, 1, domain.SlotStatusDamaged).
		Cable(1, 2).
		Observe(1, 1, 3, capturedAt).
		Observe(3, 2, 1, capturedAt.Add(time.Hour)).
		Snapshot()
	snap.Owners = append(snap.Owners, domain.Owner{ID: 7, Name: "city"})
	snap.AddCable(domain.Cable{
		ID:       9,
		Topology: domain.CableTopologyAerial,
		Polyline: []domain.Location{{Lat: 55.75, Lng: 37.61}, {Lat: 55.76, Lng: 37.62}},
		Status:   "in_use",
	})
	snap.Observations[0].Source = "survey-7"
	snap.TakenAt = capturedAt.Add(2 * time.Hour)
	return snap
}

// ============================================================================
// Snapshot Tests
// ============================================================================

func TestImportAndLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	snap := testSnapshot()

	assertNoError(t, repo.ImportSnapshot(ctx, snap))

	loaded, err := repo.LoadSnapshot(ctx)
	assertNoError(t, err)

	assertEqual(t, snap.Owners, loaded.Owners)
	assertEqual(t, snap.Wells, loaded.Wells)
	assertEqual(t, snap.Directions, loaded.Directions)
	assertEqual(t, snap.Slots, loaded.Slots)
	assertEqual(t, snap.Cables, loaded.Cables)
	assertEqual(t, len(snap.Observations), len(loaded.Observations))
	for i := range snap.Observations {
		want, got := snap.Observations[i], loaded.Observations[i]
		if !want.CapturedAt.Equal(got.CapturedAt) {
			t.Errorf("observation %d captured_at = %v, want %v", i, got.CapturedAt, want.CapturedAt)
		}
		got.CapturedAt = want.CapturedAt
		assertEqual(t, want, got)
	}
	if !loaded.TakenAt.Equal(snap.TakenAt) {
		t.Errorf("TakenAt = %v, want %v", loaded.TakenAt, snap.TakenAt)
	}

	// The stored records build to the same revision
	g1, err := network.Build(snap)
	assertNoError(t, err)
	g2, err := network.Build(loaded)
	assertNoError(t, err)
	assertEqual(t, g1.Revision(), g2.Revision())
}

func TestImportReplacesRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.ImportSnapshot(ctx, testSnapshot()))
	assertNoError(t, repo.ImportSnapshot(ctx, networktest.New().Wells("X").Snapshot()))

	loaded, err := repo.LoadSnapshot(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(loaded.Wells))
	assertEqual(t, 0, len(loaded.Directions))
	assertEqual(t, 0, len(loaded.Observations))
	if !loaded.TakenAt.IsZero() {
		t.Errorf("TakenAt = %v, want zero", loaded.TakenAt)
	}

	last, err := repo.LastImport(ctx)
	assertNoError(t, err)
	if time.Since(last) > time.Minute {
		t.Errorf("LastImport = %v, want recent", last)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.LoadSnapshot(context.Background())
	assertNoError(t, err)
	assertEqual(t, 0, len(snap.Wells))

	last, err := repo.LastImport(context.Background())
	assertNoError(t, err)
	if !last.IsZero() {
		t.Errorf("LastImport = %v, want zero", last)
	}
}

func TestImportRollsBackOnFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	assertNoError(t, repo.ImportSnapshot(ctx, testSnapshot()))

	// Duplicate primary key aborts the whole import
	bad := networktest.New().Well(1, "A").Well(1, "B").Snapshot()
	if err := repo.ImportSnapshot(ctx, bad); err == nil {
		t.Fatal("expected error for duplicate well id")
	}

	loaded, err := repo.LoadSnapshot(ctx)
	assertNoError(t, err)
	assertEqual(t, 3, len(loaded.Wells))
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ductnet.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	assertNoError(t, repo.ImportSnapshot(ctx, testSnapshot()))
	assertNoError(t, repo.Close())

	// Reopen and confirm persistence
	repo, err = New(path)
	assertNoError(t, err)
	defer repo.Close()

	loaded, err := repo.LoadSnapshot(ctx)
	assertNoError(t, err)
	assertEqual(t, 3, len(loaded.Directions))
}

// ============================================================================
// Scenario Tests
// ============================================================================

func testScenario(id string, v domain.Variant, created time.Time) *domain.Scenario {
	return &domain.Scenario{
		ID:               id,
		Variant:          v,
		Revision:         "abc123",
		CreatedAt:        created,
		UsedUnaccounted:  2,
		TotalUnaccounted: 3,
		Routes: []domain.AssumedRoute{{
			Variant:      v,
			Tier:         domain.TierPrecision,
			StartWellID:  1,
			EndWellID:    3,
			DirectionIDs: []domain.DirectionID{1, 2},
			OwnerID:      7,
			LengthM:      25,
			Confidence:   0.9,
		}},
	}
}

func TestSaveAndLoadScenario(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	created := capturedAt

	want := testScenario("s-1", domain.VariantBalanced, created)
	assertNoError(t, repo.SaveScenario(ctx, want))

	got, err := repo.LatestScenario(ctx, domain.VariantBalanced)
	assertNoError(t, err)
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	assertEqual(t, want, got)
}

func TestSaveScenarioReplacesVariant(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.SaveScenario(ctx, testScenario("old", domain.VariantPrecision, capturedAt)))
	assertNoError(t, repo.SaveScenario(ctx, testScenario("other", domain.VariantCoverage, capturedAt)))
	assertNoError(t, repo.SaveScenario(ctx, testScenario("new", domain.VariantPrecision, capturedAt.Add(time.Minute))))

	got, err := repo.LatestScenario(ctx, domain.VariantPrecision)
	assertNoError(t, err)
	assertEqual(t, "new", got.ID)

	all, err := repo.ListScenarios(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(all))
	assertEqual(t, "new", all[0].ID)
	assertEqual(t, "other", all[1].ID)
}

func TestScenarioWithoutRoutes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s := testScenario("empty", domain.VariantCoverage, capturedAt)
	s.Routes = nil
	assertNoError(t, repo.SaveScenario(ctx, s))

	got, err := repo.LatestScenario(ctx, domain.VariantCoverage)
	assertNoError(t, err)
	assertEqual(t, 0, len(got.Routes))
}

func TestLatestScenarioNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.LatestScenario(context.Background(), domain.VariantBalanced)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	assertEqual(t, "scenario", notFound.Entity)
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestTimeFormatSorts(t *testing.T) {
	a := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 500, time.UTC))
	c := formatTime(time.Date(2024, 1, 1, 3, 0, 0, 0, time.FixedZone("plus4", 4*3600)))
	if !(c < a && a < b) {
		t.Errorf("expected %s < %s < %s", c, a, b)
	}
	assertEqual(t, "", formatTime(time.Time{}))

	parsed, err := parseTime("")
	assertNoError(t, err)
	if !parsed.IsZero() {
		t.Errorf("parseTime(\"\") = %v, want zero", parsed)
	}
}

func TestDSN(t *testing.T) {
	assertEqual(t, ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dsn(":memory:"))
	assertEqual(t, "x.db?mode=ro&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dsn("x.db?mode=ro"))
}
