package inference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductnet/internal/domain"
	"ductnet/internal/inventory"
	"ductnet/internal/network"
	"ductnet/internal/network/networktest"
)

func values(known map[domain.DirectionID]int, g *network.Graph) []domain.UnaccountedValue {
	var out []domain.UnaccountedValue
	for _, d := range g.Directions() {
		v := domain.UnaccountedValue{DirectionID: d.ID}
		if n, ok := known[d.ID]; ok {
			v.Known = true
			v.Value = n
			v.Observed = n
		}
		out = append(out, v)
	}
	return out
}

func TestInferUnaccountedExplained(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b := networktest.New().
		Wells("A", "B", "C").
		DirectionOwned(1, 1, 2, 10, 4, 7).
		DirectionOwned(2, 2, 3, 15, 4, 7)
	b.Observe(1, 1, 2, at).Observe(3, 2, 2, at)
	g := b.Graph(t)

	rec, err := inventory.Reconcile(g, b.Snapshot().Observations)
	require.NoError(t, err)

	res, err := Infer(g, rec.Values, domain.VariantPrecision)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalUnaccounted)
	assert.GreaterOrEqual(t, res.UsedUnaccounted, 2)
	require.NotEmpty(t, res.Routes)

	route := res.Routes[0]
	assert.Equal(t, []domain.DirectionID{1, 2}, route.DirectionIDs)
	assert.Equal(t, domain.WellID(1), route.StartWellID)
	assert.Equal(t, domain.WellID(3), route.EndWellID)
	assert.Equal(t, 25.0, route.LengthM)
	assert.Equal(t, domain.OwnerID(7), route.OwnerID)
	assert.False(t, route.OwnerUndetermined)
	assert.Equal(t, domain.TierPrecision, route.Tier)
	assert.Equal(t, domain.VariantPrecision, route.Variant)
	assert.InDelta(t, 0.90, route.Confidence, 1e-9)
}

func TestInferEmpty(t *testing.T) {
	g := networktest.Line(2).Graph(t)

	for _, v := range domain.Variants {
		res, err := Infer(g, values(map[domain.DirectionID]int{1: 0, 2: -1}, g), v)
		require.NoError(t, err)
		assert.Equal(t, 0, res.UsedUnaccounted)
		assert.Equal(t, 0, res.TotalUnaccounted)
		assert.NotNil(t, res.Routes)
		assert.Empty(t, res.Routes)
	}

	res, err := Infer(g, nil, domain.VariantCoverage)
	require.NoError(t, err)
	assert.Empty(t, res.Routes)
}

func TestInferUnknownVariant(t *testing.T) {
	g := networktest.Line(2).Graph(t)
	_, err := Infer(g, nil, 4)
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
	assert.True(t, domain.IsBadInput(err))
}

func TestInferRejectsForeignDirections(t *testing.T) {
	g := networktest.Line(2).Graph(t)
	_, err := Infer(g, []domain.UnaccountedValue{{DirectionID: 9, Known: true, Value: 1}}, 1)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	dup := []domain.UnaccountedValue{{DirectionID: 1}, {DirectionID: 1}}
	_, err = Infer(g, dup, 1)
	var topo *domain.InvalidTopologyError
	assert.ErrorAs(t, err, &topo)
}

func TestInferOwnerRules(t *testing.T) {
	g := networktest.New().
		Wells("A", "B", "C").
		DirectionOwned(1, 1, 2, 10, 4, 1).
		DirectionOwned(2, 2, 3, 15, 4, 2).
		Graph(t)
	vals := values(map[domain.DirectionID]int{1: 1, 2: 1}, g)

	res, err := Infer(g, vals, domain.VariantPrecision)
	require.NoError(t, err)
	assert.Empty(t, res.Routes, "strict rule pairs only equal owners")

	res, err = Infer(g, vals, domain.VariantBalanced)
	require.NoError(t, err)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, domain.TierBalanced, res.Routes[0].Tier)
	assert.True(t, res.Routes[0].OwnerUndetermined, "one direction per owner is a tie")
	assert.Equal(t, 2, res.UsedUnaccounted)
}

func TestInferPreferSameOwner(t *testing.T) {
	// X meets two partners at the hub: a foreign-owned one with the lower ID
	// and a same-owner one
	g := networktest.New().
		Wells("Hub", "N", "F", "X").
		DirectionOwned(1, 4, 1, 5, 4, 1).
		DirectionOwned(2, 1, 2, 5, 4, 2).
		DirectionOwned(3, 1, 3, 50, 4, 1).
		Graph(t)
	vals := values(map[domain.DirectionID]int{1: 1, 2: 1, 3: 1}, g)

	run := func(rule OwnerRule) []domain.DirectionID {
		p := DefaultProfiles()
		p[0].OwnerRule = rule
		p[0].MinSignal = 0
		res, err := NewEngine(p, nil).Infer(g, vals, domain.VariantPrecision)
		require.NoError(t, err)
		require.NotEmpty(t, res.Routes)
		return res.Routes[0].DirectionIDs
	}

	assert.Equal(t, []domain.DirectionID{1, 3}, run(OwnerPrefer))
	assert.Equal(t, []domain.DirectionID{1, 2}, run(OwnerAny))
}

func TestInferSignalThreshold(t *testing.T) {
	// three directions meeting at one well, all equally unexplained
	g := networktest.New().
		Wells("Hub", "A", "B", "C").
		Direction(1, 1, 2, 10, 4).
		Direction(2, 1, 3, 10, 4).
		Direction(3, 1, 4, 10, 4).
		Graph(t)
	vals := values(map[domain.DirectionID]int{1: 2, 2: 2, 3: 2}, g)

	res, err := Infer(g, vals, domain.VariantPrecision)
	require.NoError(t, err)
	assert.Zero(t, res.UsedUnaccounted, "ambiguous partners stay unpaired")

	res, err = Infer(g, vals, domain.VariantBalanced)
	require.NoError(t, err)
	assert.Positive(t, res.UsedUnaccounted)
}

func TestInferConnectors(t *testing.T) {
	chain := func() *networktest.Builder {
		return networktest.New().
			Wells("A", "B", "C", "D").
			Direction(1, 1, 2, 10, 4).
			Direction(2, 2, 3, 20, 4).
			Direction(3, 3, 4, 30, 4)
	}

	t.Run("through unobserved direction", func(t *testing.T) {
		g := chain().Graph(t)
		res, err := Infer(g, values(map[domain.DirectionID]int{1: 1, 3: 1}, g), domain.VariantPrecision)
		require.NoError(t, err)
		require.Len(t, res.Routes, 1)
		assert.Equal(t, []domain.DirectionID{1, 2, 3}, res.Routes[0].DirectionIDs)
		assert.Equal(t, 60.0, res.Routes[0].LengthM)
		assert.Equal(t, domain.WellID(1), res.Routes[0].StartWellID)
		assert.Equal(t, domain.WellID(4), res.Routes[0].EndWellID)
	})

	t.Run("observed direction blocks until coverage", func(t *testing.T) {
		g := chain().Graph(t)
		vals := values(map[domain.DirectionID]int{1: 1, 2: 0, 3: 1}, g)

		res, err := Infer(g, vals, domain.VariantBalanced)
		require.NoError(t, err)
		assert.Empty(t, res.Routes)

		res, err = Infer(g, vals, domain.VariantCoverage)
		require.NoError(t, err)
		require.Len(t, res.Routes, 1)
		assert.Equal(t, domain.TierCoverage, res.Routes[0].Tier)
		assert.Equal(t, 2, res.UsedUnaccounted)
	})

	t.Run("hop cap", func(t *testing.T) {
		g := networktest.New().
			Wells("A", "B", "C", "D", "E", "F").
			Direction(1, 1, 2, 1, 4).
			Direction(2, 2, 3, 1, 4).
			Direction(3, 3, 4, 1, 4).
			Direction(4, 4, 5, 1, 4).
			Direction(5, 5, 6, 1, 4).
			Graph(t)
		vals := values(map[domain.DirectionID]int{1: 1, 5: 1}, g)

		res, err := Infer(g, vals, domain.VariantPrecision)
		require.NoError(t, err)
		assert.Empty(t, res.Routes, "a five direction route exceeds the precision cap")

		res, err = Infer(g, vals, domain.VariantBalanced)
		require.NoError(t, err)
		require.Len(t, res.Routes, 1)
		assert.Equal(t, []domain.DirectionID{1, 2, 3, 4, 5}, res.Routes[0].DirectionIDs)
	})

	t.Run("short detour does not hide a route within the cap", func(t *testing.T) {
		// P-W and V-Q carry one unexplained cable each. W-U-V is long but
		// fits precision's two connectors; the short way W-A-U-B-V needs four.
		g := networktest.New().
			Wells("P", "W", "U", "V", "Q", "A", "B").
			Direction(1, 1, 2, 5, 4).
			Direction(2, 2, 3, 10, 4).
			Direction(3, 3, 4, 10, 4).
			Direction(4, 4, 5, 5, 4).
			Direction(5, 2, 6, 1, 4).
			Direction(6, 6, 3, 1, 4).
			Direction(7, 3, 7, 1, 4).
			Direction(8, 7, 4, 1, 4).
			Graph(t)
		vals := values(map[domain.DirectionID]int{1: 1, 4: 1}, g)

		res, err := Infer(g, vals, domain.VariantPrecision)
		require.NoError(t, err)
		require.Len(t, res.Routes, 1)
		assert.Equal(t, []domain.DirectionID{1, 2, 3, 4}, res.Routes[0].DirectionIDs)
		assert.Equal(t, 30.0, res.Routes[0].LengthM)
		assert.Equal(t, domain.WellID(1), res.Routes[0].StartWellID)
		assert.Equal(t, domain.WellID(5), res.Routes[0].EndWellID)
		assert.Equal(t, 2, res.UsedUnaccounted)

		// precision commits first, so balanced keeps the same route
		res, err = Infer(g, vals, domain.VariantBalanced)
		require.NoError(t, err)
		require.Len(t, res.Routes, 1)
		assert.Equal(t, []domain.DirectionID{1, 2, 3, 4}, res.Routes[0].DirectionIDs)
	})
}

func TestInferFallback(t *testing.T) {
	g := networktest.New().
		Wells("A", "B").
		DirectionOwned(1, 1, 2, 12, 4, 3).
		Graph(t)
	vals := values(map[domain.DirectionID]int{1: 2}, g)

	res, err := Infer(g, vals, domain.VariantBalanced)
	require.NoError(t, err)
	assert.Empty(t, res.Routes)

	res, err = Infer(g, vals, domain.VariantCoverage)
	require.NoError(t, err)
	require.Len(t, res.Routes, 2)
	for _, r := range res.Routes {
		assert.Equal(t, domain.TierFallback, r.Tier)
		assert.Equal(t, []domain.DirectionID{1}, r.DirectionIDs)
		assert.Equal(t, domain.OwnerID(3), r.OwnerID)
		assert.InDelta(t, 0.15, r.Confidence, 1e-9)
	}
	assert.Equal(t, 2, res.UsedUnaccounted)
	assert.Equal(t, 2, res.Stats.ByTier[domain.TierFallback])
}

func TestAttributeOwner(t *testing.T) {
	g := networktest.New().
		Wells("A", "B", "C", "D").
		DirectionOwned(1, 1, 2, 1, 1, 5).
		DirectionOwned(2, 2, 3, 1, 1, 5).
		DirectionOwned(3, 3, 4, 1, 1, 6).
		Direction(4, 1, 3, 1, 1).
		Direction(5, 2, 4, 1, 1).
		Graph(t)

	owner, undetermined := attributeOwner(g, []domain.DirectionID{1, 2, 3})
	assert.Equal(t, domain.OwnerID(5), owner)
	assert.False(t, undetermined)

	_, undetermined = attributeOwner(g, []domain.DirectionID{1, 3})
	assert.True(t, undetermined)

	_, undetermined = attributeOwner(g, []domain.DirectionID{4, 5, 1})
	assert.True(t, undetermined, "unset plurality")
}

func TestStats(t *testing.T) {
	res := &Result{
		TotalUnaccounted: 4,
		UsedUnaccounted:  3,
		Routes: []domain.AssumedRoute{
			{Tier: domain.TierPrecision, DirectionIDs: []domain.DirectionID{1, 2}, LengthM: 10, Confidence: 0.9, OwnerID: 1},
			{Tier: domain.TierFallback, DirectionIDs: []domain.DirectionID{3}, LengthM: 30, Confidence: 0.15, OwnerUndetermined: true},
		},
	}
	s := computeStats(res)
	assert.Equal(t, 2, s.RoutesTotal)
	assert.Equal(t, 1, s.OwnersAssigned)
	assert.Equal(t, 1, s.OwnersUnknown)
	assert.InDelta(t, 20, s.MeanLengthM, 1e-9)
	assert.InDelta(t, 30, s.MaxLengthM, 1e-9)
	assert.InDelta(t, 40, s.TotalLengthM, 1e-9)
	assert.InDelta(t, 0.525, s.MeanConfidence, 1e-9)
	assert.InDelta(t, 1.5, s.MeanHops, 1e-9)
	assert.InDelta(t, 0.75, s.Coverage(), 1e-9)

	assert.Zero(t, computeStats(&Result{}).MeanLengthM)
}

func TestResultString(t *testing.T) {
	r := &Result{Variant: domain.VariantBalanced, UsedUnaccounted: 2, TotalUnaccounted: 5}
	assert.Equal(t, "variant 2 (balanced): 0 routes, 2/5 unaccounted explained", r.String())
}
