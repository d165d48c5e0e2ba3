package network_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductnet/internal/domain"
	"ductnet/internal/network"
	"ductnet/internal/network/networktest"
)

func TestBuildNeighborsOrdered(t *testing.T) {
	g := networktest.New().
		Wells("A", "B", "C").
		Direction(7, 1, 3, 5, 2).
		Direction(3, 1, 2, 10, 2).
		Direction(5, 2, 3, 4, 2).
		Graph(t)

	got := g.Neighbors(1)
	require.Len(t, got, 2)
	assert.Equal(t, domain.DirectionID(3), got[0].Direction)
	assert.Equal(t, domain.WellID(2), got[0].Other)
	assert.Equal(t, domain.DirectionID(7), got[1].Direction)
	assert.Equal(t, domain.WellID(3), got[1].Other)

	assert.Nil(t, g.Neighbors(99))
	assert.Equal(t, 3, g.WellCount())
	assert.Equal(t, 3, g.DirectionCount())
}

func TestNeighborsReturnsCopy(t *testing.T) {
	g := networktest.Line(1).Graph(t)

	n := g.Neighbors(2)
	n[0].Other = 42

	assert.Equal(t, domain.WellID(1), g.Neighbors(2)[0].Other)
}

func TestBuildInvalidTopology(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *networktest.Builder
		entity string
	}{
		{
			name: "missing well",
			build: func() *networktest.Builder {
				return networktest.New().Wells("A").Direction(1, 1, 2, 10, 1)
			},
			entity: "direction",
		},
		{
			name: "self loop",
			build: func() *networktest.Builder {
				return networktest.New().Wells("A").Direction(1, 1, 1, 10, 1)
			},
			entity: "direction",
		},
		{
			name: "negative length",
			build: func() *networktest.Builder {
				return networktest.New().Wells("A", "B").Direction(1, 1, 2, -1, 1)
			},
			entity: "direction",
		},
		{
			name: "too many slots",
			build: func() *networktest.Builder {
				return networktest.New().Wells("A", "B").Direction(1, 1, 2, 1, 17)
			},
			entity: "direction",
		},
		{
			name: "duplicate well",
			build: func() *networktest.Builder {
				return networktest.New().Well(1, "A").Well(1, "B")
			},
			entity: "well",
		},
		{
			name: "slot on missing direction",
			build: func() *networktest.Builder {
				return networktest.Line(2).Slot(1, 9, 1, domain.SlotStatusAvailable)
			},
			entity: "slot",
		},
		{
			name: "slot number out of range",
			build: func() *networktest.Builder {
				return networktest.Line(2).Slot(1, 1, 3, domain.SlotStatusAvailable)
			},
			entity: "slot",
		},
		{
			name: "duplicate slot number",
			build: func() *networktest.Builder {
				return networktest.Line(2).
					Slot(1, 1, 1, domain.SlotStatusAvailable).
					Slot(2, 1, 1, domain.SlotStatusAvailable)
			},
			entity: "slot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := network.Build(tt.build().Snapshot())
			var topo *domain.InvalidTopologyError
			require.True(t, errors.As(err, &topo), "got %v", err)
			assert.Equal(t, tt.entity, topo.Entity)
			assert.True(t, domain.IsBadInput(err))
		})
	}
}

func TestBuildCableChecks(t *testing.T) {
	t.Run("shared slot", func(t *testing.T) {
		snap := networktest.Line(2).Slot(1, 1, 1, "").Snapshot()
		snap.AddCable(domain.Cable{ID: 1, Topology: domain.CableTopologyDuct, SlotIDs: []domain.SlotID{1}})
		snap.AddCable(domain.Cable{ID: 2, Topology: domain.CableTopologyDuct, SlotIDs: []domain.SlotID{1}})

		_, err := network.Build(snap)
		var topo *domain.InvalidTopologyError
		require.ErrorAs(t, err, &topo)
		assert.Equal(t, "cable", topo.Entity)
		assert.Equal(t, int64(2), topo.ID)
	})

	t.Run("direction reused", func(t *testing.T) {
		snap := networktest.Line(2).Slot(1, 1, 1, "").Slot(2, 1, 2, "").Snapshot()
		snap.AddCable(domain.Cable{ID: 1, Topology: domain.CableTopologyDuct, SlotIDs: []domain.SlotID{1, 2}})

		_, err := network.Build(snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "used more than once")
	})

	t.Run("not contiguous", func(t *testing.T) {
		snap := networktest.New().Wells("A", "B", "C", "D").
			Direction(1, 1, 2, 1, 1).
			Direction(2, 3, 4, 1, 1).
			Slot(1, 1, 1, "").
			Slot(2, 2, 1, "").
			Snapshot()
		snap.AddCable(domain.Cable{ID: 1, Topology: domain.CableTopologyDuct, SlotIDs: []domain.SlotID{1, 2}})

		_, err := network.Build(snap)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contiguous")
	})

	t.Run("chain in either orientation", func(t *testing.T) {
		snap := networktest.Line(1).Slot(1, 2, 1, "").Slot(2, 1, 1, "").Snapshot()
		snap.AddCable(domain.Cable{ID: 1, Topology: domain.CableTopologyDuct, SlotIDs: []domain.SlotID{1, 2}})

		g, err := network.Build(snap)
		require.NoError(t, err)
		assert.Equal(t, 25.0, g.CableLength(snap.Cables[0]))
	})

	t.Run("aerial cable with slots", func(t *testing.T) {
		snap := networktest.Line(1).Slot(1, 1, 1, "").Snapshot()
		snap.AddCable(domain.Cable{ID: 1, Topology: domain.CableTopologyAerial, SlotIDs: []domain.SlotID{1}})

		_, err := network.Build(snap)
		require.Error(t, err)
	})
}

func TestCapacity(t *testing.T) {
	g := networktest.Line(4).
		Slot(1, 1, 1, domain.SlotStatusDamaged).
		Slot(2, 1, 2, domain.SlotStatusReserved).
		Cable(1).
		Graph(t)

	assert.Equal(t, 1, g.RecordedCount(1))
	assert.Equal(t, 1, g.FreeSlotCount(1))
	assert.True(t, g.HasFreeSlot(1))
	assert.Equal(t, []int{3}, g.FreeSlotNumbers(1))

	assert.Equal(t, 0, g.RecordedCount(2))
	assert.Equal(t, 4, g.FreeSlotCount(2))
	assert.Equal(t, []int{1, 2, 3, 4}, g.FreeSlotNumbers(2))

	assert.Equal(t, 0, g.FreeSlotCount(99))
	assert.False(t, g.HasFreeSlot(99))
}

func TestDecommissionedHasNoFreeSlots(t *testing.T) {
	snap := networktest.Line(3).Snapshot()
	snap.Directions[0].Status = domain.DirectionStatusDecommissioned

	g, err := network.Build(snap)
	require.NoError(t, err)
	assert.Equal(t, 0, g.FreeSlotCount(1))
	assert.Empty(t, g.FreeSlotNumbers(1))
	assert.Equal(t, 3, g.FreeSlotCount(2))
}

func TestCableLengthPolyline(t *testing.T) {
	g := networktest.Line(1).Graph(t)
	cable := domain.Cable{
		ID:       1,
		Topology: domain.CableTopologyAerial,
		Polyline: []domain.Location{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
	}
	// one degree of longitude on the equator
	assert.InDelta(t, 111195, g.CableLength(cable), 1)
}

func TestOther(t *testing.T) {
	g := networktest.Line(1).Graph(t)

	other, ok := g.Other(1, 1)
	assert.True(t, ok)
	assert.Equal(t, domain.WellID(2), other)

	_, ok = g.Other(1, 3)
	assert.False(t, ok)
	_, ok = g.Other(9, 1)
	assert.False(t, ok)
}

func TestRevision(t *testing.T) {
	a := networktest.Line(2).Snapshot()
	b := networktest.New().
		Direction(2, 2, 3, 15, 2).
		Direction(1, 1, 2, 10, 2).
		Well(3, "C").Well(2, "B").Well(1, "A").
		Snapshot()

	ga, err := network.Build(a)
	require.NoError(t, err)
	gb, err := network.Build(b)
	require.NoError(t, err)
	assert.Equal(t, ga.Revision(), gb.Revision())
	assert.Len(t, ga.Revision(), 64)

	b.Directions[0].LengthM = 16
	assert.NotEqual(t, ga.Revision(), network.Fingerprint(b))

	gc, err := network.BuildWithRevision(a, "precomputed")
	require.NoError(t, err)
	assert.Equal(t, "precomputed", gc.Revision())
	assert.Equal(t, ga.DirectionCount(), gc.DirectionCount())
}

func TestBuildEmpty(t *testing.T) {
	g, err := network.Build(nil)
	require.NoError(t, err)
	assert.Zero(t, g.WellCount())
	assert.NotEmpty(t, g.Revision())
}
