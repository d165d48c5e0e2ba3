package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ductnet/internal/domain"
	"ductnet/internal/network"
)

const survey = `
version: "1"
owners: [telco, city]
wells:
  W-03: {lat: 55.7522, lng: 37.6200}
  W-01: {lat: 55.7500, lng: 37.6170, kind: entry_point}
  W-02: {lat: 55.7510, lng: 37.6185}
directions:
  - number: D-1
    between: [W-01, W-02]
    length_m: 140
    slots: 3
    owner: telco
  - number: D-2
    between: [W-02, W-03]
    slots: 2
    owner: city
slot_kinds:
  D-1:
    kind: hdpe-40
    damaged: [1]
cables:
  - number: C-1
    route: [W-01, W-02, W-03]
    owner: telco
  - number: C-2
    route: [W-02, W-01]
  - number: A-1
    route: [W-01, W-03]
    topology: aerial
observations:
  - at: W-01
    toward: W-02
    count: 4
    captured_at: 2024-05-01T09:00:00Z
  - at: W-03
    direction: D-2
    count: 1
    captured_at: 2024-05-01T10:00:00Z
`

func TestParseSheet(t *testing.T) {
	snap, err := ParseSheet([]byte(survey))
	require.NoError(t, err)

	// Wells are numbered in sorted order
	require.Len(t, snap.Wells, 3)
	assert.Equal(t, "W-01", snap.Wells[0].Number)
	assert.Equal(t, domain.WellKindEntryPoint, snap.Wells[0].Kind)
	assert.Equal(t, domain.WellID(3), snap.Wells[2].ID)

	require.Len(t, snap.Owners, 2)
	assert.Equal(t, "city", snap.OwnerName(2))

	require.Len(t, snap.Directions, 2)
	assert.Equal(t, 140.0, snap.Directions[0].LengthM)
	assert.Equal(t, domain.OwnerID(1), snap.Directions[0].OwnerID)
	// Omitted length falls back to the distance between the wells
	want := snap.Wells[1].Location.DistanceM(snap.Wells[2].Location)
	assert.InDelta(t, want, snap.Directions[1].LengthM, 1e-9)

	require.Len(t, snap.Slots, 5)
	assert.Equal(t, domain.SlotStatusDamaged, snap.Slots[0].Status)
	assert.Equal(t, "hdpe-40", snap.Slots[1].Kind)

	// Duct cables skip the damaged slot and take the lowest free one
	require.Len(t, snap.Cables, 3)
	assert.Equal(t, []domain.SlotID{2, 4}, snap.Cables[0].SlotIDs)
	assert.Equal(t, []domain.SlotID{3}, snap.Cables[1].SlotIDs)
	assert.Empty(t, snap.Cables[2].SlotIDs)
	assert.Len(t, snap.Cables[2].Polyline, 2)

	require.Len(t, snap.Observations, 2)
	assert.Equal(t, domain.DirectionID(1), snap.Observations[0].DirectionID)
	assert.Equal(t, domain.WellID(3), snap.Observations[1].WellID)
	assert.Equal(t, domain.DirectionID(2), snap.Observations[1].DirectionID)

	g, err := network.Build(snap)
	require.NoError(t, err)
	// 3 slots on D-1: one damaged, two cables
	assert.Equal(t, 0, g.FreeSlotCount(1))
	assert.Equal(t, 1, g.FreeSlotCount(2))
}

func TestParseSheetErrors(t *testing.T) {
	base := `
owners: [telco]
wells:
  A: {}
  B: {}
directions:
  - between: [A, B]
    slots: 1
`
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"unknown well", "cables:\n  - route: [A, Z]\n", `unknown well "Z"`},
		{"no direction", "cables:\n  - route: [A, A]\n", "no direction between A and A"},
		{"full direction", "cables:\n  - route: [A, B]\n  - route: [B, A]\n", "is full"},
		{"short route", "cables:\n  - route: [A]\n", "at least two wells"},
		{"unknown owner", "cables:\n  - route: [A, B]\n    owner: city\n", `unknown owner "city"`},
		{"unknown direction", "observations:\n  - at: A\n    direction: D-9\n", `unknown direction "D-9"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSheet([]byte(base + tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := ParseSheet([]byte("owners: [a, a]\n"))
	assert.ErrorContains(t, err, "listed twice")

	_, err = ParseSheet([]byte("wells: [oops"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}
