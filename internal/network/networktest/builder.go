// Package networktest provides snapshot builders for tests.
package networktest

import (
	"testing"
	"time"

	"ductnet/internal/domain"
	"ductnet/internal/network"
)

// Builder assembles a snapshot record by record
type Builder struct {
	snap     *domain.Snapshot
	nextSlot domain.SlotID
	nextCab  domain.CableID
}

// New creates an empty builder
func New() *Builder {
	return &Builder{snap: domain.NewSnapshot(), nextSlot: 1000, nextCab: 5000}
}

// Well adds a well with a display number
func (b *Builder) Well(id domain.WellID, number string) *Builder {
	b.snap.AddWell(domain.Well{ID: id, Number: number, Kind: domain.WellKindOrdinary})
	return b
}

// Wells adds wells numbered by their position in names, starting at ID 1
func (b *Builder) Wells(names ...string) *Builder {
	for i, n := range names {
		b.Well(domain.WellID(i+1), n)
	}
	return b
}

// Direction adds an active direction
func (b *Builder) Direction(id domain.DirectionID, from, to domain.WellID, length float64, slots int) *Builder {
	return b.DirectionOwned(id, from, to, length, slots, domain.NoOwner)
}

// DirectionOwned adds an active direction with an owner
func (b *Builder) DirectionOwned(id domain.DirectionID, from, to domain.WellID, length float64, slots int, owner domain.OwnerID) *Builder {
	b.snap.AddDirection(domain.ChannelDirection{
		ID:          id,
		StartWellID: from,
		EndWellID:   to,
		LengthM:     length,
		SlotCount:   slots,
		OwnerID:     owner,
		Status:      domain.DirectionStatusActive,
	})
	return b
}

// Slot adds a slot record
func (b *Builder) Slot(id domain.SlotID, dir domain.DirectionID, number int, status domain.SlotStatus) *Builder {
	b.snap.AddSlot(domain.ChannelSlot{ID: id, DirectionID: dir, Number: number, Status: status})
	return b
}

// Cable adds a duct cable occupying a fresh slot on each direction, in
// order. Slot numbers are taken from the top of each direction so they do
// not collide with explicit Slot calls using low numbers.
func (b *Builder) Cable(dirs ...domain.DirectionID) *Builder {
	b.nextCab++
	cable := domain.Cable{ID: b.nextCab, Topology: domain.CableTopologyDuct}
	for _, d := range dirs {
		b.nextSlot++
		b.snap.AddSlot(domain.ChannelSlot{
			ID:          b.nextSlot,
			DirectionID: d,
			Number:      b.freeNumber(d),
			Status:      domain.SlotStatusAvailable,
		})
		cable.SlotIDs = append(cable.SlotIDs, b.nextSlot)
	}
	b.snap.AddCable(cable)
	return b
}

func (b *Builder) freeNumber(dir domain.DirectionID) int {
	count := 0
	for _, d := range b.snap.Directions {
		if d.ID == dir {
			count = d.SlotCount
		}
	}
	taken := make(map[int]bool)
	for _, s := range b.snap.Slots {
		if s.DirectionID == dir {
			taken[s.Number] = true
		}
	}
	for n := count; n >= 1; n-- {
		if !taken[n] {
			return n
		}
	}
	return count + 1
}

// Observe adds an inventory observation
func (b *Builder) Observe(well domain.WellID, dir domain.DirectionID, count int, at time.Time) *Builder {
	b.snap.AddObservation(domain.InventoryObservation{
		WellID: well, DirectionID: dir, Count: count, CapturedAt: at,
	})
	return b
}

// Snapshot returns the assembled snapshot
func (b *Builder) Snapshot() *domain.Snapshot {
	return b.snap
}

// Graph builds the snapshot, failing the test on error
func (b *Builder) Graph(t testing.TB) *network.Graph {
	t.Helper()
	g, err := network.Build(b.snap)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

// Line builds wells A, B, C joined by directions 1 (A-B, 10 m) and
// 2 (B-C, 15 m), each with the given slot count
func Line(slots int) *Builder {
	return New().
		Wells("A", "B", "C").
		Direction(1, 1, 2, 10, slots).
		Direction(2, 2, 3, 15, slots)
}
