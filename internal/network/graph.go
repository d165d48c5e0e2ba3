package network

import (
	"slices"

	"ductnet/internal/domain"
)

// Neighbor is one direction leaving a well, seen from that well
type Neighbor struct {
	Direction domain.DirectionID
	Other     domain.WellID
	LengthM   float64
}

// slotState is the occupancy of one slot number inside a direction
type slotState struct {
	id       domain.SlotID // 0 when no slot record exists
	occupied bool
	usable   bool
}

// Graph is an immutable adjacency view of a network snapshot
type Graph struct {
	wells     []domain.Well
	wellIndex map[domain.WellID]int

	dirs     []domain.ChannelDirection
	dirIndex map[domain.DirectionID]int

	// adjacency per well index, ordered by direction ID
	adj [][]Neighbor

	// slots per direction index, position i holds slot number i+1
	slots    [][]slotState
	recorded []int
	free     []int

	slotDir  map[domain.SlotID]domain.DirectionID
	revision string
}

// WellCount returns the number of wells
func (g *Graph) WellCount() int {
	return len(g.wells)
}

// DirectionCount returns the number of directions
func (g *Graph) DirectionCount() int {
	return len(g.dirs)
}

// Well returns the well with the given ID
func (g *Graph) Well(id domain.WellID) (domain.Well, bool) {
	i, ok := g.wellIndex[id]
	if !ok {
		return domain.Well{}, false
	}
	return g.wells[i], true
}

// HasWell reports whether the graph contains the well
func (g *Graph) HasWell(id domain.WellID) bool {
	_, ok := g.wellIndex[id]
	return ok
}

// Direction returns the direction with the given ID
func (g *Graph) Direction(id domain.DirectionID) (domain.ChannelDirection, bool) {
	i, ok := g.dirIndex[id]
	if !ok {
		return domain.ChannelDirection{}, false
	}
	return g.dirs[i], true
}

// Wells returns all wells ordered by ID
func (g *Graph) Wells() []domain.Well {
	return slices.Clone(g.wells)
}

// Directions returns all directions ordered by ID
func (g *Graph) Directions() []domain.ChannelDirection {
	return slices.Clone(g.dirs)
}

// Neighbors returns the directions incident to a well ordered by direction
// ID. Unknown wells have no neighbors.
func (g *Graph) Neighbors(wellID domain.WellID) []Neighbor {
	i, ok := g.wellIndex[wellID]
	if !ok {
		return nil
	}
	return slices.Clone(g.adj[i])
}

// Other returns the endpoint of a direction opposite to wellID
func (g *Graph) Other(dirID domain.DirectionID, wellID domain.WellID) (domain.WellID, bool) {
	i, ok := g.dirIndex[dirID]
	if !ok {
		return 0, false
	}
	other := g.dirs[i].Other(wellID)
	return other, other != 0
}

// FreeSlotCount returns the number of slots a new cable could use
func (g *Graph) FreeSlotCount(dirID domain.DirectionID) int {
	i, ok := g.dirIndex[dirID]
	if !ok {
		return 0
	}
	return g.free[i]
}

// HasFreeSlot reports whether at least one slot is free
func (g *Graph) HasFreeSlot(dirID domain.DirectionID) bool {
	return g.FreeSlotCount(dirID) > 0
}

// RecordedCount returns the number of slots occupied by routed cables
func (g *Graph) RecordedCount(dirID domain.DirectionID) int {
	i, ok := g.dirIndex[dirID]
	if !ok {
		return 0
	}
	return g.recorded[i]
}

// FreeSlot is a slot available to a new cable
type FreeSlot struct {
	Number int
	ID     domain.SlotID // 0 when the slot has no record yet
}

// FreeSlots returns the free slots of a direction ordered by slot number
func (g *Graph) FreeSlots(dirID domain.DirectionID) []FreeSlot {
	i, ok := g.dirIndex[dirID]
	if !ok || g.dirs[i].IsDecommissioned() {
		return nil
	}
	var out []FreeSlot
	for n, s := range g.slots[i] {
		if !s.occupied && s.usable {
			out = append(out, FreeSlot{Number: n + 1, ID: s.id})
		}
	}
	return out
}

// FreeSlotNumbers returns the numbers of the free slots of a direction
func (g *Graph) FreeSlotNumbers(dirID domain.DirectionID) []int {
	free := g.FreeSlots(dirID)
	nums := make([]int, len(free))
	for i, s := range free {
		nums[i] = s.Number
	}
	return nums
}

// CableLength returns the length of a cable: the sum of the traversed
// direction lengths for duct cables, the polyline length otherwise.
// Unknown slots contribute nothing.
func (g *Graph) CableLength(cable domain.Cable) float64 {
	if !cable.IsDuct() {
		return domain.PolylineLength(cable.Polyline)
	}
	total := 0.0
	seen := make(map[domain.DirectionID]bool, len(cable.SlotIDs))
	for _, sid := range cable.SlotIDs {
		dirID, ok := g.slotDir[sid]
		if !ok || seen[dirID] {
			continue
		}
		seen[dirID] = true
		total += g.dirs[g.dirIndex[dirID]].LengthM
	}
	return total
}

// PathLength returns the summed length of a direction sequence
func (g *Graph) PathLength(dirIDs []domain.DirectionID) float64 {
	total := 0.0
	for _, id := range dirIDs {
		if i, ok := g.dirIndex[id]; ok {
			total += g.dirs[i].LengthM
		}
	}
	return total
}

// Revision returns a content fingerprint of the snapshot the graph was
// built from. Equal snapshots yield equal revisions.
func (g *Graph) Revision() string {
	return g.revision
}
