package network

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"slices"

	"ductnet/internal/domain"
)

// Build creates a graph from a snapshot. Observations are ignored; they are
// reconciliation input, not part of the network.
func Build(snap *domain.Snapshot) (*Graph, error) {
	return BuildWithRevision(snap, Fingerprint(snap))
}

// BuildWithRevision is Build for callers that already hold the snapshot's
// Fingerprint, so the records are hashed once
func BuildWithRevision(snap *domain.Snapshot, revision string) (*Graph, error) {
	if snap == nil {
		snap = domain.NewSnapshot()
	}

	g := &Graph{
		wellIndex: make(map[domain.WellID]int, len(snap.Wells)),
		dirIndex:  make(map[domain.DirectionID]int, len(snap.Directions)),
		slotDir:   make(map[domain.SlotID]domain.DirectionID, len(snap.Slots)),
	}

	if err := g.addWells(snap.Wells); err != nil {
		return nil, err
	}
	if err := g.addDirections(snap.Directions); err != nil {
		return nil, err
	}
	slotRefs, err := g.addSlots(snap.Slots)
	if err != nil {
		return nil, err
	}
	if err := g.occupy(snap.Cables, slotRefs); err != nil {
		return nil, err
	}

	g.computeCapacity()
	g.revision = revision
	return g, nil
}

func (g *Graph) addWells(wells []domain.Well) error {
	g.wells = slices.Clone(wells)
	slices.SortFunc(g.wells, func(a, b domain.Well) int { return cmp.Compare(a.ID, b.ID) })

	for i, w := range g.wells {
		if w.ID <= 0 {
			return &domain.InvalidTopologyError{Entity: "well", ID: int64(w.ID), Reason: "id must be positive"}
		}
		if _, dup := g.wellIndex[w.ID]; dup {
			return &domain.InvalidTopologyError{Entity: "well", ID: int64(w.ID), Reason: "duplicate id"}
		}
		g.wellIndex[w.ID] = i
	}
	g.adj = make([][]Neighbor, len(g.wells))
	return nil
}

func (g *Graph) addDirections(dirs []domain.ChannelDirection) error {
	g.dirs = slices.Clone(dirs)
	slices.SortFunc(g.dirs, func(a, b domain.ChannelDirection) int { return cmp.Compare(a.ID, b.ID) })

	for i, d := range g.dirs {
		invalid := func(reason string) error {
			return &domain.InvalidTopologyError{Entity: "direction", ID: int64(d.ID), Reason: reason}
		}
		if d.ID <= 0 {
			return invalid("id must be positive")
		}
		if _, dup := g.dirIndex[d.ID]; dup {
			return invalid("duplicate id")
		}
		si, ok := g.wellIndex[d.StartWellID]
		if !ok {
			return invalid(fmt.Sprintf("start well %d does not exist", d.StartWellID))
		}
		ei, ok := g.wellIndex[d.EndWellID]
		if !ok {
			return invalid(fmt.Sprintf("end well %d does not exist", d.EndWellID))
		}
		if d.StartWellID == d.EndWellID {
			return invalid("endpoints must be distinct wells")
		}
		if d.LengthM < 0 || math.IsNaN(d.LengthM) || math.IsInf(d.LengthM, 0) {
			return invalid(fmt.Sprintf("length %v must be a finite non-negative number", d.LengthM))
		}
		if d.SlotCount < 1 || d.SlotCount > domain.MaxSlotsPerDirection {
			return invalid(fmt.Sprintf("slot count %d outside 1..%d", d.SlotCount, domain.MaxSlotsPerDirection))
		}
		g.dirIndex[d.ID] = i

		// directions are visited in ID order, so adjacency lists stay sorted
		g.adj[si] = append(g.adj[si], Neighbor{Direction: d.ID, Other: d.EndWellID, LengthM: d.LengthM})
		g.adj[ei] = append(g.adj[ei], Neighbor{Direction: d.ID, Other: d.StartWellID, LengthM: d.LengthM})
	}

	g.slots = make([][]slotState, len(g.dirs))
	for i, d := range g.dirs {
		g.slots[i] = make([]slotState, d.SlotCount)
		for n := range g.slots[i] {
			g.slots[i][n].usable = true
		}
	}
	return nil
}

// slotRef locates a slot record inside the arenas
type slotRef struct {
	dir    int
	number int
}

func (g *Graph) addSlots(slots []domain.ChannelSlot) (map[domain.SlotID]slotRef, error) {
	refs := make(map[domain.SlotID]slotRef, len(slots))
	for _, s := range slots {
		invalid := func(reason string) error {
			return &domain.InvalidTopologyError{Entity: "slot", ID: int64(s.ID), Reason: reason}
		}
		if s.ID <= 0 {
			return nil, invalid("id must be positive")
		}
		if _, dup := refs[s.ID]; dup {
			return nil, invalid("duplicate id")
		}
		di, ok := g.dirIndex[s.DirectionID]
		if !ok {
			return nil, invalid(fmt.Sprintf("direction %d does not exist", s.DirectionID))
		}
		if s.Number < 1 || s.Number > g.dirs[di].SlotCount {
			return nil, invalid(fmt.Sprintf("number %d outside 1..%d", s.Number, g.dirs[di].SlotCount))
		}
		state := &g.slots[di][s.Number-1]
		if state.id != 0 {
			return nil, invalid(fmt.Sprintf("number %d already used by slot %d", s.Number, state.id))
		}
		state.id = s.ID
		state.usable = s.Usable()
		refs[s.ID] = slotRef{dir: di, number: s.Number}
		g.slotDir[s.ID] = s.DirectionID
	}
	return refs, nil
}

func (g *Graph) occupy(cables []domain.Cable, refs map[domain.SlotID]slotRef) error {
	sorted := slices.Clone(cables)
	slices.SortFunc(sorted, func(a, b domain.Cable) int { return cmp.Compare(a.ID, b.ID) })

	owner := make(map[domain.SlotID]domain.CableID)
	for _, c := range sorted {
		invalid := func(reason string) error {
			return &domain.InvalidTopologyError{Entity: "cable", ID: int64(c.ID), Reason: reason}
		}
		if !c.IsDuct() {
			if len(c.SlotIDs) > 0 {
				return invalid(fmt.Sprintf("%s cable cannot occupy channel slots", c.Topology))
			}
			continue
		}

		route := make([]domain.ChannelDirection, 0, len(c.SlotIDs))
		used := make(map[domain.DirectionID]bool, len(c.SlotIDs))
		for _, sid := range c.SlotIDs {
			ref, ok := refs[sid]
			if !ok {
				return invalid(fmt.Sprintf("slot %d does not exist", sid))
			}
			if other, taken := owner[sid]; taken {
				if other == c.ID {
					return invalid(fmt.Sprintf("slot %d listed twice", sid))
				}
				return invalid(fmt.Sprintf("slot %d already occupied by cable %d", sid, other))
			}
			dir := g.dirs[ref.dir]
			if used[dir.ID] {
				return invalid(fmt.Sprintf("direction %d used more than once", dir.ID))
			}
			used[dir.ID] = true
			owner[sid] = c.ID
			route = append(route, dir)
		}
		if !contiguous(route) {
			return invalid("slots do not form a contiguous route")
		}
		for _, sid := range c.SlotIDs {
			ref := refs[sid]
			g.slots[ref.dir][ref.number-1].occupied = true
		}
	}
	return nil
}

// contiguous reports whether consecutive directions share a well, walking
// the chain from one of the endpoints of the first direction
func contiguous(route []domain.ChannelDirection) bool {
	if len(route) < 2 {
		return true
	}
	walk := func(start domain.WellID) bool {
		cur := start
		for i := range route {
			if !route[i].Connects(cur) {
				return false
			}
			cur = route[i].Other(cur)
		}
		return true
	}
	return walk(route[0].StartWellID) || walk(route[0].EndWellID)
}

func (g *Graph) computeCapacity() {
	g.recorded = make([]int, len(g.dirs))
	g.free = make([]int, len(g.dirs))
	for i, d := range g.dirs {
		occupied, blocked := 0, 0
		for _, s := range g.slots[i] {
			switch {
			case s.occupied:
				occupied++
			case !s.usable:
				blocked++
			}
		}
		g.recorded[i] = occupied
		if d.IsDecommissioned() {
			continue
		}
		g.free[i] = d.SlotCount - occupied - blocked
	}
}

// Fingerprint returns a sha256 digest of the network records of a snapshot.
// Record order does not affect the result.
func Fingerprint(snap *domain.Snapshot) string {
	if snap == nil {
		snap = domain.NewSnapshot()
	}
	h := sha256.New()

	wells := slices.Clone(snap.Wells)
	slices.SortFunc(wells, func(a, b domain.Well) int { return cmp.Compare(a.ID, b.ID) })
	for _, w := range wells {
		fmt.Fprintf(h, "w|%d|%q|%s|%v|%v\n", w.ID, w.Number, w.Kind, w.Location.Lat, w.Location.Lng)
	}

	dirs := slices.Clone(snap.Directions)
	slices.SortFunc(dirs, func(a, b domain.ChannelDirection) int { return cmp.Compare(a.ID, b.ID) })
	for _, d := range dirs {
		fmt.Fprintf(h, "d|%d|%q|%d|%d|%v|%d|%d|%s\n",
			d.ID, d.Number, d.StartWellID, d.EndWellID, d.LengthM, d.SlotCount, d.OwnerID, d.Status)
	}

	slots := slices.Clone(snap.Slots)
	slices.SortFunc(slots, func(a, b domain.ChannelSlot) int { return cmp.Compare(a.ID, b.ID) })
	for _, s := range slots {
		fmt.Fprintf(h, "s|%d|%d|%d|%q|%s\n", s.ID, s.DirectionID, s.Number, s.Kind, s.Status)
	}

	cables := slices.Clone(snap.Cables)
	slices.SortFunc(cables, func(a, b domain.Cable) int { return cmp.Compare(a.ID, b.ID) })
	for _, c := range cables {
		fmt.Fprintf(h, "c|%d|%s|%d|%v|", c.ID, c.Topology, c.OwnerID, c.SlotIDs)
		writePolyline(h, c.Polyline)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writePolyline(w io.Writer, points []domain.Location) {
	for _, p := range points {
		fmt.Fprintf(w, "%v,%v;", p.Lat, p.Lng)
	}
	io.WriteString(w, "\n")
}
