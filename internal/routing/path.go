package routing

import (
	"cmp"
	"fmt"
	"slices"

	"ductnet/internal/domain"
	"ductnet/internal/network"
)

// Path is an ordered walk through the network. WellIDs has one more entry
// than DirectionIDs; an empty path holds only its start well.
type Path struct {
	Start        domain.WellID        `json:"start_well_id"`
	End          domain.WellID        `json:"end_well_id"`
	WellIDs      []domain.WellID      `json:"well_ids"`
	DirectionIDs []domain.DirectionID `json:"direction_ids"`
	LengthM      float64              `json:"length_m"`
}

// Hops returns the number of directions on the path
func (p Path) Hops() int {
	return len(p.DirectionIDs)
}

// IsEmpty reports whether the path traverses no direction
func (p Path) IsEmpty() bool {
	return len(p.DirectionIDs) == 0
}

// DirectionSet is a set of direction IDs
type DirectionSet map[domain.DirectionID]struct{}

// NewDirectionSet creates a set holding ids
func NewDirectionSet(ids ...domain.DirectionID) DirectionSet {
	s := make(DirectionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s DirectionSet) Has(id domain.DirectionID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order
func (s DirectionSet) Sorted() []domain.DirectionID {
	ids := make([]domain.DirectionID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FindPath returns the shortest path from start to end through directions
// that have a free slot and are not excluded
func FindPath(g *network.Graph, start, end domain.WellID, excluded DirectionSet) (Path, error) {
	return findPath(g, start, end, func(_ domain.WellID, n network.Neighbor) bool {
		return g.HasFreeSlot(n.Direction) && !excluded.Has(n.Direction)
	})
}

func findPath(g *network.Graph, start, end domain.WellID, traversable func(domain.WellID, network.Neighbor) bool) (Path, error) {
	if !g.HasWell(start) {
		return Path{}, &domain.NotFoundError{Entity: "well", ID: int64(start)}
	}
	if !g.HasWell(end) {
		return Path{}, &domain.NotFoundError{Entity: "well", ID: int64(end)}
	}
	if start == end {
		return Path{Start: start, End: end, WellIDs: []domain.WellID{start}}, nil
	}

	tree := ShortestTree(g, start, TreeOptions{Traversable: traversable})
	p, ok := tree.PathTo(end)
	if !ok {
		return Path{}, &domain.NoPathFoundError{From: start, To: end}
	}
	return p, nil
}

// Extend appends the shortest segment from -> to that avoids every
// direction already on existing. When existing is non-empty, from must be
// its end. Fails with *domain.RouteOverlapError when to is reachable only by
// reusing a direction of existing.
func Extend(existing Path, g *network.Graph, from, to domain.WellID) (Path, error) {
	if existing.Start != 0 && from != existing.End {
		return Path{}, fmt.Errorf("%w: route ends at well %d, extension starts at %d",
			domain.ErrDiscontinuousRoute, existing.End, from)
	}

	used := NewDirectionSet(existing.DirectionIDs...)
	leg, err := FindPath(g, from, to, used)
	if err != nil {
		if !domain.IsNoSolution(err) || len(used) == 0 {
			return Path{}, err
		}
		// distinguish "blocked by our own route" from "unreachable"
		relaxed, rerr := FindPath(g, from, to, nil)
		if rerr != nil {
			return Path{}, err
		}
		var blocking []domain.DirectionID
		for _, id := range relaxed.DirectionIDs {
			if used.Has(id) {
				blocking = append(blocking, id)
			}
		}
		return Path{}, &domain.RouteOverlapError{From: from, To: to, Blocking: blocking}
	}

	return join(existing, leg), nil
}

// join concatenates two paths that meet at a's end
func join(a, b Path) Path {
	if a.Start == 0 {
		return b
	}
	out := Path{
		Start:        a.Start,
		End:          b.End,
		WellIDs:      slices.Clone(a.WellIDs),
		DirectionIDs: slices.Clone(a.DirectionIDs),
		LengthM:      a.LengthM + b.LengthM,
	}
	if len(b.WellIDs) > 1 {
		out.WellIDs = append(out.WellIDs, b.WellIDs[1:]...)
	}
	out.DirectionIDs = append(out.DirectionIDs, b.DirectionIDs...)
	return out
}

// SlotAssignment is the slot a route takes on one direction
type SlotAssignment struct {
	DirectionID domain.DirectionID `json:"direction_id"`
	SlotNumber  int                `json:"slot_number"`
	SlotID      domain.SlotID      `json:"slot_id,omitempty"` // 0 when the slot has no record yet
}

// AllocateSlots picks the lowest free slot on every direction of a path,
// in route order. The graph is not modified; two allocations against the
// same graph may pick the same slots.
func AllocateSlots(g *network.Graph, p Path) ([]SlotAssignment, error) {
	out := make([]SlotAssignment, 0, len(p.DirectionIDs))
	for _, id := range p.DirectionIDs {
		if _, ok := g.Direction(id); !ok {
			return nil, &domain.NotFoundError{Entity: "direction", ID: int64(id)}
		}
		free := g.FreeSlots(id)
		if len(free) == 0 {
			return nil, fmt.Errorf("direction %d has no free slot: %w", id,
				&domain.NoPathFoundError{From: p.Start, To: p.End})
		}
		slot := slices.MinFunc(free, func(a, b network.FreeSlot) int { return cmp.Compare(a.Number, b.Number) })
		out = append(out, SlotAssignment{DirectionID: id, SlotNumber: slot.Number, SlotID: slot.ID})
	}
	return out, nil
}
