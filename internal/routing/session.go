package routing

import (
	"slices"

	"ductnet/internal/domain"
	"ductnet/internal/network"
)

// Session builds one cable route leg by leg. Every direction used by an
// earlier leg is excluded from later legs, so the route never traverses a
// direction twice.
type Session struct {
	g     *network.Graph
	start domain.WellID
	legs  []Path
	used  DirectionSet
}

// NewSession starts a route at a well
func NewSession(g *network.Graph, start domain.WellID) (*Session, error) {
	if !g.HasWell(start) {
		return nil, &domain.NotFoundError{Entity: "well", ID: int64(start)}
	}
	return &Session{
		g:     g,
		start: start,
		used:  make(DirectionSet),
	}, nil
}

// End returns the well the route currently ends at
func (s *Session) End() domain.WellID {
	if len(s.legs) == 0 {
		return s.start
	}
	return s.legs[len(s.legs)-1].End
}

// Extend routes the next leg to a waypoint and returns it
func (s *Session) Extend(to domain.WellID) (Path, error) {
	route, err := Extend(s.Route(), s.g, s.End(), to)
	if err != nil {
		return Path{}, err
	}

	prev := s.Route()
	leg := Path{
		Start:        prev.End,
		End:          route.End,
		WellIDs:      slices.Clone(route.WellIDs[len(prev.WellIDs)-1:]),
		DirectionIDs: slices.Clone(route.DirectionIDs[len(prev.DirectionIDs):]),
		LengthM:      route.LengthM - prev.LengthM,
	}
	s.legs = append(s.legs, leg)
	for _, id := range leg.DirectionIDs {
		s.used[id] = struct{}{}
	}
	return leg, nil
}

// Undo drops the last leg and releases its directions. It reports false
// when there is nothing to undo.
func (s *Session) Undo() bool {
	if len(s.legs) == 0 {
		return false
	}
	last := s.legs[len(s.legs)-1]
	s.legs = s.legs[:len(s.legs)-1]
	for _, id := range last.DirectionIDs {
		delete(s.used, id)
	}
	return true
}

// Legs returns the legs routed so far
func (s *Session) Legs() []Path {
	return slices.Clone(s.legs)
}

// Route returns the concatenation of all legs
func (s *Session) Route() Path {
	route := Path{Start: s.start, End: s.start, WellIDs: []domain.WellID{s.start}}
	for _, leg := range s.legs {
		route = join(route, leg)
	}
	return route
}

// Excluded returns the directions later legs may not use, ascending
func (s *Session) Excluded() []domain.DirectionID {
	return s.used.Sorted()
}
