// Package inference proposes assumed cable routes that explain positive
// unaccounted values.
//
// Every unit of positive unaccounted value on a direction is an unexplained
// cable: it leaves the direction at both endpoints and must continue
// somewhere. The engine pairs such units greedily. From an unmatched end it
// walks the shortest chain of connecting directions to another direction
// with unexplained capacity and, when the partner is eligible, commits a
// route through both, consuming one unit on each.
//
// # Variants
//
// Each variant names a Profile of thresholds. Variant k runs the passes of
// profiles 1..k in order over the same residual capacity, so every route of
// variant k-1 is also a route of variant k and the explained capacity never
// shrinks as the variant number grows.
//
// # Determinism
//
// Ends are processed by (direction ID, well ID). Searches, candidate
// ranking and owner attribution have total orders, so identical input
// yields identical routes.
package inference

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"ductnet/internal/domain"
	"ductnet/internal/network"
	"ductnet/internal/routing"
)

const lengthEpsilon = 1e-9

// Result is the outcome of one inference run
type Result struct {
	Variant          domain.Variant        `json:"variant"`
	UsedUnaccounted  int                   `json:"used_unaccounted"`
	TotalUnaccounted int                   `json:"total_unaccounted"`
	Routes           []domain.AssumedRoute `json:"routes"`
	Stats            Stats                 `json:"stats"`
}

// Engine runs inference with a set of profiles
type Engine struct {
	profiles Profiles
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil logger uses slog.Default().
func NewEngine(profiles Profiles, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{profiles: profiles, logger: logger}
}

// Infer runs inference with the default profiles
func Infer(g *network.Graph, unaccounted []domain.UnaccountedValue, variant domain.Variant) (*Result, error) {
	return NewEngine(DefaultProfiles(), nil).Infer(g, unaccounted, variant)
}

// Profiles returns the engine's profiles
func (e *Engine) Profiles() Profiles {
	return e.profiles
}

// Infer proposes routes for the positive values in unaccounted. Having
// nothing to explain is not an error.
func (e *Engine) Infer(g *network.Graph, unaccounted []domain.UnaccountedValue, variant domain.Variant) (*Result, error) {
	cascade, err := e.profiles.Cascade(variant)
	if err != nil {
		return nil, err
	}

	st, err := newState(g, unaccounted)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Variant:          variant,
		TotalUnaccounted: st.total,
		Routes:           []domain.AssumedRoute{},
	}
	for _, p := range cascade {
		before := len(res.Routes)
		res.Routes = append(res.Routes, st.pair(p, variant)...)
		if p.SingleEdgeFallback {
			res.Routes = append(res.Routes, st.fallback(p, variant)...)
		}
		e.logger.Debug("inference pass complete",
			"variant", variant.String(),
			"tier", p.Tier,
			"routes", len(res.Routes)-before,
			"remaining", st.remaining())
	}
	res.UsedUnaccounted = st.total - st.remaining()
	res.Stats = computeStats(res)

	e.logger.Info("inferred assumed cables",
		"variant", variant.String(),
		"routes", len(res.Routes),
		"used_unaccounted", res.UsedUnaccounted,
		"total_unaccounted", res.TotalUnaccounted)
	return res, nil
}

// state is the residual capacity shared by the passes of one run
type state struct {
	g        *network.Graph
	rem      map[domain.DirectionID]int
	observed map[domain.DirectionID]bool
	total    int
}

func newState(g *network.Graph, values []domain.UnaccountedValue) (*state, error) {
	st := &state{
		g:        g,
		rem:      make(map[domain.DirectionID]int),
		observed: make(map[domain.DirectionID]bool),
	}
	seen := make(map[domain.DirectionID]bool, len(values))
	for _, v := range values {
		if _, ok := g.Direction(v.DirectionID); !ok {
			return nil, &domain.NotFoundError{Entity: "direction", ID: int64(v.DirectionID)}
		}
		if seen[v.DirectionID] {
			return nil, &domain.InvalidTopologyError{
				Entity: "direction", ID: int64(v.DirectionID), Reason: "duplicate unaccounted value",
			}
		}
		seen[v.DirectionID] = true
		if !v.Known {
			continue
		}
		st.observed[v.DirectionID] = true
		if n := v.Positive(); n > 0 {
			st.rem[v.DirectionID] = n
			st.total += n
		}
	}
	return st, nil
}

func (st *state) remaining() int {
	n := 0
	for _, r := range st.rem {
		n += r
	}
	return n
}

// pending returns the directions with remaining capacity, ascending
func (st *state) pending() []domain.DirectionID {
	ids := make([]domain.DirectionID, 0, len(st.rem))
	for id, r := range st.rem {
		if r > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// pair runs greedy passes of one profile until a pass commits nothing
func (st *state) pair(p Profile, variant domain.Variant) []domain.AssumedRoute {
	var routes []domain.AssumedRoute
	for {
		committed := false
		for _, x := range st.pending() {
			dir, _ := st.g.Direction(x)
			for _, w := range sortedEnds(dir) {
				for st.rem[x] > 0 {
					route, ok := st.match(p, dir, w)
					if !ok {
						break
					}
					route.Variant = variant
					routes = append(routes, route)
					committed = true
				}
			}
		}
		if !committed {
			return routes
		}
	}
}

func sortedEnds(d domain.ChannelDirection) []domain.WellID {
	return []domain.WellID{min(d.StartWellID, d.EndWellID), max(d.StartWellID, d.EndWellID)}
}

// candidate is a partner direction reached from an unmatched end
type candidate struct {
	dir     domain.ChannelDirection
	at      domain.WellID // well where the connector meets dir
	connLen float64
	hops    int
}

// match finds and commits the best partner for the end of x at well w
func (st *state) match(p Profile, x domain.ChannelDirection, w domain.WellID) (domain.AssumedRoute, bool) {
	cands, tree := st.candidates(p, x, w)
	eligible := filterOwner(p.OwnerRule, x.OwnerID, cands)
	if len(eligible) == 0 {
		return domain.AssumedRoute{}, false
	}

	pool := 0
	for _, c := range eligible {
		pool += st.rem[c.dir.ID]
	}
	var chosen *candidate
	for i := range eligible {
		if float64(st.rem[eligible[i].dir.ID])/float64(pool) >= p.MinSignal-lengthEpsilon {
			chosen = &eligible[i]
			break
		}
	}
	if chosen == nil {
		return domain.AssumedRoute{}, false
	}

	conn, _ := tree.PathTo(chosen.at)

	dirs := make([]domain.DirectionID, 0, conn.Hops()+2)
	dirs = append(dirs, x.ID)
	dirs = append(dirs, conn.DirectionIDs...)
	dirs = append(dirs, chosen.dir.ID)

	st.rem[x.ID]--
	st.rem[chosen.dir.ID]--

	route := domain.AssumedRoute{
		Tier:         p.Tier,
		StartWellID:  x.Other(w),
		EndWellID:    chosen.dir.Other(chosen.at),
		DirectionIDs: dirs,
		LengthM:      st.g.PathLength(dirs),
		Confidence:   p.Confidence,
	}
	route.OwnerID, route.OwnerUndetermined = attributeOwner(st.g, dirs)
	return route, true
}

// tree searches connectors from w. Directions with remaining capacity are
// partners, never connectors.
func (st *state) tree(p Profile, x domain.ChannelDirection, w domain.WellID) *routing.Tree {
	connectorHops := p.MaxHops - 2
	return routing.ShortestTree(st.g, w, routing.TreeOptions{
		MaxHops: max(connectorHops, 0),
		Traversable: func(_ domain.WellID, n network.Neighbor) bool {
			if connectorHops <= 0 || n.Direction == x.ID || st.rem[n.Direction] > 0 {
				return false
			}
			d, _ := st.g.Direction(n.Direction)
			if d.IsDecommissioned() {
				return false
			}
			return p.TraverseObserved || !st.observed[n.Direction]
		},
	})
}

// candidates lists partner directions reachable from the end of x at w,
// best first: connector length, connector hops, direction ID
func (st *state) candidates(p Profile, x domain.ChannelDirection, w domain.WellID) ([]candidate, *routing.Tree) {
	tree := st.tree(p, x, w)
	best := make(map[domain.DirectionID]candidate)
	for _, u := range tree.Settled() {
		dist, hops, _ := tree.Distance(u)
		for _, n := range st.g.Neighbors(u) {
			if n.Direction == x.ID || st.rem[n.Direction] <= 0 {
				continue
			}
			c := candidate{at: u, connLen: dist, hops: hops}
			if cur, ok := best[n.Direction]; ok && !candidateLess(c, cur) {
				continue
			}
			c.dir, _ = st.g.Direction(n.Direction)
			best[n.Direction] = c
		}
	}

	out := make([]candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b candidate) int {
		if candidateLess(a, b) {
			return -1
		}
		if candidateLess(b, a) {
			return 1
		}
		return cmp.Compare(a.dir.ID, b.dir.ID)
	})
	return out, tree
}

func candidateLess(a, b candidate) bool {
	if math.Abs(a.connLen-b.connLen) > lengthEpsilon {
		return a.connLen < b.connLen
	}
	if a.hops != b.hops {
		return a.hops < b.hops
	}
	return a.dir.ID < b.dir.ID
}

func filterOwner(rule OwnerRule, owner domain.OwnerID, cands []candidate) []candidate {
	if rule == OwnerAny {
		return cands
	}
	var same []candidate
	for _, c := range cands {
		if c.dir.OwnerID == owner {
			same = append(same, c)
		}
	}
	if rule == OwnerPrefer && len(same) == 0 {
		return cands
	}
	return same
}

// fallback emits one single-direction route per remaining unit
func (st *state) fallback(p Profile, variant domain.Variant) []domain.AssumedRoute {
	var routes []domain.AssumedRoute
	for _, id := range st.pending() {
		d, _ := st.g.Direction(id)
		owner, undetermined := attributeOwner(st.g, []domain.DirectionID{id})
		for st.rem[id] > 0 {
			st.rem[id]--
			routes = append(routes, domain.AssumedRoute{
				Variant:           variant,
				Tier:              domain.TierFallback,
				StartWellID:       d.StartWellID,
				EndWellID:         d.EndWellID,
				DirectionIDs:      []domain.DirectionID{id},
				OwnerID:           owner,
				OwnerUndetermined: undetermined,
				LengthM:           d.LengthM,
				Confidence:        p.FallbackConfidence,
			})
		}
	}
	return routes
}

// attributeOwner returns the plurality owner of the directions. A tie or
// an unset plurality leaves the owner undetermined.
func attributeOwner(g *network.Graph, dirs []domain.DirectionID) (domain.OwnerID, bool) {
	counts := make(map[domain.OwnerID]int)
	for _, id := range dirs {
		d, _ := g.Direction(id)
		counts[d.OwnerID]++
	}

	var top domain.OwnerID
	best, tied := 0, false
	for owner, n := range counts {
		switch {
		case n > best:
			top, best, tied = owner, n, false
		case n == best:
			tied = true
		}
	}
	if tied || top == domain.NoOwner {
		return domain.NoOwner, true
	}
	return top, false
}

// String summarises a result for logs and terminals
func (r *Result) String() string {
	return fmt.Sprintf("variant %d (%s): %d routes, %d/%d unaccounted explained",
		int(r.Variant), r.Variant, len(r.Routes), r.UsedUnaccounted, r.TotalUnaccounted)
}
