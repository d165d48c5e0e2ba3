package routing

import (
	"cmp"
	"container/heap"
	"math"
	"slices"

	"ductnet/internal/domain"
	"ductnet/internal/network"
)

// lengthEpsilon is the tolerance under which two path lengths are equal
const lengthEpsilon = 1e-9

// TreeOptions restricts a shortest-path search
type TreeOptions struct {
	// Traversable reports whether a direction may be crossed from a well.
	// Nil allows every direction.
	Traversable func(from domain.WellID, n network.Neighbor) bool

	// MaxHops bounds the number of directions on any path. Zero means
	// unbounded. With a bound the search keeps one label per well and hop
	// count, so a longer path with fewer hops still extends when the
	// shortest path to the same well has used up the budget.
	MaxHops int
}

// label is the best known path from the source to one well
type label struct {
	dist  float64
	wells []domain.WellID
	dirs  []domain.DirectionID
}

func (l *label) hops() int {
	return len(l.dirs)
}

// Tree holds the shortest paths from one source well
type Tree struct {
	g       *network.Graph
	source  domain.WellID
	best    map[domain.WellID]*label
	settled []domain.WellID
}

// layerKey identifies a search label: one per well, or one per well and
// hop count when hops are bounded
type layerKey struct {
	well domain.WellID
	hops int
}

// ShortestTree runs Dijkstra from source. Unknown sources yield an empty
// tree.
func ShortestTree(g *network.Graph, source domain.WellID, opts TreeOptions) *Tree {
	t := &Tree{
		g:      g,
		source: source,
		best:   make(map[domain.WellID]*label),
	}
	if !g.HasWell(source) {
		return t
	}

	layered := opts.MaxHops > 0
	key := func(w domain.WellID, l *label) layerKey {
		if layered {
			return layerKey{well: w, hops: l.hops()}
		}
		return layerKey{well: w}
	}

	root := &label{wells: []domain.WellID{source}}
	tentative := map[layerKey]*label{key(source, root): root}
	done := make(map[layerKey]bool)

	pq := &queue{less: t.less}
	heap.Push(pq, entry{well: source, lab: root})

	for pq.Len() > 0 {
		e := heap.Pop(pq).(entry)
		k := key(e.well, e.lab)
		if done[k] || tentative[k] != e.lab {
			continue
		}
		done[k] = true
		// labels pop in order, so the first one per well is its best
		if _, ok := t.best[e.well]; !ok {
			t.best[e.well] = e.lab
			t.settled = append(t.settled, e.well)
		}

		if layered && e.lab.hops() >= opts.MaxHops {
			continue
		}
		for _, n := range g.Neighbors(e.well) {
			// a settled label is no longer; it dominates unless it used more hops
			if b, ok := t.best[n.Other]; ok && (!layered || b.hops() <= e.lab.hops()+1) {
				continue
			}
			if layered && slices.Contains(e.lab.wells, n.Other) {
				continue
			}
			if opts.Traversable != nil && !opts.Traversable(e.well, n) {
				continue
			}
			next := &label{
				dist:  e.lab.dist + n.LengthM,
				wells: append(slices.Clip(e.lab.wells), n.Other),
				dirs:  append(slices.Clip(e.lab.dirs), n.Direction),
			}
			nk := key(n.Other, next)
			if cur, ok := tentative[nk]; ok && !t.less(next, cur) {
				continue
			}
			tentative[nk] = next
			heap.Push(pq, entry{well: n.Other, lab: next})
		}
	}
	return t
}

// less orders labels by length, hops, well numbers, then well IDs
func (t *Tree) less(a, b *label) bool {
	if math.Abs(a.dist-b.dist) > lengthEpsilon {
		return a.dist < b.dist
	}
	if a.hops() != b.hops() {
		return a.hops() < b.hops()
	}
	return t.compareWells(a.wells, b.wells) < 0
}

func (t *Tree) compareWells(a, b []domain.WellID) int {
	for i := range min(len(a), len(b)) {
		wa, _ := t.g.Well(a[i])
		wb, _ := t.g.Well(b[i])
		if c := cmp.Compare(wa.Number, wb.Number); c != 0 {
			return c
		}
	}
	for i := range min(len(a), len(b)) {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Source returns the well the tree was grown from
func (t *Tree) Source() domain.WellID {
	return t.source
}

// Reached reports whether a path to the well was found
func (t *Tree) Reached(w domain.WellID) bool {
	_, ok := t.best[w]
	return ok
}

// Distance returns the length and hop count of the best path to a well
func (t *Tree) Distance(w domain.WellID) (float64, int, bool) {
	l, ok := t.best[w]
	if !ok {
		return 0, 0, false
	}
	return l.dist, l.hops(), true
}

// PathTo returns the best path from the source to a well
func (t *Tree) PathTo(w domain.WellID) (Path, bool) {
	l, ok := t.best[w]
	if !ok {
		return Path{}, false
	}
	return Path{
		Start:        t.source,
		End:          w,
		WellIDs:      slices.Clone(l.wells),
		DirectionIDs: slices.Clone(l.dirs),
		LengthM:      l.dist,
	}, true
}

// Settled returns the reached wells from nearest to farthest
func (t *Tree) Settled() []domain.WellID {
	return slices.Clone(t.settled)
}

type entry struct {
	well domain.WellID
	lab  *label
}

// queue is a container/heap priority queue of search entries
type queue struct {
	items []entry
	less  func(a, b *label) bool
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	return q.less(q.items[i].lab, q.items[j].lab)
}

func (q *queue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *queue) Push(x any) { q.items = append(q.items, x.(entry)) }

func (q *queue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}
