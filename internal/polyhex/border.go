package polyhex

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/polyhex/internal/hex"
)

// PlaceholderCell is an unplaced exterior position touching the assembly.
type PlaceholderCell struct {
	Coord hex.Coord
	// Feature is inferred from the placed cell behind the lowest-numbered
	// placed side, so it does not depend on insertion order.
	Feature Feature
	// Anchor is that placed cell: the interior cell region matches are
	// evaluated against.
	Anchor hex.Coord
	// Sides holds, per edge of the placeholder, the feature of the placed
	// edge facing it, or Placeholder where nothing is placed.
	Sides [6]Feature
}

// AnchorSide returns the placeholder edge index facing its anchor.
func (p PlaceholderCell) AnchorSide() int {
	return p.Coord.DirectionTo(p.Anchor)
}

// Position returns the cartesian centre for a cell of the given radius.
func (p PlaceholderCell) Position(radius float64) (x, y float64) {
	return hex.DisplayPosition(p.Coord).Scale(radius)
}

// Pair is an ordered pair of border coordinates.
type Pair struct {
	From hex.Coord
	To   hex.Coord
}

// Link is the connectivity metadata between two placeholders.
type Link struct {
	InverseDistance float64
	FeatureMatch    uint8
	RegionMatch     uint8
}

// Vector returns the link as a three-element attribute vector.
func (l Link) Vector() [3]float64 {
	return [3]float64{l.InverseDistance, float64(l.FeatureMatch), float64(l.RegionMatch)}
}

// cellLookup resolves a coordinate to a placed cell. The assembly's arena
// implements it; the border only ever holds coordinates.
type cellLookup interface {
	Cell(c hex.Coord) (*Cell, bool)
}

// row is the stored half of a Link. Region matches depend on merges that can
// happen anywhere in the assembly, so they are resolved on read.
type row struct {
	inverseDistance float64
	featureMatch    bool
}

// BorderGraph is the incrementally maintained fringe of an assembly.
type BorderGraph struct {
	nodes   map[hex.Coord]*PlaceholderCell
	order   []hex.Coord
	rows    map[Pair]row
	regions *RegionTracker
}

// NewBorderGraph returns an empty border that resolves region matches
// against regions.
func NewBorderGraph(regions *RegionTracker) *BorderGraph {
	return &BorderGraph{
		nodes:   make(map[hex.Coord]*PlaceholderCell),
		rows:    make(map[Pair]row),
		regions: regions,
	}
}

// Insert updates the border for a cell that has just been placed. cells must
// already contain it.
func (g *BorderGraph) Insert(cell *Cell, cells cellLookup) {
	g.retire(cell.Coord())

	touched := mapset.New[hex.Coord]()
	for i := 0; i < 6; i++ {
		adj := cell.AdjacentCoordinate(i)
		if _, placed := cells.Cell(adj); placed {
			continue
		}
		p, ok := g.nodes[adj]
		if !ok {
			g.nodes[adj] = g.placeholder(adj, cells)
			g.order = append(g.order, adj)
			touched.Put(adj)
			continue
		}
		p.Sides[hex.Opposite(i)] = cell.EdgeFeature(i)
		before := p.Feature
		g.anchor(p, cells)
		if p.Feature != before {
			touched.Put(adj)
		}
	}
	touched.Each(func(c hex.Coord) {
		g.refresh(c)
	})
}

// Has reports whether c is a border coordinate, i.e. a legal insertion site.
func (g *BorderGraph) Has(c hex.Coord) bool {
	_, ok := g.nodes[c]
	return ok
}

// Size returns the number of placeholders.
func (g *BorderGraph) Size() int { return len(g.nodes) }

// Node returns the placeholder at c.
func (g *BorderGraph) Node(c hex.Coord) (PlaceholderCell, bool) {
	p, ok := g.nodes[c]
	if !ok {
		return PlaceholderCell{}, false
	}
	return *p, true
}

// Nodes returns a copy of the coordinate → placeholder mapping.
func (g *BorderGraph) Nodes() map[hex.Coord]PlaceholderCell {
	out := make(map[hex.Coord]PlaceholderCell, len(g.nodes))
	for c, p := range g.nodes {
		out[c] = *p
	}
	return out
}

// Coords returns border coordinates in index order. Indices are only valid
// until the next insertion.
func (g *BorderGraph) Coords() []hex.Coord {
	return slices.Clone(g.order)
}

// IndexOf translates a border coordinate to its current index.
func (g *BorderGraph) IndexOf(c hex.Coord) (int, bool) {
	i := slices.Index(g.order, c)
	return i, i >= 0
}

// CoordAt translates a border index to its coordinate.
func (g *BorderGraph) CoordAt(i int) (hex.Coord, bool) {
	if i < 0 || i >= len(g.order) {
		return hex.Coord{}, false
	}
	return g.order[i], true
}

// Link returns the connectivity between two distinct border coordinates.
func (g *BorderGraph) Link(from, to hex.Coord) (Link, bool) {
	r, ok := g.rows[Pair{From: from, To: to}]
	if !ok {
		return Link{}, false
	}
	return g.resolve(from, to, r), true
}

// Connectivity returns the full pairwise table, self pairs excluded.
func (g *BorderGraph) Connectivity() map[Pair]Link {
	out := make(map[Pair]Link, len(g.rows))
	for pair, r := range g.rows {
		out[pair] = g.resolve(pair.From, pair.To, r)
	}
	return out
}

func (g *BorderGraph) resolve(from, to hex.Coord, r row) Link {
	l := Link{InverseDistance: r.inverseDistance}
	if !r.featureMatch {
		return l
	}
	l.FeatureMatch = 1
	a, b := g.nodes[from], g.nodes[to]
	if g.regions.Connected(a.Anchor, b.Anchor, a.Feature) {
		l.RegionMatch = 1
	}
	return l
}

// retire drops the placeholder at c and every row touching it.
func (g *BorderGraph) retire(c hex.Coord) {
	if _, ok := g.nodes[c]; !ok {
		return
	}
	delete(g.nodes, c)
	if i := slices.Index(g.order, c); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}
	for other := range g.nodes {
		delete(g.rows, Pair{From: c, To: other})
		delete(g.rows, Pair{From: other, To: c})
	}
}

func (g *BorderGraph) placeholder(at hex.Coord, cells cellLookup) *PlaceholderCell {
	p := &PlaceholderCell{Coord: at}
	for d := 0; d < 6; d++ {
		p.Sides[d] = Placeholder
		if n, ok := cells.Cell(at.Neighbor(d)); ok {
			p.Sides[d] = n.EdgeFeature(hex.Opposite(d))
		}
	}
	g.anchor(p, cells)
	return p
}

// anchor picks the placed neighbor on the lowest-numbered side.
func (g *BorderGraph) anchor(p *PlaceholderCell, cells cellLookup) {
	for d := 0; d < 6; d++ {
		n, ok := cells.Cell(p.Coord.Neighbor(d))
		if !ok {
			continue
		}
		p.Anchor = n.Coord()
		p.Feature = n.EdgeFeature(hex.Opposite(d))
		return
	}
}

// refresh rewrites every row touching c.
func (g *BorderGraph) refresh(c hex.Coord) {
	p := g.nodes[c]
	for other, q := range g.nodes {
		if other == c {
			continue
		}
		r := row{
			inverseDistance: 1 / float64(1+hex.Distance(c, other)),
			featureMatch:    p.Feature == q.Feature,
		}
		g.rows[Pair{From: c, To: other}] = r
		g.rows[Pair{From: other, To: c}] = r
	}
}
