package polyhex

import (
	"slices"
	"strconv"
	"strings"

	"github.com/talgya/polyhex/internal/hex"
)

// RegionTracker keeps one disjoint-set forest per feature over placed cell
// coordinates. Sets only ever merge.
type RegionTracker struct {
	sets map[Feature]*disjointSet
}

// NewRegionTracker returns an empty tracker.
func NewRegionTracker() *RegionTracker {
	return &RegionTracker{sets: make(map[Feature]*disjointSet)}
}

// RecordEdge registers own in the feature's forest. When shared is set the
// edge separates two placed cells that both show f on it, so other is
// registered too and the two regions merge.
func (t *RegionTracker) RecordEdge(own, other hex.Coord, f Feature, shared bool) {
	ds := t.forest(f)
	ds.add(own)
	if shared {
		ds.add(other)
		ds.union(own, other)
	}
}

// RegionSize returns the size of c's region under f, or 0 if c never showed f.
func (t *RegionTracker) RegionSize(c hex.Coord, f Feature) int {
	ds, ok := t.sets[f]
	if !ok || !ds.has(c) {
		return 0
	}
	return ds.size[ds.root(c)]
}

// Connected reports whether a and b are in the same region under f.
func (t *RegionTracker) Connected(a, b hex.Coord, f Feature) bool {
	ds, ok := t.sets[f]
	if !ok || !ds.has(a) || !ds.has(b) {
		return false
	}
	return ds.root(a) == ds.root(b)
}

// LargestRegion returns the size of the biggest region under f.
func (t *RegionTracker) LargestRegion(f Feature) int {
	ds, ok := t.sets[f]
	if !ok {
		return 0
	}
	return ds.largest
}

// Features lists every feature seen so far, sorted.
func (t *RegionTracker) Features() []Feature {
	out := make([]Feature, 0, len(t.sets))
	for f := range t.sets {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Members returns the number of coordinates registered under f.
func (t *RegionTracker) Members(f Feature) int {
	ds, ok := t.sets[f]
	if !ok {
		return 0
	}
	return len(ds.parent)
}

// Regions returns every region under f, each sorted by coordinate, largest
// region first.
func (t *RegionTracker) Regions(f Feature) [][]hex.Coord {
	ds, ok := t.sets[f]
	if !ok {
		return nil
	}
	groups := make(map[hex.Coord][]hex.Coord)
	for c := range ds.parent {
		root := ds.root(c)
		groups[root] = append(groups[root], c)
	}
	out := make([][]hex.Coord, 0, len(groups))
	for _, g := range groups {
		slices.SortFunc(g, compareCoord)
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b []hex.Coord) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return compareCoord(a[0], b[0])
	})
	return out
}

// String renders the largest region per feature, one per line.
func (t *RegionTracker) String() string {
	var b strings.Builder
	for _, f := range t.Features() {
		b.WriteString(string(f))
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(t.LargestRegion(f)))
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *RegionTracker) forest(f Feature) *disjointSet {
	ds, ok := t.sets[f]
	if !ok {
		ds = newDisjointSet()
		t.sets[f] = ds
	}
	return ds
}

// disjointSet is union by size with path halving.
type disjointSet struct {
	parent  map[hex.Coord]hex.Coord
	size    map[hex.Coord]int
	largest int
}

func newDisjointSet() *disjointSet {
	return &disjointSet{
		parent: make(map[hex.Coord]hex.Coord),
		size:   make(map[hex.Coord]int),
	}
}

func (d *disjointSet) has(c hex.Coord) bool {
	_, ok := d.parent[c]
	return ok
}

func (d *disjointSet) add(c hex.Coord) {
	if d.has(c) {
		return
	}
	d.parent[c] = c
	d.size[c] = 1
	if d.largest < 1 {
		d.largest = 1
	}
}

// root follows parents without compressing. Query paths must not write.
func (d *disjointSet) root(c hex.Coord) hex.Coord {
	for d.parent[c] != c {
		c = d.parent[c]
	}
	return c
}

func (d *disjointSet) find(c hex.Coord) hex.Coord {
	for d.parent[c] != c {
		d.parent[c] = d.parent[d.parent[c]]
		c = d.parent[c]
	}
	return c
}

func (d *disjointSet) union(a, b hex.Coord) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	delete(d.size, rb)
	if d.size[ra] > d.largest {
		d.largest = d.size[ra]
	}
}

func compareCoord(a, b hex.Coord) int {
	if a.Q != b.Q {
		return a.Q - b.Q
	}
	return a.R - b.R
}
