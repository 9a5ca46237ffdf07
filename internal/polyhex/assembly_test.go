package polyhex

import (
	"errors"
	"maps"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/talgya/polyhex/internal/hex"
)

func newTestAssembly(t *testing.T) *Assembly {
	t.Helper()
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func place(t *testing.T, a *Assembly, at hex.Coord, edges ...Feature) {
	t.Helper()
	cell, err := a.NewCell(at, "bear", edges...)
	if err != nil {
		t.Fatalf("NewCell(%s): %v", at, err)
	}
	if err := a.Insert(cell); err != nil {
		t.Fatalf("Insert(%s): %v", at, err)
	}
}

// expectedBorder recomputes the fringe from scratch.
func expectedBorder(a *Assembly) map[hex.Coord]bool {
	want := make(map[hex.Coord]bool)
	for _, c := range a.Coords() {
		for _, n := range c.Neighbors() {
			if _, placed := a.Cell(n); !placed {
				want[n] = true
			}
		}
	}
	return want
}

func checkBorder(t *testing.T, a *Assembly) {
	t.Helper()
	want := expectedBorder(a)
	g := a.Border()
	if g.Size() != len(want) {
		t.Fatalf("border size = %d, want %d", g.Size(), len(want))
	}
	for c := range want {
		if !g.Has(c) {
			t.Fatalf("border missing %s", c)
		}
	}
	coords := g.Coords()
	for i, c := range coords {
		if idx, ok := g.IndexOf(c); !ok || idx != i {
			t.Fatalf("IndexOf(%s) = %d, want %d", c, idx, i)
		}
	}
	n := len(coords)
	if got := len(g.Connectivity()); got != n*(n-1) {
		t.Fatalf("connectivity has %d rows, want %d", got, n*(n-1))
	}
}

func TestNewRejectsUnsupportedConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.Top = hex.Flat
	if _, err := New(cfg); !errors.Is(err, ErrConfiguration) {
		t.Errorf("flat top: got %v, want ErrConfiguration", err)
	}
	cfg = DefaultConfig()
	cfg.Radius = 0
	if _, err := New(cfg); !errors.Is(err, ErrValidation) {
		t.Errorf("zero radius: got %v, want ErrValidation", err)
	}
}

func TestBorderTracksFringe(t *testing.T) {
	a := newTestAssembly(t)
	place(t, a, hex.Origin, "water")
	if a.Border().Size() != 6 {
		t.Fatalf("single cell border = %d, want 6", a.Border().Size())
	}
	checkBorder(t, a)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		at, _ := a.Border().CoordAt(rng.Intn(a.Border().Size()))
		features := []Feature{"water", "forest", "desert"}
		place(t, a, at, features[rng.Intn(3)], features[rng.Intn(3)], features[rng.Intn(3)],
			features[rng.Intn(3)], features[rng.Intn(3)], features[rng.Intn(3)])
		checkBorder(t, a)
	}
}

func TestDefaultBuiltBorderShowsPlacedEdges(t *testing.T) {
	a, err := Spiral(DefaultConfig(), 1, nil)
	if err != nil {
		t.Fatalf("Spiral: %v", err)
	}
	// (2,-1) faces (1,0) on side 3 and (1,-1) on side 4.
	p, ok := a.Border().Node(hex.Coord{Q: 2, R: -1})
	if !ok {
		t.Fatal("(2, -1) should be on the border")
	}
	for d, f := range p.Sides {
		want := Feature(Placeholder)
		if d == 3 || d == 4 {
			want = DefaultHabitat
		}
		if f != want {
			t.Errorf("side %d = %q, want %q", d, f, want)
		}
	}
	if p.Feature != DefaultHabitat {
		t.Errorf("inferred feature = %q", p.Feature)
	}
	if !maps.Equal(a.Habitats(), map[Feature]int{DefaultHabitat: 7}) {
		t.Errorf("habitats = %v", a.Habitats())
	}
}

func TestSegments(t *testing.T) {
	a := newTestAssembly(t)
	place(t, a, hex.Origin, "water")
	place(t, a, hex.Coord{Q: 1, R: 0}, "water")
	segments := a.Segments()
	if len(segments) != 11 {
		t.Fatalf("got %d segments, want 11", len(segments))
	}
	shared := 0
	for _, seg := range segments {
		if seg.Features[1] != Placeholder {
			shared++
			if seg.Seam || seg.Features != [2]Feature{"water", "water"} {
				t.Errorf("shared segment = %+v", seg)
			}
		} else if !seg.Seam {
			t.Errorf("outline segment should be a seam: %+v", seg)
		}
	}
	if shared != 1 {
		t.Errorf("got %d shared segments, want 1", shared)
	}

	place(t, a, hex.Coord{Q: 0, R: 1}, "forest")
	for _, seg := range a.Segments() {
		if seg.Features[1] != Placeholder && seg.Features[0] != seg.Features[1] && !seg.Seam {
			t.Errorf("mixed segment should be a seam: %+v", seg)
		}
	}
}

func TestNewRejectsPlaceholderDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultFeature = Placeholder
	if _, err := New(cfg); !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
	if _, err := Spiral(cfg, 1, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("Spiral: got %v, want ErrValidation", err)
	}
}

func TestPlaceholderSidesAndAnchor(t *testing.T) {
	a := newTestAssembly(t)
	place(t, a, hex.Origin, "water", "forest", "desert", "swamp", "mountain", "water")

	// (1,0) is neighbor 1 of the origin, so its side 4 faces the origin.
	p, ok := a.Border().Node(hex.Coord{Q: 1, R: 0})
	if !ok {
		t.Fatal("(1, 0) should be on the border")
	}
	if p.Sides[4] != "forest" || p.Feature != "forest" || p.Anchor != hex.Origin {
		t.Errorf("placeholder = %+v", p)
	}
	if p.AnchorSide() != 4 {
		t.Errorf("AnchorSide = %d, want 4", p.AnchorSide())
	}
	for d, f := range p.Sides {
		if d != 4 && f != Placeholder {
			t.Errorf("side %d = %q, want placeholder", d, f)
		}
	}

	// (1,-1) touches both the origin (side 3) and (1,0) (side 2). The lowest
	// placed side wins the anchor.
	place(t, a, hex.Coord{Q: 1, R: 0}, "swamp")
	p, _ = a.Border().Node(hex.Coord{Q: 1, R: -1})
	if p.Sides[2] != "swamp" || p.Sides[3] != "water" {
		t.Errorf("sides = %v", p.Sides)
	}
	if p.Anchor != (hex.Coord{Q: 1, R: 0}) || p.Feature != "swamp" {
		t.Errorf("anchor = %s feature = %q, want (1, 0) swamp", p.Anchor, p.Feature)
	}
}

func TestDuplicateInsertLeavesStateUnchanged(t *testing.T) {
	a := newTestAssembly(t)
	place(t, a, hex.Origin, "water")
	place(t, a, hex.Coord{Q: 1, R: 0}, "water")

	border := a.Border().Coords()
	conn := a.Border().Connectivity()
	regions := a.Regions().String()
	score := a.Score()

	dup, _ := a.NewCell(hex.Origin, "elk", "forest")
	if err := a.Insert(dup); !errors.Is(err, ErrDuplicatePlacement) {
		t.Fatalf("got %v, want ErrDuplicatePlacement", err)
	}
	if a.TotalCells() != 2 {
		t.Errorf("TotalCells = %d, want 2", a.TotalCells())
	}
	if got, _ := a.Cell(hex.Origin); got.Centre() != "bear" {
		t.Error("original cell was replaced")
	}
	if !slices.Equal(border, a.Border().Coords()) {
		t.Error("border order changed")
	}
	if !maps.Equal(conn, a.Border().Connectivity()) {
		t.Error("connectivity changed")
	}
	if regions != a.Regions().String() || score != a.Score() {
		t.Error("regions changed")
	}
	if a.Regions().Members("forest") != 0 {
		t.Error("rejected cell registered its features")
	}
}

func TestInsertRejectsMismatchedGeometry(t *testing.T) {
	a := newTestAssembly(t)
	c, _ := NewCell(CellSpec{Radius: 2, Layout: hex.DefaultLayout, Edges: []Feature{"water"}})
	if err := a.Insert(c); !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
	if err := a.Insert(nil); !errors.Is(err, ErrValidation) {
		t.Errorf("nil: got %v, want ErrValidation", err)
	}
	if !a.Empty() || a.Border().Size() != 0 {
		t.Error("rejected insert mutated the assembly")
	}
}

func TestLargestWaterRegion(t *testing.T) {
	a := newTestAssembly(t)
	place(t, a, hex.Origin, "water")
	place(t, a, hex.Coord{Q: 1, R: -1}, "water")
	place(t, a, hex.Coord{Q: 1, R: 0}, "water")
	if got := a.Regions().LargestRegion("water"); got != 3 {
		t.Fatalf("LargestRegion(water) = %d, want 3", got)
	}

	place(t, a, hex.Coord{Q: 6, R: 6}, "water")
	if got := a.Regions().LargestRegion("water"); got != 3 {
		t.Errorf("isolated cell changed LargestRegion to %d", got)
	}
	if a.Score() != 3 {
		t.Errorf("Score = %d, want 3", a.Score())
	}
	if a.Regions().Members("water") != a.TotalCells() {
		t.Errorf("water universe = %d, want %d", a.Regions().Members("water"), a.TotalCells())
	}
}

func TestMismatchedEdgesDoNotMerge(t *testing.T) {
	a := newTestAssembly(t)
	// Edge 1 of the origin faces edge 4 of (1,0).
	place(t, a, hex.Origin, "water", "water", "forest", "forest", "forest", "water")
	place(t, a, hex.Coord{Q: 1, R: 0}, "forest", "forest", "forest", "forest", "water", "forest")
	if !a.Regions().Connected(hex.Origin, hex.Coord{Q: 1, R: 0}, "water") {
		t.Error("facing water edges should merge")
	}
	if a.Regions().Connected(hex.Origin, hex.Coord{Q: 1, R: 0}, "forest") {
		t.Error("forest shows on both cells but not on the shared edge")
	}
	h := a.Habitats()
	if h["water"] != 2 || h["forest"] != 1 {
		t.Errorf("Habitats = %v", h)
	}
}

func TestAddTokenOnAssembly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compatibility = Compatibility{"bear": {"bear"}}
	a, _ := New(cfg)
	place(t, a, hex.Origin, "water")
	if err := a.AddToken(hex.Coord{Q: 3, R: 3}, "bear"); !errors.Is(err, ErrOccupancy) {
		t.Errorf("empty coordinate: got %v", err)
	}
	if err := a.AddToken(hex.Origin, "bear"); err != nil {
		t.Fatalf("AddToken: %v", err)
	}
	if err := a.AddToken(hex.Origin, "bear"); !errors.Is(err, ErrOccupancy) {
		t.Errorf("second token: got %v", err)
	}
}

func TestAssemblyString(t *testing.T) {
	a := newTestAssembly(t)
	place(t, a, hex.Origin, "water")
	s := a.String()
	for _, want := range []string{"Coordinate system: axial", "Top: pointy", "Winding: clockwise", "Cells: 1", "(0, 0)"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}

func TestGraphExport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding = Encoding{
		Features: map[Feature]int{"water": 3, "forest": 4},
		Tokens:   map[Token]int{Placeholder: 9},
	}
	a, _ := New(cfg)
	place(t, a, hex.Origin, "water", "forest", "forest", "forest", "forest", "forest")

	nodes, err := a.GraphNodes(cfg.Encoding)
	if err != nil {
		t.Fatalf("GraphNodes: %v", err)
	}
	if len(nodes) != 6 {
		t.Fatalf("got %d nodes, want 6", len(nodes))
	}
	for i, c := range a.Border().Coords() {
		d := c.Sub(hex.Origin)
		want := []float64{float64(d.Q) / 2, float64(d.R) / 2, 4, 9}
		if c == hex.Origin.Neighbor(0) {
			want[2] = 3
		}
		for k := range want {
			if nodes[i][k] != want[k] {
				t.Errorf("node %d (%s) = %v, want %v", i, c, nodes[i], want)
				break
			}
		}
	}

	starts, ends, attrs := a.GraphEdges()
	if len(starts) != 30 || len(ends) != 30 || len(attrs) != 30 {
		t.Fatalf("want 30 edges, got %d", len(starts))
	}
	coords := a.Border().Coords()
	for k := range starts {
		from, to := coords[starts[k]], coords[ends[k]]
		wantInv := 1 / float64(1+hex.Distance(from, to))
		if attrs[k][0] != wantInv {
			t.Errorf("%s→%s inverse distance %v, want %v", from, to, attrs[k][0], wantInv)
		}
		// Every placeholder shares the single origin anchor, so a feature
		// match is always a region match too.
		if attrs[k][1] != attrs[k][2] {
			t.Errorf("%s→%s feature %v region %v", from, to, attrs[k][1], attrs[k][2])
		}
	}

	if _, err := a.GraphNodes(Encoding{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty encoding: got %v", err)
	}
}

func TestRegionMatchFollowsLaterMerges(t *testing.T) {
	a := newTestAssembly(t)
	// Two water cells two steps apart; their border placeholders share no
	// region until the gap is filled.
	place(t, a, hex.Origin, "water")
	place(t, a, hex.Coord{Q: 2, R: 0}, "water")
	from, to := hex.Coord{Q: -1, R: 0}, hex.Coord{Q: 3, R: 0}

	l, ok := a.Border().Link(from, to)
	if !ok || l.FeatureMatch != 1 || l.RegionMatch != 0 {
		t.Fatalf("before bridge: %+v, %v", l, ok)
	}
	place(t, a, hex.Coord{Q: 1, R: 0}, "water")
	l, _ = a.Border().Link(from, to)
	if l.RegionMatch != 1 {
		t.Errorf("after bridge: %+v", l)
	}
}
