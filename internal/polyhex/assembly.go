// Package polyhex grows a connected tiling of hexagonal cells one insertion at
// a time. An Assembly owns the placed cells and keeps two derived structures
// consistent with them: a RegionTracker of contiguous same-terrain regions and
// a BorderGraph of the open fringe.
//
// The package is single-threaded. Hosts that read concurrently wrap an
// Assembly in their own sync.RWMutex.
package polyhex

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/polyhex/internal/hex"
)

// Config is the explicit configuration an Assembly is built with.
type Config struct {
	Radius        float64
	Layout        hex.Layout
	Compatibility Compatibility
	Encoding      Encoding
	// DefaultFeature fills cells built by the bulk helpers when no factory
	// is given.
	DefaultFeature Feature
}

// DefaultHabitat is the edge feature of bulk-built cells under DefaultConfig.
const DefaultHabitat Feature = "water"

// DefaultConfig returns a unit-radius axial layout with empty lookup tables.
func DefaultConfig() Config {
	return Config{
		Radius:         1,
		Layout:         hex.DefaultLayout,
		Compatibility:  Compatibility{},
		DefaultFeature: DefaultHabitat,
	}
}

// Assembly is a polyhex: a set of placed cells plus its regions and border.
type Assembly struct {
	cfg     Config
	cells   map[hex.Coord]*Cell
	order   []hex.Coord
	regions *RegionTracker
	border  *BorderGraph
}

// New validates cfg and returns an empty assembly.
func New(cfg Config) (*Assembly, error) {
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %g", ErrValidation, cfg.Radius)
	}
	// Placeholder marks unplaced sides on the border and cannot be terrain.
	if cfg.DefaultFeature == Placeholder {
		return nil, fmt.Errorf("%w: default feature %q is reserved", ErrValidation, Placeholder)
	}
	if cfg.Compatibility == nil {
		cfg.Compatibility = Compatibility{}
	}
	regions := NewRegionTracker()
	return &Assembly{
		cfg:     cfg,
		cells:   make(map[hex.Coord]*Cell),
		regions: regions,
		border:  NewBorderGraph(regions),
	}, nil
}

// Config returns the configuration the assembly was built with.
func (a *Assembly) Config() Config { return a.cfg }

// NewCell builds a cell with this assembly's geometry.
func (a *Assembly) NewCell(at hex.Coord, centre Feature, edges ...Feature) (*Cell, error) {
	return NewCell(CellSpec{
		Coord:  at,
		Radius: a.cfg.Radius,
		Layout: a.cfg.Layout,
		Centre: centre,
		Edges:  edges,
	})
}

// Insert places cell. It fails without touching any state when the cell's
// geometry differs from the assembly's or its coordinate is occupied.
func (a *Assembly) Insert(cell *Cell) error {
	if cell == nil {
		return fmt.Errorf("%w: nil cell", ErrValidation)
	}
	if cell.Radius() != a.cfg.Radius || cell.Layout() != a.cfg.Layout {
		return fmt.Errorf("%w: cell %s geometry does not match the assembly", ErrValidation, cell.Coord())
	}
	at := cell.Coord()
	if _, ok := a.cells[at]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePlacement, at)
	}

	a.cells[at] = cell
	a.order = append(a.order, at)

	for i := 0; i < 6; i++ {
		adj := cell.AdjacentCoordinate(i)
		f := cell.EdgeFeature(i)
		shared := false
		if n, ok := a.cells[adj]; ok {
			shared = n.EdgeFeature(hex.Opposite(i)) == f
		}
		a.regions.RecordEdge(at, adj, f, shared)
	}

	a.border.Insert(cell, a)
	return nil
}

// Cell returns the placed cell at c.
func (a *Assembly) Cell(c hex.Coord) (*Cell, bool) {
	cell, ok := a.cells[c]
	return cell, ok
}

// Cells returns placed cells in insertion order.
func (a *Assembly) Cells() []*Cell {
	out := make([]*Cell, 0, len(a.order))
	for _, c := range a.order {
		out = append(out, a.cells[c])
	}
	return out
}

// Coords returns placed coordinates in insertion order.
func (a *Assembly) Coords() []hex.Coord { return slices.Clone(a.order) }

// TotalCells returns the number of placed cells.
func (a *Assembly) TotalCells() int { return len(a.cells) }

// Empty reports whether no cell has been placed yet.
func (a *Assembly) Empty() bool { return len(a.cells) == 0 }

// Regions exposes the region tracker for read access.
func (a *Assembly) Regions() *RegionTracker { return a.regions }

// Border exposes the border graph for read access.
func (a *Assembly) Border() *BorderGraph { return a.border }

// Score sums, over every feature, the size of its largest region.
func (a *Assembly) Score() int {
	total := 0
	for _, f := range a.regions.Features() {
		total += a.regions.LargestRegion(f)
	}
	return total
}

// Habitats breaks Score down per feature.
func (a *Assembly) Habitats() map[Feature]int {
	out := make(map[Feature]int)
	for _, f := range a.regions.Features() {
		out[f] = a.regions.LargestRegion(f)
	}
	return out
}

// EdgeCounts returns how many edges of the placed cells show each feature.
func (a *Assembly) EdgeCounts() map[Feature]int {
	counts := make(map[Feature]int)
	for _, c := range a.cells {
		for _, f := range c.edges {
			counts[f]++
		}
	}
	return counts
}

// AddToken places token on the cell at c using the configured
// compatibility table.
func (a *Assembly) AddToken(c hex.Coord, token Token) error {
	cell, ok := a.cells[c]
	if !ok {
		return fmt.Errorf("%w: no cell at %s", ErrOccupancy, c)
	}
	return cell.AddToken(token, a.cfg.Compatibility)
}

// Components counts the connected components of placed cells under plain
// grid adjacency.
func (a *Assembly) Components() int {
	visited := mapset.New[hex.Coord]()
	n := 0
	for _, start := range a.order {
		if visited.Has(start) {
			continue
		}
		n++
		queue := []hex.Coord{start}
		visited.Put(start)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, adj := range cur.Neighbors() {
				if _, ok := a.cells[adj]; ok && !visited.Has(adj) {
					visited.Put(adj)
					queue = append(queue, adj)
				}
			}
		}
	}
	return n
}

func (a *Assembly) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Coordinate system: %s\n", a.cfg.Layout.System)
	fmt.Fprintf(&b, "Radius: %g\n", a.cfg.Radius)
	fmt.Fprintf(&b, "Top: %s\n", a.cfg.Layout.Top)
	fmt.Fprintf(&b, "Winding: %s\n", a.cfg.Layout.Winding)
	fmt.Fprintf(&b, "Cells: %d\n", len(a.cells))
	for _, cell := range a.Cells() {
		fmt.Fprintf(&b, "  %s\n", cell)
	}
	return b.String()
}
