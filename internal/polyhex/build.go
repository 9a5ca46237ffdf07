package polyhex

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/polyhex/internal/hex"
)

// CellFactory produces the cell to insert at a coordinate chosen by a bulk
// construction helper.
type CellFactory func(at hex.Coord) (*Cell, error)

// UniformCells returns a factory whose cells show edge on all six edges.
func UniformCells(cfg Config, centre, edge Feature) CellFactory {
	return func(at hex.Coord) (*Cell, error) {
		return NewCell(CellSpec{
			Coord:  at,
			Radius: cfg.Radius,
			Layout: cfg.Layout,
			Centre: centre,
			Edges:  []Feature{edge},
		})
	}
}

func defaultFactory(cfg Config, f CellFactory) CellFactory {
	if f != nil {
		return f
	}
	return UniformCells(cfg, Placeholder, cfg.DefaultFeature)
}

// FromList inserts cells in list order. The list is checked for mixed
// geometry and repeated coordinates before anything is inserted.
func FromList(cfg Config, cells []*Cell) (*Assembly, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	seen := mapset.New[hex.Coord]()
	for _, c := range cells {
		if c == nil {
			return nil, fmt.Errorf("%w: nil cell in list", ErrValidation)
		}
		if !c.Compatible(cells[0]) {
			return nil, fmt.Errorf("%w: cell %s geometry differs from %s", ErrValidation, c.Coord(), cells[0].Coord())
		}
		if seen.Has(c.Coord()) {
			return nil, fmt.Errorf("%w: %s listed twice", ErrDuplicatePlacement, c.Coord())
		}
		seen.Put(c.Coord())
	}
	for _, c := range cells {
		if err := a.Insert(c); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// FromCount grows n cells from the origin, each new coordinate drawn
// uniformly from the current border.
func FromCount(cfg Config, n int, rng *rand.Rand, factory CellFactory) (*Assembly, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one cell, got %d", ErrValidation, n)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: FromCount needs a random source", ErrValidation)
	}
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	factory = defaultFactory(cfg, factory)
	if err := a.insertAt(hex.Origin, factory); err != nil {
		return nil, err
	}
	for a.TotalCells() < n {
		at, _ := a.border.CoordAt(rng.Intn(a.border.Size()))
		if err := a.insertAt(at, factory); err != nil {
			return nil, err
		}
	}
	slog.Debug("polyhex grown from count", "cells", a.TotalCells(), "border", a.border.Size())
	return a, nil
}

// Spiral grows rings around the origin. Each ring fills the border as it
// stood when the ring started, so radius k yields the full disk of radius k.
func Spiral(cfg Config, radius int, factory CellFactory) (*Assembly, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative spiral radius %d", ErrValidation, radius)
	}
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	factory = defaultFactory(cfg, factory)
	if err := a.insertAt(hex.Origin, factory); err != nil {
		return nil, err
	}
	for ring := 1; ring <= radius; ring++ {
		for _, at := range a.border.Coords() {
			if err := a.insertAt(at, factory); err != nil {
				return nil, err
			}
		}
		slog.Debug("spiral ring placed", "ring", ring, "cells", a.TotalCells())
	}
	return a, nil
}

// Tiling names a bulk tiling shape.
type Tiling uint8

const (
	Rectangular Tiling = iota
	Tilted
)

// RowOffset selects which rows of a rectangular tiling are shifted.
type RowOffset uint8

const (
	OddR RowOffset = iota
	EvenR
)

// ParseTiling maps "rectangular" or "tilted" to a Tiling.
func ParseTiling(s string) (Tiling, error) {
	switch strings.ToLower(s) {
	case "rectangular":
		return Rectangular, nil
	case "tilted":
		return Tilted, nil
	}
	return 0, fmt.Errorf("%w: tiling can only be rectangular or tilted, got %q", ErrValidation, s)
}

// ParseRowOffset maps "odd-r" or "even-r" to a RowOffset.
func ParseRowOffset(s string) (RowOffset, error) {
	switch strings.ToLower(s) {
	case "odd-r", "":
		return OddR, nil
	case "even-r":
		return EvenR, nil
	}
	return 0, fmt.Errorf("%w: offset can only be odd-r or even-r, got %q", ErrValidation, s)
}

// TilingCoords lists the coordinates of an n by m tiling in insertion order.
func TilingCoords(n, m int, kind Tiling, offset RowOffset) []hex.Coord {
	out := make([]hex.Coord, 0, n*m)
	for r := 0; r < m; r++ {
		shift := 0
		if kind == Rectangular {
			switch offset {
			case OddR:
				shift = -(r / 2)
			case EvenR:
				shift = -(r/2 + r%2)
			}
		}
		for q := 0; q < n; q++ {
			out = append(out, hex.Coord{Q: q + shift, R: r})
		}
	}
	return out
}

// FromTiling inserts an n by m tiling row by row.
func FromTiling(cfg Config, n, m int, kind Tiling, offset RowOffset, factory CellFactory) (*Assembly, error) {
	if n < 1 || m < 1 {
		return nil, fmt.Errorf("%w: tiling needs positive dimensions, got %dx%d", ErrValidation, n, m)
	}
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	factory = defaultFactory(cfg, factory)
	for _, at := range TilingCoords(n, m, kind, offset) {
		if err := a.insertAt(at, factory); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Assembly) insertAt(at hex.Coord, factory CellFactory) error {
	cell, err := factory(at)
	if err != nil {
		return fmt.Errorf("build cell at %s: %w", at, err)
	}
	if cell.Coord() != at {
		return fmt.Errorf("%w: factory returned %s for %s", ErrValidation, cell.Coord(), at)
	}
	return a.Insert(cell)
}
