package polyhex

import (
	"fmt"

	"github.com/talgya/polyhex/internal/hex"
)

// CellSpec carries everything needed to construct a Cell.
type CellSpec struct {
	Coord  hex.Coord
	Radius float64
	Layout hex.Layout
	Centre Feature
	// Edges holds either one feature, broadcast to all six edges, or six
	// features in clockwise edge order.
	Edges []Feature
}

// Cell is a single hexagonal tile. Its position and content never change
// after construction; only the token slot does.
type Cell struct {
	coord  hex.Coord
	radius float64
	layout hex.Layout
	centre Feature
	edges  [6]Feature

	occupied bool
	token    Token
}

// NewCell validates spec and builds the cell.
func NewCell(spec CellSpec) (*Cell, error) {
	if err := spec.Layout.Validate(); err != nil {
		return nil, err
	}
	if spec.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %g", ErrValidation, spec.Radius)
	}
	c := &Cell{
		coord:  spec.Coord,
		radius: spec.Radius,
		layout: spec.Layout,
		centre: spec.Centre,
	}
	switch len(spec.Edges) {
	case 1:
		for i := range c.edges {
			c.edges[i] = spec.Edges[0]
		}
	case 6:
		copy(c.edges[:], spec.Edges)
	default:
		return nil, fmt.Errorf("%w: cell %s needs 1 or 6 edge features, got %d",
			ErrValidation, spec.Coord, len(spec.Edges))
	}
	return c, nil
}

// NewCellAt is NewCell for coordinates that arrive as an untyped list.
func NewCellAt(coord []int, spec CellSpec) (*Cell, error) {
	at, err := hex.FromSlice(coord)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	spec.Coord = at
	return NewCell(spec)
}

func (c *Cell) Coord() hex.Coord   { return c.coord }
func (c *Cell) Radius() float64    { return c.radius }
func (c *Cell) Layout() hex.Layout { return c.layout }
func (c *Cell) Centre() Feature    { return c.centre }
func (c *Cell) Occupied() bool     { return c.occupied }

// Token returns the placed token, or Placeholder on a free cell.
func (c *Cell) Token() Token {
	if !c.occupied {
		return Placeholder
	}
	return c.token
}

// Features returns the six edge features in edge order.
func (c *Cell) Features() [6]Feature { return c.edges }

// EdgeFeature returns the feature of edge i.
func (c *Cell) EdgeFeature(i int) Feature { return c.edges[hex.Side(i)] }

// Edge returns edge i with its lattice endpoints.
func (c *Cell) Edge(i int) Edge {
	i = hex.Side(i)
	v := hex.Vertices(c.coord)
	return Edge{
		Index:   i,
		Feature: c.edges[i],
		Start:   v[i],
		End:     v[(i+1)%6],
	}
}

// AdjacentCoordinate returns the coordinate across edge i.
func (c *Cell) AdjacentCoordinate(i int) hex.Coord {
	return c.coord.Neighbor(i)
}

// Position returns the cartesian centre of the cell for rendering.
func (c *Cell) Position() (x, y float64) {
	return hex.DisplayPosition(c.coord).Scale(c.radius)
}

// Compatible reports whether o shares this cell's geometry.
func (c *Cell) Compatible(o *Cell) bool {
	return o != nil && c.radius == o.radius && c.layout == o.layout
}

// Equal compares coordinate and geometry; content is ignored.
func (c *Cell) Equal(o *Cell) bool {
	return c.Compatible(o) && c.coord == o.coord
}

// AddToken places token on the cell centre.
func (c *Cell) AddToken(token Token, compat Compatibility) error {
	if c.occupied {
		return fmt.Errorf("%w: %s already holds %q", ErrOccupancy, c.coord, c.token)
	}
	if !compat.Allows(token, c.centre) {
		return fmt.Errorf("%w: %q is not compatible with %q at %s", ErrOccupancy, token, c.centre, c.coord)
	}
	c.token = token
	c.occupied = true
	return nil
}

func (c *Cell) String() string {
	state := "free"
	if c.occupied {
		state = "occupied by " + string(c.token)
	}
	return fmt.Sprintf("%s slot=%s edges=%v %s", c.coord, c.centre, c.edges, state)
}

// GraphNodes encodes the six edges as [featureCode, tokenCode] vectors.
// Edges carry no token of their own, so the token code is always Placeholder's.
func (c *Cell) GraphNodes(enc Encoding) ([][]float64, error) {
	tok, err := enc.Token(Placeholder)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, 0, 6)
	for _, f := range c.edges {
		code, err := enc.Feature(f)
		if err != nil {
			return nil, err
		}
		out = append(out, []float64{float64(code), float64(tok)})
	}
	return out, nil
}

// GraphEdges returns the complete directed graph over the six edges in COO
// form. The attribute is 1 when both edges carry the same feature.
func (c *Cell) GraphEdges() (starts, ends []int, attrs []float64) {
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if i == j {
				continue
			}
			starts = append(starts, i)
			ends = append(ends, j)
			attrs = append(attrs, indicator(c.edges[i] == c.edges[j]))
		}
	}
	return starts, ends, attrs
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
