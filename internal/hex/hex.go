// Package hex provides the axial coordinate system shared by every polyhex cell.
// Coordinates are pointy-top, vertices are ordered clockwise, and edge i of a
// cell always faces neighbor offset i.
package hex

import "fmt"

// Coord is a position on the hex grid in axial form.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Directions holds the six neighbor offsets in clockwise order, starting at
// the upper-right edge of a pointy-top cell.
var Directions = [6]Coord{
	{Q: 1, R: -1},
	{Q: 1, R: 0},
	{Q: 0, R: 1},
	{Q: -1, R: 1},
	{Q: -1, R: 0},
	{Q: 0, R: -1},
}

// Origin is the coordinate every generated assembly grows from.
var Origin = Coord{}

// Add returns c+o.
func (c Coord) Add(o Coord) Coord { return Coord{Q: c.Q + o.Q, R: c.R + o.R} }

// Sub returns c-o.
func (c Coord) Sub(o Coord) Coord { return Coord{Q: c.Q - o.Q, R: c.R - o.R} }

// Scale multiplies the coordinate vector by k.
func (c Coord) Scale(k int) Coord { return Coord{Q: c.Q * k, R: c.R * k} }

// Side wraps any edge index, negative ones included, into [0, 6).
func Side(i int) int {
	return ((i % 6) + 6) % 6
}

// Neighbor returns the coordinate across edge i.
func (c Coord) Neighbor(i int) Coord {
	return c.Add(Directions[Side(i)])
}

// Neighbors returns the six adjacent coordinates in clockwise order.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, dir := range Directions {
		result[i] = c.Add(dir)
	}
	return result
}

// DirectionTo returns the edge index of c that faces o, or -1 when the two
// coordinates are not adjacent.
func (c Coord) DirectionTo(o Coord) int {
	d := o.Sub(c)
	for i, dir := range Directions {
		if dir == d {
			return i
		}
	}
	return -1
}

// Opposite returns the edge index that faces back across edge i.
func Opposite(i int) int {
	return Side(i + 3)
}

// Distance is the grid-native metric used for border and region scoring:
// |dq| + |dr|. It is not the cube distance.
func Distance(a, b Coord) int {
	return abs(a.Q-b.Q) + abs(a.R-b.R)
}

// String formats the coordinate as "(q, r)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Q, c.R)
}

// FromSlice builds a coordinate from an untyped component list, as read from
// a config file or a request body.
func FromSlice(vals []int) (Coord, error) {
	if len(vals) != 2 {
		return Coord{}, fmt.Errorf("%w: want 2 components, got %d", ErrMalformedCoord, len(vals))
	}
	return Coord{Q: vals[0], R: vals[1]}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
