package hex

import "math"

// Point is a position on the integer display lattice. Cell centres sit at
// (2q+r, -3r) and vertices at unit offsets around them, so shared vertices of
// neighboring cells compare equal.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// vertexOffsets are clockwise from the top vertex of a pointy-top cell.
var vertexOffsets = [6]Point{
	{X: 0, Y: 2},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
	{X: 0, Y: -2},
	{X: -1, Y: -1},
	{X: -1, Y: 1},
}

// DisplayPosition maps a coordinate to its lattice centre.
func DisplayPosition(c Coord) Point {
	return Point{X: 2*c.Q + c.R, Y: -3 * c.R}
}

// Vertices returns the six lattice vertices of the cell at c. Edge i runs
// from vertex i to vertex (i+1)%6.
func Vertices(c Coord) [6]Point {
	centre := DisplayPosition(c)
	var out [6]Point
	for i, off := range vertexOffsets {
		out[i] = Point{X: centre.X + off.X, Y: centre.Y + off.Y}
	}
	return out
}

// Less orders points by X then Y.
func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

// Scale converts a lattice point to cartesian space for a cell of the given
// outer radius: one lattice unit is sqrt(3)/2*radius wide and radius/2 tall.
func (p Point) Scale(radius float64) (x, y float64) {
	x = float64(p.X) * math.Sqrt(3) / 2 * radius
	y = float64(p.Y) * radius / 2
	return
}

// RingSize is the number of cells at exact distance k from a centre.
func RingSize(k int) int {
	if k == 0 {
		return 1
	}
	return 6 * k
}

// DiskSize is the number of cells within distance k of a centre.
func DiskSize(k int) int {
	return 1 + 3*k*(k+1)
}

// Ring returns the coordinates at cube distance k from c, walking clockwise.
func Ring(c Coord, k int) []Coord {
	if k == 0 {
		return []Coord{c}
	}
	res := make([]Coord, 0, 6*k)
	// Start on the upper-left corner so that stepping along Directions[side]
	// traces the ring clockwise.
	cur := c.Add(Directions[5].Scale(k))
	for side := 0; side < 6; side++ {
		step := Directions[(side+1)%6]
		for i := 0; i < k; i++ {
			res = append(res, cur)
			cur = cur.Add(step)
		}
	}
	return res
}

// Disk returns all coordinates within cube distance k of c.
func Disk(c Coord, k int) []Coord {
	res := make([]Coord, 0, DiskSize(k))
	for q := -k; q <= k; q++ {
		for r := max(-k, -q-k); r <= min(k, -q+k); r++ {
			res = append(res, c.Add(Coord{Q: q, R: r}))
		}
	}
	return res
}
