package polyhex

import "github.com/talgya/polyhex/internal/hex"

// Edge is one side of a cell.
type Edge struct {
	Index   int
	Feature Feature
	Start   hex.Point
	End     hex.Point
}

// SpatialKey identifies the segment regardless of which cell it is read from.
type SpatialKey struct {
	A, B hex.Point
}

// FeatureKey is a SpatialKey plus the terrain on this side of the segment.
type FeatureKey struct {
	SpatialKey
	Feature Feature
}

// SpatialKey returns the order-independent endpoint pair.
func (e Edge) SpatialKey() SpatialKey {
	if e.End.Less(e.Start) {
		return SpatialKey{A: e.End, B: e.Start}
	}
	return SpatialKey{A: e.Start, B: e.End}
}

// FeatureKey returns the spatial key folded with the edge feature.
func (e Edge) FeatureKey() FeatureKey {
	return FeatureKey{SpatialKey: e.SpatialKey(), Feature: e.Feature}
}

// Segment is one drawn edge of the assembly. Shared sides of neighbouring
// cells collapse into a single segment.
type Segment struct {
	Start hex.Point `json:"start"`
	End   hex.Point `json:"end"`
	// Features holds the terrain on each side; the second is Placeholder on
	// the outline.
	Features [2]Feature `json:"features"`
	// Seam is set where the two sides differ, the outline included.
	Seam bool `json:"seam"`
}

// Segments returns every distinct edge of the placed cells, in cell
// insertion order.
func (a *Assembly) Segments() []Segment {
	index := make(map[SpatialKey]int)
	first := make(map[SpatialKey]FeatureKey)
	var out []Segment
	for _, at := range a.order {
		c := a.cells[at]
		for i := 0; i < 6; i++ {
			e := c.Edge(i)
			key := e.SpatialKey()
			if j, ok := index[key]; ok {
				out[j].Features[1] = e.Feature
				out[j].Seam = first[key] != e.FeatureKey()
				continue
			}
			index[key] = len(out)
			first[key] = e.FeatureKey()
			out = append(out, Segment{
				Start:    key.A,
				End:      key.B,
				Features: [2]Feature{e.Feature, Placeholder},
				Seam:     true,
			})
		}
	}
	return out
}
