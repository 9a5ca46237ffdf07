package polyhex

// GraphNodes encodes each border placeholder, in border index order, as
// [dq/2, dr/2, featureCode, tokenCode] where (dq, dr) points from the
// placeholder's anchor to the placeholder.
func (a *Assembly) GraphNodes(enc Encoding) ([][]float64, error) {
	tok, err := enc.Token(Placeholder)
	if err != nil {
		return nil, err
	}
	coords := a.border.Coords()
	out := make([][]float64, 0, len(coords))
	for _, c := range coords {
		p, _ := a.border.Node(c)
		code, err := enc.Feature(p.Feature)
		if err != nil {
			return nil, err
		}
		d := p.Coord.Sub(p.Anchor)
		out = append(out, []float64{
			float64(d.Q) / 2,
			float64(d.R) / 2,
			float64(code),
			float64(tok),
		})
	}
	return out, nil
}

// GraphEdges returns the border connectivity as a COO edge list over border
// indices, self pairs excluded.
func (a *Assembly) GraphEdges() (starts, ends []int, attrs [][3]float64) {
	coords := a.border.Coords()
	for i, from := range coords {
		for j, to := range coords {
			if i == j {
				continue
			}
			l, ok := a.border.Link(from, to)
			if !ok {
				continue
			}
			starts = append(starts, i)
			ends = append(ends, j)
			attrs = append(attrs, l.Vector())
		}
	}
	return starts, ends, attrs
}
