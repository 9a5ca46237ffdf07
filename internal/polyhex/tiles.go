package polyhex

import (
	"fmt"
	"slices"

	"github.com/talgya/polyhex/internal/hex"
)

// startTiles are the three-cell starting tiles, keyed by the wildlife on
// their centre cell. Each is laid out at (0,0), (0,1), (-1,1).
var startTiles = map[string][3]struct {
	centre Feature
	edges  []Feature
}{
	"bear": {
		{"bear", []Feature{"mountain"}},
		{"bear_salmon", []Feature{"water", "water", "desert", "desert", "desert", "water"}},
		{"elk_fox_hawk", []Feature{"forest", "swamp", "swamp", "swamp", "forest", "forest"}},
	},
	"elk": {
		{"elk", []Feature{"forest"}},
		{"fox_salmon", []Feature{"swamp", "swamp", "desert", "desert", "desert", "swamp"}},
		{"bear_elk_hawk", []Feature{"mountain", "water", "water", "water", "mountain", "mountain"}},
	},
	"fox": {
		{"fox", []Feature{"desert"}},
		{"bear_elk", []Feature{"forest", "forest", "mountain", "mountain", "mountain", "forest"}},
		{"fox_hawk_salmon", []Feature{"swamp", "water", "water", "water", "swamp", "swamp"}},
	},
	"hawk": {
		{"hawk", []Feature{"swamp"}},
		{"bear_fox", []Feature{"desert", "desert", "mountain", "mountain", "mountain", "desert"}},
		{"elk_hawk_salmon", []Feature{"water", "forest", "forest", "forest", "water", "water"}},
	},
	"salmon": {
		{"salmon", []Feature{"water"}},
		{"bear_fox", []Feature{"mountain", "mountain", "swamp", "swamp", "swamp", "mountain"}},
		{"elk_hawk_salmon", []Feature{"desert", "forest", "forest", "forest", "desert", "desert"}},
	},
}

var startTileCoords = [3]hex.Coord{{Q: 0, R: 0}, {Q: 0, R: 1}, {Q: -1, R: 1}}

// StartTileNames lists the available starting tiles, sorted.
func StartTileNames() []string {
	names := make([]string, 0, len(startTiles))
	for name := range startTiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// StartTile builds the cells of a named starting tile with cfg's geometry.
func StartTile(cfg Config, name string) ([]*Cell, error) {
	return startTileAt(cfg, name, hex.Origin)
}

// StartTiles lays the named tiles side by side along q, two columns apart,
// so consecutive tiles touch without overlapping.
func StartTiles(cfg Config, names ...string) ([]*Cell, error) {
	var cells []*Cell
	for i, name := range names {
		tile, err := startTileAt(cfg, name, hex.Coord{Q: 2 * i})
		if err != nil {
			return nil, err
		}
		cells = append(cells, tile...)
	}
	return cells, nil
}

func startTileAt(cfg Config, name string, offset hex.Coord) ([]*Cell, error) {
	tile, ok := startTiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown start tile %q", ErrValidation, name)
	}
	cells := make([]*Cell, 0, len(tile))
	for i, spec := range tile {
		c, err := NewCell(CellSpec{
			Coord:  startTileCoords[i].Add(offset),
			Radius: cfg.Radius,
			Layout: cfg.Layout,
			Centre: spec.centre,
			Edges:  spec.edges,
		})
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, nil
}
