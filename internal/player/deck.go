package player

import (
	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/polyhex"
	"github.com/talgya/polyhex/internal/terrain"
)

// deckRow keeps deck samples well away from any board coordinate.
const deckRow = 1 << 12

// Deck draws candidates from terrain noise.
type Deck struct {
	gen  *terrain.Generator
	cfg  polyhex.Config
	next int
}

// NewDeck creates a deck backed by a terrain generator.
func NewDeck(gen terrain.GenConfig) (*Deck, error) {
	g, err := terrain.New(gen)
	if err != nil {
		return nil, err
	}
	return &Deck{gen: g, cfg: polyhex.DefaultConfig()}, nil
}

// Seed returns the terrain seed, for reproducing a run.
func (d *Deck) Seed() int64 { return d.gen.Seed() }

// Draw returns the next candidate.
func (d *Deck) Draw() (Candidate, error) {
	c, err := d.gen.Cell(d.cfg, hex.Coord{Q: 3 * d.next, R: deckRow})
	if err != nil {
		return Candidate{}, err
	}
	d.next++
	return Candidate{Centre: c.Centre(), Edges: c.Features()}, nil
}

// Deal draws n candidates.
func (d *Deck) Deal(n int) ([]Candidate, error) {
	hand := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Draw()
		if err != nil {
			return nil, err
		}
		hand = append(hand, c)
	}
	return hand, nil
}
