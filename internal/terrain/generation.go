// Cell generation using layered simplex noise.
// Samples a habitat layer, a split layer, a rotation layer, and a slot layer at
// each cell's continuous position, so neighbouring cells tend to agree and the
// resulting assemblies form large contiguous regions.
package terrain

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/polyhex"
)

// GenConfig holds cell generation parameters.
type GenConfig struct {
	Seed           int64   `yaml:"seed"`            // Random seed (0 = random)
	Frequency      float64 `yaml:"frequency"`       // Base noise frequency
	Octaves        int     `yaml:"octaves"`         // Noise layers per sample
	Persistence    float64 `yaml:"persistence"`     // Amplitude falloff per octave
	SplitThreshold float64 `yaml:"split_threshold"` // Split-layer value above which a cell shows two habitats (0.0–1.0)

	Habitats []polyhex.Feature `yaml:"habitats"` // Edge labels, in noise order
	Slots    []polyhex.Feature `yaml:"slots"`    // Centre labels
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:           0,
		Frequency:      0.12,
		Octaves:        3,
		Persistence:    0.5,
		SplitThreshold: 0.55,
		Habitats:       []polyhex.Feature{"mountain", "forest", "desert", "swamp", "water"},
		Slots: []polyhex.Feature{
			"bear", "elk", "fox", "hawk", "salmon",
			"bear_elk", "bear_fox", "bear_salmon", "elk_hawk", "fox_salmon", "hawk_salmon",
		},
	}
}

// SmallTestConfig returns a fixed-seed configuration for tests.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Seed = 42
	cfg.Octaves = 2
	return cfg
}

// Generator produces cells from noise. It is safe for concurrent use.
type Generator struct {
	cfg  GenConfig
	seed int64

	habitat opensimplex.Noise
	split   opensimplex.Noise
	rotate  opensimplex.Noise
	slot    opensimplex.Noise
}

// New validates gen and builds its noise layers.
func New(gen GenConfig) (*Generator, error) {
	if len(gen.Habitats) == 0 {
		return nil, fmt.Errorf("%w: terrain needs at least one habitat", polyhex.ErrValidation)
	}
	if len(gen.Slots) == 0 {
		return nil, fmt.Errorf("%w: terrain needs at least one slot", polyhex.ErrValidation)
	}
	if gen.Octaves < 1 || gen.Frequency <= 0 {
		return nil, fmt.Errorf("%w: octaves and frequency must be positive", polyhex.ErrValidation)
	}

	seed := gen.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent layers, one seed apart.
	return &Generator{
		cfg:     gen,
		seed:    seed,
		habitat: opensimplex.NewNormalized(seed),
		split:   opensimplex.NewNormalized(seed + 1),
		rotate:  opensimplex.NewNormalized(seed + 2),
		slot:    opensimplex.NewNormalized(seed + 3),
	}, nil
}

// Seed returns the seed in use, which differs from the configured one when
// that was 0.
func (g *Generator) Seed() int64 { return g.seed }

// Cell generates the cell at coord with cfg's geometry.
func (g *Generator) Cell(cfg polyhex.Config, coord hex.Coord) (*polyhex.Cell, error) {
	// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
	x := float64(coord.Q) + float64(coord.R)*0.5
	y := float64(coord.R) * math.Sqrt(3.0) / 2.0

	habitats := g.cfg.Habitats
	primary := pick(g.sample(g.habitat, x, y), len(habitats))
	edges := []polyhex.Feature{habitats[primary]}

	if len(habitats) > 1 && g.sample(g.split, x, y) > g.cfg.SplitThreshold {
		// Second habitat is never the first one.
		offset := 1 + pick(g.sample(g.slot, y, x), len(habitats)-1)
		secondary := habitats[(primary+offset)%len(habitats)]
		rot := pick(g.sample(g.rotate, x, y), 6)

		edges = make([]polyhex.Feature, 6)
		for i := range edges {
			if (i-rot+6)%6 < 3 {
				edges[i] = habitats[primary]
			} else {
				edges[i] = secondary
			}
		}
	}

	centre := g.cfg.Slots[pick(g.sample(g.slot, x, y), len(g.cfg.Slots))]

	return polyhex.NewCell(polyhex.CellSpec{
		Coord:  coord,
		Radius: cfg.Radius,
		Layout: cfg.Layout,
		Centre: centre,
		Edges:  edges,
	})
}

// Factory adapts the generator to the bulk builders.
func (g *Generator) Factory(cfg polyhex.Config) polyhex.CellFactory {
	return func(at hex.Coord) (*polyhex.Cell, error) {
		return g.Cell(cfg, at)
	}
}

func (g *Generator) sample(noise opensimplex.Noise, x, y float64) float64 {
	return octaveNoise(noise, x, y, g.cfg.Octaves, g.cfg.Frequency, g.cfg.Persistence)
}

// pick maps a value in [0,1] onto one of n buckets.
func pick(v float64, n int) int {
	i := int(v * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
