// Package config loads the polyhex daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/polyhex"
	"github.com/talgya/polyhex/internal/terrain"
)

// Config holds all daemon configuration.
type Config struct {
	Grid          GridConfig                          `yaml:"grid"`
	Encoding      polyhex.Encoding                    `yaml:"encoding"`
	Compatibility map[polyhex.Token][]polyhex.Feature `yaml:"compatibility"`
	Build         BuildConfig                         `yaml:"build"`
	Terrain       terrain.GenConfig                   `yaml:"terrain"`
	Storage       StorageConfig                       `yaml:"storage"`
	API           APIConfig                           `yaml:"api"`
}

// GridConfig holds the cell geometry.
type GridConfig struct {
	System         string  `yaml:"system"`  // axial only
	Top            string  `yaml:"top"`     // pointy only
	Winding        string  `yaml:"winding"` // clockwise only
	Radius         float64 `yaml:"radius"`
	DefaultFeature string  `yaml:"default_feature"`
}

// BuildConfig describes the assembly built when no snapshot exists.
type BuildConfig struct {
	Mode   string   `yaml:"mode"` // spiral, count, tiling or tiles
	Size   int      `yaml:"size"` // spiral radius or cell count
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Tiling string   `yaml:"tiling"` // rectangular or tilted
	Offset string   `yaml:"offset"` // odd-r or even-r
	Tiles  []string `yaml:"tiles"`  // start tile names, tiles mode only
	Seed   int64    `yaml:"seed"`   // count mode sampling seed
	Noise  bool     `yaml:"noise"`  // use the terrain generator for new cells
}

// StorageConfig holds the snapshot database settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Port          int    `yaml:"port"`
	AdminKey      string `yaml:"admin_key"`
	RateLimit     int    `yaml:"rate_limit"`      // POST requests per window per IP
	RateWindowSec int    `yaml:"rate_window_sec"` // seconds
}

// Build modes.
const (
	ModeSpiral = "spiral"
	ModeCount  = "count"
	ModeTiling = "tiling"
	ModeTiles  = "tiles"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	gen := terrain.DefaultGenConfig()

	if cfg.Grid.Radius == 0 {
		cfg.Grid.Radius = 1
	}
	if cfg.Build.Mode == "" {
		cfg.Build.Mode = ModeSpiral
	}
	if cfg.Build.Size == 0 {
		cfg.Build.Size = 3
	}
	if cfg.Build.Tiling == "" {
		cfg.Build.Tiling = "rectangular"
	}
	if cfg.Build.Offset == "" {
		cfg.Build.Offset = "odd-r"
	}
	if cfg.Terrain.Frequency == 0 {
		cfg.Terrain.Frequency = gen.Frequency
	}
	if cfg.Terrain.Octaves == 0 {
		cfg.Terrain.Octaves = gen.Octaves
	}
	if cfg.Terrain.Persistence == 0 {
		cfg.Terrain.Persistence = gen.Persistence
	}
	if cfg.Terrain.SplitThreshold == 0 {
		cfg.Terrain.SplitThreshold = gen.SplitThreshold
	}
	if len(cfg.Terrain.Habitats) == 0 {
		cfg.Terrain.Habitats = gen.Habitats
	}
	if len(cfg.Terrain.Slots) == 0 {
		cfg.Terrain.Slots = gen.Slots
	}
	if cfg.Grid.DefaultFeature == "" {
		cfg.Grid.DefaultFeature = string(cfg.Terrain.Habitats[0])
	}
	if cfg.Encoding.Features == nil {
		cfg.Encoding.Features = enumerate(append(slices.Clone(cfg.Terrain.Habitats), polyhex.Placeholder))
	}
	if cfg.Encoding.Tokens == nil {
		cfg.Encoding.Tokens = map[polyhex.Token]int{polyhex.Placeholder: 0}
		for i, t := range Tokens(cfg.Terrain.Slots) {
			cfg.Encoding.Tokens[t] = i + 1
		}
	}
	if cfg.Compatibility == nil {
		cfg.Compatibility = DefaultCompatibility(cfg.Terrain.Slots)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/polyhex.db"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.RateLimit == 0 {
		cfg.API.RateLimit = 60
	}
	if cfg.API.RateWindowSec == 0 {
		cfg.API.RateWindowSec = 60
	}
}

// Validate checks the values no default can repair.
func (c *Config) Validate() error {
	if c.Grid.Radius < 0 {
		return fmt.Errorf("%w: grid.radius must be positive", polyhex.ErrValidation)
	}
	if c.Grid.DefaultFeature == polyhex.Placeholder {
		return fmt.Errorf("%w: grid.default_feature %q is reserved for unplaced sides", polyhex.ErrValidation, polyhex.Placeholder)
	}
	switch c.Build.Mode {
	case ModeSpiral, ModeCount, ModeTiling:
	case ModeTiles:
		if len(c.Build.Tiles) == 0 {
			return fmt.Errorf("%w: build.tiles must list at least one start tile", polyhex.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: build.mode %q is not one of spiral, count, tiling, tiles", polyhex.ErrValidation, c.Build.Mode)
	}
	if c.Build.Mode == ModeTiling && (c.Build.Width < 1 || c.Build.Height < 1) {
		return fmt.Errorf("%w: build.width and build.height must be positive for tiling", polyhex.ErrValidation)
	}
	if _, err := polyhex.ParseTiling(c.Build.Tiling); err != nil {
		return err
	}
	if _, err := polyhex.ParseRowOffset(c.Build.Offset); err != nil {
		return err
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("%w: api.port %d out of range", polyhex.ErrValidation, c.API.Port)
	}
	return nil
}

// Assembly converts the grid settings into a polyhex configuration. An
// unsupported layout surfaces as polyhex.ErrConfiguration.
func (c *Config) Assembly() (polyhex.Config, error) {
	layout, err := hex.ParseLayout(c.Grid.System, c.Grid.Top, c.Grid.Winding)
	if err != nil {
		return polyhex.Config{}, err
	}
	return polyhex.Config{
		Radius:         c.Grid.Radius,
		Layout:         layout,
		Compatibility:  polyhex.Compatibility(c.Compatibility),
		Encoding:       c.Encoding,
		DefaultFeature: polyhex.Feature(c.Grid.DefaultFeature),
	}, nil
}

// Tokens lists the single-wildlife tokens named by a set of slots, sorted.
// A slot "bear_salmon" names the tokens bear and salmon.
func Tokens(slots []polyhex.Feature) []polyhex.Token {
	var out []polyhex.Token
	for _, s := range slots {
		for _, part := range strings.Split(string(s), "_") {
			t := polyhex.Token(part)
			if part != "" && !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}

// DefaultCompatibility allows a token on every slot that names it.
func DefaultCompatibility(slots []polyhex.Feature) map[polyhex.Token][]polyhex.Feature {
	compat := make(map[polyhex.Token][]polyhex.Feature)
	for _, s := range slots {
		for _, part := range strings.Split(string(s), "_") {
			if part == "" {
				continue
			}
			t := polyhex.Token(part)
			compat[t] = append(compat[t], s)
		}
	}
	return compat
}

func enumerate(features []polyhex.Feature) map[polyhex.Feature]int {
	out := make(map[polyhex.Feature]int, len(features))
	for i, f := range features {
		out[f] = i
	}
	return out
}
