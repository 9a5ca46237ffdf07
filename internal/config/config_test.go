package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/polyhex"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polyhex.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
	pc, err := cfg.Assembly()
	if err != nil {
		t.Fatalf("Assembly: %v", err)
	}
	if pc.Layout != hex.DefaultLayout || pc.Radius != 1 {
		t.Errorf("polyhex config = %+v", pc)
	}
	if pc.DefaultFeature != cfg.Terrain.Habitats[0] || pc.DefaultFeature == polyhex.Placeholder {
		t.Errorf("default feature = %q, want the first habitat %q", pc.DefaultFeature, cfg.Terrain.Habitats[0])
	}
	if _, err := pc.Encoding.Feature(polyhex.Placeholder); err != nil {
		t.Errorf("placeholder feature should be encoded: %v", err)
	}
	if _, err := pc.Encoding.Token(polyhex.Placeholder); err != nil {
		t.Errorf("placeholder token should be encoded: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Build.Mode != ModeSpiral || cfg.API.Port != 8080 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadAppliesDefaultsAfterParse(t *testing.T) {
	path := writeConfig(t, `
grid:
  radius: 2.5
build:
  mode: tiling
  width: 4
  height: 3
  offset: even-r
terrain:
  seed: 9
  habitats: [water, forest]
api:
  admin_key: secret
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Radius != 2.5 || cfg.Build.Width != 4 || cfg.Build.Offset != "even-r" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Build.Tiling != "rectangular" || cfg.Storage.Path == "" || cfg.API.RateLimit == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Terrain.Seed != 9 || cfg.Terrain.Octaves == 0 {
		t.Errorf("terrain = %+v", cfg.Terrain)
	}
	if len(cfg.Encoding.Features) != 3 {
		t.Errorf("encoding should cover the two habitats and the placeholder: %v", cfg.Encoding.Features)
	}
	if cfg.Grid.DefaultFeature != "water" {
		t.Errorf("default feature = %q, want the first listed habitat", cfg.Grid.DefaultFeature)
	}
	if cfg.API.AdminKey != "secret" {
		t.Errorf("admin key = %q", cfg.API.AdminKey)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown mode", "build:\n  mode: random\n", polyhex.ErrValidation},
		{"tiling without size", "build:\n  mode: tiling\n", polyhex.ErrValidation},
		{"tiles without names", "build:\n  mode: tiles\n", polyhex.ErrValidation},
		{"bad offset", "build:\n  offset: odd-q\n", polyhex.ErrValidation},
		{"bad port", "api:\n  port: 70000\n", polyhex.ErrValidation},
		{"reserved default feature", "grid:\n  default_feature: placeholder\n", polyhex.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "grid: [unterminated\n")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestUnsupportedLayoutIsConfigurationError(t *testing.T) {
	cfg, err := Load(writeConfig(t, "grid:\n  top: flat\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.Assembly(); !errors.Is(err, polyhex.ErrConfiguration) {
		t.Errorf("got %v, want ErrConfiguration", err)
	}
}

func TestCompatibilityFromSlots(t *testing.T) {
	slots := []polyhex.Feature{"bear", "bear_salmon", "fox_salmon"}
	if got := Tokens(slots); !slices.Equal(got, []polyhex.Token{"bear", "fox", "salmon"}) {
		t.Errorf("Tokens = %v", got)
	}
	compat := polyhex.Compatibility(DefaultCompatibility(slots))
	if !compat.Allows("salmon", "bear_salmon") || !compat.Allows("salmon", "fox_salmon") {
		t.Error("salmon should fit both salmon slots")
	}
	if compat.Allows("bear", "fox_salmon") {
		t.Error("bear should not fit fox_salmon")
	}
}
