// Command polyhexd builds or restores a polyhex assembly and serves it over HTTP.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/polyhex/internal/api"
	"github.com/talgya/polyhex/internal/config"
	"github.com/talgya/polyhex/internal/persistence"
	"github.com/talgya/polyhex/internal/polyhex"
	"github.com/talgya/polyhex/internal/terrain"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// ── Configuration ─────────────────────────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "polyhex.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if key := os.Getenv("POLYHEX_ADMIN_KEY"); key != "" {
		cfg.API.AdminKey = key
	}
	assemblyCfg, err := cfg.Assembly()
	if err != nil {
		slog.Error("unsupported grid configuration", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.Path)

	// ── Load or Build Assembly ────────────────────────────────────────
	var (
		assembly *polyhex.Assembly
		id       uuid.UUID
	)
	latest, err := db.LatestAssembly()
	switch {
	case err == nil:
		slog.Info("found saved assembly, loading...", "id", latest)
		assembly, err = db.LoadAssembly(latest, assemblyCfg)
		if err != nil {
			slog.Error("failed to load assembly", "error", err)
			os.Exit(1)
		}
		id = latest
	case errors.Is(err, persistence.ErrNotFound):
		slog.Info("no saved assembly found, building...", "mode", cfg.Build.Mode)
		assembly, err = build(cfg, assemblyCfg)
		if err != nil {
			slog.Error("failed to build assembly", "error", err)
			os.Exit(1)
		}
		id = uuid.New()
		if err := db.SaveAssembly(id, assembly); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	default:
		slog.Error("failed to query snapshots", "error", err)
		os.Exit(1)
	}
	if err := db.SaveMeta("current", id.String()); err != nil {
		slog.Warn("failed to record current snapshot", "error", err)
	}

	slog.Info("assembly ready",
		"id", id,
		"cells", assembly.TotalCells(),
		"border", assembly.Border().Size(),
		"score", assembly.Score(),
	)
	for f, n := range assembly.Habitats() {
		slog.Info("habitat", "feature", f, "largest_region", n)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("no admin key set, POST endpoints will be disabled")
	}
	server := &api.Server{
		Assembly:   assembly,
		ID:         id,
		DB:         db,
		Port:       cfg.API.Port,
		AdminKey:   cfg.API.AdminKey,
		RateLimit:  cfg.API.RateLimit,
		RateWindow: time.Duration(cfg.API.RateWindowSec) * time.Second,
	}
	server.Start()

	// ── Run ───────────────────────────────────────────────────────────
	fmt.Printf("\nPolyhex %s: %d cells, score %d.\n", id, assembly.TotalCells(), assembly.Score())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	// Final save on shutdown.
	slog.Info("final save...")
	if err := server.Save(); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Polyhex stopped. Assembly saved.")
}

// build constructs a fresh assembly according to the build plan.
func build(cfg *config.Config, assemblyCfg polyhex.Config) (*polyhex.Assembly, error) {
	var factory polyhex.CellFactory
	if cfg.Build.Noise {
		gen, err := terrain.New(cfg.Terrain)
		if err != nil {
			return nil, err
		}
		slog.Info("terrain generator ready", "seed", gen.Seed())
		factory = gen.Factory(assemblyCfg)
	}

	switch cfg.Build.Mode {
	case config.ModeSpiral:
		return polyhex.Spiral(assemblyCfg, cfg.Build.Size, factory)
	case config.ModeCount:
		seed := cfg.Build.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		slog.Info("sampling border", "seed", seed)
		return polyhex.FromCount(assemblyCfg, cfg.Build.Size, rand.New(rand.NewSource(seed)), factory)
	case config.ModeTiling:
		kind, err := polyhex.ParseTiling(cfg.Build.Tiling)
		if err != nil {
			return nil, err
		}
		offset, err := polyhex.ParseRowOffset(cfg.Build.Offset)
		if err != nil {
			return nil, err
		}
		return polyhex.FromTiling(assemblyCfg, cfg.Build.Width, cfg.Build.Height, kind, offset, factory)
	case config.ModeTiles:
		cells, err := polyhex.StartTiles(assemblyCfg, cfg.Build.Tiles...)
		if err != nil {
			return nil, err
		}
		return polyhex.FromList(assemblyCfg, cells)
	}
	return nil, fmt.Errorf("%w: unknown build mode %q", polyhex.ErrValidation, cfg.Build.Mode)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
