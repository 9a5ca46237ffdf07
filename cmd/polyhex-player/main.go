// Command polyhex-player extends a running polyhex assembly one cell at a
// time. It observes the border, picks the best fit from its hand, and
// places it via the admin cells API.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/polyhex/internal/config"
	"github.com/talgya/polyhex/internal/player"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("POLYHEX_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("POLYHEX_ADMIN_KEY")
	intervalSec := envIntOrDefault("PLAYER_INTERVAL", 10)
	handSize := envIntOrDefault("PLAYER_HAND", 3)
	turns := envIntOrDefault("PLAYER_TURNS", 0)

	if adminKey == "" {
		slog.Error("POLYHEX_ADMIN_KEY is required")
		os.Exit(1)
	}

	cfg, err := config.Load(envOrDefault("CONFIG_PATH", "polyhex.yaml"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if v := envIntOrDefault("PLAYER_SEED", 0); v != 0 {
		cfg.Terrain.Seed = int64(v)
	}
	deck, err := player.NewDeck(cfg.Terrain)
	if err != nil {
		slog.Error("failed to create deck", "error", err)
		os.Exit(1)
	}
	hand, err := deck.Deal(handSize)
	if err != nil {
		slog.Error("failed to deal hand", "error", err)
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second
	slog.Info("polyhex player starting",
		"api_url", apiURL,
		"interval", interval,
		"hand", handSize,
		"seed", deck.Seed(),
	)

	observer := player.NewObserver(apiURL)
	actor := player.NewActor(apiURL, adminKey)

	slog.Info("waiting for polyhex API...")
	waitForAPI(apiURL)

	played := 0
	turn := func() {
		if runTurn(observer, actor, deck, hand) {
			played++
		}
	}
	turn()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for turns == 0 || played < turns {
		select {
		case <-ticker.C:
			turn()
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Player stopped.")
			return
		}
	}
	fmt.Printf("Player finished after %d placements.\n", played)
}

// runTurn executes one observe, decide, act cycle and refills the hand.
func runTurn(observer *player.Observer, actor *player.Actor, deck *player.Deck, hand []player.Candidate) bool {
	snap, err := observer.Observe()
	if err != nil {
		slog.Error("observation failed", "error", err)
		return false
	}
	slog.Info("observation complete",
		"cells", snap.Status.Cells,
		"border", snap.Status.Border,
		"score", snap.Status.Score,
	)

	decision, ok := player.Decide(snap, hand)
	if !ok {
		slog.Info("turn complete, nowhere to place")
		return false
	}

	status, err := actor.Act(decision.Placement)
	if err != nil {
		slog.Error("placement failed", "error", err)
		return false
	}
	slog.Info("cell placed",
		"q", decision.Placement.Q,
		"r", decision.Placement.R,
		"rotation", decision.Rotation,
		"matches", decision.Matches,
		"score", status.Score,
	)

	next, err := deck.Draw()
	if err != nil {
		slog.Error("draw failed", "error", err)
		return true
	}
	hand[decision.Hand] = next
	return true
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("polyhex API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("polyhex API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("polyhex not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
