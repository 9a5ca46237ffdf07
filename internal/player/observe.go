// Package player implements an autonomous placement agent.
// It observes an assembly via the API, decides where a candidate cell
// fits best along the border, and places it via the admin cells endpoint.
package player

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/polyhex/internal/polyhex"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status Status       `json:"status"`
	Border []BorderSlot `json:"border"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	ID         string                  `json:"id"`
	Cells      int                     `json:"cells"`
	Border     int                     `json:"border"`
	Components int                     `json:"components"`
	Score      int                     `json:"score"`
	Habitats   map[polyhex.Feature]int `json:"habitats"`
}

// BorderSlot mirrors items from GET /api/v1/border.
type BorderSlot struct {
	Index int                `json:"index"`
	Q     int                `json:"q"`
	R     int                `json:"r"`
	Sides [6]polyhex.Feature `json:"sides"`
}

// Observer fetches assembly state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status and border and returns a Snapshot.
func (o *Observer) Observe() (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/border", &snap.Border); err != nil {
		return nil, fmt.Errorf("fetch border: %w", err)
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
