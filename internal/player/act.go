package player

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/polyhex/internal/polyhex"
)

// Placement is the body sent to POST /api/v1/cells.
type Placement struct {
	Q      int               `json:"q"`
	R      int               `json:"r"`
	Centre polyhex.Feature   `json:"centre"`
	Edges  []polyhex.Feature `json:"edges"`
	Border bool              `json:"border"`
}

// Actor places cells via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends a placement to POST /api/v1/cells and returns the status
// reported after the insert.
func (a *Actor) Act(p Placement) (*Status, error) {
	p.Border = true
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal placement: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+"/api/v1/cells", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST cells: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("placement failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var status Status
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}
