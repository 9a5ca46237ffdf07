// Package api provides the HTTP API for observing and growing an assembly.
// GET endpoints are public (read-only observation for renderers and agents).
// POST endpoints require a bearer token and are rate limited per client.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/persistence"
	"github.com/talgya/polyhex/internal/polyhex"
)

// Server serves one assembly over HTTP.
type Server struct {
	Assembly *polyhex.Assembly
	ID       uuid.UUID       // Snapshot id the assembly is saved under.
	DB       *persistence.DB // Nil disables snapshots.
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	RateLimit  int           // POST requests per window per client. 0 = 60.
	RateWindow time.Duration // 0 = one minute.

	// Guards Assembly. The core is single-threaded.
	mu sync.RWMutex
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	limit, window := s.RateLimit, s.RateWindow
	if limit == 0 {
		limit = 60
	}
	if window == 0 {
		window = time.Minute
	}
	writes := NewRateLimiter(limit, window)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/border", s.handleBorder)
	mux.HandleFunc("/api/v1/graph", s.handleGraph)
	mux.HandleFunc("/api/v1/regions", s.handleRegions)
	mux.HandleFunc("/api/v1/segments", s.handleSegments)
	mux.HandleFunc("/api/v1/snapshots", s.handleSnapshots)

	// Mixed endpoint: GET lists cells, POST inserts one.
	mux.HandleFunc("/api/v1/cells", s.adminOnly(WriteRateLimitMiddleware(writes, s.handleCells)))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/tokens", s.adminOnly(WriteRateLimitMiddleware(writes, s.handleTokens)))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(WriteRateLimitMiddleware(writes, s.handleSnapshot)))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "snapshots", s.DB != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Save writes the assembly to the snapshot store.
func (s *Server) Save() error {
	if s.DB == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DB.SaveAssembly(s.ID, s.Assembly)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, polyhex.ErrDuplicatePlacement), errors.Is(err, polyhex.ErrOccupancy):
		return http.StatusConflict
	case errors.Is(err, polyhex.ErrValidation), errors.Is(err, polyhex.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), code)
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	ID         string                  `json:"id"`
	System     string                  `json:"system"`
	Top        string                  `json:"top"`
	Winding    string                  `json:"winding"`
	Radius     float64                 `json:"radius"`
	Cells      int                     `json:"cells"`
	Border     int                     `json:"border"`
	Components int                     `json:"components"`
	Score      int                     `json:"score"`
	Habitats   map[polyhex.Feature]int `json:"habitats"`
	Edges      map[polyhex.Feature]int `json:"edges"`
}

func (s *Server) status() StatusResponse {
	a := s.Assembly
	layout := a.Config().Layout
	return StatusResponse{
		ID:         s.ID.String(),
		System:     layout.System.String(),
		Top:        layout.Top.String(),
		Winding:    layout.Winding.String(),
		Radius:     a.Config().Radius,
		Cells:      a.TotalCells(),
		Border:     a.Border().Size(),
		Components: a.Components(),
		Score:      a.Score(),
		Habitats:   a.Habitats(),
		Edges:      a.EdgeCounts(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.status())
}

// CellEntry is one placed cell as rendered by GET /api/v1/cells.
type CellEntry struct {
	Q        int                `json:"q"`
	R        int                `json:"r"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Centre   polyhex.Feature    `json:"centre"`
	Edges    [6]polyhex.Feature `json:"edges"`
	Token    polyhex.Token      `json:"token"`
	Occupied bool               `json:"occupied"`
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCells(w)
	case http.MethodPost:
		s.insertCell(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listCells(w http.ResponseWriter) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cells := s.Assembly.Cells()
	out := make([]CellEntry, 0, len(cells))
	for _, c := range cells {
		x, y := c.Position()
		out = append(out, CellEntry{
			Q:        c.Coord().Q,
			R:        c.Coord().R,
			X:        x,
			Y:        y,
			Centre:   c.Centre(),
			Edges:    c.Features(),
			Token:    c.Token(),
			Occupied: c.Occupied(),
		})
	}
	writeJSON(w, out)
}

// InsertRequest is the body of POST /api/v1/cells. Edges holds one
// broadcast feature or six explicit ones.
type InsertRequest struct {
	Q      int               `json:"q"`
	R      int               `json:"r"`
	Centre polyhex.Feature   `json:"centre"`
	Edges  []polyhex.Feature `json:"edges"`
	// Border restricts the insert to a current border coordinate.
	Border bool `json:"border,omitempty"`
}

func (s *Server) insertCell(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	at := hex.Coord{Q: req.Q, R: req.R}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Border && !s.Assembly.Empty() && !s.Assembly.Border().Has(at) {
		http.Error(w, fmt.Sprintf("%s is not on the border", at), http.StatusConflict)
		return
	}
	cell, err := s.Assembly.NewCell(at, req.Centre, req.Edges...)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Assembly.Insert(cell); err != nil {
		writeError(w, err)
		return
	}

	slog.Debug("cell inserted", "coord", at, "cells", s.Assembly.TotalCells())
	writeJSONStatus(w, http.StatusCreated, s.status())
}

// TokenRequest is the body of POST /api/v1/tokens.
type TokenRequest struct {
	Q     int           `json:"q"`
	R     int           `json:"r"`
	Token polyhex.Token `json:"token"`
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := hex.Coord{Q: req.Q, R: req.R}
	if err := s.Assembly.AddToken(at, req.Token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"q":     at.Q,
		"r":     at.R,
		"token": req.Token,
	})
}

// BorderEntry is one placeholder as rendered by GET /api/v1/border.
type BorderEntry struct {
	Index   int                `json:"index"`
	Q       int                `json:"q"`
	R       int                `json:"r"`
	Feature polyhex.Feature    `json:"feature"`
	Anchor  hex.Coord          `json:"anchor"`
	Sides   [6]polyhex.Feature `json:"sides"`
}

func (s *Server) handleBorder(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.Assembly.Border()
	coords := g.Coords()
	out := make([]BorderEntry, 0, len(coords))
	for i, c := range coords {
		p, _ := g.Node(c)
		out = append(out, BorderEntry{
			Index:   i,
			Q:       c.Q,
			R:       c.R,
			Feature: p.Feature,
			Anchor:  p.Anchor,
			Sides:   p.Sides,
		})
	}
	writeJSON(w, out)
}

// GraphResponse is the border graph in COO form.
type GraphResponse struct {
	Nodes     [][]float64  `json:"nodes"`
	EdgeIndex [2][]int     `json:"edge_index"`
	EdgeAttr  [][3]float64 `json:"edge_attr"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, err := s.Assembly.GraphNodes(s.Assembly.Config().Encoding)
	if err != nil {
		writeError(w, err)
		return
	}
	starts, ends, attrs := s.Assembly.GraphEdges()
	writeJSON(w, GraphResponse{
		Nodes:     nodes,
		EdgeIndex: [2][]int{starts, ends},
		EdgeAttr:  attrs,
	})
}

// RegionEntry summarises the regions of one feature.
type RegionEntry struct {
	Feature polyhex.Feature `json:"feature"`
	Largest int             `json:"largest"`
	Regions [][]hex.Coord   `json:"regions"`
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt := s.Assembly.Regions()
	out := make([]RegionEntry, 0)
	for _, f := range rt.Features() {
		out = append(out, RegionEntry{
			Feature: f,
			Largest: rt.LargestRegion(f),
			Regions: rt.Regions(f),
		})
	}
	writeJSON(w, map[string]any{
		"score":    s.Assembly.Score(),
		"features": out,
	})
}

// handleSegments lists each drawn edge once, with seams marked for renderers.
func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.Assembly.Segments())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.Save(); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	s.mu.RLock()
	cells := s.Assembly.TotalCells()
	s.mu.RUnlock()

	writeJSON(w, map[string]any{
		"id":      s.ID.String(),
		"cells":   cells,
		"message": "snapshot saved",
	})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	records, err := s.DB.ListAssemblies(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
