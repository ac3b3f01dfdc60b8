package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/pathviz/transport/websocket"
	"github.com/wricardo/pathviz/visualizer/engine"
	"github.com/wricardo/pathviz/visualizer/render"
	"github.com/wricardo/pathviz/visualizer/service"
)

// Server represents the REST API server
type Server struct {
	service service.VisualizerService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(svc service.VisualizerService, hub *websocket.Hub) *Server {
	s := &Server{
		service: svc,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Grid editing
	api.HandleFunc("/sessions/{id}/grid", s.handleGetGrid).Methods("GET")
	api.HandleFunc("/sessions/{id}/image.png", s.handleGridImage).Methods("GET")
	api.HandleFunc("/sessions/{id}/obstacles", s.handleObstacles).Methods("POST")
	api.HandleFunc("/sessions/{id}/endpoints", s.handleEndpoints).Methods("PUT")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Traversal
	api.HandleFunc("/sessions/{id}/run", s.handleRun).Methods("POST")
	api.HandleFunc("/algorithms", s.handleListAlgorithms).Methods("GET")

	// Layouts
	api.HandleFunc("/layouts", s.handleListLayouts).Methods("GET")
	api.HandleFunc("/layouts", s.handleCreateLayout).Methods("POST")
	api.HandleFunc("/layouts/{name}", s.handleGetLayout).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownAlgorithm),
		errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, service.ErrInvalidEndpoint),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidLayout):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LayoutID string `json:"layout_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := s.service.CreateSession(r.Context(), req.LayoutID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Grid Handlers

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	grid, err := s.service.GetGrid(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, grid)
}

func (s *Server) handleGridImage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	grid, err := s.service.GetGrid(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	cellSize := render.DefaultCellSize
	if v := r.URL.Query().Get("cell"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "cell must be a positive integer")
			return
		}
		cellSize = n
	}

	// Encode fully before writing so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := render.PNG(&buf, grid.Render, cellSize); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleObstacles(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.ObstacleUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.UpdateObstacles(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.EndpointUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Start == nil && req.End == nil {
		respondError(w, http.StatusBadRequest, "start or end is required")
		return
	}

	grid, err := s.service.SetEndpoints(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, grid)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Full bool `json:"full,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	grid, err := s.service.ResetGrid(r.Context(), sessionID, req.Full)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Grid reset successfully",
		"grid":    grid,
	})
}

// Traversal Handlers

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Algorithm) == "" {
		respondError(w, http.StatusBadRequest, "algorithm is required")
		return
	}
	if req.Speed < 0 {
		respondError(w, http.StatusBadRequest, "speed must not be negative")
		return
	}

	result, err := s.service.RunAlgorithm(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == service.RunStarted {
		status = http.StatusAccepted
	}
	respondJSON(w, status, result)
}

func (s *Server) handleListAlgorithms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.ListAlgorithms(r.Context()))
}

// Layout Handlers

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.service.ListLayouts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, layouts)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	layout, err := s.service.LoadLayout(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, layout)
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		engine.LayoutConfig
		ID string `json:"layout_id,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Layout name is required")
		return
	}

	id := req.ID
	if id == "" {
		id = layoutID(req.Name)
	}

	layout := req.LayoutConfig
	if err := s.service.SaveLayout(r.Context(), id, &layout); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save layout: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Layout saved successfully",
		"layout_id": id,
	})
}

// layoutID derives a file-safe identifier from a display name
func layoutID(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(context.Background(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
