package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/pathviz/transport/websocket"
	"github.com/wricardo/pathviz/visualizer/config"
	"github.com/wricardo/pathviz/visualizer/engine"
	"github.com/wricardo/pathviz/visualizer/service"
	"github.com/wricardo/pathviz/visualizer/session"
)

// MockVisualizerService implements service.VisualizerService for testing
type MockVisualizerService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, layoutName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Grid Editing
	GetGridFunc         func(ctx context.Context, sessionID string) (*service.GridState, error)
	UpdateObstaclesFunc func(ctx context.Context, sessionID string, update service.ObstacleUpdate) (*service.ObstacleResult, error)
	SetEndpointsFunc    func(ctx context.Context, sessionID string, update service.EndpointUpdate) (*service.GridState, error)
	ResetGridFunc       func(ctx context.Context, sessionID string, full bool) (*service.GridState, error)

	// Traversal
	RunAlgorithmFunc func(ctx context.Context, sessionID string, req service.RunRequest) (*service.RunResult, error)

	// Layouts
	ListLayoutsFunc func(ctx context.Context) ([]*service.LayoutInfo, error)
	LoadLayoutFunc  func(ctx context.Context, name string) (*engine.LayoutConfig, error)
	SaveLayoutFunc  func(ctx context.Context, name string, layout *engine.LayoutConfig) error
}

func testGrid(sessionID string) *service.GridState {
	return &service.GridState{
		SessionID: sessionID,
		Rows:      2,
		Cols:      3,
		Start:     engine.Coordinate{Row: 0, Col: 0},
		End:       engine.Coordinate{Row: 1, Col: 2},
		Render:    []string{"S.#", "..E"},
		Obstacles: []engine.Coordinate{{Row: 0, Col: 2}},
	}
}

func (m *MockVisualizerService) CreateSession(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, layoutName)
	}
	return &service.SessionInfo{ID: "test-session", LayoutName: layoutName, CreatedAt: time.Now()}, nil
}

func (m *MockVisualizerService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, LayoutName: "test-layout", CreatedAt: time.Now()}, nil
}

func (m *MockVisualizerService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockVisualizerService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockVisualizerService) GetGrid(ctx context.Context, sessionID string) (*service.GridState, error) {
	if m.GetGridFunc != nil {
		return m.GetGridFunc(ctx, sessionID)
	}
	return testGrid(sessionID), nil
}

func (m *MockVisualizerService) UpdateObstacles(ctx context.Context, sessionID string, update service.ObstacleUpdate) (*service.ObstacleResult, error) {
	if m.UpdateObstaclesFunc != nil {
		return m.UpdateObstaclesFunc(ctx, sessionID, update)
	}
	return &service.ObstacleResult{Grid: testGrid(sessionID)}, nil
}

func (m *MockVisualizerService) SetEndpoints(ctx context.Context, sessionID string, update service.EndpointUpdate) (*service.GridState, error) {
	if m.SetEndpointsFunc != nil {
		return m.SetEndpointsFunc(ctx, sessionID, update)
	}
	return testGrid(sessionID), nil
}

func (m *MockVisualizerService) ResetGrid(ctx context.Context, sessionID string, full bool) (*service.GridState, error) {
	if m.ResetGridFunc != nil {
		return m.ResetGridFunc(ctx, sessionID, full)
	}
	return testGrid(sessionID), nil
}

func (m *MockVisualizerService) RunAlgorithm(ctx context.Context, sessionID string, req service.RunRequest) (*service.RunResult, error) {
	if m.RunAlgorithmFunc != nil {
		return m.RunAlgorithmFunc(ctx, sessionID, req)
	}
	return &service.RunResult{SessionID: sessionID, Algorithm: engine.Algorithm(req.Algorithm), Status: service.RunStarted, PathLength: -1}, nil
}

func (m *MockVisualizerService) ListAlgorithms(ctx context.Context) []service.AlgorithmInfo {
	return []service.AlgorithmInfo{
		{Name: engine.AStar, Description: "A*", Shortest: true},
		{Name: engine.DFS, Description: "DFS"},
	}
}

func (m *MockVisualizerService) ListLayouts(ctx context.Context) ([]*service.LayoutInfo, error) {
	if m.ListLayoutsFunc != nil {
		return m.ListLayoutsFunc(ctx)
	}
	return []*service.LayoutInfo{}, nil
}

func (m *MockVisualizerService) LoadLayout(ctx context.Context, name string) (*engine.LayoutConfig, error) {
	if m.LoadLayoutFunc != nil {
		return m.LoadLayoutFunc(ctx, name)
	}
	return &engine.LayoutConfig{Name: name, Layout: []string{"S.E"}}, nil
}

func (m *MockVisualizerService) SaveLayout(ctx context.Context, name string, layout *engine.LayoutConfig) error {
	if m.SaveLayoutFunc != nil {
		return m.SaveLayoutFunc(ctx, name, layout)
	}
	return nil
}

func setupTestServer(mockService service.VisualizerService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body: %s)", err, w.Body.String())
	}
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockVisualizerService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default layout",
			requestBody: nil,
			setupMock: func(m *MockVisualizerService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					if layoutName != "" {
						t.Errorf("Expected empty layout name, got %s", layoutName)
					}
					return &service.SessionInfo{ID: "sess-123", LayoutName: "default", CreatedAt: time.Now()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific layout",
			requestBody: map[string]string{"layout_id": "maze"},
			setupMock: func(m *MockVisualizerService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "sess-456", LayoutName: layoutName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.LayoutName != "maze" {
					t.Errorf("Expected layout 'maze', got %s", resp.LayoutName)
				}
			},
		},
		{
			name:        "Unknown layout",
			requestBody: map[string]string{"layout_id": "missing"},
			setupMock: func(m *MockVisualizerService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: '%s'", service.ErrLayoutNotFound, layoutName)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockVisualizerService) {
				m.CreateSessionFunc = func(ctx context.Context, layoutName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockVisualizerService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockVisualizerService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		query string
		want  []string
		total int
	}{
		{"", []string{"mid", "old", "new"}, 3},
		{"?sort=created", []string{"new", "mid", "old"}, 3},
		{"?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"?sort=created&limit=1", []string{"new"}, 3},
		{"?limit=abc", []string{"mid", "old", "new"}, 3},
	}

	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != len(tt.want) || resp.Total != tt.total {
				t.Errorf("Expected count %d total %d, got %d %d", len(tt.want), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.want {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s", i, id)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockVisualizerService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("session %s: %w", sessionID, service.ErrSessionNotFound)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return fmt.Errorf("failed to delete session %s: %w", sessionID, service.ErrSessionNotFound)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	if w := serve(server, makeRequest("GET", "/api/sessions/abcd", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if w := serve(server, makeRequest("GET", "/api/sessions/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w := serve(server, makeRequest("DELETE", "/api/sessions/abcd", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["message"] != "Session abcd deleted" {
		t.Errorf("Unexpected message: %s", resp["message"])
	}

	if w := serve(server, makeRequest("DELETE", "/api/sessions/missing", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Grid Tests

func TestGetGrid(t *testing.T) {
	server := setupTestServer(&MockVisualizerService{})

	w := serve(server, makeRequest("GET", "/api/sessions/abcd/grid", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var grid service.GridState
	parseResponse(t, w, &grid)
	if grid.SessionID != "abcd" || grid.Rows != 2 || grid.Cols != 3 {
		t.Errorf("Unexpected grid: %+v", grid)
	}
}

func TestGridImage(t *testing.T) {
	server := setupTestServer(&MockVisualizerService{})

	w := serve(server, makeRequest("GET", "/api/sessions/abcd/image.png?cell=8", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}

	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 16 {
		t.Errorf("Expected 24x16 image, got %v", img.Bounds())
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/abcd/image.png?cell=-1", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad cell size, got %d", w.Code)
	}
}

func TestObstacles(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		err            error
		expectedStatus int
	}{
		{"valid update", service.ObstacleUpdate{Action: "set", Cells: []engine.Coordinate{{Row: 1, Col: 1}}}, nil, http.StatusOK},
		{"invalid action", service.ObstacleUpdate{Action: "paint"}, service.ErrInvalidAction, http.StatusBadRequest},
		{"out of bounds", service.ObstacleUpdate{Action: "set"}, engine.ErrOutOfBounds, http.StatusBadRequest},
		{"run in progress", service.ObstacleUpdate{Action: "clear_all"}, engine.ErrAlreadyRunning, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.ObstacleUpdate
			mockService := &MockVisualizerService{
				UpdateObstaclesFunc: func(ctx context.Context, sessionID string, update service.ObstacleUpdate) (*service.ObstacleResult, error) {
					got = update
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.ObstacleResult{Changed: len(update.Cells), Grid: testGrid(sessionID)}, nil
				},
			}

			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions/abcd/obstacles", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if want := tt.body.(service.ObstacleUpdate); got.Action != want.Action {
				t.Errorf("Expected action %s to reach the service, got %s", want.Action, got.Action)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions/abcd/obstacles", bytes.NewBufferString("{"))
		if w := serve(setupTestServer(&MockVisualizerService{}), req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestEndpoints(t *testing.T) {
	mockService := &MockVisualizerService{
		SetEndpointsFunc: func(ctx context.Context, sessionID string, update service.EndpointUpdate) (*service.GridState, error) {
			if update.End != nil && update.End.Row > 10 {
				return nil, fmt.Errorf("end %s: %w", *update.End, engine.ErrOutOfBounds)
			}
			if update.Start != nil && update.Start.Col == 2 {
				return nil, fmt.Errorf("%w: start is an obstacle", service.ErrInvalidEndpoint)
			}
			grid := testGrid(sessionID)
			if update.Start != nil {
				grid.Start = *update.Start
			}
			return grid, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"move start", `{"start":{"row":1,"col":0}}`, http.StatusOK},
		{"obstacle", `{"start":{"row":0,"col":2}}`, http.StatusBadRequest},
		{"out of bounds", `{"end":{"row":99,"col":0}}`, http.StatusBadRequest},
		{"empty", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/api/sessions/abcd/endpoints", bytes.NewBufferString(tt.body))
			w := serve(server, req)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestReset(t *testing.T) {
	var gotFull bool
	mockService := &MockVisualizerService{
		ResetGridFunc: func(ctx context.Context, sessionID string, full bool) (*service.GridState, error) {
			gotFull = full
			return testGrid(sessionID), nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/abcd/reset", map[string]bool{"full": true}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !gotFull {
		t.Error("Expected full reset to reach the service")
	}

	w = serve(server, httptest.NewRequest("POST", "/api/sessions/abcd/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 without a body, got %d", w.Code)
	}
	if gotFull {
		t.Error("Expected partial reset by default")
	}
}

// Traversal Tests

func TestRun(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockVisualizerService)
		expectedStatus int
	}{
		{
			name:           "Background run is accepted",
			body:           service.RunRequest{Algorithm: "a*"},
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "Waited run returns the result",
			body: service.RunRequest{Algorithm: "bfs", Wait: true, Instant: true},
			setupMock: func(m *MockVisualizerService) {
				m.RunAlgorithmFunc = func(ctx context.Context, sessionID string, req service.RunRequest) (*service.RunResult, error) {
					if !req.Wait || !req.Instant {
						t.Errorf("Expected wait and instant to be forwarded: %+v", req)
					}
					return &service.RunResult{Status: service.RunCompleted, Found: true, PathLength: 3}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing algorithm",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative speed",
			body:           service.RunRequest{Algorithm: "dfs", Speed: -1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown algorithm",
			body: service.RunRequest{Algorithm: "greedy"},
			setupMock: func(m *MockVisualizerService) {
				m.RunAlgorithmFunc = func(ctx context.Context, sessionID string, req service.RunRequest) (*service.RunResult, error) {
					return nil, engine.ErrUnknownAlgorithm
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Run already in progress",
			body: service.RunRequest{Algorithm: "dfs"},
			setupMock: func(m *MockVisualizerService) {
				m.RunAlgorithmFunc = func(ctx context.Context, sessionID string, req service.RunRequest) (*service.RunResult, error) {
					return nil, engine.ErrAlreadyRunning
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Session not found",
			body: service.RunRequest{Algorithm: "dfs"},
			setupMock: func(m *MockVisualizerService) {
				m.RunAlgorithmFunc = func(ctx context.Context, sessionID string, req service.RunRequest) (*service.RunResult, error) {
					return nil, fmt.Errorf("session %s: %w", sessionID, service.ErrSessionNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockVisualizerService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions/abcd/run", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAlgorithms(t *testing.T) {
	w := serve(setupTestServer(&MockVisualizerService{}), makeRequest("GET", "/api/algorithms", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var algorithms []service.AlgorithmInfo
	parseResponse(t, w, &algorithms)
	if len(algorithms) != 2 || algorithms[0].Name != engine.AStar {
		t.Errorf("Unexpected algorithms: %+v", algorithms)
	}
}

// Layout Tests

func TestLayouts(t *testing.T) {
	var savedID string
	var saved *engine.LayoutConfig
	mockService := &MockVisualizerService{
		ListLayoutsFunc: func(ctx context.Context) ([]*service.LayoutInfo, error) {
			return []*service.LayoutInfo{{LayoutID: "maze", Name: "Maze", Rows: 3, Cols: 5}}, nil
		},
		LoadLayoutFunc: func(ctx context.Context, name string) (*engine.LayoutConfig, error) {
			if name != "maze" {
				return nil, service.ErrLayoutNotFound
			}
			return &engine.LayoutConfig{Name: "Maze", Layout: []string{"S...E"}}, nil
		},
		SaveLayoutFunc: func(ctx context.Context, name string, layout *engine.LayoutConfig) error {
			if len(layout.Layout) == 0 {
				return fmt.Errorf("%w: no rows", service.ErrInvalidLayout)
			}
			savedID, saved = name, layout
			return nil
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := serve(server, makeRequest("GET", "/api/layouts", nil))
		var layouts []*service.LayoutInfo
		parseResponse(t, w, &layouts)
		if len(layouts) != 1 || layouts[0].LayoutID != "maze" {
			t.Errorf("Unexpected layouts: %+v", layouts)
		}
	})

	t.Run("get", func(t *testing.T) {
		if w := serve(server, makeRequest("GET", "/api/layouts/maze", nil)); w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if w := serve(server, makeRequest("GET", "/api/layouts/other", nil)); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{
			"name":   "My Maze!",
			"layout": []string{"S.#", "..E"},
		}
		w := serve(server, makeRequest("POST", "/api/layouts", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if savedID != "my_maze" {
			t.Errorf("Expected derived id my_maze, got %s", savedID)
		}
		if saved == nil || saved.Name != "My Maze!" || len(saved.Layout) != 2 {
			t.Errorf("Unexpected saved layout: %+v", saved)
		}
	})

	t.Run("create with explicit id", func(t *testing.T) {
		body := map[string]interface{}{"name": "X", "layout_id": "custom", "layout": []string{"SE"}}
		if w := serve(server, makeRequest("POST", "/api/layouts", body)); w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", w.Code)
		}
		if savedID != "custom" {
			t.Errorf("Expected id custom, got %s", savedID)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		if w := serve(server, makeRequest("POST", "/api/layouts", map[string]string{"name": "Empty"})); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
		if w := serve(server, makeRequest("POST", "/api/layouts", map[string]string{})); w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without a name, got %d", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	w := serve(setupTestServer(&MockVisualizerService{}), makeRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Unexpected health status: %s", resp["status"])
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockVisualizerService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockVisualizerService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Valid session",
			queryParams:    "?session=sess-123",
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockVisualizerService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// httptest.ResponseRecorder does not implement http.Hijacker, so a
			// 500 means the upgrade was attempted
			if tt.expectedStatus == http.StatusSwitchingProtocols && w.Code == http.StatusInternalServerError {
				return
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// TestRunConflictEndToEnd drives the real service through the router: a
// background run holds the session, so a second run and edits get 409 until
// it finishes.
func TestRunConflictEndToEnd(t *testing.T) {
	layouts, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create layout manager: %v", err)
	}

	release := make(chan struct{})
	var once sync.Once
	paused := make(chan struct{})
	blocking := func(float64) engine.Pacer {
		return engine.PacerFunc(func(context.Context, engine.Algorithm, engine.StepKind) {
			once.Do(func() { close(paused) })
			<-release
		})
	}

	hub := websocket.NewHub()
	go hub.Run()
	svc := service.NewVisualizerService(session.NewManager(), layouts,
		service.WithPublisher(hub), service.WithPacerFactory(blocking))
	server := NewServer(svc, hub)

	w := serve(server, makeRequest("POST", "/api/sessions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	base := "/api/sessions/" + info.ID

	w = serve(server, makeRequest("POST", base+"/run", service.RunRequest{Algorithm: "a*"}))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}

	select {
	case <-paused:
	case <-time.After(5 * time.Second):
		t.Fatal("run never reached its first pause")
	}

	if w := serve(server, makeRequest("POST", base+"/run", service.RunRequest{Algorithm: "bfs"})); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for a second run, got %d", w.Code)
	}
	if w := serve(server, makeRequest("POST", base+"/reset", nil)); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for reset during a run, got %d", w.Code)
	}

	close(release)

	deadline := time.Now().Add(5 * time.Second)
	for {
		w := serve(server, makeRequest("GET", base+"/grid", nil))
		var grid service.GridState
		parseResponse(t, w, &grid)
		if !grid.Running && grid.LastResult != nil {
			if !grid.LastResult.Found {
				t.Errorf("Expected the blank grid run to find a path")
			}
			if grid.LastResult.PathLength != engine.Manhattan(grid.Start, grid.End) {
				t.Errorf("Expected path length %d, got %d", engine.Manhattan(grid.Start, grid.End), grid.LastResult.PathLength)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = serve(server, makeRequest("POST", base+"/run", service.RunRequest{Algorithm: "bfs", Instant: true, Wait: true}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for a waited run, got %d", w.Code)
	}
	var result service.RunResult
	parseResponse(t, w, &result)
	if result.Status != service.RunCompleted || !result.Found {
		t.Errorf("Unexpected result: %+v", result)
	}
}
