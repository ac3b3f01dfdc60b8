package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/pathviz/visualizer/engine"
	"github.com/wricardo/pathviz/visualizer/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Waited runs with animation enabled can take a while
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pathfinding Visualizer",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pathfinding Visualizer - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GRID:
Each session holds a grid. '.' is open, '#' is an obstacle, 'S' is the start and 'E' is the end.
After a run, 'o' marks visited cells and '*' marks the final path. Coordinates are (row, col), 0-based.

AVAILABLE TOOLS:
- create_session: Create a session from a layout
- list_sessions: List active sessions
- get_grid: Show a session's grid
- describe_cell: Inspect one cell
- set_obstacles: Set, clear or toggle obstacles
- set_endpoints: Move the start and/or end
- reset_grid: Clear visited/path marks (full=true also clears obstacles)
- run_algorithm: Run a*, dijkstra, bfs or dfs and report the path
- list_algorithms: Describe the algorithms
- list_layouts: List available layouts

Only one run may be in progress per session; edits are refused while a run is animating.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func coordinateProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"row": map[string]interface{}{"type": "integer"},
			"col": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"row", "col"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new visualizer session with optional layout selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the layout to use (optional, see list_layouts)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active visualizer sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	// Grid
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_grid",
		Description: "Get the current grid of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetGrid)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about one grid cell: obstacle, visited, on the final path, start or end.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_obstacles",
		Description: "Edit obstacles. Start and end cells are never turned into obstacles.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{service.ActionSet, service.ActionClear, service.ActionToggle, service.ActionClearAll},
					"description": "What to do with the listed cells (clear_all ignores cells)",
				},
				"cells": map[string]interface{}{
					"type":        "array",
					"items":       coordinateProperty("Cell coordinate"),
					"description": "Cells to edit",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleSetObstacles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_endpoints",
		Description: "Move the start and/or end point. Endpoints cannot be placed on obstacles.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"start":      coordinateProperty("New start cell (optional)"),
				"end":        coordinateProperty("New end cell (optional)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSetEndpoints)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_grid",
		Description: "Clear visited and path marks. With full=true obstacles are cleared too.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"full": map[string]interface{}{
					"type":        "boolean",
					"description": "Also clear obstacles",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetGrid)

	// Traversal
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_algorithm",
		Description: "Run a pathfinding algorithm on a session and report the path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"algorithm": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"a*", "dijkstra", "bfs", "dfs"},
					"description": "Algorithm to run",
				},
				"animate": map[string]interface{}{
					"type":        "boolean",
					"description": "Pace the run for connected browsers instead of running instantly (default false)",
				},
				"speed": map[string]interface{}{
					"type":        "number",
					"description": "Animation speed multiplier when animate is true (default 1)",
				},
			},
			Required: []string{"session_id", "algorithm"},
		},
	}, c.handleRunAlgorithm)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_algorithms",
		Description: "List the supported algorithms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListAlgorithms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_layouts",
		Description: "List available grid layouts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLayouts)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// coordinateArg reads a {"row": r, "col": c} argument
func coordinateArg(raw interface{}) (*engine.Coordinate, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("coordinate must be an object with row and col")
	}
	row, okRow := intArg(m, "row")
	col, okCol := intArg(m, "col")
	if !okRow || !okCol {
		return nil, fmt.Errorf("coordinate must have integer row and col")
	}
	return &engine.Coordinate{Row: row, Col: col}, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	layoutID, _ := args["layout_id"].(string)

	body := map[string]string{}
	if layoutID != "" {
		body["layout_id"] = layoutID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLayout: %s\n\n%s", session.ID, session.LayoutName, formatGrid(session.Grid))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		size := ""
		if s.Grid != nil {
			size = fmt.Sprintf(", Grid: %dx%d", s.Grid.Rows, s.Grid.Cols)
		}
		result.WriteString(fmt.Sprintf("- %s (Layout: %s%s, Created: %s)\n",
			s.ID, s.LayoutName, size, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var grid service.GridState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/grid", sessionID), nil, &grid); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGrid(&grid)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var grid service.GridState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/grid", sessionID), nil, &grid); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if row < 0 || row >= grid.Rows || col < 0 || col >= grid.Cols || row >= len(grid.Render) {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d,%d) is out of bounds. Grid is %dx%d (rows 0-%d, cols 0-%d)",
			row, col, grid.Rows, grid.Cols, grid.Rows-1, grid.Cols-1)), nil
	}

	char := grid.Render[row][col]
	description := describeChar(char)
	passable := char != engine.CharObstacle

	result := fmt.Sprintf("Cell (%d,%d)\nCharacter: %c\nState: %s\nPassable: %t\n",
		row, col, char, description, passable)
	return mcp.NewToolResultText(result), nil
}

func describeChar(char byte) string {
	switch char {
	case engine.CharStart:
		return "Start point"
	case engine.CharEnd:
		return "End point"
	case engine.CharObstacle:
		return "Obstacle - searches never enter it"
	case engine.CharVisited:
		return "Visited by the last run"
	case engine.CharFinal:
		return "On the final path of the last run"
	default:
		return "Open cell"
	}
}

func (c *Client) handleSetObstacles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)
	cellsRaw, _ := args["cells"].([]interface{})

	update := service.ObstacleUpdate{Action: action}
	for i, raw := range cellsRaw {
		cell, err := coordinateArg(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cells[%d]: %v", i, err)), nil
		}
		update.Cells = append(update.Cells, *cell)
	}

	var result service.ObstacleResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/obstacles", sessionID), update, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("Obstacles %s: %d cell(s) changed\n", action, result.Changed))
	if len(result.Skipped) > 0 {
		response.WriteString(fmt.Sprintf("Skipped endpoints: %s\n", formatCoordinates(result.Skipped)))
	}
	response.WriteString("\n" + formatGrid(result.Grid))
	return mcp.NewToolResultText(response.String()), nil
}

func (c *Client) handleSetEndpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var update service.EndpointUpdate
	if raw, ok := args["start"]; ok && raw != nil {
		start, err := coordinateArg(raw)
		if err != nil {
			return mcp.NewToolResultError("start: " + err.Error()), nil
		}
		update.Start = start
	}
	if raw, ok := args["end"]; ok && raw != nil {
		end, err := coordinateArg(raw)
		if err != nil {
			return mcp.NewToolResultError("end: " + err.Error()), nil
		}
		update.End = end
	}
	if update.Start == nil && update.End == nil {
		return mcp.NewToolResultError("start or end is required"), nil
	}

	var grid service.GridState
	if err := c.apiCall(ctx, "PUT", fmt.Sprintf("/api/sessions/%s/endpoints", sessionID), update, &grid); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Endpoints updated\n\n" + formatGrid(&grid)), nil
}

func (c *Client) handleResetGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	full, _ := args["full"].(bool)

	var response struct {
		Message string             `json:"message"`
		Grid    *service.GridState `json:"grid"`
	}

	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), map[string]bool{"full": full}, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGrid(response.Grid))), nil
}

func (c *Client) handleRunAlgorithm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	algorithm, _ := args["algorithm"].(string)
	animate, _ := args["animate"].(bool)
	speed, _ := args["speed"].(float64)

	req := service.RunRequest{
		Algorithm: algorithm,
		Speed:     speed,
		Instant:   !animate,
		Wait:      true,
	}

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/run", sessionID), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Show the marked grid along with the result
	var grid service.GridState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/grid", sessionID), nil, &grid); err != nil {
		return mcp.NewToolResultText(formatRunResult(&result)), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result) + "\n" + formatGrid(&grid)), nil
}

func (c *Client) handleListAlgorithms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var algorithms []service.AlgorithmInfo
	if err := c.apiCall(ctx, "GET", "/api/algorithms", nil, &algorithms); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Algorithms:\n\n")
	for _, a := range algorithms {
		shortest := "not guaranteed shortest"
		if a.Shortest {
			shortest = "shortest path"
		}
		result.WriteString(fmt.Sprintf("• %s (%s)\n  %s\n", a.Name, shortest, a.Description))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var layouts []service.LayoutInfo
	if err := c.apiCall(ctx, "GET", "/api/layouts", nil, &layouts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Layouts:\n\n")
	for _, l := range layouts {
		result.WriteString(fmt.Sprintf("• %s (ID: %s)\n", l.Name, l.LayoutID))
		if l.Description != "" {
			result.WriteString(fmt.Sprintf("  %s\n", l.Description))
		}
		result.WriteString(fmt.Sprintf("  Grid: %dx%d, Obstacles: %d\n\n", l.Rows, l.Cols, l.Obstacles))
	}

	return mcp.NewToolResultText(result.String()), nil
}

// Formatting helpers

func formatGrid(grid *service.GridState) string {
	if grid == nil {
		return "No grid available"
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Grid: %dx%d | Start: %s | End: %s | Obstacles: %d | Visited: %d\n",
		grid.Rows, grid.Cols, grid.Start, grid.End, len(grid.Obstacles), grid.VisitedCount))
	if grid.Running {
		result.WriteString("A run is in progress\n")
	}
	result.WriteString("\n")

	for _, row := range grid.Render {
		result.WriteString(row)
		result.WriteString("\n")
	}

	if grid.LastResult != nil {
		result.WriteString("\nLast run: ")
		result.WriteString(formatRunSummary(grid.LastResult))
		result.WriteString("\n")
	}

	return result.String()
}

func formatRunSummary(result *service.RunResult) string {
	if result.Error != "" {
		return fmt.Sprintf("%s failed: %s", result.Algorithm, result.Error)
	}
	if !result.Found {
		return fmt.Sprintf("%s found no path (visited %d cells)", result.Algorithm, result.VisitedCount)
	}
	return fmt.Sprintf("%s found a path of length %d (visited %d cells)", result.Algorithm, result.PathLength, result.VisitedCount)
}

func formatRunResult(result *service.RunResult) string {
	if result.Status == service.RunStarted {
		return fmt.Sprintf("Run of %s started on session %s", result.Algorithm, result.SessionID)
	}

	var out strings.Builder
	out.WriteString(formatRunSummary(result))
	out.WriteString(fmt.Sprintf("\nDuration: %dms\n", result.DurationMs))
	if result.Found {
		out.WriteString("Path: ")
		out.WriteString(formatCoordinates(result.Path))
		out.WriteString("\n")
	}
	return out.String()
}

func formatCoordinates(coords []engine.Coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.String()
	}
	return strings.Join(parts, " -> ")
}
