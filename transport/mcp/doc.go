// Package mcp provides a Model Context Protocol server for the pathfinding
// visualizer.
//
// The server is a thin client: every tool call is proxied to the REST API, so
// MCP agents and browsers share the same sessions and see each other's edits
// and runs.
//
// MCP Tools:
//   - create_session, list_sessions: session management
//   - get_grid, describe_cell: read the grid
//   - set_obstacles, set_endpoints, reset_grid: edit the grid
//   - run_algorithm: run a*, dijkstra, bfs or dfs and wait for the result
//   - list_algorithms, list_layouts: discovery
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the main server mounts HandleMessage at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
