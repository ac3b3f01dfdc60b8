// Package api provides HTTP REST API handlers for the pathfinding visualizer.
//
// The api package implements:
//   - Session management endpoints
//   - Grid editing (obstacles, endpoints, reset)
//   - Traversal runs and the algorithm menu
//   - Layout listing, loading and saving
//   - PNG snapshots of a session's grid
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"layout_id": "maze"}, optional)
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Grid:
//   - GET /api/sessions/{id}/grid - Current grid state
//   - GET /api/sessions/{id}/image.png - Grid snapshot (cell=N pixels per cell)
//   - POST /api/sessions/{id}/obstacles - {"action": "set|clear|toggle|clear_all", "cells": [{"row":1,"col":2}]}
//   - PUT /api/sessions/{id}/endpoints - {"start": {"row":0,"col":0}, "end": {...}}
//   - POST /api/sessions/{id}/reset - {"full": true} also clears obstacles
//
// Traversal:
//   - POST /api/sessions/{id}/run - {"algorithm": "a*", "speed": 2, "instant": false, "wait": false}
//   - GET /api/algorithms - Supported algorithms
//
// Layouts:
//   - GET /api/layouts - List layouts
//   - GET /api/layouts/{name} - Get a layout
//   - POST /api/layouts - Save a layout
//
// Runs:
//
// A run started without "wait" returns 202 Accepted immediately and streams
// its progress over the session's WebSocket. With "wait" the response is 200
// and carries the completed result. A second run, or any edit, while one is in
// progress returns 409 Conflict.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code:
//
//	{
//	  "error": "a traversal is already in progress"
//	}
//
// Unknown sessions and layouts map to 404, invalid input to 400.
package api
