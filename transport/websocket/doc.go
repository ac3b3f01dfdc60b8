// Package websocket streams live visualizer updates to browsers.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; the hub loop owns registration and fan-out.
//
// Message Protocol:
//
// Messages are JSON objects with a session_id and an event name:
//   - grid_update: a full grid snapshot in "grid", sent after edits, resets
//     and at the start and end of every run
//   - visited, final, found, no_path: one search step in "step", sent in the
//     order the search produced them
//
// Several queued messages may be written in one frame, separated by newlines.
//
// Session Integration:
//
// Clients pass their session ID as the "session" query parameter when
// connecting. Updates are delivered only to clients of the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	svc := service.NewVisualizerService(sessions, layouts, service.WithPublisher(hub))
package websocket
