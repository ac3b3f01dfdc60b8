// Package service provides the business logic layer for the pathfinding
// visualizer.
//
// The service package implements:
//   - Multi-session visualizer management
//   - Obstacle and endpoint editing
//   - Traversal runs, animated or instant
//   - Layout listing, loading and saving
//
// Core Interfaces:
//
// VisualizerService is the main service interface used by every transport.
// SessionManager stores sessions and LayoutManager loads layout files.
// Publisher receives live run events; the websocket hub implements it.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. Each session owns a board and a PathFinder. A session accepts
// one run at a time: RunAlgorithm reserves the session before returning, so a
// second request fails with engine.ErrAlreadyRunning even while the first run
// is still being scheduled. Edits are refused for the same reason.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	svc := service.NewVisualizerService(session.NewManager(), layouts,
//		service.WithPublisher(hub))
//
//	info, err := svc.CreateSession(ctx, "maze")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Animated run in the background
//	_, err = svc.RunAlgorithm(ctx, info.ID, service.RunRequest{Algorithm: "a*"})
//
//	// Instant run, wait for the result
//	result, err := svc.RunAlgorithm(ctx, info.ID, service.RunRequest{
//		Algorithm: "bfs",
//		Instant:   true,
//		Wait:      true,
//	})
//
// Runs:
//
// Every run clears the previous visited and final marks first. Background
// runs are not tied to the request context and store their outcome as the
// session's last result when they finish.
package service
