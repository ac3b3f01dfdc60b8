// Package session provides in-memory session management for the visualizer.
//
// Each session owns one board built from a layout and the path finder that
// searches it, so several visualizers can run side by side without sharing
// state.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs generated with crypto/rand unless the
// caller supplies one. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", layout)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	go manager.RunCleanup(ctx, time.Minute, time.Hour)
//
// Cleanup:
//
// Idle sessions expire after a configurable age. A session with a run in
// flight is never removed by cleanup.
package session
