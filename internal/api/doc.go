// Package api implements the local HTTP control server for homecast.
//
// This package provides:
//   - Path-based command routes (/toggle/Office/Lamp, /brightness/40/Office/Lamp)
//   - Free-text and URL-scheme command routes (/command, /open)
//   - Read-only query routes over the current snapshot and groups
//   - A characteristic index used to describe change events
//   - Server-sent event (/events) and WebSocket (/ws) change streams
//   - Prometheus metrics (/metrics)
//
// # Change Streams
//
// PublishCharacteristicChange is the single entry point for change events.
// Unindexed characteristics are dropped, and a value equal to the last one
// published for the same characteristic is suppressed. Every connected
// listener, SSE or WebSocket, receives each remaining event. A listener
// whose buffer is full misses the event; a listener whose write fails is
// removed.
//
// # Graceful Degradation
//
// The server runs without a bridge or snapshot. Query routes return empty
// lists and command routes answer 503 until the first snapshot is loaded.
package api
