package home

import "context"

// Bridge performs device reads and writes on behalf of the core.
//
// Writes and scene execution are fire-and-forget. Failures are reported
// asynchronously as EventError on the backend's event channel.
type Bridge interface {
	// WriteCharacteristic sends value to the characteristic.
	WriteCharacteristic(id string, value any)

	// CharacteristicValue returns the cached value of the characteristic.
	CharacteristicValue(id string) (any, bool)

	// ExecuteScene triggers the scene.
	ExecuteScene(id string)
}

// Backend is a Bridge that also supplies snapshots and device events.
type Backend interface {
	Bridge

	// LoadSnapshot produces a fresh, un-normalized snapshot.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	// Events delivers device-originated events. The channel is closed by Close.
	Events() <-chan Event

	// Close releases backend resources.
	Close() error
}

// EventKind identifies a backend event.
type EventKind string

// Backend event kinds.
const (
	EventCharacteristicChanged EventKind = "characteristic_changed"
	EventReachabilityChanged   EventKind = "reachability_changed"
	EventSnapshotChanged       EventKind = "snapshot_changed"
	EventError                 EventKind = "error"
)

// Event is a typed notification from a backend. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind EventKind

	// EventCharacteristicChanged
	CharacteristicID string
	Value            any

	// EventReachabilityChanged
	AccessoryID string
	Reachable   bool

	// EventError
	Message string
}

// ErrorSink receives user-facing error notifications.
type ErrorSink interface {
	ShowError(message string)
}
