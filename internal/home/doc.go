// Package home holds the device snapshot model shared by every part of
// homecast.
//
// A Snapshot is one complete generation of the home graph: homes, rooms,
// accessories with their services, and scenes. It is produced by a Bridge
// backend, prepared once with Normalize, and then shared read-only between
// goroutines until the next full reload replaces it.
//
// # Capabilities
//
// A Service does not carry a capability list. Each capability is the
// presence of a characteristic id in Service.Characteristics:
//
//	if id, ok := svc.Characteristic(home.CharBrightness); ok {
//	    bridge.WriteCharacteristic(id, 50)
//	}
//
// The package also defines the Bridge contracts consumed by the executor,
// the API server and the runtime, and the user-defined DeviceGroup.
package home
