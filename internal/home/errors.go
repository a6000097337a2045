package home

import "errors"

// Domain errors for the home package.
var (
	// ErrDuplicateCharacteristic is returned when a characteristic id is
	// used by more than one service.
	ErrDuplicateCharacteristic = errors.New("home: duplicate characteristic id")

	// ErrUnknownRoom is returned when an accessory or service references a
	// room id that is not in the snapshot.
	ErrUnknownRoom = errors.New("home: unknown room")

	// ErrUnknownCharacteristic is returned when a scene action references a
	// characteristic id that is not in the snapshot.
	ErrUnknownCharacteristic = errors.New("home: unknown characteristic")

	// ErrMultiplePrimaryHomes is returned when more than one home is primary.
	ErrMultiplePrimaryHomes = errors.New("home: more than one primary home")
)
