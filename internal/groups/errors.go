package groups

import "errors"

// Domain errors for the groups package.
var (
	// ErrNotFound is returned when a group ID does not exist.
	ErrNotFound = errors.New("groups: not found")

	// ErrExists is returned when a group ID or slug is already taken.
	ErrExists = errors.New("groups: already exists")

	// ErrInvalid is returned when a group fails validation.
	ErrInvalid = errors.New("groups: invalid")
)
