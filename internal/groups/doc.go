// Package groups persists user-defined device groups in SQLite.
//
// A group is a named, ordered list of snapshot service ids, optionally
// scoped to a room. The Store keeps an in-memory copy of all groups that
// is replaced wholesale after every change, so Groups can be handed to the
// resolver without locking or copying.
package groups
