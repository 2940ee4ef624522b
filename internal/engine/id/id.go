// Package id defines the identifier types shared by the editing engine.
// Buffers and panes are referenced by opaque UUIDs so that panes, buffer
// cursor maps, and the persistence layer can name each other without
// holding pointers across package boundaries.
package id

import "github.com/google/uuid"

// Buffer uniquely identifies a text buffer for the lifetime of a session
// and across restarts once persisted.
type Buffer string

// Pane uniquely identifies a leaf pane in the pane tree.
type Pane string

// NewBuffer returns a fresh buffer identifier.
func NewBuffer() Buffer {
	return Buffer(uuid.NewString())
}

// NewPane returns a fresh pane identifier.
func NewPane() Pane {
	return Pane(uuid.NewString())
}
