package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	// ErrNotFound signals a lookup for an id with no matching record.
	ErrNotFound = errors.New("record not found")

	// ErrStore marks a read or write failure against durable storage.
	ErrStore = errors.New("record store failure")
)
