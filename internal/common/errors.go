// Package common defines shared constants and sentinel errors used across
// the export and metadata layers of moviebox. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")
	ErrNotReady = errors.New("not ready")

	// Export pipeline errors.
	ErrBusy    = errors.New("export queue is full")
	ErrArchive = errors.New("archive failure")

	// Remote catalog errors (network, timeout, malformed response).
	ErrRemote = errors.New("remote catalog failure")

	// Validation errors.
	ErrInvalidPath = errors.New("invalid path")
)
