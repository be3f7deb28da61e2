// Package common defines sentinel errors shared by the object-store, upload
// and CLI layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Validation errors.
	ErrInvalidKey      = errors.New("invalid object key")
	ErrInvalidArgument = errors.New("invalid argument")

	// Upload workflow errors.
	ErrAlreadyInFlight = errors.New("upload already in flight")
	ErrNotRetryable    = errors.New("upload is not in a retryable state")

	// Setup errors.
	ErrNotConfigured = errors.New("object store not configured")
)
