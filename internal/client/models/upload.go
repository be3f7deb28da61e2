// Package models defines the client-side records shared by the services,
// the local journal and the CLI.
package models

import "time"

// UploadRecord is one finished upload attempt as kept in the local journal.
type UploadRecord struct {
	// ID is a random identifier assigned when the record is written.
	ID string

	Key       string
	SessionID string
	Size      int64

	// Parts is the number of parts the file was split into; zero for an
	// empty object written in a single request.
	Parts int

	// Status is the final state: completed, failed or aborted.
	Status string

	// Error is the failure cause, empty on success.
	Error string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is how long the attempt took.
func (r UploadRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
