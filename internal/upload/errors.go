package upload

import (
	"errors"
	"fmt"
)

// ErrAborted reports that a file's upload was stopped by RequestAbort.
var ErrAborted = errors.New("upload aborted")

// SessionInitError means the store refused to open a multipart session.
type SessionInitError struct {
	Key string
	Err error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("initiate upload of %s: %v", e.Key, e.Err)
}

func (e *SessionInitError) Unwrap() error { return e.Err }

// AuthorizationError means a part URL could not be issued. No partial set
// of URLs is ever handed out.
type AuthorizationError struct {
	Key   string
	Index int
	Err   error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorize part %d of %s: %v", e.Index, e.Key, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// PartTransferError is a part that failed on every allowed attempt.
type PartTransferError struct {
	Index    int
	Attempts int
	Err      error
}

func (e *PartTransferError) Error() string {
	return fmt.Sprintf("part %d failed after %d attempt(s): %v", e.Index, e.Attempts, e.Err)
}

func (e *PartTransferError) Unwrap() error { return e.Err }

// CompletionError means the store rejected, or was never asked to perform,
// final assembly because the receipts were not usable.
type CompletionError struct {
	Key string
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("complete upload of %s: %v", e.Key, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// AbortError is a failed session abort. It is only ever logged.
type AbortError struct {
	Key       string
	SessionID string
	Err       error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("abort session %s of %s: %v", e.SessionID, e.Key, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }
