package upload

import (
	"context"
	"fmt"

	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
)

// Store is the part of the object-store gateway the upload pipeline needs.
type Store interface {
	PutEmptyObject(ctx context.Context, key, contentType string) error
	CreateMultipartSession(ctx context.Context, key, contentType string) (string, error)
	AuthorizePartUpload(ctx context.Context, key, sessionID string, partNumber int32) (string, error)
	CompleteMultipartSession(ctx context.Context, key, sessionID string, parts []objectstore.CompletedPart) error
	AbortMultipartSession(ctx context.Context, key, sessionID string) error
}

var _ Store = (*objectstore.Gateway)(nil)

// Target is where a file goes. It does not change once a session is open.
type Target struct {
	Key         string
	Size        int64
	ContentType string
}

// Session is one open multipart upload on the store.
type Session struct {
	ID     string
	Target Target
}

// Authorization is the presigned URL for one part index.
type Authorization struct {
	Index int
	URL   string
}

// Receipt is the store's acknowledgement of one transferred part.
type Receipt struct {
	Index int
	ETag  string
}

type Negotiator struct {
	store  Store
	logger logging.Logger
}

func NewNegotiator(store Store, logger logging.Logger) *Negotiator {
	return &Negotiator{store: store, logger: logger}
}

// Initiate opens a multipart session for t.
func (n *Negotiator) Initiate(ctx context.Context, t Target) (*Session, error) {
	id, err := n.store.CreateMultipartSession(ctx, t.Key, t.ContentType)
	if err != nil {
		return nil, &SessionInitError{Key: t.Key, Err: err}
	}
	n.logger.Info(ctx, "multipart session opened", "key", t.Key, "session_id", id)
	return &Session{ID: id, Target: t}, nil
}

// AuthorizeParts issues URLs for parts 1..partCount. If any one fails the
// whole call fails.
func (n *Negotiator) AuthorizeParts(ctx context.Context, s *Session, partCount int) ([]Authorization, error) {
	auths := make([]Authorization, 0, partCount)
	for i := 1; i <= partCount; i++ {
		url, err := n.store.AuthorizePartUpload(ctx, s.Target.Key, s.ID, int32(i))
		if err != nil {
			return nil, &AuthorizationError{Key: s.Target.Key, Index: i, Err: err}
		}
		auths = append(auths, Authorization{Index: i, URL: url})
	}
	return auths, nil
}

// Complete finalizes s. receipts must run 1..n in order with no gaps; a
// list that does not is refused here rather than sent to the store.
func (n *Negotiator) Complete(ctx context.Context, s *Session, receipts []Receipt) error {
	if len(receipts) == 0 {
		return &CompletionError{Key: s.Target.Key, Err: fmt.Errorf("no parts")}
	}

	parts := make([]objectstore.CompletedPart, 0, len(receipts))
	for i, r := range receipts {
		if r.Index != i+1 {
			return &CompletionError{Key: s.Target.Key, Err: fmt.Errorf("receipt %d has index %d", i+1, r.Index)}
		}
		if r.ETag == "" {
			return &CompletionError{Key: s.Target.Key, Err: fmt.Errorf("part %d has no receipt", r.Index)}
		}
		parts = append(parts, objectstore.CompletedPart{PartNumber: int32(r.Index), ETag: r.ETag})
	}

	if err := n.store.CompleteMultipartSession(ctx, s.Target.Key, s.ID, parts); err != nil {
		return &CompletionError{Key: s.Target.Key, Err: err}
	}
	n.logger.Info(ctx, "multipart session completed", "key", s.Target.Key, "session_id", s.ID, "parts", len(parts))
	return nil
}

// Abort releases s on the store. It never fails: cleanup can race with
// completion, so errors are logged and dropped. A nil session is a no-op.
func (n *Negotiator) Abort(ctx context.Context, s *Session) {
	if s == nil || s.ID == "" {
		return
	}
	if err := n.store.AbortMultipartSession(ctx, s.Target.Key, s.ID); err != nil {
		aerr := &AbortError{Key: s.Target.Key, SessionID: s.ID, Err: err}
		n.logger.Warn(ctx, "abort failed", "key", s.Target.Key, "session_id", s.ID, "error", aerr)
		return
	}
	n.logger.Info(ctx, "multipart session aborted", "key", s.Target.Key, "session_id", s.ID)
}
