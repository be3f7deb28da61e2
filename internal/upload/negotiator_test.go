package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
)

func TestNegotiator(t *testing.T) {
	ctx := context.Background()
	target := Target{Key: "docs/report.pdf", Size: 12, ContentType: "application/pdf"}

	t.Run("initiate returns session", func(t *testing.T) {
		store := newFakeStore("http://parts")
		n := NewNegotiator(store, logging.NewDiscard())

		sess, err := n.Initiate(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, "session-1", sess.ID)
		assert.Equal(t, target, sess.Target)
	})

	t.Run("initiate failure is SessionInitError", func(t *testing.T) {
		store := newFakeStore("http://parts")
		store.createErr = errors.New("denied")
		n := NewNegotiator(store, logging.NewDiscard())

		_, err := n.Initiate(ctx, target)
		var ierr *SessionInitError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, target.Key, ierr.Key)
		assert.ErrorIs(t, err, store.createErr)
	})

	t.Run("authorize issues indices in order", func(t *testing.T) {
		store := newFakeStore("http://parts")
		n := NewNegotiator(store, logging.NewDiscard())
		sess := &Session{ID: "s", Target: target}

		auths, err := n.AuthorizeParts(ctx, sess, 3)
		require.NoError(t, err)
		require.Len(t, auths, 3)
		for i, a := range auths {
			assert.Equal(t, i+1, a.Index)
			assert.NotEmpty(t, a.URL)
		}
	})

	t.Run("authorize is all or nothing", func(t *testing.T) {
		store := newFakeStore("http://parts")
		store.authErrAt = 2
		n := NewNegotiator(store, logging.NewDiscard())

		auths, err := n.AuthorizeParts(ctx, &Session{ID: "s", Target: target}, 3)
		assert.Nil(t, auths)
		var aerr *AuthorizationError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, 2, aerr.Index)
	})

	t.Run("complete sends receipts in order", func(t *testing.T) {
		store := newFakeStore("http://parts")
		n := NewNegotiator(store, logging.NewDiscard())
		sess := &Session{ID: "s", Target: target}

		err := n.Complete(ctx, sess, []Receipt{{1, "a"}, {2, "b"}, {3, "c"}})
		require.NoError(t, err)
		assert.Equal(t, []objectstore.CompletedPart{
			{PartNumber: 1, ETag: "a"},
			{PartNumber: 2, ETag: "b"},
			{PartNumber: 3, ETag: "c"},
		}, store.completedParts("s"))
	})

	t.Run("complete rejects bad receipts locally", func(t *testing.T) {
		for name, receipts := range map[string][]Receipt{
			"empty":        nil,
			"out of order": {{2, "b"}, {1, "a"}},
			"gap":          {{1, "a"}, {3, "c"}},
			"missing etag": {{1, "a"}, {2, ""}},
		} {
			t.Run(name, func(t *testing.T) {
				store := newFakeStore("http://parts")
				n := NewNegotiator(store, logging.NewDiscard())

				err := n.Complete(ctx, &Session{ID: "s", Target: target}, receipts)
				var cerr *CompletionError
				require.ErrorAs(t, err, &cerr)
				assert.Empty(t, store.completedParts("s"))
			})
		}
	})

	t.Run("store rejection is CompletionError", func(t *testing.T) {
		store := newFakeStore("http://parts")
		store.completeErr = errors.New("InvalidPart")
		n := NewNegotiator(store, logging.NewDiscard())

		err := n.Complete(ctx, &Session{ID: "s", Target: target}, []Receipt{{1, "a"}})
		var cerr *CompletionError
		require.ErrorAs(t, err, &cerr)
		assert.ErrorIs(t, err, store.completeErr)
	})

	t.Run("abort twice never fails", func(t *testing.T) {
		store := newFakeStore("http://parts")
		n := NewNegotiator(store, logging.NewDiscard())
		sess := &Session{ID: "s", Target: target}

		n.Abort(ctx, sess)
		store.abortErr = errors.New("NoSuchUpload")
		n.Abort(ctx, sess)
		n.Abort(ctx, nil)

		assert.Equal(t, []string{"s", "s"}, store.abortedSessions())
	})
}
