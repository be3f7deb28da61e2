package netx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutPresigned(t *testing.T) {
	part := []byte("hello, s3")
	ctx := context.Background()

	t.Run("success returns etag", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod string
		var gotLen int64

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotLen = r.ContentLength
			gotBody, _ = io.ReadAll(r.Body)
			w.Header().Set("ETag", `"abc123"`)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		etag, err := PutPresigned(ctx, ts.Client(), ts.URL+"/k?partNumber=1&X-Amz-Signature=abc", bytes.NewReader(part), int64(len(part)))
		require.NoError(t, err)
		assert.Equal(t, `"abc123"`, etag)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "application/octet-stream", gotCT)
		assert.Equal(t, int64(len(part)), gotLen)
		assert.Equal(t, part, gotBody)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		_, err := PutPresigned(ctx, ts.Client(), ts.URL, bytes.NewReader(part), int64(len(part)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload failed: 403")
	})

	t.Run("missing etag is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		_, err := PutPresigned(ctx, ts.Client(), ts.URL, bytes.NewReader(part), int64(len(part)))
		require.ErrorContains(t, err, "without ETag")
	})

	t.Run("deadline cancels the request", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer ts.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := PutPresigned(ctx, ts.Client(), ts.URL, bytes.NewReader(part), int64(len(part)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := PutPresigned(ctx, http.DefaultClient, ts.URL, bytes.NewReader(part), int64(len(part)))
		require.Error(t, err)
		assert.False(t, strings.Contains(err.Error(), "upload failed"))
	})
}

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("file body"))
	}))
	defer ts.Close()

	var buf bytes.Buffer
	n, err := Download(context.Background(), ts.Client(), ts.URL+"/ok", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.Equal(t, "file body", buf.String())

	_, err = Download(context.Background(), ts.Client(), ts.URL+"/missing", &buf)
	require.ErrorContains(t, err, "download failed: 404")
}
