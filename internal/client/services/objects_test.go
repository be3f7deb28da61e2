package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
)

type fakeObjectStore struct {
	listing   *objectstore.Listing
	listErr   error
	gotPrefix string
	gotDelim  string

	puts    []string
	putErr  error
	deleted []string
	exists  map[string]bool
	headErr error

	url     string
	gotDisp objectstore.Disposition
	signErr error
}

func (f *fakeObjectStore) ListObjects(_ context.Context, prefix, delimiter string) (*objectstore.Listing, error) {
	f.gotPrefix, f.gotDelim = prefix, delimiter
	return f.listing, f.listErr
}

func (f *fakeObjectStore) PutEmptyObject(_ context.Context, key, _ string) error {
	f.puts = append(f.puts, key)
	return f.putErr
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) HeadObject(_ context.Context, key string) (bool, error) {
	return f.exists[key], f.headErr
}

func (f *fakeObjectStore) SignedReadURL(_ context.Context, _ string, d objectstore.Disposition) (string, error) {
	f.gotDisp = d
	return f.url, f.signErr
}

func TestCleanPathAndJoinKey(t *testing.T) {
	for in, want := range map[string]string{
		"":              "",
		"/":             "",
		"docs":          "docs",
		"/docs/":        "docs",
		"docs//a/./b/":  "docs/a/b",
		"docs/a/..":     "docs",
		"../../etc":     "etc",
		"  spaced/dir ": "spaced/dir",
	} {
		assert.Equal(t, want, CleanPath(in), "CleanPath(%q)", in)
	}

	assert.Equal(t, "docs/", CleanKey("/docs//"))
	assert.Equal(t, "docs/a", CleanKey("docs/a"))
	assert.Equal(t, "", CleanKey("/"))

	assert.Equal(t, "a.txt", JoinKey("", "a.txt"))
	assert.Equal(t, "docs/a.txt", JoinKey("/docs/", "a.txt"))
}

func TestObjectService_List(t *testing.T) {
	mod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &fakeObjectStore{listing: &objectstore.Listing{
		CommonPrefixes: []string{"photos/trip/", "photos/2023/"},
		Objects: []objectstore.Object{
			{Key: "photos/", Size: 0},
			{Key: "photos/zz.zip", Size: 10, LastModified: mod},
			{Key: "photos/beach.JPG", Size: 2048, LastModified: mod},
			{Key: "photos/nested/", Size: 0},
		},
	}}
	svc := NewObjectService(store, nil, logging.NewDiscard())

	l, err := svc.List(context.Background(), "/photos/")
	require.NoError(t, err)
	assert.Equal(t, "photos/", store.gotPrefix)
	assert.Equal(t, "/", store.gotDelim)

	assert.Equal(t, "photos", l.Path)
	assert.Equal(t, []models.Item{
		{Name: "2023", Key: "photos/2023/", IsDir: true},
		{Name: "trip", Key: "photos/trip/", IsDir: true},
	}, l.Dirs)

	require.Len(t, l.Files, 2)
	assert.Equal(t, models.Item{
		Name: "beach.JPG", Key: "photos/beach.JPG", Size: 2048, LastModified: mod,
		ContentType: "image/jpeg", Category: "image",
	}, l.Files[0])
	assert.Equal(t, "archive", l.Files[1].Category)
}

func TestObjectService_ListRootAndErrors(t *testing.T) {
	store := &fakeObjectStore{listing: &objectstore.Listing{}}
	svc := NewObjectService(store, nil, logging.NewDiscard())

	l, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", store.gotPrefix)
	assert.Empty(t, l.Dirs)
	assert.Empty(t, l.Files)

	store.listErr = errors.New("AccessDenied")
	_, err = svc.List(context.Background(), "x")
	require.ErrorIs(t, err, store.listErr)
}

func TestObjectService_CreateFolder(t *testing.T) {
	store := &fakeObjectStore{}
	svc := NewObjectService(store, nil, logging.NewDiscard())
	ctx := context.Background()

	key, err := svc.CreateFolder(ctx, " reports ", "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs/reports/", key)

	key, err = svc.CreateFolder(ctx, "top", "")
	require.NoError(t, err)
	assert.Equal(t, "top/", key)
	assert.Equal(t, []string{"docs/reports/", "top/"}, store.puts)

	for _, bad := range []string{"", "  ", ".", "..", "a/b"} {
		_, err := svc.CreateFolder(ctx, bad, "docs")
		assert.ErrorIs(t, err, common.ErrInvalidKey, "name %q", bad)
	}
	assert.Len(t, store.puts, 2)
}

func TestObjectService_DeleteAndExists(t *testing.T) {
	store := &fakeObjectStore{exists: map[string]bool{"a/b.txt": true, "a/": true}}
	svc := NewObjectService(store, nil, logging.NewDiscard())
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "/a/b.txt"))
	assert.Equal(t, []string{"a/b.txt"}, store.deleted)
	assert.ErrorIs(t, svc.Delete(ctx, "/"), common.ErrInvalidKey)

	ok, err := svc.Exists(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, "/a/")
	require.NoError(t, err)
	assert.True(t, ok, "folder marker keeps its slash")

	ok, err = svc.Exists(ctx, "a/c.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectService_SignedURLs(t *testing.T) {
	store := &fakeObjectStore{exists: map[string]bool{"k.pdf": true}, url: "https://signed"}
	svc := NewObjectService(store, nil, logging.NewDiscard())
	ctx := context.Background()

	u, err := svc.DownloadURL(ctx, "k.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://signed", u)
	assert.Equal(t, objectstore.DispositionAttachment, store.gotDisp)

	_, err = svc.PreviewURL(ctx, "k.pdf")
	require.NoError(t, err)
	assert.Equal(t, objectstore.DispositionInline, store.gotDisp)

	_, err = svc.PreviewURL(ctx, "missing.pdf")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestObjectService_Download(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("file body"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	store := &fakeObjectStore{exists: map[string]bool{"docs/a.txt": true}, url: ts.URL + "/ok"}
	svc := NewObjectService(store, ts.Client(), logging.NewDiscard())
	ctx := context.Background()

	p, n, err := svc.Download(ctx, "docs/a.txt", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), p)
	assert.Equal(t, int64(9), n)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "file body", string(b))

	p2, _, err := svc.Download(ctx, "docs/a.txt", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (1).txt"), p2)

	store.url = ts.URL + "/gone"
	_, _, err = svc.Download(ctx, "docs/a.txt", dir)
	require.ErrorContains(t, err, "download failed")
	_, statErr := os.Stat(filepath.Join(dir, "a (2).txt.part"))
	assert.True(t, os.IsNotExist(statErr), "partial file must be removed")
}

func TestFilterAndSummarize(t *testing.T) {
	files := []models.Item{
		{Name: "Beach.jpg", Category: "image", Size: 100},
		{Name: "notes.txt", Category: "document", Size: 10},
		{Name: "clip.mp4", Category: "video", Size: 1000},
		{Name: "beach-notes.pdf", Category: "document", Size: 5},
	}

	assert.Len(t, Filter(files, "", ""), 4)
	assert.Len(t, Filter(files, "", "all"), 4)

	got := Filter(files, "BEACH", "")
	require.Len(t, got, 2)
	assert.Equal(t, "Beach.jpg", got[0].Name)

	got = Filter(files, "notes", "document")
	assert.Len(t, got, 2)
	assert.Empty(t, Filter(files, "zzz", ""))

	st := Summarize(&models.Listing{Dirs: []models.Item{{Name: "d"}}, Files: files})
	assert.Equal(t, 4, st.Files)
	assert.Equal(t, 1, st.Dirs)
	assert.Equal(t, int64(1115), st.TotalBytes)
	assert.Equal(t, map[string]int{"image": 1, "document": 2, "video": 1}, st.ByCategory)
}
