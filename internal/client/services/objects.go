package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/filex"
	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/netx"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
)

// ObjectStore is the part of the gateway used for browsing.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix, delimiter string) (*objectstore.Listing, error)
	PutEmptyObject(ctx context.Context, key, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (bool, error)
	SignedReadURL(ctx context.Context, key string, disposition objectstore.Disposition) (string, error)
}

var _ ObjectStore = (*objectstore.Gateway)(nil)

// ObjectService browses and manages objects under slash-separated paths.
// Paths are given without a leading or trailing slash; "" is the root.
type ObjectService interface {
	List(ctx context.Context, dir string) (*models.Listing, error)
	CreateFolder(ctx context.Context, name, dir string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	DownloadURL(ctx context.Context, key string) (string, error)
	PreviewURL(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key, destDir string) (string, int64, error)
}

type objectService struct {
	store  ObjectStore
	client *http.Client
	logger logging.Logger
}

func NewObjectService(store ObjectStore, client *http.Client, logger logging.Logger) ObjectService {
	if client == nil {
		client = http.DefaultClient
	}
	return &objectService{store: store, client: client, logger: logger}
}

// CleanPath normalizes a user supplied path: slashes trimmed, empty and
// "." segments dropped, ".." resolved. It never climbs above the root.
func CleanPath(p string) string {
	p = path.Clean("/" + strings.TrimSpace(p))
	return strings.Trim(p, "/")
}

// CleanKey is CleanPath for object keys: a trailing slash, which marks a
// folder object, is kept.
func CleanKey(k string) string {
	c := CleanPath(k)
	if c != "" && strings.HasSuffix(strings.TrimSpace(k), "/") {
		return c + "/"
	}
	return c
}

// JoinKey joins dir and name into an object key.
func JoinKey(dir, name string) string {
	dir = CleanPath(dir)
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func prefixOf(dir string) string {
	dir = CleanPath(dir)
	if dir == "" {
		return ""
	}
	return dir + "/"
}

// List returns the folders and files directly under dir. The folder marker
// object of dir itself and other keys ending in "/" are not files.
func (s *objectService) List(ctx context.Context, dir string) (*models.Listing, error) {
	prefix := prefixOf(dir)

	l, err := s.store.ListObjects(ctx, prefix, "/")
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	out := &models.Listing{Path: CleanPath(dir), Dirs: []models.Item{}, Files: []models.Item{}}

	for _, cp := range l.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(cp, prefix), "/")
		if name == "" {
			continue
		}
		out.Dirs = append(out.Dirs, models.Item{Name: name, Key: cp, IsDir: true})
	}

	for _, o := range l.Objects {
		if o.Key == prefix || strings.HasSuffix(o.Key, "/") {
			continue
		}
		name := strings.TrimPrefix(o.Key, prefix)
		ct := objectstore.ContentTypeByName(name)
		out.Files = append(out.Files, models.Item{
			Name:         name,
			Key:          o.Key,
			Size:         o.Size,
			LastModified: o.LastModified,
			ContentType:  ct,
			Category:     string(objectstore.CategoryOf(ct)),
		})
	}

	sort.Slice(out.Dirs, func(i, j int) bool { return out.Dirs[i].Name < out.Dirs[j].Name })
	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Name < out.Files[j].Name })
	return out, nil
}

// CreateFolder writes the marker object "<dir>/<name>/" and returns its key.
func (s *objectService) CreateFolder(ctx context.Context, name, dir string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return "", fmt.Errorf("folder name %q: %w", name, common.ErrInvalidKey)
	}

	key := JoinKey(dir, name) + "/"
	if err := s.store.PutEmptyObject(ctx, key, ""); err != nil {
		return "", fmt.Errorf("create folder %q: %w", key, err)
	}
	s.logger.Info(ctx, "folder created", "key", key)
	return key, nil
}

func (s *objectService) Delete(ctx context.Context, key string) error {
	key = CleanKey(key)
	if key == "" {
		return fmt.Errorf("delete: %w", common.ErrInvalidKey)
	}
	if err := s.store.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	s.logger.Info(ctx, "object deleted", "key", key)
	return nil
}

func (s *objectService) Exists(ctx context.Context, key string) (bool, error) {
	key = CleanKey(key)
	if key == "" {
		return false, fmt.Errorf("exists: %w", common.ErrInvalidKey)
	}
	return s.store.HeadObject(ctx, key)
}

func (s *objectService) DownloadURL(ctx context.Context, key string) (string, error) {
	return s.signedURL(ctx, key, objectstore.DispositionAttachment)
}

func (s *objectService) PreviewURL(ctx context.Context, key string) (string, error) {
	return s.signedURL(ctx, key, objectstore.DispositionInline)
}

func (s *objectService) signedURL(ctx context.Context, key string, d objectstore.Disposition) (string, error) {
	key = CleanPath(key)
	if key == "" {
		return "", fmt.Errorf("sign url: %w", common.ErrInvalidKey)
	}
	ok, err := s.store.HeadObject(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("object %q: %w", key, common.ErrNotFound)
	}
	return s.store.SignedReadURL(ctx, key, d)
}

// Download saves key into destDir under its base name, picking a free
// name when one is taken. It returns the written path and byte count.
func (s *objectService) Download(ctx context.Context, key, destDir string) (string, int64, error) {
	url, err := s.DownloadURL(ctx, key)
	if err != nil {
		return "", 0, err
	}

	dir, err := filex.EnsureDir(destDir)
	if err != nil {
		return "", 0, err
	}
	dst, err := filex.UniquePath(dir, path.Base(CleanPath(key)))
	if err != nil {
		return "", 0, err
	}

	tmp := dst + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	n, err := netx.Download(ctx, s.client, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", 0, fmt.Errorf("download %q: %w", key, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", 0, fmt.Errorf("rename %s: %w", tmp, err)
	}

	s.logger.Info(ctx, "object downloaded", "key", key, "path", dst, "bytes", n)
	return dst, n, nil
}

// Filter keeps the files whose name contains query (case-insensitive)
// and whose category matches; an empty category matches everything.
func Filter(files []models.Item, query, category string) []models.Item {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Item, 0, len(files))
	for _, f := range files {
		if q != "" && !strings.Contains(strings.ToLower(f.Name), q) {
			continue
		}
		if category != "" && category != "all" && f.Category != category {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Summarize counts a listing's files by category and totals their size.
func Summarize(l *models.Listing) models.Stats {
	st := models.Stats{
		Dirs:       len(l.Dirs),
		ByCategory: make(map[string]int),
	}
	for _, f := range l.Files {
		st.Files++
		st.TotalBytes += f.Size
		st.ByCategory[f.Category]++
	}
	return st
}
