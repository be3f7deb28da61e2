package objectstore

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultContentType = "application/octet-stream"

// knownTypes keeps listings stable regardless of the host's mime.types.
var knownTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"zip":  "application/zip",
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
}

// ContentTypeByName guesses a content type from the file extension alone.
func ContentTypeByName(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return DefaultContentType
	}
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return DefaultContentType
}

// DetectContentType sniffs head (the first bytes of a file) and falls back
// to the extension when the content is not recognised.
func DetectContentType(name string, head []byte) string {
	if len(head) > 0 {
		m := mimetype.Detect(head)
		if ct := m.String(); ct != "" && !m.Is(DefaultContentType) && !m.Is("text/plain") {
			return ct
		}
	}
	return ContentTypeByName(name)
}

// Category is the coarse kind of an object used for filtering and stats.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryDocument Category = "document"
	CategoryArchive  Category = "archive"
	CategoryOther    Category = "other"
)

// CategoryOf maps a content type to its Category.
func CategoryOf(contentType string) Category {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return CategoryImage
	case strings.HasPrefix(contentType, "video/"):
		return CategoryVideo
	case strings.Contains(contentType, "pdf"),
		strings.Contains(contentType, "document"),
		strings.Contains(contentType, "text"):
		return CategoryDocument
	case strings.Contains(contentType, "zip"),
		strings.Contains(contentType, "rar"),
		strings.Contains(contentType, "tar"):
		return CategoryArchive
	default:
		return CategoryOther
	}
}
