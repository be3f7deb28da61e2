package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
	"github.com/devendra0039/s3-file-manager/internal/client/repositories/history"
	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
	"github.com/devendra0039/s3-file-manager/internal/upload"
)

// sniffLen is how much of a file is read to detect its content type.
const sniffLen = 3072

// Uploader is the part of the upload coordinator the service drives.
type Uploader interface {
	StartUpload(ctx context.Context, files []upload.File, onProgress upload.ProgressFunc) []upload.Outcome
	RequestAbort(ctx context.Context, key string) error
	Retry(ctx context.Context, key string, onProgress upload.ProgressFunc) (upload.Outcome, error)
	Pending() []upload.PendingFile
}

var _ Uploader = (*upload.Coordinator)(nil)

// UploadService uploads local files and exposes the upload journal.
type UploadService interface {
	// Put uploads the local files at paths into dir and blocks until each
	// has finished. It returns the outcomes of files that did not complete,
	// including files that could not be opened.
	Put(ctx context.Context, paths []string, dir string, onProgress upload.ProgressFunc) []upload.Outcome
	Abort(ctx context.Context, key string) error
	Retry(ctx context.Context, key string, onProgress upload.ProgressFunc) (upload.Outcome, error)
	Pending() []upload.PendingFile
	History(ctx context.Context, limit int) ([]models.UploadRecord, error)
}

type uploadService struct {
	uploader Uploader
	journal  *history.Journal
	logger   logging.Logger
}

// NewUploadService wires uploader to journal. journal may be nil, in which
// case History reports common.ErrNotConfigured.
func NewUploadService(uploader Uploader, journal *history.Journal, logger logging.Logger) UploadService {
	return &uploadService{uploader: uploader, journal: journal, logger: logger}
}

func (s *uploadService) Put(ctx context.Context, paths []string, dir string, onProgress upload.ProgressFunc) []upload.Outcome {
	var (
		files    []upload.File
		rejected []upload.Outcome
	)

	for _, p := range paths {
		f, err := openLocal(p, dir)
		if err != nil {
			s.logger.Warn(ctx, "skipping file", "path", p, "error", err)
			rejected = append(rejected, upload.Outcome{Key: JoinKey(dir, filepath.Base(p)), Status: upload.StatusFailed, Err: err})
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return rejected
	}
	return append(rejected, s.uploader.StartUpload(ctx, files, onProgress)...)
}

// openLocal opens path for reading and derives its upload target. The
// returned file is closed by the coordinator.
func openLocal(path, dir string) (upload.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return upload.File{}, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return upload.File{}, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return upload.File{}, fmt.Errorf("%s is a directory: %w", path, common.ErrInvalidArgument)
	}

	head := make([]byte, min(fi.Size(), sniffLen))
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return upload.File{}, err
	}

	name := filepath.Base(path)
	return upload.File{
		Target: upload.Target{
			Key:         JoinKey(dir, name),
			Size:        fi.Size(),
			ContentType: objectstore.DetectContentType(name, head[:n]),
		},
		Source: f,
	}, nil
}

func (s *uploadService) Abort(ctx context.Context, key string) error {
	return s.uploader.RequestAbort(ctx, key)
}

func (s *uploadService) Retry(ctx context.Context, key string, onProgress upload.ProgressFunc) (upload.Outcome, error) {
	return s.uploader.Retry(ctx, key, onProgress)
}

func (s *uploadService) Pending() []upload.PendingFile {
	return s.uploader.Pending()
}

func (s *uploadService) History(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	if s.journal == nil {
		return nil, fmt.Errorf("upload history: %w", common.ErrNotConfigured)
	}
	return s.journal.Recent(ctx, limit)
}

// JournalRecorder stores coordinator reports in a history journal.
type JournalRecorder struct {
	Journal *history.Journal
}

var _ upload.Recorder = JournalRecorder{}

func (r JournalRecorder) Record(ctx context.Context, rep upload.Report) error {
	rec := models.UploadRecord{
		Key:        rep.Key,
		SessionID:  rep.SessionID,
		Size:       rep.Size,
		Parts:      rep.Parts,
		Status:     string(rep.Status),
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}
	if rep.Err != nil {
		rec.Error = rep.Err.Error()
	}
	_, err := r.Journal.Append(ctx, rec)
	return err
}
