package history

import (
	"context"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
)

// Repository stores upload records.
type Repository interface {
	// Insert appends r. r.ID must be set.
	Insert(ctx context.Context, r *models.UploadRecord) error

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.UploadRecord, error)

	// ListByKey returns every record for key, newest first.
	ListByKey(ctx context.Context, key string) ([]models.UploadRecord, error)

	// Prune deletes all but the newest keep records and reports how many
	// were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}
