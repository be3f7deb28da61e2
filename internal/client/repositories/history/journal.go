package history

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
	"github.com/devendra0039/s3-file-manager/internal/dbx"
)

// DefaultKeep is how many records the journal retains.
const DefaultKeep = 500

// Journal appends upload records and trims old ones in one transaction.
type Journal struct {
	db   *sql.DB
	keep int

	// newRepo builds the repository bound to a transaction.
	newRepo func(dbx.DBTX) Repository
}

func NewJournal(db *sql.DB, keep int) *Journal {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Journal{
		db:      db,
		keep:    keep,
		newRepo: func(tx dbx.DBTX) Repository { return NewSQLiteRepository(tx) },
	}
}

// Append stores rec, assigning it an ID when it has none, and prunes the
// journal down to its retention limit.
func (j *Journal) Append(ctx context.Context, rec models.UploadRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	err := dbx.WithTx(ctx, j.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := j.newRepo(tx)
		if err := repo.Insert(ctx, &rec); err != nil {
			return err
		}
		_, err := repo.Prune(ctx, j.keep)
		return err
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	return j.newRepo(j.db).ListRecent(ctx, limit)
}

// ForKey returns every record of key, newest first.
func (j *Journal) ForKey(ctx context.Context, key string) ([]models.UploadRecord, error) {
	return j.newRepo(j.db).ListByKey(ctx, key)
}
