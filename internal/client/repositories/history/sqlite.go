package history

import (
	"context"
	"fmt"
	"time"

	"github.com/devendra0039/s3-file-manager/internal/client/models"
	"github.com/devendra0039/s3-file-manager/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `select id, object_key, session_id, size, parts, status, error, started_at, finished_at from upload_history`

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.UploadRecord) error {
	query := `insert into upload_history (id, object_key, session_id, size, parts, status, error, started_at, finished_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Key, rec.SessionID, rec.Size, rec.Parts, rec.Status, rec.Error,
		rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert upload record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	query := selectColumns + ` order by finished_at desc, id desc limit ?`
	return r.list(ctx, query, limit)
}

func (r *SQLiteRepository) ListByKey(ctx context.Context, key string) ([]models.UploadRecord, error) {
	query := selectColumns + ` where object_key = ? order by finished_at desc, id desc`
	return r.list(ctx, query, key)
}

func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	query := `delete from upload_history where id not in
			(select id from upload_history order by finished_at desc, id desc limit ?)`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune upload history: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select upload history: %w", err)
	}
	defer rows.Close()

	var result []models.UploadRecord
	for rows.Next() {
		var (
			rec               models.UploadRecord
			started, finished int64
		)
		if err := rows.Scan(&rec.ID, &rec.Key, &rec.SessionID, &rec.Size, &rec.Parts,
			&rec.Status, &rec.Error, &started, &finished); err != nil {
			return nil, err
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.FinishedAt = time.UnixMilli(finished).UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
