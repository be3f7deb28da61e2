package client

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/devendra0039/s3-file-manager/internal/client/config"
	"github.com/devendra0039/s3-file-manager/internal/client/repositories/history"
	"github.com/devendra0039/s3-file-manager/internal/client/services"
	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
	"github.com/devendra0039/s3-file-manager/internal/upload"

	_ "modernc.org/sqlite"
)

// newGateway is a test seam for objectstore.New.
var newGateway = func(ctx context.Context, c objectstore.Config, logger logging.Logger) (services.ObjectStore, upload.Store, error) {
	g, err := objectstore.New(ctx, c, logger)
	if err != nil {
		return nil, nil, err
	}
	return g, g, nil
}

// Client bundles the services the CLI runs on.
type Client struct {
	Objects services.ObjectService
	Uploads services.UploadService
	Bucket  string

	db *sql.DB
}

// New connects to the object store described by cfg, opens the upload
// journal and wires the upload pipeline to both.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Client, error) {
	objects, store, err := newGateway(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}

	db, err := InitDatabase(ctx, cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("upload history: %w", err)
	}
	journal := history.NewJournal(db, cfg.HistoryKeep)

	httpClient := &http.Client{}

	coord := upload.NewCoordinator(store, httpClient, cfg.UploadOptions(), logger)
	coord.SetRecorder(services.JournalRecorder{Journal: journal})

	return &Client{
		Objects: services.NewObjectService(objects, httpClient, logger),
		Uploads: services.NewUploadService(coord, journal, logger),
		Bucket:  cfg.Bucket,
		db:      db,
	}, nil
}

// Close releases the journal database.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
