package config

import (
	"fmt"
	"time"

	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/objectstore"
	"github.com/devendra0039/s3-file-manager/internal/upload"
)

// Config holds runtime settings for the file manager CLI.
//
// Store access: Endpoint (empty for AWS), Region, Bucket, AccessKeyID and
// SecretAccessKey (both empty to use the default AWS credential chain),
// UsePathStyle for MinIO-like stores.
//
// Upload tuning: PartSize in bytes, WaveWidth parts in flight per file,
// MaxRetries extra attempts per part, RetryDelay between attempts,
// PartTimeout per attempt. URLTTL bounds every presigned URL.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool

	PartSize    int64
	WaveWidth   int
	MaxRetries  int
	RetryDelay  time.Duration
	PartTimeout time.Duration
	URLTTL      time.Duration

	HistoryDB   string
	HistoryKeep int
	LogLevel    string
	DownloadDir string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Region = "us-east-1"
	c.PartSize = upload.DefaultPartSize
	c.WaveWidth = upload.DefaultWaveWidth
	c.MaxRetries = upload.DefaultMaxRetries
	c.RetryDelay = upload.DefaultRetryDelay
	c.PartTimeout = upload.DefaultPartTimeout
	c.URLTTL = objectstore.DefaultURLTTL
	c.HistoryDB = "s3fm.db"
	c.HistoryKeep = 500
	c.LogLevel = "warn"
	c.DownloadDir = "downloads"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings the CLI cannot start with.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket: %w", common.ErrNotConfigured)
	}
	if c.PartSize < 5<<20 {
		// S3 rejects non-final parts smaller than 5 MiB.
		return fmt.Errorf("part size %d is below 5 MiB: %w", c.PartSize, common.ErrInvalidArgument)
	}
	if c.WaveWidth < 1 || c.MaxRetries < 0 {
		return fmt.Errorf("wave width %d, retries %d: %w", c.WaveWidth, c.MaxRetries, common.ErrInvalidArgument)
	}
	if c.RetryDelay <= 0 || c.PartTimeout <= 0 || c.URLTTL <= 0 {
		return fmt.Errorf("durations must be positive: %w", common.ErrInvalidArgument)
	}
	return nil
}

// UploadOptions returns the upload pipeline tuning.
// A configured zero retries becomes upload.NoRetries.
func (c *Config) UploadOptions() upload.Options {
	retries := c.MaxRetries
	if retries == 0 {
		retries = upload.NoRetries
	}
	return upload.Options{
		PartSize:    c.PartSize,
		WaveWidth:   c.WaveWidth,
		MaxRetries:  retries,
		RetryDelay:  c.RetryDelay,
		PartTimeout: c.PartTimeout,
	}
}

// StoreConfig returns the object store connection settings.
func (c *Config) StoreConfig() objectstore.Config {
	return objectstore.Config{
		Endpoint:        c.Endpoint,
		Region:          c.Region,
		Bucket:          c.Bucket,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		UsePathStyle:    c.UsePathStyle,
		URLTTL:          c.URLTTL,
	}
}
