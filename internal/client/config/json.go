package config

import (
	"encoding/json"
	"os"

	"github.com/devendra0039/s3-file-manager/internal/flagx"
	"github.com/devendra0039/s3-file-manager/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations use timex.Duration so they can be strings like "3s" or integer
// nanoseconds. Absent fields leave the current value alone, which is why
// the flag and numbers are pointers.
type JsonConfig struct {
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UsePathStyle    *bool  `json:"use_path_style"`

	PartSize    *int64         `json:"part_size"`
	WaveWidth   *int           `json:"wave_width"`
	MaxRetries  *int           `json:"max_retries"`
	RetryDelay  timex.Duration `json:"retry_delay"`
	PartTimeout timex.Duration `json:"part_timeout"`
	URLTTL      timex.Duration `json:"url_ttl"`

	HistoryDB   string `json:"history_db"`
	HistoryKeep *int   `json:"history_keep"`
	LogLevel    string `json:"log_level"`
	DownloadDir string `json:"download_dir"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing happens. Read and unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.Endpoint, jc.Endpoint)
	setString(&cfg.Region, jc.Region)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.AccessKeyID, jc.AccessKeyID)
	setString(&cfg.SecretAccessKey, jc.SecretAccessKey)
	if jc.UsePathStyle != nil {
		cfg.UsePathStyle = *jc.UsePathStyle
	}

	if jc.PartSize != nil {
		cfg.PartSize = *jc.PartSize
	}
	if jc.WaveWidth != nil {
		cfg.WaveWidth = *jc.WaveWidth
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.RetryDelay.Duration > 0 {
		cfg.RetryDelay = jc.RetryDelay.Duration
	}
	if jc.PartTimeout.Duration > 0 {
		cfg.PartTimeout = jc.PartTimeout.Duration
	}
	if jc.URLTTL.Duration > 0 {
		cfg.URLTTL = jc.URLTTL.Duration
	}

	setString(&cfg.HistoryDB, jc.HistoryDB)
	if jc.HistoryKeep != nil {
		cfg.HistoryKeep = *jc.HistoryKeep
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.DownloadDir, jc.DownloadDir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
