// Package config loads runtime configuration for the file manager CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-e string          object store endpoint URL (empty for AWS)
//	-r string          region
//	-b string          bucket
//	-k string          access key id
//	-s string          secret access key (prompted when a key id is set without it)
//	-path-style        path-style addressing
//	-p int             part size in MiB
//	-w int             parts in flight per file
//	-retries int       extra attempts per part
//	-retry-delay dur   delay between part attempts
//	-part-timeout dur  deadline of one part attempt
//	-url-ttl dur       lifetime of presigned URLs
//	-db string         upload history database
//	-keep int          upload history records kept
//	-l string          log level
//	-d string          download directory
//
// # JSON schema
//
// Durations are strings like "3s" or integer nanoseconds; part_size is in
// bytes:
//
//	{
//	  "endpoint": "http://127.0.0.1:9000",
//	  "region": "us-east-1",
//	  "bucket": "files",
//	  "access_key_id": "minio",
//	  "use_path_style": true,
//	  "part_size": 8388608,
//	  "wave_width": 5,
//	  "max_retries": 3,
//	  "retry_delay": "3s",
//	  "part_timeout": "60s",
//	  "url_ttl": "1h",
//	  "history_db": "s3fm.db",
//	  "log_level": "info",
//	  "download_dir": "downloads"
//	}
package config
