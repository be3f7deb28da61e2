package config

import (
	"flag"
	"os"

	"github.com/devendra0039/s3-file-manager/internal/flagx"
)

var ownedFlags = []string{
	"-e", "-r", "-b", "-k", "-s", "-path-style",
	"-p", "-w", "-retries", "-retry-delay", "-part-timeout", "-url-ttl",
	"-db", "-keep", "-l", "-d",
}

// parseFlags populates Config fields from command-line flags. Only the
// flags listed in ownedFlags are looked at; see the package doc for their
// meaning. A malformed value panics.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Endpoint, "e", cfg.Endpoint, "object store endpoint URL (empty for AWS)")
	fs.StringVar(&cfg.Region, "r", cfg.Region, "region")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "bucket name")
	fs.StringVar(&cfg.AccessKeyID, "k", cfg.AccessKeyID, "access key id")
	fs.StringVar(&cfg.SecretAccessKey, "s", cfg.SecretAccessKey, "secret access key")
	fs.BoolVar(&cfg.UsePathStyle, "path-style", cfg.UsePathStyle, "use path-style addressing")

	partMiB := fs.Int64("p", cfg.PartSize>>20, "part size (in MiB)")
	fs.IntVar(&cfg.WaveWidth, "w", cfg.WaveWidth, "parts uploaded concurrently per file")
	fs.IntVar(&cfg.MaxRetries, "retries", cfg.MaxRetries, "extra attempts per part")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", cfg.RetryDelay, "delay between part attempts")
	fs.DurationVar(&cfg.PartTimeout, "part-timeout", cfg.PartTimeout, "deadline of a single part attempt")
	fs.DurationVar(&cfg.URLTTL, "url-ttl", cfg.URLTTL, "lifetime of presigned URLs")

	fs.StringVar(&cfg.HistoryDB, "db", cfg.HistoryDB, "upload history database path")
	fs.IntVar(&cfg.HistoryKeep, "keep", cfg.HistoryKeep, "upload history records to keep")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "download directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PartSize = *partMiB << 20
}
