package upload

import "time"

const (
	DefaultPartSize    int64 = 5 << 20
	DefaultWaveWidth         = 5
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 3 * time.Second
	DefaultPartTimeout       = 60 * time.Second
)

// NoRetries as Options.MaxRetries makes every part a single attempt.
const NoRetries = -1

// Options tunes the upload pipeline. Zero values take the defaults above,
// MaxRetries included; set it to NoRetries to disable retrying.
type Options struct {
	PartSize    int64
	WaveWidth   int
	MaxRetries  int
	RetryDelay  time.Duration
	PartTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.PartSize <= 0 {
		o.PartSize = DefaultPartSize
	}
	if o.WaveWidth <= 0 {
		o.WaveWidth = DefaultWaveWidth
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = DefaultMaxRetries
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.PartTimeout <= 0 {
		o.PartTimeout = DefaultPartTimeout
	}
	return o
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}
