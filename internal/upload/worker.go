package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/devendra0039/s3-file-manager/internal/logging"
	"github.com/devendra0039/s3-file-manager/internal/netx"
)

// Job is one part to transfer: its URL and where its bytes live.
type Job struct {
	Authorization
	Source io.ReaderAt
	Range  Range
}

// Worker PUTs single parts. Each attempt gets its own deadline; failed
// attempts are retried after a fixed delay, up to maxRetries times.
type Worker struct {
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	partTimeout time.Duration
	logger      logging.Logger
}

func NewWorker(client *http.Client, opts Options, logger logging.Logger) *Worker {
	opts = opts.withDefaults()
	if client == nil {
		client = http.DefaultClient
	}
	return &Worker{
		client:      client,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		partTimeout: opts.PartTimeout,
		logger:      logger,
	}
}

// Transfer uploads job and returns its receipt.
//
// aborted is polled before every attempt, including the first; once it
// reports true no further attempt starts and ErrAborted is returned. An
// attempt already in flight is not interrupted by it.
func (w *Worker) Transfer(ctx context.Context, job Job, aborted func() bool) (Receipt, error) {
	var (
		receipt  Receipt
		attempts int
		lastErr  error
	)

	backoff := retry.WithMaxRetries(uint64(w.maxRetries), retry.NewConstant(w.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if aborted() {
			return ErrAborted
		}
		attempts++

		etag, err := w.attempt(ctx, job)
		if err != nil {
			lastErr = err
			w.logger.Warn(ctx, "part attempt failed",
				"part", job.Index, "attempt", attempts, "max_attempts", w.maxRetries+1, "error", err)
			return retry.RetryableError(err)
		}

		receipt = Receipt{Index: job.Index, ETag: etag}
		return nil
	})

	switch {
	case err == nil:
		w.logger.Debug(ctx, "part uploaded", "part", job.Index, "attempts", attempts)
		return receipt, nil
	case errors.Is(err, ErrAborted):
		return Receipt{}, ErrAborted
	case lastErr == nil:
		lastErr = err
	case ctx.Err() != nil:
		lastErr = ctx.Err()
	}

	return Receipt{}, &PartTransferError{Index: job.Index, Attempts: attempts, Err: lastErr}
}

func (w *Worker) attempt(ctx context.Context, job Job) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.partTimeout)
	defer cancel()

	body := io.NewSectionReader(job.Source, job.Range.Start, job.Range.Len())
	return netx.PutPresigned(ctx, w.client, job.URL, body, job.Range.Len())
}
