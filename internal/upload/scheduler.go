package upload

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/devendra0039/s3-file-manager/internal/logging"
)

// Scheduler drives one file through a multipart session. Parts go out in
// waves of waveWidth; a wave must settle completely before the next one
// starts, so at most waveWidth parts of a file are ever in memory or on the
// wire at once.
type Scheduler struct {
	negotiator *Negotiator
	worker     *Worker
	partSize   int64
	waveWidth  int
	logger     logging.Logger
}

func NewScheduler(n *Negotiator, w *Worker, opts Options, logger logging.Logger) *Scheduler {
	opts = opts.withDefaults()
	return &Scheduler{
		negotiator: n,
		worker:     w,
		partSize:   opts.PartSize,
		waveWidth:  opts.WaveWidth,
		logger:     logger,
	}
}

// Run uploads the file held by st and returns the receipts handed to the
// store on completion.
//
// A failed part leaves the session open for the caller to abort or retry.
// An abort observed at any point stops scheduling, lets in-flight parts
// drain and returns ErrAborted.
func (s *Scheduler) Run(ctx context.Context, st *fileState) ([]Receipt, error) {
	if st.isAborted() {
		return nil, ErrAborted
	}

	t := st.target
	ranges := Split(t.Size, s.partSize)

	if len(ranges) == 0 {
		st.setStatus(StatusNegotiating)
		if err := s.negotiator.store.PutEmptyObject(ctx, t.Key, t.ContentType); err != nil {
			return nil, &SessionInitError{Key: t.Key, Err: err}
		}
		return nil, nil
	}

	st.setStatus(StatusNegotiating)
	sess, err := s.negotiator.Initiate(ctx, t)
	if err != nil {
		return nil, err
	}
	st.setSession(sess)

	// RequestAbort may have run before the session existed.
	if st.isAborted() {
		s.negotiator.Abort(ctx, sess)
		return nil, ErrAborted
	}

	auths, err := s.negotiator.AuthorizeParts(ctx, sess, len(ranges))
	if err != nil {
		return nil, err
	}

	st.begin(len(ranges))

	receipts := make([]Receipt, len(ranges))
	for start := 0; start < len(ranges); start += s.waveWidth {
		if st.isAborted() {
			return nil, ErrAborted
		}

		end := min(start+s.waveWidth, len(ranges))
		if err := s.runWave(ctx, st, auths[start:end], ranges[start:end], receipts[start:end]); err != nil {
			if st.isAborted() {
				return nil, ErrAborted
			}
			return nil, err
		}
		s.logger.Debug(ctx, "wave settled", "key", t.Key, "session_id", sess.ID, "through_part", end)
	}

	if st.isAborted() {
		return nil, ErrAborted
	}

	st.setStatus(StatusCompleting)
	if err := s.negotiator.Complete(ctx, sess, receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// runWave transfers one wave concurrently and waits for every part in it.
// The first terminal failure is returned once the whole wave has settled.
func (s *Scheduler) runWave(ctx context.Context, st *fileState, auths []Authorization, ranges []Range, out []Receipt) error {
	// A plain Group: a failing part must not cancel its siblings, the wave
	// always runs to its barrier.
	var g errgroup.Group

	for i := range auths {
		job := Job{Authorization: auths[i], Source: st.source, Range: ranges[i]}
		g.Go(func() error {
			r, err := s.worker.Transfer(ctx, job, st.isAborted)
			if errors.Is(err, ErrAborted) {
				return nil
			}
			if err == nil && !st.isAborted() {
				out[i] = r
			}
			st.partSettled(err == nil)
			return err
		})
	}

	return g.Wait()
}
