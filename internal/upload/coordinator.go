package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/logging"
)

// File is one upload request. Source is read part by part; when it is also
// an io.Closer it is closed once the file leaves the pending set.
type File struct {
	Target Target
	Source io.ReaderAt
}

// Outcome is how one file's run ended.
type Outcome struct {
	Key    string
	Status Status
	Err    error
}

// Report describes a finished session attempt for the journal.
type Report struct {
	Key        string
	SessionID  string
	Size       int64
	Parts      int
	Status     Status
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder receives a Report each time a file's run ends.
type Recorder interface {
	Record(ctx context.Context, r Report) error
}

// Coordinator runs many files at once and owns the set of files that have
// not completed. Failed files stay in that set until they are retried or
// aborted.
type Coordinator struct {
	negotiator *Negotiator
	scheduler  *Scheduler
	partSize   int64
	recorder   Recorder
	logger     logging.Logger
	now        func() time.Time

	mu      sync.Mutex
	pending map[string]*fileState
}

func NewCoordinator(store Store, client *http.Client, opts Options, logger logging.Logger) *Coordinator {
	opts = opts.withDefaults()
	n := NewNegotiator(store, logger)
	w := NewWorker(client, opts, logger)
	return &Coordinator{
		negotiator: n,
		scheduler:  NewScheduler(n, w, opts, logger),
		partSize:   opts.PartSize,
		logger:     logger,
		now:        time.Now,
		pending:    make(map[string]*fileState),
	}
}

// SetRecorder installs r as the journal for finished runs. Record errors
// are logged and otherwise ignored.
func (c *Coordinator) SetRecorder(r Recorder) {
	c.mu.Lock()
	c.recorder = r
	c.mu.Unlock()
}

// StartUpload uploads files concurrently and blocks until each has
// completed, failed or been aborted. It returns the outcomes of the files
// that did not complete.
func (c *Coordinator) StartUpload(ctx context.Context, files []File, onProgress ProgressFunc) []Outcome {
	var (
		wg       sync.WaitGroup
		outMu    sync.Mutex
		outcomes []Outcome
	)

	for _, f := range files {
		st, err := c.admit(ctx, f, onProgress)
		if err != nil {
			outcomes = append(outcomes, Outcome{Key: f.Target.Key, Status: StatusFailed, Err: err})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			o := c.run(ctx, st)
			if o.Status == StatusCompleted {
				return
			}
			outMu.Lock()
			outcomes = append(outcomes, o)
			outMu.Unlock()
		}()
	}
	wg.Wait()

	return outcomes
}

// admit adds f to the pending set. A key that is still running is refused;
// a key left over from a failed run is replaced and its session released.
func (c *Coordinator) admit(ctx context.Context, f File, onProgress ProgressFunc) (*fileState, error) {
	if f.Target.Key == "" {
		return nil, fmt.Errorf("upload: %w", common.ErrInvalidKey)
	}
	if f.Source == nil && f.Target.Size > 0 {
		return nil, fmt.Errorf("upload %s: no source: %w", f.Target.Key, common.ErrInvalidArgument)
	}

	st := newFileState(f.Target, f.Source)
	st.reset()
	st.setSink(onProgress)

	c.mu.Lock()
	prev := c.pending[f.Target.Key]
	if prev != nil {
		prev.mu.Lock()
		running := prev.running
		prev.mu.Unlock()
		if running {
			c.mu.Unlock()
			return nil, fmt.Errorf("upload %s: %w", f.Target.Key, common.ErrAlreadyInFlight)
		}
	}
	c.pending[f.Target.Key] = st
	c.mu.Unlock()

	if prev != nil {
		sess, _, _ := prev.markAborted()
		c.negotiator.Abort(ctx, sess)
		closeSource(prev.source)
	}
	return st, nil
}

func (c *Coordinator) run(ctx context.Context, st *fileState) Outcome {
	started := c.now()
	key := st.target.Key

	_, err := c.scheduler.Run(ctx, st)

	var status Status
	switch {
	case err == nil:
		status = StatusCompleted
	case errors.Is(err, ErrAborted) || st.isAborted():
		status, err = StatusAborted, ErrAborted
	default:
		status = StatusFailed
	}

	st.finish(status, err)

	switch status {
	case StatusCompleted:
		c.logger.Info(ctx, "upload completed", "key", key, "size", st.target.Size)
		c.release(st)
	case StatusAborted:
		c.logger.Info(ctx, "upload aborted", "key", key)
		c.release(st)
	default:
		c.logger.Error(ctx, "upload failed", "key", key, "error", err)
	}

	c.record(ctx, st, status, err, started)
	return Outcome{Key: key, Status: status, Err: err}
}

// RequestAbort stops the upload of key: no new part starts and the open
// session, if any, is aborted on the store. Parts already on the wire are
// left to finish and their results are dropped. Aborting a file that is
// already being aborted is a no-op. It is safe to call from a progress
// callback.
func (c *Coordinator) RequestAbort(ctx context.Context, key string) error {
	c.mu.Lock()
	st := c.pending[key]
	c.mu.Unlock()
	if st == nil {
		return fmt.Errorf("abort %s: %w", key, common.ErrNotFound)
	}

	sess, running, first := st.markAborted()
	if !first {
		return nil
	}
	c.negotiator.Abort(ctx, sess)

	if running {
		st.notify()
		return nil
	}

	// Nothing is running for a failed file, so the abort finishes it here.
	st.finish(StatusAborted, ErrAborted)
	c.release(st)
	c.record(ctx, st, StatusAborted, ErrAborted, c.now())
	return nil
}

// Retry starts a failed file again with a new session. The old session is
// released first and progress restarts from zero. Retry blocks like
// StartUpload does for a single file. A file whose abort was requested is
// not retried.
func (c *Coordinator) Retry(ctx context.Context, key string, onProgress ProgressFunc) (Outcome, error) {
	c.mu.Lock()
	st := c.pending[key]
	if st == nil {
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("retry %s: %w", key, common.ErrNotFound)
	}
	old, status, ok := st.restart()
	c.mu.Unlock()
	if !ok {
		return Outcome{}, fmt.Errorf("retry %s in state %s: %w", key, status, common.ErrNotRetryable)
	}

	st.setSink(onProgress)
	c.negotiator.Abort(ctx, old)
	st.notify()

	c.logger.Info(ctx, "retrying upload", "key", key)
	return c.run(ctx, st), nil
}

// Pending lists the files that have not completed, ordered by key.
func (c *Coordinator) Pending() []PendingFile {
	c.mu.Lock()
	states := make([]*fileState, 0, len(c.pending))
	for _, st := range c.pending {
		states = append(states, st)
	}
	c.mu.Unlock()

	out := make([]PendingFile, 0, len(states))
	for _, st := range states {
		out = append(out, st.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target.Key < out[j].Target.Key })
	return out
}

// PartCount is the number of parts a file of size bytes is split into.
func (c *Coordinator) PartCount(size int64) int {
	return len(Split(size, c.partSize))
}

func (c *Coordinator) release(st *fileState) {
	c.mu.Lock()
	if c.pending[st.target.Key] == st {
		delete(c.pending, st.target.Key)
	}
	c.mu.Unlock()
	closeSource(st.source)
}

func (c *Coordinator) record(ctx context.Context, st *fileState, status Status, err error, started time.Time) {
	c.mu.Lock()
	rec := c.recorder
	c.mu.Unlock()
	if rec == nil {
		return
	}

	snap := st.snapshot()
	r := Report{
		Key:        st.target.Key,
		SessionID:  snap.SessionID,
		Size:       st.target.Size,
		Parts:      c.PartCount(st.target.Size),
		Status:     status,
		Err:        err,
		StartedAt:  started,
		FinishedAt: c.now(),
	}
	if rerr := rec.Record(ctx, r); rerr != nil {
		c.logger.Warn(ctx, "record upload outcome", "key", r.Key, "error", rerr)
	}
}

func closeSource(src io.ReaderAt) {
	if cl, ok := src.(io.Closer); ok {
		_ = cl.Close()
	}
}
