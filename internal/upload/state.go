package upload

import (
	"io"
	"sync"
	"sync/atomic"
)

// Status is where a file is in its upload lifecycle.
type Status string

const (
	StatusPending      Status = "pending"
	StatusNegotiating  Status = "negotiating"
	StatusTransferring Status = "transferring"
	StatusCompleting   Status = "completing"
	StatusCompleted    Status = "completed"
	StatusAborting     Status = "aborting"
	StatusAborted      Status = "aborted"
	StatusFailed       Status = "failed"
)

// Progress is a point-in-time view of one file's upload.
type Progress struct {
	Key     string
	Percent int
	Aborted bool
}

// ProgressFunc receives progress snapshots. Calls for one file are
// serialized and their Percent never decreases within a session. The
// callback may call RequestAbort or Pending; no coordinator lock is held
// while it runs.
type ProgressFunc func(Progress)

// fileState is the mutable record of one file. The abort flag is atomic so
// workers can poll it cheaply; it only changes with mu held, everything else
// sits behind mu too. Progress snapshots are queued under emitMu and handed
// to the sink with no lock held, so the sink may call back into the
// coordinator.
type fileState struct {
	target Target
	source io.ReaderAt

	aborted atomic.Bool

	emitMu     sync.Mutex
	sink       ProgressFunc
	queue      []Progress
	delivering bool

	mu        sync.Mutex
	status    Status
	session   *Session
	partCount int
	done      int
	percent   int
	err       error
	running   bool
}

func newFileState(t Target, src io.ReaderAt) *fileState {
	return &fileState{target: t, source: src, status: StatusPending}
}

func (f *fileState) isAborted() bool {
	return f.aborted.Load()
}

// markAborted raises the abort flag. It returns the session to release,
// whether a run is still in progress and whether this call raised the flag.
// A file with nothing running becomes Aborted right away so it can no longer
// be retried.
func (f *fileState) markAborted() (sess *Session, running, first bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	first = !f.aborted.Swap(true)
	if first {
		if f.running {
			f.status = StatusAborting
		} else {
			f.status = StatusAborted
		}
	}
	return f.session, f.running, first
}

func (f *fileState) setStatus(s Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

func (f *fileState) setSession(s *Session) {
	f.mu.Lock()
	f.session = s
	f.mu.Unlock()
}

// reset prepares the record for a fresh session: progress back to zero,
// abort flag cleared, old session forgotten. It returns the old session.
func (f *fileState) reset() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetLocked()
}

// restart resets a failed file for a new session. It refuses, returning
// the current status, when the file is not failed or an abort was raised.
func (f *fileState) restart() (*Session, Status, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != StatusFailed || f.aborted.Load() {
		return nil, f.status, false
	}
	return f.resetLocked(), StatusPending, true
}

func (f *fileState) resetLocked() *Session {
	f.aborted.Store(false)
	old := f.session
	f.session = nil
	f.status = StatusPending
	f.partCount, f.done, f.percent = 0, 0, 0
	f.err = nil
	f.running = true
	return old
}

func (f *fileState) setSink(sink ProgressFunc) {
	f.emitMu.Lock()
	f.sink = sink
	f.emitMu.Unlock()
}

func (f *fileState) begin(partCount int) {
	f.mu.Lock()
	f.partCount = partCount
	f.status = StatusTransferring
	f.mu.Unlock()
}

// partSettled records one finished part attempt and emits progress.
// Percent counts only successful parts and stays below 100 until finish.
func (f *fileState) partSettled(success bool) {
	f.emit(func() {
		if success {
			f.done++
		}
		if f.partCount > 0 {
			p := min(f.done*100/f.partCount, 99)
			f.percent = max(f.percent, p)
		}
	})
}

// finish stores the terminal status and emits the final snapshot.
func (f *fileState) finish(s Status, err error) {
	f.emit(func() {
		f.status = s
		f.err = err
		f.running = false
		if s == StatusCompleted {
			f.percent = 100
		}
	})
}

// notify emits the current snapshot without changing anything.
func (f *fileState) notify() {
	f.emit(func() {})
}

// emit applies update and queues the resulting snapshot. The first caller
// to find the queue idle delivers until it is empty; callers arriving
// meanwhile, including the sink itself, only queue. Snapshots therefore
// reach the sink one at a time and in the order they were taken.
func (f *fileState) emit(update func()) {
	f.emitMu.Lock()
	f.mu.Lock()
	update()
	p := Progress{Key: f.target.Key, Percent: f.percent, Aborted: f.aborted.Load()}
	f.mu.Unlock()

	f.queue = append(f.queue, p)
	if f.delivering {
		f.emitMu.Unlock()
		return
	}

	f.delivering = true
	for len(f.queue) > 0 {
		next := f.queue[0]
		f.queue = f.queue[1:]
		sink := f.sink

		f.emitMu.Unlock()
		if sink != nil {
			sink(next)
		}
		f.emitMu.Lock()
	}
	f.delivering = false
	f.emitMu.Unlock()
}

func (f *fileState) snapshot() PendingFile {
	f.mu.Lock()
	defer f.mu.Unlock()

	pf := PendingFile{
		Target:  f.target,
		Status:  f.status,
		Percent: f.percent,
		Aborted: f.aborted.Load(),
		Err:     f.err,
	}
	if f.session != nil {
		pf.SessionID = f.session.ID
	}
	return pf
}

// PendingFile describes an entry of the coordinator's pending set.
type PendingFile struct {
	Target    Target
	SessionID string
	Status    Status
	Percent   int
	Aborted   bool
	Err       error
}
