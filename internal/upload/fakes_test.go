package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devendra0039/s3-file-manager/internal/objectstore"
)

// fakeStore records every call the pipeline makes against the store and
// hands out part URLs on a local HTTP server.
type fakeStore struct {
	baseURL string

	mu        sync.Mutex
	nextID    int
	created   []string
	emptyPuts []string
	completed map[string][]objectstore.CompletedPart
	aborted   []string
	authCalls int

	createErr   error
	authErrAt   int32
	completeErr error
	abortErr    error
	putErr      error

	// onCreate runs after a session id is issued and before it is returned.
	onCreate func()

	// onAbort runs after an abort is recorded, while the caller still
	// waits for the store's answer.
	onAbort func(sessionID string)
}

func newFakeStore(baseURL string) *fakeStore {
	return &fakeStore{baseURL: baseURL, completed: make(map[string][]objectstore.CompletedPart)}
}

func (s *fakeStore) PutEmptyObject(_ context.Context, key, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.emptyPuts = append(s.emptyPuts, key)
	return nil
}

func (s *fakeStore) CreateMultipartSession(_ context.Context, key, _ string) (string, error) {
	s.mu.Lock()
	if s.createErr != nil {
		s.mu.Unlock()
		return "", s.createErr
	}
	s.nextID++
	id := fmt.Sprintf("session-%d", s.nextID)
	s.created = append(s.created, key)
	hook := s.onCreate
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return id, nil
}

func (s *fakeStore) AuthorizePartUpload(_ context.Context, key, sessionID string, partNumber int32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCalls++
	if s.authErrAt != 0 && partNumber == s.authErrAt {
		return "", errors.New("signing failed")
	}
	return fmt.Sprintf("%s/%s/%d?uploadId=%s", s.baseURL, key, partNumber, sessionID), nil
}

func (s *fakeStore) CompleteMultipartSession(_ context.Context, _, sessionID string, parts []objectstore.CompletedPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completed[sessionID] = append([]objectstore.CompletedPart(nil), parts...)
	return nil
}

func (s *fakeStore) AbortMultipartSession(_ context.Context, _, sessionID string) error {
	s.mu.Lock()
	s.aborted = append(s.aborted, sessionID)
	err, hook := s.abortErr, s.onAbort
	s.mu.Unlock()

	if hook != nil {
		hook(sessionID)
	}
	return err
}

func (s *fakeStore) sessionsCreated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

func (s *fakeStore) completedParts(sessionID string) []objectstore.CompletedPart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[sessionID]
}

func (s *fakeStore) abortedSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.aborted...)
}

// partServer accepts part PUTs at /<key>/<part>. behave decides the reply
// for each attempt; nil means every attempt succeeds.
type partServer struct {
	*httptest.Server

	mu       sync.Mutex
	attempts map[int][]time.Time
	bodies   map[int][]byte
	behave   func(part, attempt int, w http.ResponseWriter) bool
}

func newPartServer(t *testing.T, behave func(part, attempt int, w http.ResponseWriter) bool) *partServer {
	t.Helper()
	ps := &partServer{
		attempts: make(map[int][]time.Time),
		bodies:   make(map[int][]byte),
		behave:   behave,
	}
	ps.Server = httptest.NewServer(http.HandlerFunc(ps.handle))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *partServer) handle(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	part, _ := strconv.Atoi(segs[len(segs)-1])
	body, _ := io.ReadAll(r.Body)

	ps.mu.Lock()
	ps.attempts[part] = append(ps.attempts[part], time.Now())
	attempt := len(ps.attempts[part])
	ps.mu.Unlock()

	if ps.behave != nil && !ps.behave(part, attempt, w) {
		return
	}

	ps.mu.Lock()
	ps.bodies[part] = body
	ps.mu.Unlock()
	w.Header().Set("ETag", fmt.Sprintf(`"etag-%d"`, part))
	w.WriteHeader(http.StatusOK)
}

func (ps *partServer) attemptsFor(part int) []time.Time {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]time.Time(nil), ps.attempts[part]...)
}

func (ps *partServer) totalAttempts() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	n := 0
	for _, a := range ps.attempts {
		n += len(a)
	}
	return n
}

func (ps *partServer) body(part int) []byte {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.bodies[part]
}

// failPart makes every attempt at part fail with a 500.
func failPart(part int) func(int, int, http.ResponseWriter) bool {
	return func(p, _ int, w http.ResponseWriter) bool {
		if p == part {
			w.WriteHeader(http.StatusInternalServerError)
			return false
		}
		return true
	}
}

// fastOptions keeps retry and timeout waits short enough for unit tests.
func fastOptions() Options {
	return Options{
		PartSize:    4,
		WaveWidth:   5,
		MaxRetries:  2,
		RetryDelay:  20 * time.Millisecond,
		PartTimeout: time.Second,
	}
}

// progressLog collects progress snapshots in call order.
type progressLog struct {
	mu     sync.Mutex
	events []Progress
}

func (l *progressLog) sink(p Progress) {
	l.mu.Lock()
	l.events = append(l.events, p)
	l.mu.Unlock()
}

func (l *progressLog) snapshot() []Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Progress(nil), l.events...)
}

type closeTracker struct {
	*strings.Reader
	mu     sync.Mutex
	closed bool
}

func (c *closeTracker) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *closeTracker) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
