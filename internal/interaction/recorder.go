// Package interaction records fulfillment turns for analytics. Logging is
// best-effort: a failed insert is written to the error log instead, and a
// record that does not fit the queue is dropped and counted.
package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// Error types written to df_errors.
const (
	ErrorTypeLogInsert = "LOG_INSERT"
	ErrorTypeDBInsert  = "DB_INSERT"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
	maxErrorPayload     = 65000
)

// ErrClosed is returned by Write after Shutdown.
var ErrClosed = errors.New("interaction recorder closed")

// Options configures a Recorder.
type Options struct {
	QueueSize    int
	WriteTimeout time.Duration
}

type queued struct {
	ctx       context.Context
	log       *storage.InteractionLog
	errorType string
}

// Recorder writes interaction logs on a single background worker.
type Recorder struct {
	store        storage.InteractionRepository
	metrics      *metrics.Metrics
	writeTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan queued
	dropped atomic.Uint64
	done    sync.WaitGroup
}

// NewRecorder starts the worker.
func NewRecorder(store storage.InteractionRepository, m *metrics.Metrics, opts Options) *Recorder {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	r := &Recorder{
		store:        store,
		metrics:      m,
		writeTimeout: timeout,
		queue:        make(chan queued, size),
	}
	r.done.Add(1)
	go func() {
		defer r.done.Done()
		for q := range r.queue {
			_ = r.write(q.ctx, q.log, q.errorType)
		}
	}()
	return r
}

// Observe enqueues l without waiting for the write. It never blocks.
func (r *Recorder) Observe(ctx context.Context, l *storage.InteractionLog) {
	if r == nil || l == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- queued{ctx: context.WithoutCancel(ctx), log: l, errorType: ErrorTypeLogInsert}:
	default:
		r.dropped.Add(1)
		r.metrics.RecordInteractionLog("dropped")
		slog.WarnContext(ctx, "interaction log queue full, record dropped",
			"dropped_total", r.dropped.Load())
	}
}

// Write stores l synchronously. A failed insert is recorded in the error log
// under errorType; the returned error is the original insert failure.
func (r *Recorder) Write(ctx context.Context, l *storage.InteractionLog, errorType string) error {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return r.write(ctx, l, errorType)
}

func (r *Recorder) write(ctx context.Context, l *storage.InteractionLog, errorType string) error {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	err := r.store.InsertInteraction(ctx, l)
	if err == nil {
		r.metrics.RecordInteractionLog("ok")
		return nil
	}

	r.metrics.RecordInteractionLog("error")
	slog.WarnContext(ctx, "interaction log insert failed",
		"session_id", l.SessionID,
		"error", err)

	payload, _ := json.Marshal(l)
	if ierr := r.store.InsertError(ctx, &storage.ErrorLog{
		SessionID: l.SessionID,
		UserID:    l.UserID,
		ErrorType: errorType,
		Message:   err.Error(),
		Payload:   truncate(string(payload), maxErrorPayload),
	}); ierr != nil {
		slog.WarnContext(ctx, "error log insert failed",
			"session_id", l.SessionID,
			"error", ierr)
	}
	return err
}

// Dropped returns how many records were discarded because the queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Shutdown stops accepting records and waits for queued ones to be written.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		r.done.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		slog.Warn("interaction log queue not drained before shutdown",
			"pending", len(r.queue))
		return ctx.Err()
	}
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
