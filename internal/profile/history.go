package profile

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HistoryStore persists watch history appends.
type HistoryStore interface {
	Append(ctx context.Context, userID, videoID string) error
}

// RecorderConfig controls the concurrency characteristics of the recorder.
type RecorderConfig struct {
	QueueSize int
	Workers   int
	// StoreTimeout bounds each append against the store.
	StoreTimeout time.Duration
}

// Recorder applies watch history appends off the read path. Appends are
// best-effort: when the queue is full or the recorder is shut down the entry
// is dropped with a log line, never an error to the caller.
type Recorder struct {
	store        HistoryStore
	logger       *slog.Logger
	storeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan historyJob
	wg     sync.WaitGroup
}

type historyJob struct {
	userID  string
	videoID string
}

// NewRecorder constructs a background worker pool that persists watch history.
func NewRecorder(store HistoryStore, cfg RecorderConfig, logger *slog.Logger) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	rec := &Recorder{
		store:        store,
		logger:       logger,
		storeTimeout: cfg.StoreTimeout,
		jobs:         make(chan historyJob, cfg.QueueSize),
	}

	rec.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go rec.worker()
	}

	return rec
}

// Record schedules a watch history append. It never blocks the caller.
func (r *Recorder) Record(userID, videoID string) {
	if userID == "" || videoID == "" {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("watch history recorder closed, dropping entry", "userId", userID, "videoId", videoID)
		return
	}

	select {
	case r.jobs <- historyJob{userID: userID, videoID: videoID}:
	default:
		r.logger.Warn("watch history queue full, dropping entry", "userId", userID, "videoId", videoID)
	}
}

// Shutdown stops accepting entries and waits for the workers to drain the
// queue, or until the context expires.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for job := range r.jobs {
		r.handleJob(job)
	}
}

func (r *Recorder) handleJob(job historyJob) {
	ctx, cancel := context.WithTimeout(context.Background(), r.storeTimeout)
	defer cancel()

	if err := r.store.Append(ctx, job.userID, job.videoID); err != nil {
		r.logger.Error("append watch history", "userId", job.userID, "videoId", job.videoID, "error", err)
	}
}
