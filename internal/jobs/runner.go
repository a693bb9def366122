package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Config sizes a Runner.
type Config struct {
	// WorkerCount is the number of concurrent workers. Defaults to 1.
	WorkerCount int
	// QueueSize is the queue buffer. Defaults to 1.
	QueueSize int
	// JobTimeout bounds a single job. Zero means no limit.
	JobTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{WorkerCount: 2, QueueSize: 100, JobTimeout: 30 * time.Second}
}

// Runner executes submitted jobs on a worker pool.
type Runner struct {
	queue   *Queue
	config  Config
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
	logger  *slog.Logger

	// errHandler is called when a job fails; errors are logged regardless.
	errHandler func(job Job, err error)
}

// Ensure Runner implements Submitter interface
var _ Submitter = (*Runner)(nil)

// NewRunner creates a runner. Call Start before submitting jobs; until then
// submitted jobs are queued.
func NewRunner(config Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "job_runner")
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	return &Runner{
		queue:  NewQueue(config.QueueSize, logger),
		config: config,
		logger: logger,
	}
}

// SetErrorHandler allows setting a custom error handler for job failures.
// It is safe to call while workers are running.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errHandler = handler
}

func (r *Runner) errorHandler() func(job Job, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errHandler
}

// Start launches the workers. Calling it twice has no effect.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Info("job runner started",
		"worker_count", r.config.WorkerCount,
		"queue_size", cap(r.queue.items))
}

// Submit queues job for a worker. When the queue is full or already closed
// the job runs synchronously in the caller's goroutine instead, so work is
// never dropped.
func (r *Runner) Submit(ctx context.Context, job Job) {
	// Jobs outlive the request that submitted them but keep its logger.
	detached := context.WithoutCancel(ctx)
	err := r.queue.Enqueue(detached, job)
	if err == nil {
		return
	}

	level := slog.LevelWarn
	if errors.Is(err, ErrQueueClosed) {
		level = slog.LevelDebug
	}
	r.logger.Log(ctx, level, "running job inline", "job", job.Name(), "reason", err.Error())
	r.execute(detached, job, -1)
}

// Stop closes the queue and waits for the workers to finish every queued
// job, or for ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("job runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("job runner stop timed out", "queued", r.queue.Len())
		return ctx.Err()
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	r.logger.Debug("starting worker", "worker_id", id)

	for e := range r.queue.channel() {
		r.execute(e.ctx, e.job, id)
	}
	r.logger.Debug("job queue drained, stopping worker", "worker_id", id)
}

// execute runs one job, recovering from panics so a bad job cannot kill a
// worker.
func (r *Runner) execute(ctx context.Context, job Job, workerID int) {
	log := r.logger.With("job", job.Name(), "worker_id", workerID)

	if r.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.JobTimeout)
		defer cancel()
	}

	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				log.Error("job panicked", "panic", p)
				err = errors.New("job panicked")
			}
		}()
		err = job.Run(ctx)
	}()

	if err != nil {
		log.Error("job failed", "error", err)
		if handler := r.errorHandler(); handler != nil {
			handler(job, err)
		}
		return
	}
	log.Debug("job completed")
}
