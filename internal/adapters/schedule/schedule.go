// Package schedule runs a job periodically until it is cancelled.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hiscores/pkg/logger"
)

const defaultInterval = 72 * time.Hour

// ErrAlreadyRunning is returned when Run is called twice on the same Runner.
var ErrAlreadyRunning = errors.New("runner already running")

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Runner executes a Job now (optionally) and then every interval.
type Runner struct {
	job            Job
	name           string
	interval       time.Duration
	runImmediately bool

	// Shutdown control
	running      atomic.Bool
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// Bookkeeping
	runs     atomic.Int64
	failures atomic.Int64
	lastRun  atomic.Int64 // unix nanos of the last job start

	logger logger.Logger
}

// New creates a runner for job.
func New(job Job, opts ...Option) *Runner {
	r := &Runner{
		job:            job,
		name:           "scheduler",
		interval:       defaultInterval,
		runImmediately: true,
		shutdown:       make(chan struct{}),
		done:           make(chan struct{}),
		logger:         logger.Get().Named("scheduler"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.name != "scheduler" {
		r.logger = r.logger.Named(r.name)
	}

	return r
}

// Run blocks until ctx is cancelled or Shutdown is called. Job errors are
// logged and do not stop the runner. The ctx handed to the job is cancelled
// on shutdown so a long job can stop early.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(r.done)

	// Shutdown may have run before this goroutine was scheduled.
	if r.stopping() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	r.logger.Info(ctx, "scheduler started",
		logger.Duration("interval", r.interval),
		logger.Bool("run_immediately", r.runImmediately),
	)

	if r.runImmediately {
		r.execute(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info(context.WithoutCancel(ctx), "scheduler stopped")
			return nil
		case <-ticker.C:
			r.execute(ctx)
		}
	}
}

// Shutdown stops the runner and waits for the in-flight job to return or
// for ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.shutdownOnce.Do(func() { close(r.shutdown) })

	if !r.running.Load() {
		return nil
	}

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Runs returns how many times the job has been started.
func (r *Runner) Runs() int64 {
	return r.runs.Load()
}

// Failures returns how many job runs returned an error.
func (r *Runner) Failures() int64 {
	return r.failures.Load()
}

// LastRun returns when the job last started, or the zero time.
func (r *Runner) LastRun() time.Time {
	ns := r.lastRun.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Interval returns the configured pause between job starts.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

func (r *Runner) execute(ctx context.Context) {
	if ctx.Err() != nil || r.stopping() {
		return
	}
	start := time.Now()
	r.lastRun.Store(start.UnixNano())
	r.runs.Add(1)

	if err := r.job(ctx); err != nil {
		r.failures.Add(1)
		r.logger.Error(ctx, "job failed",
			logger.Error(err),
			logger.Duration("took", time.Since(start)),
		)
		return
	}
	r.logger.Debug(ctx, "job finished", logger.Duration("took", time.Since(start)))
}

// stopping reports whether Shutdown has been requested.
func (r *Runner) stopping() bool {
	select {
	case <-r.shutdown:
		return true
	default:
		return false
	}
}
