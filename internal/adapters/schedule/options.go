package schedule

import (
	"time"

	"github.com/okian/hiscores/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithName sets the runner name for identification and logging.
func WithName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(logger logger.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithInterval sets the pause between two job starts.
func WithInterval(interval time.Duration) Option {
	return func(r *Runner) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithRunImmediately controls whether the job runs as soon as Run is called.
func WithRunImmediately(enabled bool) Option {
	return func(r *Runner) {
		r.runImmediately = enabled
	}
}
