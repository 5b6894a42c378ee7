package publish

import (
	"time"

	"github.com/okian/hiscores/pkg/logger"
)

// Option applies a configuration option to the GitPublisher.
type Option func(*GitPublisher)

// WithRepoDir sets the working tree the git commands run in.
func WithRepoDir(dir string) Option {
	return func(p *GitPublisher) {
		if dir != "" {
			p.repoDir = dir
		}
	}
}

// WithRemote sets the remote pushed to.
func WithRemote(remote string) Option {
	return func(p *GitPublisher) {
		if remote != "" {
			p.remote = remote
		}
	}
}

// WithBranch sets the branch pushed.
func WithBranch(branch string) Option {
	return func(p *GitPublisher) {
		if branch != "" {
			p.branch = branch
		}
	}
}

// WithRunner replaces the command runner, mainly for tests.
func WithRunner(run Runner) Option {
	return func(p *GitPublisher) {
		if run != nil {
			p.run = run
		}
	}
}

// WithClock sets the time source used for the commit message date.
func WithClock(now func() time.Time) Option {
	return func(p *GitPublisher) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *GitPublisher) {
		if l != nil {
			p.logger = l
		}
	}
}
