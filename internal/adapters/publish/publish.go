// Package publish pushes a freshly written snapshot to a git remote.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/okian/hiscores/pkg/logger"
	"github.com/okian/hiscores/pkg/metrics"
)

const commitDateLayout = "2006-01-02"

// Publisher is invoked after a snapshot has been saved.
type Publisher interface {
	Publish(ctx context.Context, path string) error
}

// Runner executes name with args in dir and returns the combined output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// GitPublisher commits the snapshot file and pushes it.
type GitPublisher struct {
	repoDir string
	remote  string
	branch  string
	run     Runner
	now     func() time.Time
	logger  logger.Logger
}

var _ Publisher = (*GitPublisher)(nil)

// NewGitPublisher creates a publisher with defaults "." / origin / main.
func NewGitPublisher(opts ...Option) *GitPublisher {
	p := &GitPublisher{
		repoDir: ".",
		remote:  "origin",
		branch:  "main",
		run:     ExecRunner,
		now:     time.Now,
		logger:  logger.Get().Named("publish"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CommitMessage returns the message used for a commit made at t.
func CommitMessage(t time.Time) string {
	return "Updated hiscores on " + t.Format(commitDateLayout)
}

// Publish runs git add, commit and push. The first failing step aborts the
// rest and is returned; callers treat it as non-fatal.
func (p *GitPublisher) Publish(ctx context.Context, path string) error {
	steps := [][]string{
		{"add", path},
		{"commit", "-m", CommitMessage(p.now())},
		{"push", p.remote, p.branch},
	}
	for _, args := range steps {
		out, err := p.run(ctx, p.repoDir, "git", args...)
		if err != nil {
			metrics.RecordPublish(metrics.ResultFailed)
			p.logger.Warn(ctx, "git step failed",
				logger.String("step", args[0]),
				logger.String("output", strings.TrimSpace(string(out))),
				logger.Error(err),
			)
			return fmt.Errorf("%w: git %s: %w", ErrCommand, args[0], err)
		}
	}
	metrics.RecordPublish(metrics.ResultOK)
	p.logger.Info(ctx, "snapshot published",
		logger.String("path", path),
		logger.String("remote", p.remote),
		logger.String("branch", p.branch),
	)
	return nil
}

// Noop is the publisher used when publishing is disabled.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, string) error { return nil }
