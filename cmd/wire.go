package main

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/hiscores/internal/adapters/fetcher"
	"github.com/okian/hiscores/internal/adapters/publish"
	"github.com/okian/hiscores/internal/adapters/repository"
	"github.com/okian/hiscores/internal/adapters/roster"
	app "github.com/okian/hiscores/internal/app"
	"github.com/okian/hiscores/internal/config"
	"github.com/okian/hiscores/internal/domain/extract"
	"github.com/okian/hiscores/internal/domain/model"
	"github.com/okian/hiscores/pkg/logger"
	"github.com/okian/hiscores/pkg/metrics"
)

// bootstrap loads configuration and initializes logging and metrics.
func bootstrap(ctx context.Context) (*config.Config, logger.Logger, error) {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		return nil, nil, fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
	)

	return cfg, log, nil
}

// newService assembles the scrape pipeline described by cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	var extractOpts []extract.Option
	if cfg.ExtractMode == config.ExtractLabel {
		extractOpts = append(extractOpts, extract.WithLabelLookup())
	}

	var publisher publish.Publisher = publish.Noop{}
	if cfg.PublishEnabled {
		publisher = publish.NewGitPublisher(
			publish.WithRepoDir(cfg.PublishRepoDir),
			publish.WithRemote(cfg.PublishRemote),
			publish.WithBranch(cfg.PublishBranch),
			publish.WithLogger(log.Named("publish")),
		)
	}

	groups := make([]model.Group, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		groups = append(groups, model.Group(g))
	}

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithFetcher(fetcher.New(
			fetcher.WithBaseURL(cfg.BaseURL),
			fetcher.WithUserAgent(cfg.UserAgent),
			fetcher.WithTimeout(cfg.RequestTimeout),
			fetcher.WithLogger(log.Named("fetcher")),
		)),
		app.WithExtractor(extract.New(extractOpts...)),
		app.WithRoster(roster.NewFileLoader(cfg.RosterDir, log.Named("roster"))),
		app.WithStore(repository.NewFileStore(cfg.SnapshotPath)),
		app.WithPublisher(publisher),
		app.WithGroups(groups),
		app.WithInterval(cfg.Interval),
		app.WithRunOnStart(cfg.RunOnStart),
		app.WithNumericPolicy(app.NumericPolicy(cfg.NumericFailure)),
	)
}
