// Package service provides the core business service: the scrape cycle and
// the read methods required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hiscores/internal/adapters/fetcher"
	"github.com/okian/hiscores/internal/adapters/publish"
	"github.com/okian/hiscores/internal/adapters/repository"
	"github.com/okian/hiscores/internal/adapters/roster"
	"github.com/okian/hiscores/internal/adapters/schedule"
	"github.com/okian/hiscores/internal/domain/extract"
	"github.com/okian/hiscores/internal/domain/model"
	"github.com/okian/hiscores/internal/domain/types"
	"github.com/okian/hiscores/pkg/logger"
	"github.com/okian/hiscores/pkg/metrics"
)

const (
	defaultInterval = 72 * time.Hour
	shutdownTimeout = 30 * time.Second
)

// NumericPolicy decides what a malformed citation or h-index value does to a cycle.
type NumericPolicy string

// Supported numeric failure policies.
const (
	NumericDiscard NumericPolicy = "discard"
	NumericAbort   NumericPolicy = "abort"
)

// Extractor turns a profile page into a record.
type Extractor interface {
	Extract(page, name string, group model.Group) (model.Record, error)
}

// Service implements the API dependencies for the hiscores system.
type Service struct {
	mu sync.RWMutex
	// cycleMu keeps cycles sequential when RunCycle is also called directly.
	cycleMu sync.Mutex

	// Core components
	fetcher   fetcher.Fetcher
	extractor Extractor
	roster    roster.Loader
	store     repository.Store
	board     *repository.Board
	publisher publish.Publisher
	runner    *schedule.Runner

	// Configuration
	groups        []model.Group
	interval      time.Duration
	runOnStart    bool
	numericPolicy NumericPolicy

	// State
	started bool
	last    cycleSummary
	cycles  int64

	// Logging
	logger logger.Logger
}

type cycleSummary struct {
	id        string
	at        time.Time
	took      time.Duration
	subjects  int
	kept      int
	discarded int
	err       error
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFetcher sets the profile page fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithExtractor sets the page extractor.
func WithExtractor(e Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithRoster sets the roster loader.
func WithRoster(r roster.Loader) Option {
	return func(s *Service) {
		if r != nil {
			s.roster = r
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithBoard sets the in-memory board served to readers.
func WithBoard(b *repository.Board) Option {
	return func(s *Service) {
		if b != nil {
			s.board = b
		}
	}
}

// WithPublisher sets the post-save publish hook.
func WithPublisher(p publish.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithGroups sets the roster groups visited by a cycle, in order.
func WithGroups(groups []model.Group) Option {
	return func(s *Service) {
		if len(groups) > 0 {
			s.groups = append([]model.Group(nil), groups...)
		}
	}
}

// WithInterval sets the pause between cycles.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRunOnStart controls whether Start runs a cycle immediately.
func WithRunOnStart(enabled bool) Option {
	return func(s *Service) {
		s.runOnStart = enabled
	}
}

// WithNumericPolicy sets how malformed numbers are handled.
func WithNumericPolicy(p NumericPolicy) Option {
	return func(s *Service) {
		if p == NumericDiscard || p == NumericAbort {
			s.numericPolicy = p
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		extractor:     extract.New(),
		board:         repository.NewBoard(),
		publisher:     publish.Noop{},
		groups:        model.DefaultGroups(),
		interval:      defaultInterval,
		runOnStart:    true,
		numericPolicy: NumericDiscard,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	// Default logger is resolved after options so WithLogger takes precedence.
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	return s
}

// Start warms the board from the stored snapshot and starts the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting hiscores service...")
	s.warm(ctx)

	runner := schedule.New(
		func(ctx context.Context) error {
			_, err := s.RunCycle(ctx)
			return err
		},
		schedule.WithName("cycle"),
		schedule.WithInterval(s.interval),
		schedule.WithRunImmediately(s.runOnStart),
		schedule.WithLogger(s.logger),
	)
	s.runner = runner
	go func() {
		if err := runner.Run(ctx); err != nil {
			s.logger.Error(ctx, "scheduler exited", logger.Error(err))
		}
	}()

	s.started = true
	s.logger.Info(ctx, "hiscores service started",
		logger.Any("groups", s.groups),
		logger.Duration("interval", s.interval),
		logger.Bool("runOnStart", s.runOnStart),
		logger.String("numericPolicy", string(s.numericPolicy)),
	)

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for an in-flight cycle.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	runner := s.runner
	s.started = false
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping hiscores service...")

	// The lock is released first: an in-flight cycle records its summary under it.
	if runner != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := runner.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "scheduler shutdown incomplete", logger.Error(err))
		}
		cancel()
	}

	s.logger.Info(ctx, "hiscores service stopped")
}

// RunCycle performs one full scrape: every group's roster is read, each
// subject is fetched and extracted, sentinels are filtered and the kept
// records are saved, loaded into the board and published.
func (s *Service) RunCycle(ctx context.Context) ([]model.Record, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	summary := cycleSummary{id: uuid.NewString(), at: start}
	log := s.logger.With(logger.String("cycle_id", summary.id))
	log.Info(ctx, "cycle started", logger.Int("groups", len(s.groups)))

	kept, err := s.collect(ctx, log, &summary)
	if err == nil {
		err = s.commit(ctx, log, kept)
	}

	summary.took = time.Since(start)
	summary.err = err
	s.finish(ctx, log, summary)

	if err != nil {
		return nil, err
	}
	return kept, nil
}

// collect visits every subject and returns the records worth keeping.
func (s *Service) collect(ctx context.Context, log logger.Logger, summary *cycleSummary) ([]model.Record, error) {
	records := make([]model.Record, 0)
	for _, group := range s.groups {
		subjects, err := s.roster.Load(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRoster, group, err)
		}
		log.Debug(ctx, "roster loaded",
			logger.String("group", string(group)),
			logger.Int("subjects", len(subjects)),
		)

		for _, subj := range subjects {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCycleAborted, err)
			}
			summary.subjects++
			metrics.RecordSubject(string(group))

			rec, err := s.scrape(ctx, log, subj)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}

	kept := model.Keep(records)
	summary.kept = len(kept)
	summary.discarded = len(records) - len(kept)
	return kept, nil
}

// scrape fetches and extracts one subject. Recoverable failures yield the
// discard-sentinel; only an aborting numeric failure is returned as an error.
func (s *Service) scrape(ctx context.Context, log logger.Logger, subj model.Subject) (model.Record, error) {
	fields := []logger.Field{
		logger.String("key", subj.Key),
		logger.String("name", subj.Name),
		logger.String("group", string(subj.Group)),
	}

	page, err := s.fetcher.Fetch(ctx, subj.Key)
	if err != nil {
		reason := fetcher.Reason(err)
		metrics.RecordFetchFailure(reason)
		metrics.RecordErrorByComponent("fetcher", reason)
		log.Warn(ctx, "fetch failed, skipping subject", append(fields, logger.Error(err))...)
		return model.Failed(), nil
	}

	rec, err := s.extractor.Extract(page, subj.Name, subj.Group)
	if err != nil {
		reason := extract.Reason(err)
		metrics.RecordExtractFailure(reason)
		metrics.RecordErrorByComponent("extract", reason)
		if errors.Is(err, extract.ErrMalformedNumber) && s.numericPolicy == NumericAbort {
			log.Error(ctx, "malformed number, aborting cycle", append(fields, logger.Error(err))...)
			return model.Failed(), fmt.Errorf("%w: %s: %w", ErrCycleAborted, subj.Key, err)
		}
		log.Warn(ctx, "extraction failed, skipping subject", append(fields, logger.Error(err))...)
		return model.Failed(), nil
	}

	metrics.RecordRecordKept(string(subj.Group))
	return rec, nil
}

// commit persists the kept records and runs the publish hook.
func (s *Service) commit(ctx context.Context, log logger.Logger, kept []model.Record) error {
	if err := s.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	s.board.Replace(ctx, kept)

	path := ""
	if p, ok := s.store.(interface{ Path() string }); ok {
		path = p.Path()
	}
	if err := s.publisher.Publish(ctx, path); err != nil {
		log.Warn(ctx, "publish failed", logger.Error(err))
	}

	log.Info(ctx, "dumped "+time.Now().Format(time.DateOnly), logger.Int("records", len(kept)))
	return nil
}

func (s *Service) finish(ctx context.Context, log logger.Logger, summary cycleSummary) {
	result := metrics.ResultOK
	switch {
	case errors.Is(summary.err, ErrCycleAborted):
		result = metrics.ResultAborted
	case summary.err != nil:
		result = metrics.ResultFailed
	}
	metrics.RecordCycle(result, summary.took)

	s.mu.Lock()
	s.last = summary
	s.cycles++
	s.mu.Unlock()

	fields := []logger.Field{
		logger.String("result", result),
		logger.Int("subjects", summary.subjects),
		logger.Int("kept", summary.kept),
		logger.Int("discarded", summary.discarded),
		logger.Duration("took", summary.took),
	}
	if summary.err != nil {
		log.Error(context.WithoutCancel(ctx), "cycle failed", append(fields, logger.Error(summary.err))...)
		return
	}
	log.Info(ctx, "cycle finished", fields...)
}

// warm loads the last snapshot into the board so readers have data before
// the first cycle completes.
func (s *Service) warm(ctx context.Context) {
	records, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNoSnapshot):
		s.logger.Info(ctx, "no previous snapshot")
	case err != nil:
		s.logger.Warn(ctx, "could not load previous snapshot", logger.Error(err))
	default:
		s.board.Replace(ctx, records)
		s.logger.Info(ctx, "board warmed from snapshot", logger.Int("records", len(records)))
	}
}

func (s *Service) validate() error {
	switch {
	case s.fetcher == nil:
		return fmt.Errorf("%w: fetcher", ErrNotConfigured)
	case s.roster == nil:
		return fmt.Errorf("%w: roster", ErrNotConfigured)
	case s.store == nil:
		return fmt.Errorf("%w: store", ErrNotConfigured)
	}
	return nil
}

// Snapshot returns the latest kept records in roster order.
func (s *Service) Snapshot(ctx context.Context) []model.Record {
	return s.board.All(ctx)
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int, group model.Group, key types.SortKey) ([]types.Entry, error) {
	return s.board.TopN(ctx, n, group, key)
}

// Rank returns the leaderboard entry for a display name.
func (s *Service) Rank(ctx context.Context, name string, key types.SortKey) (types.Entry, error) {
	return s.board.Rank(ctx, name, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, string(g))
	}

	stats := map[string]interface{}{
		"started":       s.started,
		"groups":        groups,
		"interval":      s.interval.String(),
		"numericPolicy": string(s.numericPolicy),
		"cycles":        s.cycles,
		"totalRecords":  s.board.Count(context.Background()),
	}

	if s.cycles > 0 {
		stats["lastCycleId"] = s.last.id
		stats["lastCycleAt"] = s.last.at.UTC().Format(time.RFC3339)
		stats["lastCycleDuration"] = s.last.took.String()
		stats["lastSubjects"] = s.last.subjects
		stats["lastKept"] = s.last.kept
		stats["lastDiscarded"] = s.last.discarded
		if s.last.err != nil {
			stats["lastError"] = s.last.err.Error()
		}
	}
	if s.runner != nil {
		stats["scheduledRuns"] = s.runner.Runs()
		stats["failedRuns"] = s.runner.Failures()
	}

	return stats
}
