// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and HISCORES_* env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Numeric failure policies.
const (
	NumericDiscard = "discard"
	NumericAbort   = "abort"
)

// Extraction modes.
const (
	ExtractPositional = "positional"
	ExtractLabel      = "label"
)

// DefaultUserAgent is sent with every profile request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080". Empty disables HTTP.
	Addr string `koanf:"addr"`

	// BaseURL is the profile page endpoint; the key is sent as ?user=<key>.
	BaseURL string `koanf:"base_url"`

	// UserAgent is the fixed User-Agent header.
	UserAgent string `koanf:"user_agent"`

	// RequestTimeout bounds a single fetch. Zero leaves the transport default.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RosterDir holds one <group>.txt file per group.
	RosterDir string `koanf:"roster_dir"`

	// Groups lists the rosters scraped each cycle, in order.
	Groups []string `koanf:"groups"`

	// SnapshotPath is overwritten with the JSON snapshot every cycle.
	SnapshotPath string `koanf:"snapshot_path"`

	// Interval is the delay between cycles.
	Interval time.Duration `koanf:"interval"`

	// RunOnStart runs the first cycle immediately instead of after Interval.
	RunOnStart bool `koanf:"run_on_start"`

	// NumericFailure is "discard" or "abort".
	NumericFailure string `koanf:"numeric_failure"`

	// ExtractMode is "positional" or "label".
	ExtractMode string `koanf:"extract_mode"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Metrics* name the exported Prometheus series as
	// <namespace>_<subsystem>_<prefix><metric>.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`

	// Publish* configure the optional git publish hook.
	PublishEnabled bool   `koanf:"publish_enabled"`
	PublishRepoDir string `koanf:"publish_repo_dir"`
	PublishRemote  string `koanf:"publish_remote"`
	PublishBranch  string `koanf:"publish_branch"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		BaseURL:             "https://scholar.google.com/citations",
		UserAgent:           DefaultUserAgent,
		RosterDir:           "players",
		Groups:              []string{"students", "teachers"},
		SnapshotPath:        "hiscores.json",
		Interval:            72 * time.Hour,
		RunOnStart:          true,
		NumericFailure:      NumericDiscard,
		ExtractMode:         ExtractPositional,
		MaxLeaderboardLimit: 100,
		MetricsNamespace:    "hiscores",
		MetricsSubsystem:    "scraper",
		PublishRepoDir:      ".",
		PublishRemote:       "origin",
		PublishBranch:       "main",
	}
}
