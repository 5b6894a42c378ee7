package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "HISCORES_"

// EnvConfigFile names the variable holding the optional YAML config path.
const EnvConfigFile = "HISCORES_CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if HISCORES_CONFIG is set
//  3. env (prefix HISCORES_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like HISCORES_SNAPSHOT_PATH -> snapshot_path (flat keys).
	// Underscores are kept to match the koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// Slices are decoded element-wise over the existing value, so start the
	// copy without default groups and restore them only when none were given.
	cfg := *base
	cfg.Groups = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if !k.Exists("groups") {
		cfg.Groups = base.Groups
	}
	cfg.Groups = splitGroups(cfg.Groups)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SnapshotPath) == "":
		return fmt.Errorf("%w: snapshot_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.RosterDir) == "":
		return fmt.Errorf("%w: roster_dir must not be empty", ErrInvalidConfig)
	case len(c.Groups) == 0:
		return fmt.Errorf("%w: groups must not be empty", ErrInvalidConfig)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	case c.RequestTimeout < 0:
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be at least 1", ErrInvalidConfig)
	}
	if c.NumericFailure != NumericDiscard && c.NumericFailure != NumericAbort {
		return fmt.Errorf("%w: numeric_failure must be %q or %q", ErrInvalidConfig, NumericDiscard, NumericAbort)
	}
	if c.ExtractMode != ExtractPositional && c.ExtractMode != ExtractLabel {
		return fmt.Errorf("%w: extract_mode must be %q or %q", ErrInvalidConfig, ExtractPositional, ExtractLabel)
	}
	return nil
}

// splitGroups accepts both YAML lists and a comma separated env value.
func splitGroups(in []string) []string {
	out := make([]string, 0, len(in))
	for _, g := range in {
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
