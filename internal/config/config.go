package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Rewrite policies for manifest entries whose backing file was not moved.
const (
	// RewriteAlways rewrites every mapped manifest entry, moved or not.
	RewriteAlways = "always"
	// RewriteSynced rewrites only entries whose canonical file exists
	// after relocation, keeping manifest and filesystem in lockstep.
	RewriteSynced = "synced"
)

// Policies for paths made only of identifier segments.
const (
	// EmptySkip drops such paths from the mapping with a warning.
	EmptySkip = "skip"
	// EmptyAllow keeps them, mapping to an empty destination.
	EmptyAllow = "allow"
)

// ErrInvalidConfig indicates a configuration value is out of its allowed set.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all runtime configuration for a navstrip run.
// Values are populated from .navstrip.yaml, NAVSTRIP_* env vars, and CLI flags.
type Config struct {
	Root             string `mapstructure:"root"`
	Manifest         string `mapstructure:"manifest"`
	Extension        string `mapstructure:"extension"`
	Report           string `mapstructure:"report"`
	StateDir         string `mapstructure:"state_dir"`
	RewritePolicy    string `mapstructure:"rewrite_policy"`
	EmptyDestination string `mapstructure:"empty_destination"`
	Ledger           bool   `mapstructure:"ledger"`
	Events           string `mapstructure:"events"`
	DryRun           bool   `mapstructure:"dry_run"`
	Verbose          bool   `mapstructure:"verbose"`
	Quiet            bool   `mapstructure:"quiet"`
}

// SetDefaults registers built-in defaults on viper.
func SetDefaults() {
	viper.SetDefault("root", ".")
	viper.SetDefault("manifest", "docs.json")
	viper.SetDefault("extension", ".mdx")
	viper.SetDefault("report", "id_removal_report.json")
	viper.SetDefault("state_dir", ".navstrip")
	viper.SetDefault("rewrite_policy", RewriteAlways)
	viper.SetDefault("empty_destination", EmptySkip)
	viper.SetDefault("ledger", true)
	viper.SetDefault("events", "")
	viper.SetDefault("dry_run", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("quiet", false)
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates the
// policy values.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Extension != "" && !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and required paths.
func (c Config) Validate() error {
	switch c.RewritePolicy {
	case RewriteAlways, RewriteSynced:
	default:
		return fmt.Errorf("%w: rewrite_policy %q (want %q or %q)", ErrInvalidConfig, c.RewritePolicy, RewriteAlways, RewriteSynced)
	}
	switch c.EmptyDestination {
	case EmptySkip, EmptyAllow:
	default:
		return fmt.Errorf("%w: empty_destination %q (want %q or %q)", ErrInvalidConfig, c.EmptyDestination, EmptySkip, EmptyAllow)
	}
	if c.Manifest == "" {
		return fmt.Errorf("%w: manifest path is empty", ErrInvalidConfig)
	}
	if c.Extension == "" {
		return fmt.Errorf("%w: extension is empty", ErrInvalidConfig)
	}
	return nil
}
