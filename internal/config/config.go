// Package config loads the itinera CLI settings from an optional YAML file
// and ITINERA_* environment variables. Environment values win over the file,
// and command-line flags win over both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/itinera/core/extract"
	"github.com/leofalp/itinera/core/session"
)

// DefaultRequired is the top-level key set every itinerary must carry.
var DefaultRequired = []string{"flights", "hotels", "daily_plan"}

// Config holds everything the CLI needs to build extractors and sessions.
type Config struct {
	Required       []string      `yaml:"required"`
	MaxAttempts    int           `yaml:"max_attempts"`
	Backoff        time.Duration `yaml:"backoff"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"` // zero: unbounded
	TokenRepair    bool          `yaml:"token_repair"`
	ExcerptLength  int           `yaml:"excerpt_length"`
	Parallel       int           `yaml:"parallel"`
	Log            LogConfig     `yaml:"log"`
}

// LogConfig selects the slogobs level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Required:      append([]string(nil), DefaultRequired...),
		MaxAttempts:   session.DefaultMaxAttempts,
		Backoff:       session.DefaultBackoff,
		ExcerptLength: extract.DefaultExcerptLength,
		Parallel:      4,
		Log: LogConfig{
			Level:  "info",
			Format: "compact",
		},
	}
}

// Load starts from [Default], overlays the YAML file at path (skipped when
// path is empty), then the process environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overlays ITINERA_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("ITINERA_REQUIRED"); ok {
		c.Required = SplitList(v)
	}
	if v, ok := lookup("ITINERA_MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ITINERA_MAX_ATTEMPTS: %w", err)
		}
		c.MaxAttempts = n
	}
	if v, ok := lookup("ITINERA_BACKOFF"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ITINERA_BACKOFF: %w", err)
		}
		c.Backoff = d
	}
	if v, ok := lookup("ITINERA_ATTEMPT_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ITINERA_ATTEMPT_TIMEOUT: %w", err)
		}
		c.AttemptTimeout = d
	}
	if v, ok := lookup("ITINERA_TOKEN_REPAIR"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ITINERA_TOKEN_REPAIR: %w", err)
		}
		c.TokenRepair = b
	}
	if v, ok := lookup("ITINERA_PARALLEL"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ITINERA_PARALLEL: %w", err)
		}
		c.Parallel = n
	}
	if v, ok := lookup("ITINERA_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("ITINERA_LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	return nil
}

// Validate rejects settings no session could run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.Backoff < 0 {
		errs = append(errs, fmt.Errorf("backoff must not be negative, got %s", c.Backoff))
	}
	if c.AttemptTimeout < 0 {
		errs = append(errs, fmt.Errorf("attempt_timeout must not be negative, got %s", c.AttemptTimeout))
	}
	if c.Parallel < 1 {
		errs = append(errs, fmt.Errorf("parallel must be at least 1, got %d", c.Parallel))
	}
	for _, key := range c.Required {
		if key == "" {
			errs = append(errs, errors.New("required field names must not be empty"))
			break
		}
	}
	return errors.Join(errs...)
}

// ExtractOptions returns the extractor options these settings imply.
func (c Config) ExtractOptions() []extract.Option {
	return []extract.Option{
		extract.WithTokenRepair(c.TokenRepair),
		extract.WithExcerptLength(c.ExcerptLength),
	}
}

// SplitList splits a comma-separated list, trimming blanks and dropping
// empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
