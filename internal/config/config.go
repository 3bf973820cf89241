// Package config provides configuration management for bshell.
// Configuration is read from a YAML file in the user's data directory;
// missing files and missing keys fall back to defaults.
package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// JoinPolicy selects how the synchronizer treats completions reported for
// units other than the one it is waiting on.
type JoinPolicy string

const (
	// JoinPolicyDiscard drops unmatched completions and retries after a
	// fixed pause. A background unit finishing during a sequential wait is
	// lost to the shell permanently.
	JoinPolicyDiscard JoinPolicy = "discard"

	// JoinPolicyRegistry caches unmatched completions in a wait-set so a
	// later wait for that unit returns immediately.
	JoinPolicyRegistry JoinPolicy = "registry"
)

// Config holds all bshell configuration.
type Config struct {
	// Prompt is a fmt format string rendered with the current line number.
	Prompt string `yaml:"prompt"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	Join  JoinConfig  `yaml:"join"`
	Trace TraceConfig `yaml:"trace"`
}

// JoinConfig configures the sequential-wait synchronizer.
type JoinConfig struct {
	Policy JoinPolicy `yaml:"policy"`

	// RetryIntervalMS is the pause between join attempts after an
	// unmatched completion under the discard policy.
	RetryIntervalMS int `yaml:"retry_interval_ms"`
}

// TraceConfig configures the dispatch trace store.
type TraceConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path overrides the default trace database location when non-empty.
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Prompt:   "b-shell[%d]%% ",
		LogLevel: "info",
		Join: JoinConfig{
			Policy:          JoinPolicyDiscard,
			RetryIntervalMS: 10,
		},
		Trace: TraceConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the shell cannot run with.
func (c *Config) Validate() error {
	switch c.Join.Policy {
	case JoinPolicyDiscard, JoinPolicyRegistry:
	default:
		return fmt.Errorf("unknown join policy %q", c.Join.Policy)
	}

	if c.Join.RetryIntervalMS < 1 {
		return fmt.Errorf("join retry interval must be at least 1ms, got %d", c.Join.RetryIntervalMS)
	}

	if !strings.Contains(c.Prompt, "%d") {
		return fmt.Errorf("prompt format %q has no %%d verb for the line number", c.Prompt)
	}

	return nil
}

// ZapLevel maps the configured log level onto a zap level.
// Unrecognized values map to info.
func (c *Config) ZapLevel() zapcore.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
