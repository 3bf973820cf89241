package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of bshell configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from a YAML file.
// A missing file yields the default configuration with no error; parse
// and validation failures are reported as non-fatal errors alongside the
// defaults, so a broken config file never prevents the shell starting.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromBytes(content), nil
}

// LoadFromBytes loads configuration from YAML content. Missing keys keep
// their default values.
func (l *Loader) LoadFromBytes(content []byte) *LoadResult {
	result := &LoadResult{
		Config: DefaultConfig(),
	}

	if err := yaml.Unmarshal(content, result.Config); err != nil {
		l.logger.Warn("failed to parse config, using defaults", zap.Error(err))
		result.Config = DefaultConfig()
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		return result
	}

	if err := result.Config.Validate(); err != nil {
		l.logger.Warn("invalid config, using defaults", zap.Error(err))
		result.Config = DefaultConfig()
		result.Errors = append(result.Errors, fmt.Errorf("invalid config: %w", err))
	}

	return result
}
