package refresher

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from YAML or JSON. The zero-value is useful – all nested
// fields inherit their package defaults.
type Config struct {
	Runner RunnerConfig `json:"runner" yaml:"runner"`
	Remote RemoteConfig `json:"remote" yaml:"remote"`
}

type RunnerConfig struct {
	Workers            int `json:"workers" yaml:"workers"`
	RefreshConcurrency int `json:"refreshConcurrency" yaml:"refreshConcurrency"`
}

type RemoteConfig struct {
	BaseURL   string `json:"baseURL" yaml:"baseURL"`
	TimeoutMs int    `json:"timeoutMs" yaml:"timeoutMs"`
}

// DefaultConfig returns a Config populated with the same default values the
// constructors would otherwise apply.
func DefaultConfig() *Config {
	return &Config{
		Runner: RunnerConfig{
			Workers:            5,
			RefreshConcurrency: 25,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Runner.Workers <= 0 {
		return fmt.Errorf("runner.workers must be > 0")
	}
	if c.Runner.RefreshConcurrency <= 0 {
		return fmt.Errorf("runner.refreshConcurrency must be > 0")
	}
	if c.Remote.TimeoutMs < 0 {
		return fmt.Errorf("remote.timeoutMs cannot be negative")
	}
	return nil
}

// LoadConfig reads a YAML configuration from the supplied URL (file path or
// any scheme supported by afs) and validates it.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
