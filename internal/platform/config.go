package platform

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional CLI configuration file (redline.yaml). Flags
// override it.
type FileConfig struct {
	Adapter      string `yaml:"adapter,omitempty"`
	Target       string `yaml:"target,omitempty"`
	Token        string `yaml:"token,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"` // e.g. "10s"
	Verbose      bool   `yaml:"verbose,omitempty"`
}

// PollDuration parses the poll interval; empty means use the default.
func (c FileConfig) PollDuration() (time.Duration, error) {
	if c.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", c.PollInterval, err)
	}
	return d, nil
}

// LoadConfig reads a configuration file. A missing file is not an error;
// it returns the zero config.
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Options translates the file config into session options.
func (c FileConfig) Options() []Option {
	var opts []Option
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	if c.Token != "" {
		opts = append(opts, WithToken(c.Token))
	}
	if d, err := c.PollDuration(); err == nil && d > 0 {
		opts = append(opts, WithPollInterval(d))
	}
	return opts
}
