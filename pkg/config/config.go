package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/proto-event-contracts/protoeval/pkg/agent"
)

// Config holds the eval runner configuration.
type Config struct {
	AgentBin    string        `yaml:"agent_bin"`
	AgentName   string        `yaml:"agent_name"`
	Instruction string        `yaml:"instruction"`
	Timeout     time.Duration `yaml:"timeout"`
	Cases       string        `yaml:"cases"`
	FixtureDir  string        `yaml:"fixture_dir"`
}

// Default returns a Config populated with sensible defaults. FixtureDir is
// left empty: relative fixture paths then resolve against the case file's
// directory.
func Default() *Config {
	return &Config{
		AgentBin:    agent.DefaultBin,
		AgentName:   agent.DefaultAgent,
		Instruction: agent.DefaultInstruction,
		Timeout:     agent.DefaultTimeout,
		Cases:       "cases.json",
	}
}

// Load reads and parses a YAML config file at the given path.
// It returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault loads config from the given path. If the file does not exist,
// it returns the default configuration. Other errors (e.g. parse failures)
// are still returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for required fields and returns a descriptive
// error if any are missing or invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.AgentBin == "" {
		errs = append(errs, errors.New("agent_bin must not be empty"))
	}
	if c.AgentName == "" {
		errs = append(errs, errors.New("agent_name must not be empty"))
	}
	if c.Instruction == "" {
		errs = append(errs, errors.New("instruction must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be > 0, got %s", c.Timeout))
	}
	if c.Cases == "" {
		errs = append(errs, errors.New("cases must not be empty"))
	}

	return errors.Join(errs...)
}
