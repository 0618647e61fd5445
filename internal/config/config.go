// Package config loads the YAML configuration of the keyderive tools.
// It never holds secrets: mnemonics and passphrases are runtime input only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/pkg/logging"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the CLI.
type Config struct {
	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Derivation defaults
	Derivation DerivationConfig `yaml:"derivation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// TimeFormat is a Go time layout for log timestamps.
	TimeFormat string `yaml:"time_format"`
}

// DerivationConfig holds the defaults applied when flags are absent.
type DerivationConfig struct {
	// Chains to derive. Empty means every registered chain.
	Chains []string `yaml:"chains"`

	// Account is the BIP44 account index.
	Account uint32 `yaml:"account"`

	// Workers bounds parallel derivations. Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			TimeFormat: "15:04:05",
		},
		Derivation: DerivationConfig{
			Chains:  []string{},
			Account: 0,
			Workers: 0,
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// DefaultDir is the default config directory.
const DefaultDir = "~/.keyderive"

// Load loads configuration from a YAML file.
// If the file doesn't exist, it creates one with default values.
func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	path = ExpandPath(path)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# keyderive configuration\n# Generated automatically on first run. Never put a mnemonic here.\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks chain ids, the account range and the worker count.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}

	for _, id := range c.Derivation.Chains {
		if !chain.IsSupported(id) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, chain.ErrUnsupportedChain, id)
		}
	}

	if c.Derivation.Account > chain.MaxIndex {
		return fmt.Errorf("%w: %w: account %d", ErrInvalidConfig, chain.ErrInvalidPath, c.Derivation.Account)
	}

	if c.Derivation.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}

	return nil
}

// ChainIDs returns the configured chains, or every registered chain when none are set.
func (c *Config) ChainIDs() []string {
	if len(c.Derivation.Chains) == 0 {
		return chain.List()
	}
	return append([]string(nil), c.Derivation.Chains...)
}

// WorkerCount resolves a zero worker count to the number of CPUs.
func (c *Config) WorkerCount() int {
	if c.Derivation.Workers > 0 {
		return c.Derivation.Workers
	}
	return runtime.NumCPU()
}

// LoggerConfig converts the logging section to a logger configuration.
func (c *Config) LoggerConfig() *logging.Config {
	lc := logging.DefaultConfig()
	if c.Logging.Level != "" {
		lc.Level = c.Logging.Level
	}
	if c.Logging.TimeFormat != "" {
		lc.TimeFormat = c.Logging.TimeFormat
	}
	return lc
}

// ConfigPath returns the full path to the config file in dir.
func ConfigPath(dir string) string {
	return filepath.Join(ExpandPath(dir), ConfigFileName)
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
