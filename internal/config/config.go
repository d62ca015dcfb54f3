// Package config provides configuration management for veconnect.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/the-recircle-app/veconnect/internal/fileutil"
	vcerr "github.com/the-recircle-app/veconnect/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int                      `yaml:"version"`
	Home     string                   `yaml:"home"`
	App      AppConfig                `yaml:"app"`
	Network  string                   `yaml:"network"`
	Networks map[string]NetworkConfig `yaml:"networks"`
	Probe    ProbeConfig              `yaml:"probe"`
	Storage  StorageConfig            `yaml:"storage"`
	Output   OutputConfig             `yaml:"output"`
	Logging  LoggingConfig            `yaml:"logging"`
}

// AppConfig identifies the application in certificate requests.
type AppConfig struct {
	Name string `yaml:"name"`
}

// NetworkConfig defines per-network token settings. The token contract
// address and precision are configuration, not protocol: each deployment
// has its own contract.
type NetworkConfig struct {
	TokenContract string `yaml:"token_contract"`
	TokenSymbol   string `yaml:"token_symbol"`
	Decimals      int    `yaml:"decimals"`
	Explorer      string `yaml:"explorer,omitempty"`
}

// ProbeConfig bounds provider discovery.
type ProbeConfig struct {
	MaxAttempts      int `yaml:"max_attempts"`
	IntervalMs       int `yaml:"interval_ms"`
	OverallTimeoutMs int `yaml:"overall_timeout_ms"`
}

// Interval returns the probe interval as a duration.
func (p ProbeConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// OverallTimeout returns the probe ceiling as a duration.
func (p ProbeConfig) OverallTimeout() time.Duration {
	return time.Duration(p.OverallTimeoutMs) * time.Millisecond
}

// StorageConfig defines local persistence settings.
type StorageConfig struct {
	AddressFile string `yaml:"address_file"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vcerr.WithDetails(vcerr.ErrConfigNotFound, map[string]string{
				"path": path,
			})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, vcerr.Wrap(vcerr.ErrConfigInvalid, "%s", err.Error())
	}

	return cfg, nil
}

// LoadOrDefaults reads configuration from path, falling back to defaults
// when no config file exists yet.
func LoadOrDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if vcerr.Is(err, vcerr.ErrConfigNotFound) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// AddressStorePath returns the path of the persisted address file.
func (c *Config) AddressStorePath() string {
	if c.Storage.AddressFile != "" {
		return ExpandHome(c.Storage.AddressFile)
	}
	return filepath.Join(ExpandHome(c.Home), "connection.json")
}

// ActiveNetwork returns the configuration of the selected network.
func (c *Config) ActiveNetwork() (NetworkConfig, error) {
	net, ok := c.Networks[c.Network]
	if !ok {
		return NetworkConfig{}, vcerr.WithDetails(vcerr.ErrUnknownNetwork, map[string]string{
			"network": c.Network,
		})
	}
	return net, nil
}

// Validate checks the configuration for inconsistencies that would only
// surface later as confusing provider or encoding failures.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return vcerr.Wrap(vcerr.ErrConfigInvalid, "app.name must not be empty")
	}
	if _, ok := c.Networks[c.Network]; !ok {
		return vcerr.WithDetails(vcerr.ErrUnknownNetwork, map[string]string{
			"network": c.Network,
		})
	}
	for name, net := range c.Networks {
		if !common.IsHexAddress(net.TokenContract) {
			return vcerr.Wrap(vcerr.ErrConfigInvalid,
				"networks.%s.token_contract is not a valid address", name)
		}
		if net.Decimals <= 0 || net.Decimals > 36 {
			return vcerr.Wrap(vcerr.ErrConfigInvalid,
				"networks.%s.decimals out of range", name)
		}
	}
	if c.Probe.MaxAttempts < 1 {
		return vcerr.Wrap(vcerr.ErrConfigInvalid, "probe.max_attempts must be at least 1")
	}
	if c.Probe.IntervalMs < 0 || c.Probe.OverallTimeoutMs < 0 {
		return vcerr.Wrap(vcerr.ErrConfigInvalid, "probe intervals must not be negative")
	}
	return nil
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default veconnect home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".veconnect"
	}
	return filepath.Join(home, ".veconnect")
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
