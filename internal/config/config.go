// Package config provides configuration management for stationkey.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version  int                    `yaml:"version"`
	Home     string                 `yaml:"home"`
	Chains   map[string]ChainConfig `yaml:"chains"`
	Hardware HardwareConfig         `yaml:"hardware"`
	Network  NetworkConfig          `yaml:"network"`
	Security SecurityConfig         `yaml:"security"`
	Output   OutputConfig           `yaml:"output"`
	Logging  LoggingConfig          `yaml:"logging"`

	// Warnings collects non-fatal problems found while applying overrides.
	Warnings []string `yaml:"-"`
}

// ChainConfig overrides or adds a chain. Empty fields keep the built-in value.
type ChainConfig struct {
	Name     string `yaml:"name,omitempty"`
	CoinType uint32 `yaml:"coin_type,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
	LCD      string `yaml:"lcd"`
	Denom    string `yaml:"denom,omitempty"`
	Decimals int    `yaml:"decimals,omitempty"`
	GasPrice string `yaml:"gas_price,omitempty"`
	GasLimit uint64 `yaml:"gas_limit,omitempty"`
}

// HardwareConfig defines hardware wallet defaults.
type HardwareConfig struct {
	DefaultTransport      string `yaml:"default_transport"`
	DefaultName           string `yaml:"default_name"`
	ConfirmTimeoutSeconds int    `yaml:"confirm_timeout_seconds"`
}

// ConfirmTimeout is the extra time a device signature may take while the
// user reviews the transaction on the device.
func (h HardwareConfig) ConfirmTimeout() time.Duration {
	return time.Duration(h.ConfirmTimeoutSeconds) * time.Second
}

// NetworkConfig defines LCD client settings.
type NetworkConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// Timeout returns the LCD request timeout. Zero means no timeout.
func (n NetworkConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	MemoryLock bool `yaml:"memory_lock"`

	// ScryptWorkFactor is the log2 scrypt cost for new encryptions. Zero keeps the default.
	ScryptWorkFactor int `yaml:"scrypt_work_factor"`
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
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, stationerr.Wrap(stationerr.ErrConfigInvalid, "parsing %s: %v", path, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate checks values that would otherwise fail far from their source.
func (c *Config) Validate() error {
	if c.Network.RequestsPerSecond <= 0 || c.Network.Burst <= 0 {
		return stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{
			"field": "network.requests_per_second/burst",
		})
	}
	if c.Network.TimeoutSeconds < 0 {
		return stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{"field": "network.timeout_seconds"})
	}
	if c.Hardware.ConfirmTimeoutSeconds < 0 {
		return stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{"field": "hardware.confirm_timeout_seconds"})
	}
	if t := wallet.Transport(c.Hardware.DefaultTransport); t != "" && !t.IsValid() {
		return stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{
			"field": "hardware.default_transport",
			"value": c.Hardware.DefaultTransport,
		})
	}
	if f := c.Security.ScryptWorkFactor; f != 0 && (f < 10 || f > 30) {
		return stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{"field": "security.scrypt_work_factor"})
	}
	for id, cc := range c.Chains {
		if err := ValidateLCDURL(cc.LCD); err != nil && !errors.Is(err, ErrInsecureLCDURL) {
			return stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{
				"chain":  id,
				"reason": err.Error(),
			})
		}
	}
	_, err := c.Registry()
	return err
}

// Registry returns the built-in chains overlaid with the configured ones.
// A chain not known to the built-in table must set every field.
func (c *Config) Registry() (*chain.StaticRegistry, error) {
	reg := chain.DefaultRegistry()
	for id, cc := range c.Chains {
		info, err := reg.Lookup(id)
		if err != nil {
			if cc.CoinType == 0 || cc.Prefix == "" || cc.Denom == "" || cc.GasPrice == "" || cc.GasLimit == 0 {
				return nil, stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{
					"chain":  id,
					"reason": "custom chains need coin_type, prefix, denom, gas_price and gas_limit",
				})
			}
			info = chain.Info{ChainID: id, Name: id, Decimals: 6}
		}
		reg.Set(cc.apply(info))
	}
	return reg, nil
}

func (cc ChainConfig) apply(info chain.Info) chain.Info {
	if cc.Name != "" {
		info.Name = cc.Name
	}
	if cc.CoinType != 0 {
		info.CoinType = wallet.CoinType(cc.CoinType)
	}
	if cc.Prefix != "" {
		info.Prefix = cc.Prefix
	}
	if cc.LCD != "" {
		info.LCD = cc.LCD
	}
	if cc.Denom != "" {
		info.Denom = cc.Denom
	}
	if cc.Decimals != 0 {
		info.Decimals = cc.Decimals
	}
	if cc.GasPrice != "" {
		info.GasPrice = cc.GasPrice
	}
	if cc.GasLimit != 0 {
		info.GasLimit = cc.GasLimit
	}
	return info
}

// GetHome returns the stationkey home directory path with "~" expanded.
func (c *Config) GetHome() string {
	return ExpandPath(c.Home)
}

// WalletsPath returns the key store directory.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.GetHome(), "wallets")
}

// SessionPath returns the file holding the connected wallet choice.
func (c *Config) SessionPath() string {
	return filepath.Join(c.GetHome(), "session", "connected.json")
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

// GetSecurity returns the security configuration.
func (c *Config) GetSecurity() SecurityConfig {
	return c.Security
}

// DefaultHome returns the default stationkey home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stationkey"
	}
	return filepath.Join(home, ".stationkey")
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
