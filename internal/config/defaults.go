package config

import (
	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/wallet"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	chains := make(map[string]ChainConfig)
	for _, info := range chain.DefaultChains() {
		chains[info.ChainID] = ChainConfig{LCD: info.LCD}
	}

	return &Config{
		Version: 1,
		Home:    "~/.stationkey",
		Chains:  chains,
		Hardware: HardwareConfig{
			DefaultTransport:      string(wallet.TransportUSB),
			DefaultName:           wallet.DefaultHardwareName,
			ConfirmTimeoutSeconds: 120,
		},
		Network: NetworkConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			TimeoutSeconds:    30,
		},
		Security: SecurityConfig{
			MemoryLock: true,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.stationkey/stationkey.log",
		},
	}
}
