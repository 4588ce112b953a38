package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "STATIONKEY_HOME"
	EnvOutputFormat = "STATIONKEY_OUTPUT_FORMAT"
	EnvVerbose      = "STATIONKEY_VERBOSE"
	EnvLogLevel     = "STATIONKEY_LOG_LEVEL"
	EnvNoColor      = "NO_COLOR"

	// EnvLCDPrefix prefixes per-chain LCD overrides, e.g. STATIONKEY_LCD_PHOENIX_1.
	EnvLCDPrefix = "STATIONKEY_LCD_"
)

var (
	// ErrInvalidLCDURL indicates an unparseable URL or a scheme other than http(s).
	ErrInvalidLCDURL = errors.New("invalid LCD URL")

	// ErrInsecureLCDURL indicates plain http to a host other than loopback.
	ErrInsecureLCDURL = errors.New("LCD URL uses plain http to a remote host")
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	for id, cc := range cfg.Chains {
		if v := os.Getenv(LCDEnvName(id)); v != "" {
			cc.LCD = SanitizeURL(v)
			cfg.Chains[id] = cc
			if err := ValidateLCDURL(cc.LCD); err != nil {
				cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: %v", LCDEnvName(id), err))
			}
		}
	}
}

// LCDEnvName returns the environment variable overriding chainID's LCD URL.
func LCDEnvName(chainID string) string {
	return EnvLCDPrefix + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(chainID))
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// This is useful for cleaning user-provided LCD URLs that may contain copy-paste artifacts.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}

// ValidateLCDURL accepts https URLs, and http only for loopback hosts.
// An empty URL is valid.
func ValidateLCDURL(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLCDURL, err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}
		return ErrInsecureLCDURL
	default:
		return fmt.Errorf("%w: scheme %q", ErrInvalidLCDURL, u.Scheme)
	}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
