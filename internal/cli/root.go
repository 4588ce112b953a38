// Package cli implements the stationkey command-line interface.
//
// Command state lives in package-level variables, the usual layout for a
// cobra application. PersistentPreRunE builds it and PersistentPostRun
// releases it.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/config"
	"github.com/mrz1836/stationkey/internal/metrics"
	"github.com/mrz1836/stationkey/internal/output"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	buildInfo BuildInfo
)

// BuildInfo carries the values stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// withDefaults fills fields left empty by a plain "go build".
func (b BuildInfo) withDefaults() BuildInfo {
	if b.Version == "" {
		b.Version = "dev"
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

func formatVersion(info BuildInfo) string {
	info = info.withDefaults()
	return info.Version + " (commit: " + info.Commit + ", built: " + info.Date + ")"
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stationkey",
	Short: "Wallet keys and transaction signing for Terra and Cosmos chains",
	Long: `stationkey keeps wallet keys encrypted on disk and signs transactions for
Terra (coin type 330) and Cosmos-family (coin type 118) chains.

A wallet is backed by a BIP39 seed, by raw private keys per coin type, or by
a hardware signer. Connect one wallet, then derive addresses, sign payloads,
and post transactions to any configured chain.`,
	Example: `  stationkey wallet add main
  stationkey connect main
  stationkey address --chain phoenix-1
  stationkey tx send --chain phoenix-1 --to terra1... --amount 1.5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initGlobals(cmd); err != nil {
			return err
		}
		cc := NewCommandContext(cfg, logger, formatter)
		if err := cc.wire(); err != nil {
			return err
		}
		SetCmdContext(cmd, cc)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command and renders any error to stderr.
func Execute(info BuildInfo) error {
	buildInfo = info
	rootCmd.Version = formatVersion(info)

	err := rootCmd.Execute()
	if err != nil {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(rootCmd.ErrOrStderr(), err, format)
		return err
	}
	return nil
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	return stationerr.ExitCode(err)
}

// initGlobals loads configuration and sets up the logger and formatter.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.Defaults()
		cfg.Home = home
	}

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err = cfg.Validate(); err != nil {
		return err
	}
	for _, warning := range cfg.Warnings {
		output.Warn(cmd.ErrOrStderr(), warning)
	}

	stationcrypto.SetMemoryLock(cfg.Security.MemoryLock)
	if cfg.Security.ScryptWorkFactor != 0 {
		stationcrypto.SetScryptWorkFactor(cfg.Security.ScryptWorkFactor)
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	explicit := output.ParseFormat(cfg.Output.DefaultFormat)
	formatter = output.NewFormatter(output.DetectFormat(cmd.OutOrStdout(), explicit))

	return nil
}

func cleanup() {
	if logger == nil {
		return
	}
	snap := metrics.Global.Snapshot()
	if snap.SignaturesTotal > 0 || snap.LCDCallsTotal > 0 {
		logger.Debug("run stats: signatures=%d failed=%d lcd_calls=%d lcd_errors=%d lcd_avg_ms=%.1f broadcasts=%d rejected=%d",
			snap.SignaturesTotal, snap.SignatureErrors, snap.LCDCallsTotal, snap.LCDErrorsTotal,
			metrics.Global.LCDLatencyAvgMs(), snap.BroadcastsTotal, snap.BroadcastsRejected)
	}
	if locks := stationcrypto.MemoryLockStats(); locks.Failed > 0 {
		logger.Debug("memory lock refused for %d key buffers", locks.Failed)
	}
	_ = logger.Close()
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "stationkey data directory (default: ~/.stationkey)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "wallet", Title: "Wallet Operations:"},
		&cobra.Group{ID: "signing", Title: "Signing & Broadcast:"},
		&cobra.Group{ID: "security", Title: "Session & Security:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID("config")
}
