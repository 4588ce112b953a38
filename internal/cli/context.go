package cli

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/config"
	"github.com/mrz1836/stationkey/internal/hardware"
	"github.com/mrz1836/stationkey/internal/keys"
	"github.com/mrz1836/stationkey/internal/keystore"
	"github.com/mrz1836/stationkey/internal/lcd"
	"github.com/mrz1836/stationkey/internal/output"
	"github.com/mrz1836/stationkey/internal/service/broadcast"
	walletservice "github.com/mrz1836/stationkey/internal/service/wallet"
	"github.com/mrz1836/stationkey/internal/session"
	"github.com/mrz1836/stationkey/internal/signer"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg *config.Config
	Log *config.Logger
	Fmt *output.Formatter

	Registry  *chain.StaticRegistry
	Store     *keystore.FileStore
	Session   *session.Session
	Devices   *hardware.Mux
	Router    *lcd.Router
	Wallets   *walletservice.Service
	Broadcast *broadcast.Service
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(cfg *config.Config, log *config.Logger, formatter *output.Formatter) *CommandContext {
	return &CommandContext{
		Cfg: cfg,
		Log: log,
		Fmt: formatter,
	}
}

// wire builds the key store, session and signing services from Cfg and
// restores the persisted wallet connection.
func (c *CommandContext) wire() error {
	if c.Log == nil {
		c.Log = config.NullLogger()
	}

	registry, err := c.Cfg.Registry()
	if err != nil {
		return err
	}
	c.Registry = registry

	c.Store = keystore.NewFileStore(c.Cfg.WalletsPath())
	c.Session = session.New(c.Store, c.Cfg.SessionPath(), c.Log.Named("session"))
	if err = c.Session.Restore(); err != nil {
		return err
	}

	c.Router = lcd.NewRouter(registry, &lcd.ClientOptions{
		HTTPClient: &http.Client{
			Timeout: c.Cfg.Network.Timeout(),
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		RateLimiter: lcd.NewRateLimiter(c.Cfg.Network.RequestsPerSecond, c.Cfg.Network.Burst),
	})
	if c.Devices == nil {
		c.Devices = hardware.NewMux()
	}

	engine := signer.NewEngine(c.Router, registry, c.Log.Named("signer"))
	c.Wallets = walletservice.NewService(&walletservice.Config{
		Storage:  c.Store,
		Exporter: engine,
		Logger:   c.Log.Named("wallet"),
	})
	c.Broadcast = broadcast.NewService(&broadcast.Config{
		Session:     c.Session,
		Registry:    registry,
		Resolver:    keys.NewResolver(c.Store, c.Devices, c.Log.Named("keys")),
		Signer:      engine,
		Broadcaster: c.Router,
		Logger:      c.Log.Named("broadcast"),
	})
	return nil
}

type cmdContextKey struct{}

// SetCmdContext attaches cc to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the CommandContext attached to cmd, or nil.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}
