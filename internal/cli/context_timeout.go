package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/config"
	"github.com/mrz1836/stationkey/internal/wallet"
)

// signingTimeout is the budget for one resolve, sign and broadcast round.
// Hardware wallets get the device confirmation window on top of the LCD
// timeout. Zero means no deadline.
func signingTimeout(cfg *config.Config, desc *wallet.Descriptor) time.Duration {
	d := cfg.Network.Timeout()
	if d <= 0 {
		return 0
	}
	if desc != nil && desc.IsHardware() {
		d += cfg.Hardware.ConfirmTimeout()
	}
	return d
}

// signingContext derives the context for a signing command from the command
// context and signingTimeout.
func signingContext(cmd *cobra.Command, cfg *config.Config, desc *wallet.Descriptor) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if d := signingTimeout(cfg, desc); d > 0 {
		return context.WithTimeout(base, d)
	}
	return context.WithCancel(base)
}
