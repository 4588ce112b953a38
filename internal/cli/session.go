package cli

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/output"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// hwPubKeys maps coin type to hex compressed public key.
	hwPubKeys map[string]string
	// hwIndex is the device account index.
	hwIndex int
	// hwTransport is the device link.
	hwTransport string
	// hwName is the display name for the device.
	hwName string
)

// connectCmd connects a stored wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var connectCmd = &cobra.Command{
	Use:   "connect <name>",
	Short: "Connect a stored wallet",
	Long: `Make a stored wallet the connected wallet used by signing commands.

No password is asked here; each signing command asks for it. A locked wallet
cannot be connected, and a failed connect leaves the previous wallet
connected.`,
	Example: `  stationkey connect main`,
	Args:    cobra.ExactArgs(1),
	RunE:    runConnect,
}

// connectHardwareCmd connects a hardware signer.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var connectHardwareCmd = &cobra.Command{
	Use:   "connect-hardware",
	Short: "Connect a hardware signing device",
	Long: `Connect a hardware signing device by its public keys.

Addresses are computed from the given compressed public keys. The device is
opened over the chosen transport only when something has to be signed, and
it can only sign transactions in amino JSON mode.`,
	Example: `  stationkey connect-hardware --pubkey 330=02a1b2...
  stationkey connect-hardware --pubkey 330=02a1...,118=03c4... --transport bluetooth --name "Nano X"`,
	Args: cobra.NoArgs,
	RunE: runConnectHardware,
}

// disconnectCmd clears the connected wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var disconnectCmd = &cobra.Command{
	Use:     "disconnect",
	Short:   "Disconnect the connected wallet",
	Long:    `Forget the connected wallet. Stored wallets are not touched.`,
	Example: `  stationkey disconnect`,
	Args:    cobra.NoArgs,
	RunE:    runDisconnect,
}

// lockCmd locks and disconnects the connected wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock and disconnect the connected wallet",
	Long: `Mark the connected wallet as locked in the key store and disconnect it.

A locked wallet cannot be connected or used for signing until it is
unlocked with 'stationkey wallet unlock'. Hardware wallets are simply
disconnected.`,
	Example: `  stationkey lock`,
	Args:    cobra.NoArgs,
	RunE:    runLock,
}

// statusCmd shows the connected wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connected wallet",
	Long:  `Show which wallet is connected, when it was connected, and its addresses.`,
	Example: `  stationkey status
  stationkey status -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	for _, c := range []*cobra.Command{connectCmd, connectHardwareCmd, disconnectCmd, lockCmd, statusCmd} {
		c.GroupID = "security"
		rootCmd.AddCommand(c)
	}

	connectHardwareCmd.Flags().StringToStringVar(&hwPubKeys, "pubkey", nil, "coin type to hex compressed public key, e.g. 330=02ab...")
	connectHardwareCmd.Flags().IntVar(&hwIndex, "index", 0, "device account index")
	connectHardwareCmd.Flags().StringVar(&hwTransport, "transport", "", "device transport: usb, bluetooth (default from config)")
	connectHardwareCmd.Flags().StringVar(&hwName, "name", "", "device display name (default from config)")
	_ = connectHardwareCmd.MarkFlagRequired("pubkey")
	_ = connectHardwareCmd.RegisterFlagCompletionFunc("transport", cobra.FixedCompletions(
		[]cobra.Completion{string(wallet.TransportUSB), string(wallet.TransportBluetooth)}, cobra.ShellCompDirectiveNoFileComp))

	connectCmd.ValidArgsFunction = completeWalletNames
}

func runConnect(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	if err := cc.Session.Connect(args[0]); err != nil {
		return err
	}
	desc, err := cc.Session.GetConnected()
	if err != nil {
		return err
	}
	return printDescriptor(cmd, desc, "Connected")
}

func runConnectHardware(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	words, pubKeys, err := parseHardwarePubKeys(hwPubKeys)
	if err != nil {
		return err
	}

	transport := hwTransport
	if transport == "" {
		transport = cc.Cfg.Hardware.DefaultTransport
	}
	name := hwName
	if name == "" {
		name = cc.Cfg.Hardware.DefaultName
	}

	desc, err := cc.Session.ConnectHardware(words, pubKeys, hwIndex, wallet.Transport(transport), name)
	if err != nil {
		return err
	}
	return printDescriptor(cmd, desc, "Connected")
}

// parseHardwarePubKeys turns "coin type -> hex key" pairs into address words
// and raw public keys.
func parseHardwarePubKeys(in map[string]string) (map[wallet.CoinType]wallet.Words, map[wallet.CoinType][]byte, error) {
	if len(in) == 0 {
		return nil, nil, stationerr.WithSuggestion(stationerr.ErrInvalidInput, "pass at least one --pubkey coin_type=hex")
	}

	words := make(map[wallet.CoinType]wallet.Words, len(in))
	pubKeys := make(map[wallet.CoinType][]byte, len(in))
	for rawCT, rawKey := range in {
		ct, err := wallet.ParseCoinType(rawCT)
		if err != nil {
			return nil, nil, err
		}
		pub, err := hex.DecodeString(rawKey)
		if err != nil {
			return nil, nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
				"coin_type": rawCT,
				"reason":    "public key is not hex",
			})
		}
		w, err := address.WordsFromPubKey(pub)
		if err != nil {
			return nil, nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
				"coin_type": rawCT,
				"reason":    err.Error(),
			})
		}
		words[ct] = w
		pubKeys[ct] = pub
	}
	return words, pubKeys, nil
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	if err := cc.Session.Disconnect(); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), "Disconnected", cc.Fmt.Format())
}

func runLock(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	desc, err := cc.Session.GetConnected()
	if err != nil {
		return err
	}
	if err := cc.Session.Lock(); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wallet %q locked and disconnected", desc.Name), cc.Fmt.Format())
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	desc, err := cc.Session.GetConnected()
	if stationerr.Is(err, stationerr.ErrNoWalletConnected) {
		if cc.Fmt.IsJSON() {
			return cc.Fmt.Emit(w, map[string]bool{"connected": false})
		}
		return cc.Fmt.Emit(w, "No wallet connected.")
	}
	if err != nil {
		return err
	}

	fields := descriptorFields(cc.Registry, desc)
	if at, ok := cc.Session.ConnectedAt(); ok {
		fields = append(fields, output.Field{Key: "connected_at", Label: "Connected", Value: at.UTC().Format(time.RFC3339)})
	}
	if desc.IsHardware() {
		fields = append(fields, output.Field{Key: "drivers", Label: "Drivers", Value: driverList(cc)})
	}
	return cc.Fmt.Emit(w, fields)
}

// driverList names the transports a hardware device can be opened over.
func driverList(cc *CommandContext) string {
	if cc.Devices == nil {
		return "none"
	}
	kinds := cc.Devices.Kinds()
	if len(kinds) == 0 {
		return "none"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ",")
}
