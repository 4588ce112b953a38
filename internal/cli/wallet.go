package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/output"
	walletservice "github.com/mrz1836/stationkey/internal/service/wallet"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/wallet"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// addLegacy derives the Terra key on the historical coin type 118 path.
	addLegacy bool
	// addIndex is the BIP44 address index.
	addIndex uint32
	// addPassphrase prompts for a BIP39 passphrase.
	addPassphrase bool
	// addKeyCoinTypes lists the coin types to import raw keys for.
	addKeyCoinTypes []uint
)

// walletCmd is the parent command for wallet operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage stored wallets",
	Long: `Import, list and unlock the wallets kept in the stationkey data directory.

Key material is encrypted with a password before it is written to disk.`,
}

// walletListCmd lists stored wallets.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored wallets",
	Long:    `List every stored wallet with its backend, lock state and coin types.`,
	Example: `  stationkey wallet list
  stationkey wallet list -o json`,
	Args: cobra.NoArgs,
	RunE: runWalletList,
}

// walletAddCmd imports a mnemonic.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Import a wallet from a BIP39 mnemonic",
	Long: `Import a wallet from a BIP39 mnemonic phrase.

The mnemonic is read without echo. Keys for Terra (330) and Cosmos (118) are
derived from the seed when signing; only address data is stored in clear.
Use --legacy for wallets created before Terra moved to coin type 330.`,
	Example: `  stationkey wallet add main
  stationkey wallet add old-station --legacy
  stationkey wallet add savings --index 1 --passphrase`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletAdd,
}

// walletAddKeyCmd imports raw private keys.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletAddKeyCmd = &cobra.Command{
	Use:   "add-key <name>",
	Short: "Import a wallet from hex private keys",
	Long: `Import a wallet from hex-encoded secp256k1 private keys, one per coin type.

Each key is read without echo. A raw-key wallet can only sign for the coin
types it holds a key for.`,
	Example: `  stationkey wallet add-key hot
  stationkey wallet add-key both --coin-type 330 --coin-type 118`,
	Args: cobra.ExactArgs(1),
	RunE: runWalletAddKey,
}

// walletUnlockCmd clears a wallet's lock flag.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var walletUnlockCmd = &cobra.Command{
	Use:   "unlock <name>",
	Short: "Unlock a locked wallet",
	Long: `Unlock a wallet that was locked with 'stationkey lock'.

The wallet password is verified before the lock flag is cleared.`,
	Example: `  stationkey wallet unlock main`,
	Args:    cobra.ExactArgs(1),
	RunE:    runWalletUnlock,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	walletCmd.GroupID = "wallet"
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletListCmd, walletAddCmd, walletAddKeyCmd, walletUnlockCmd)

	walletAddCmd.Flags().BoolVar(&addLegacy, "legacy", false, "derive the Terra key on coin type 118")
	walletAddCmd.Flags().Uint32Var(&addIndex, "index", 0, "BIP44 address index")
	walletAddCmd.Flags().BoolVar(&addPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")

	walletUnlockCmd.ValidArgsFunction = completeWalletNames

	walletAddKeyCmd.Flags().UintSliceVar(&addKeyCoinTypes, "coin-type",
		[]uint{uint(wallet.CoinTypeTerra)}, "coin type to import a key for (repeatable)")
}

func runWalletList(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	summaries, err := cc.Wallets.List()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 && !cc.Fmt.IsJSON() {
		outln(w, "No wallets found.")
		outln(w, "Import one with: stationkey wallet add <name>")
		return nil
	}
	return cc.Fmt.EmitWith(w, summaries, walletTable(summaries))
}

func walletTable(summaries []walletservice.Summary) *output.Table {
	tbl := output.NewTable("NAME", "KIND", "LOCKED", "COIN TYPES")
	for _, s := range summaries {
		cts := make([]string, len(s.CoinTypes))
		for i, ct := range s.CoinTypes {
			cts[i] = ct.String()
		}
		kind := string(s.Kind)
		if s.Legacy {
			kind += " (legacy)"
		}
		tbl.AddRow(s.Name, kind, yesNo(s.Locked), strings.Join(cts, ","))
	}
	return tbl
}

func runWalletAdd(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	mnemonic, err := promptSecretFn("Enter mnemonic phrase: ")
	if err != nil {
		return err
	}
	defer stationcrypto.ZeroBytes(mnemonic)

	var passphrase []byte
	if addPassphrase {
		passphrase, err = promptPasswordFn("Enter BIP39 passphrase: ")
		if err != nil {
			return err
		}
		defer stationcrypto.ZeroBytes(passphrase)
	}

	password, err := promptNewPasswordFn("Choose a wallet password: ")
	if err != nil {
		return err
	}
	defer stationcrypto.ZeroBytes(password)

	desc, err := cc.Wallets.AddSeed(&walletservice.AddSeedRequest{
		Name:       args[0],
		Mnemonic:   string(mnemonic),
		Passphrase: string(passphrase),
		Password:   string(password),
		Legacy:     addLegacy,
		Index:      addIndex,
	})
	if err != nil {
		return err
	}
	return printDescriptor(cmd, desc, "Wallet imported")
}

func runWalletAddKey(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	if len(addKeyCoinTypes) == 0 {
		return stationerr.WithSuggestion(stationerr.ErrInvalidInput, "pass at least one --coin-type")
	}

	keys := make(map[wallet.CoinType]string, len(addKeyCoinTypes))
	for _, raw := range addKeyCoinTypes {
		ct := wallet.CoinType(raw) //nolint:gosec // G115: coin types are small BIP44 constants
		secret, err := promptSecretFn(fmt.Sprintf("Private key for coin type %s (hex): ", ct))
		if err != nil {
			return err
		}
		keys[ct] = string(secret)
		stationcrypto.ZeroBytes(secret)
	}

	password, err := promptNewPasswordFn("Choose a wallet password: ")
	if err != nil {
		return err
	}
	defer stationcrypto.ZeroBytes(password)

	desc, err := cc.Wallets.AddKeys(&walletservice.AddKeyRequest{
		Name:     args[0],
		Keys:     keys,
		Password: string(password),
	})
	if err != nil {
		return err
	}
	return printDescriptor(cmd, desc, "Wallet imported")
}

func runWalletUnlock(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	password, err := promptPasswordFn("Enter wallet password: ")
	if err != nil {
		return err
	}
	defer stationcrypto.ZeroBytes(password)

	if err := cc.Wallets.Unlock(args[0], string(password)); err != nil {
		return err
	}
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wallet %q unlocked", args[0]), cc.Fmt.Format())
}

// descriptorFields describes desc with one address per stored coin type,
// highest coin type first.
func descriptorFields(registry *chain.StaticRegistry, desc *wallet.Descriptor) output.Fields {
	fields := output.Fields{
		{Key: "name", Label: "Wallet", Value: desc.Name},
		{Key: "kind", Label: "Kind", Value: string(desc.Kind)},
	}
	if desc.Legacy {
		fields = append(fields, output.Field{Key: "legacy", Label: "Legacy", Value: "yes"})
	}
	if desc.IsHardware() {
		fields = append(fields,
			output.Field{Key: "transport", Label: "Transport", Value: string(desc.Transport)},
			output.Field{Key: "device_index", Label: "Device Index", Value: fmt.Sprint(desc.DeviceIndex)},
		)
	}

	cts := make([]wallet.CoinType, 0, len(desc.AddressWords))
	for ct := range desc.AddressWords {
		cts = append(cts, ct)
	}
	sort.Slice(cts, func(i, j int) bool { return cts[i] > cts[j] })

	for _, ct := range cts {
		addr, err := address.WordsToAddress(desc.AddressWords[ct], prefixFor(registry, ct))
		if err != nil {
			continue
		}
		fields = append(fields, output.Field{
			Key:   "address_" + ct.String(),
			Label: "Address (" + ct.String() + ")",
			Value: addr,
		})
	}
	return fields
}

func printDescriptor(cmd *cobra.Command, desc *wallet.Descriptor, heading string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()
	fields := descriptorFields(cc.Registry, desc)
	if heading != "" && !cc.Fmt.IsJSON() {
		outln(w, heading)
	}
	return cc.Fmt.Emit(w, fields)
}

// prefixFor returns the bech32 prefix of the first registered chain using ct.
func prefixFor(registry *chain.StaticRegistry, ct wallet.CoinType) string {
	if registry != nil {
		for _, info := range registry.List() {
			if info.CoinType == ct {
				return info.Prefix
			}
		}
	}
	return address.DefaultPrefix
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
