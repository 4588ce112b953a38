package cli

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/output"
	"github.com/mrz1836/stationkey/internal/signer"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// signChainID selects the chain for address, pubkey and sign-bytes.
	signChainID string
	// addressQR draws the address as a terminal QR code.
	addressQR bool
	// addressQRPNG writes the address QR code to a PNG file.
	addressQRPNG string
	// signData is a UTF-8 payload to sign.
	signData string
	// signDataHex is a hex payload to sign.
	signDataHex string
	// exportVerify decrypts the export once to show what it holds.
	exportVerify bool
)

// addressCmd prints the connected wallet's address.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the connected wallet's address on a chain",
	Long: `Show the address of the connected wallet on a chain.

The address is computed from stored address data with the chain's bech32
prefix, so no password is needed. Use --qr to draw it as a QR code in the
terminal or --qr-png to write a PNG image.`,
	Example: `  stationkey address
  stationkey address --chain cosmoshub-4
  stationkey address --qr
  stationkey address --qr-png terra.png`,
	Args: cobra.NoArgs,
	RunE: runAddress,
}

// pubkeyCmd prints the connected wallet's public key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Show the connected wallet's public key on a chain",
	Long: `Show the compressed secp256k1 public key the connected wallet signs with
on a chain.

Software wallets ask for the wallet password to derive it. Hardware wallets
answer from the key given at connect time.`,
	Example: `  stationkey pubkey
  stationkey pubkey --chain cosmoshub-4 -o json`,
	Args: cobra.NoArgs,
	RunE: runPubkey,
}

// signBytesCmd signs an arbitrary payload.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signBytesCmd = &cobra.Command{
	Use:   "sign-bytes",
	Short: "Sign an arbitrary payload",
	Long: `Sign the SHA-256 hash of a payload with the connected wallet's key for a
chain and print the 64-byte signature, its recovery id and the public key.

Hardware wallets cannot sign arbitrary bytes.`,
	Example: `  stationkey sign-bytes --data "hello"
  stationkey sign-bytes --chain cosmoshub-4 --data-hex 68656c6c6f`,
	Args: cobra.NoArgs,
	RunE: runSignBytes,
}

// exportCmd exports the connected wallet's key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the connected wallet's key encrypted",
	Long: `Export the connected wallet's Terra private key as a portable blob
encrypted under a new export password.

The wallet password is asked first, then the export password twice. The
blob never contains the key in clear. Hardware wallets cannot be exported.`,
	Example: `  stationkey export
  stationkey export --verify`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	for _, c := range []*cobra.Command{addressCmd, pubkeyCmd, signBytesCmd} {
		c.GroupID = "signing"
		c.Flags().StringVar(&signChainID, "chain", chain.Terra, "chain ID")
		_ = c.RegisterFlagCompletionFunc("chain", completeChainIDs)
		rootCmd.AddCommand(c)
	}
	exportCmd.GroupID = "security"
	rootCmd.AddCommand(exportCmd)

	addressCmd.Flags().BoolVar(&addressQR, "qr", false, "draw the address as a QR code")
	addressCmd.Flags().StringVar(&addressQRPNG, "qr-png", "", "write the address QR code to this PNG file")

	signBytesCmd.Flags().StringVar(&signData, "data", "", "payload to sign as text")
	signBytesCmd.Flags().StringVar(&signDataHex, "data-hex", "", "payload to sign as hex")
	signBytesCmd.MarkFlagsMutuallyExclusive("data", "data-hex")
	signBytesCmd.MarkFlagsOneRequired("data", "data-hex")

	exportCmd.Flags().BoolVar(&exportVerify, "verify", false, "decrypt the export once and show its address")
}

func runAddress(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	addr, err := cc.Broadcast.AddressFor(signChainID)
	if err != nil {
		return err
	}

	if addressQRPNG != "" {
		if err := writeQRFile(addressQRPNG, addr); err != nil {
			return err
		}
	}

	if cc.Fmt.IsJSON() {
		return cc.Fmt.Emit(w, output.Fields{
			{Key: "chain_id", Value: signChainID},
			{Key: "address", Value: addr},
		})
	}

	outln(w, addr)
	if addressQR {
		err := output.RenderQR(w, addr, output.AddressQROptions())
		if errors.Is(err, output.ErrNotTerminal) {
			output.Warn(cmd.ErrOrStderr(), "QR codes are only drawn on a terminal")
		} else if err != nil {
			return err
		}
	}
	if addressQRPNG != "" {
		output.Successf(cmd.ErrOrStderr(), "QR code written to %s", addressQRPNG)
	}
	return nil
}

func writeQRFile(path, data string) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating qr file: %w", err)
	}
	if err := output.WriteQRPNG(f, data, output.AddressQROptions()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func runPubkey(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	desc, err := cc.Session.GetConnected()
	if err != nil {
		return err
	}

	var password []byte
	if !desc.IsHardware() {
		if password, err = promptPasswordFn("Enter wallet password: "); err != nil {
			return err
		}
		defer stationcrypto.ZeroBytes(password)
	}

	ctx, cancel := signingContext(cmd, cc.Cfg, desc)
	defer cancel()

	pub, err := cc.Broadcast.PublicKey(ctx, signChainID, string(password))
	if err != nil {
		return err
	}

	fields := output.Fields{
		{Key: "chain_id", Label: "Chain", Value: signChainID},
		{Key: "hex", Label: "Hex", Value: hex.EncodeToString(pub)},
		{Key: "base64", Label: "Base64", Value: base64.StdEncoding.EncodeToString(pub)},
	}
	return cc.Fmt.Emit(w, fields)
}

func runSignBytes(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	payload, err := signPayload()
	if err != nil {
		return err
	}

	desc, err := cc.Session.GetConnected()
	if err != nil {
		return err
	}

	var password []byte
	if !desc.IsHardware() {
		if password, err = promptPasswordFn("Enter wallet password: "); err != nil {
			return err
		}
		defer stationcrypto.ZeroBytes(password)
	}

	ctx, cancel := signingContext(cmd, cc.Cfg, desc)
	defer cancel()

	sig, err := cc.Broadcast.SignBytes(ctx, signChainID, payload, string(password))
	if err != nil {
		return err
	}

	fields := output.Fields{
		{Key: "signature", Label: "Signature", Value: base64.StdEncoding.EncodeToString(sig.Signature)},
		{Key: "recovery_id", Label: "Recovery ID", Value: fmt.Sprint(sig.RecoveryID)},
		{Key: "public_key", Label: "Public Key", Value: base64.StdEncoding.EncodeToString(sig.PublicKey)},
	}
	return cc.Fmt.Emit(w, fields)
}

func signPayload() ([]byte, error) {
	if signDataHex != "" {
		b, err := hex.DecodeString(signDataHex)
		if err != nil {
			return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{"flag": "data-hex"})
		}
		return b, nil
	}
	return []byte(signData), nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	desc, err := cc.Session.GetConnected()
	if err != nil {
		return err
	}
	if desc.IsHardware() {
		return stationerr.WithDetails(stationerr.ErrUnsupportedOperation, map[string]string{"wallet": desc.Name})
	}

	password, err := promptPasswordFn("Enter wallet password: ")
	if err != nil {
		return err
	}
	defer stationcrypto.ZeroBytes(password)

	exportPassword, err := promptNewPasswordFn("Choose an export password: ")
	if err != nil {
		return err
	}
	defer stationcrypto.ZeroBytes(exportPassword)

	blob, err := cc.Wallets.Export(cmd.Context(), desc, string(password), string(exportPassword))
	if err != nil {
		return err
	}

	fields := output.Fields{
		{Key: "name", Label: "Wallet", Value: desc.Name},
		{Key: "export", Label: "Export", Value: blob},
	}
	if exportVerify {
		exported, err := signer.DecryptExport(blob, string(exportPassword))
		if err != nil {
			return err
		}
		fields = append(fields, output.Field{Key: "address", Label: "Address", Value: exported.Address})
		exported.PrivateKeyHex = ""
	}

	return cc.Fmt.Emit(w, fields)
}
