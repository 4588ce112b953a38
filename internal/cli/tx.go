package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/address"
	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/output"
	"github.com/mrz1836/stationkey/internal/stationcrypto"
	"github.com/mrz1836/stationkey/internal/tx"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	txChain   string
	txTo      string
	txAmount  string
	txMemo    string
	txGas     uint64
	txMode    string
	txConfirm bool
	txFile    string
)

// txCmd is the parent command for transaction operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign and broadcast transactions",
	Long: `Build, sign and broadcast transactions with the connected wallet.

Account number and sequence are fetched from the chain's LCD. Transactions
are broadcast in sync mode and are never retried.`,
}

// txSendCmd sends coins.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send coins to an address",
	Long: `Send the chain's native coin from the connected wallet to an address.

The amount is given in whole coins, e.g. 1.5 for 1.5 LUNA. Without --gas the
fee is estimated from the chain's default gas limit and gas price. Hardware
wallets sign in amino JSON mode.`,
	Example: `  stationkey tx send --to terra1... --amount 1.5
  stationkey tx send --chain cosmoshub-4 --to cosmos1... --amount 0.25 --memo "rent"
  stationkey tx send --to terra1... --amount 10 --gas 150000 --yes`,
	Args: cobra.NoArgs,
	RunE: runTxSend,
}

// txPostCmd posts prepared transaction options.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Sign and broadcast transaction options from a file",
	Long: `Sign and broadcast a transaction described by a JSON options file.

The file holds chain_id, msgs, and optionally memo, fee and timeout_height.
Each message carries both its protobuf (type_url, value) and amino
(amino_type, amino_value) forms.`,
	Example: `  stationkey tx post --file send.json
  stationkey tx post --file vote.json --mode amino --yes`,
	Args: cobra.NoArgs,
	RunE: runTxPost,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	txCmd.GroupID = "signing"
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txSendCmd, txPostCmd)

	txSendCmd.Flags().StringVar(&txChain, "chain", chain.Terra, "chain ID")
	_ = txSendCmd.RegisterFlagCompletionFunc("chain", completeChainIDs)
	txSendCmd.Flags().StringVar(&txTo, "to", "", "recipient address (required)")
	txSendCmd.Flags().StringVar(&txAmount, "amount", "", "amount to send in whole coins (required)")
	txSendCmd.Flags().StringVar(&txMemo, "memo", "", "transaction memo")
	txSendCmd.Flags().Uint64Var(&txGas, "gas", 0, "gas limit (default: chain default)")
	_ = txSendCmd.MarkFlagRequired("to")
	_ = txSendCmd.MarkFlagRequired("amount")

	txPostCmd.Flags().StringVar(&txFile, "file", "", "JSON transaction options file (required)")
	_ = txPostCmd.MarkFlagRequired("file")

	for _, c := range []*cobra.Command{txSendCmd, txPostCmd} {
		c.Flags().StringVar(&txMode, "mode", "direct", "sign mode: direct, amino")
		c.Flags().BoolVar(&txConfirm, "yes", false, "skip confirmation prompt")
		_ = c.RegisterFlagCompletionFunc("mode", completeSignModes)
	}
}

func runTxSend(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	opts, err := buildSendOptions(cc)
	if err != nil {
		return err
	}
	return postTransaction(cmd, opts)
}

// buildSendOptions turns the send flags into transaction options.
func buildSendOptions(cc *CommandContext) (*tx.Options, error) {
	info, err := cc.Registry.Lookup(txChain)
	if err != nil {
		return nil, err
	}

	from, err := cc.Broadcast.AddressFor(txChain)
	if err != nil {
		return nil, err
	}
	if err = address.Validate(txTo, info.Prefix); err != nil {
		return nil, err
	}

	amount, err := chain.ParseDecimalAmount(txAmount, info.Decimals)
	if err != nil {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
			"amount": txAmount,
			"reason": err.Error(),
		})
	}
	if amount.Sign() <= 0 {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
			"amount": txAmount,
			"reason": "must be positive",
		})
	}

	msg, err := tx.NewMsgSend(from, txTo, []tx.Coin{{Denom: info.Denom, Amount: amount.String()}})
	if err != nil {
		return nil, err
	}

	opts := &tx.Options{
		ChainID: txChain,
		Msgs:    []tx.Msg{msg},
		Memo:    txMemo,
	}
	if txGas > 0 {
		fee, err := chain.FeeAmount(info.GasPrice, txGas)
		if err != nil {
			return nil, err
		}
		opts.Fee = &tx.Fee{
			Amount:   []tx.Coin{{Denom: info.Denom, Amount: fee.String()}},
			GasLimit: txGas,
		}
	}
	return opts, nil
}

func runTxPost(cmd *cobra.Command, _ []string) error {
	opts, err := readTxOptions(txFile)
	if err != nil {
		return err
	}
	return postTransaction(cmd, opts)
}

func readTxOptions(path string) (*tx.Options, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
			"file":   path,
			"reason": err.Error(),
		})
	}

	var opts tx.Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidTransaction, map[string]string{
			"file":   path,
			"reason": err.Error(),
		})
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// postTransaction confirms, signs and broadcasts opts with the connected wallet.
func postTransaction(cmd *cobra.Command, opts *tx.Options) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	mode, err := tx.ParseSignMode(txMode)
	if err != nil {
		return err
	}

	desc, err := cc.Session.GetConnected()
	if err != nil {
		return err
	}

	if !txConfirm {
		displayTxDetails(cmd, opts, mode)
		if !promptConfirmFn("Sign and broadcast this transaction?") {
			outln(w, "Transaction canceled.")
			return nil
		}
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

	result, err := cc.Broadcast.PostTransaction(ctx, opts, string(password), mode)
	if err != nil {
		return err
	}

	fields := output.Fields{
		{Key: "chain_id", Label: "Chain", Value: opts.ChainID},
		{Key: "txhash", Label: "Tx Hash", Value: result.TxHash},
		{Key: "height", Label: "Height", Value: fmt.Sprint(result.Height)},
	}
	if !cc.Fmt.IsJSON() {
		output.Success(w, "Transaction broadcast")
	}
	return cc.Fmt.Emit(w, fields)
}

func displayTxDetails(cmd *cobra.Command, opts *tx.Options, mode tx.SignMode) {
	w := cmd.ErrOrStderr()
	fields := output.Fields{
		{Key: "chain_id", Label: "Chain", Value: opts.ChainID},
		{Key: "messages", Label: "Messages", Value: fmt.Sprint(len(opts.Msgs))},
		{Key: "mode", Label: "Sign Mode", Value: mode.String()},
	}
	for i, m := range opts.Msgs {
		fields = append(fields, output.Field{
			Key:   fmt.Sprintf("msg_%d", i),
			Label: fmt.Sprintf("Msg %d", i+1),
			Value: m.AminoType + " " + string(m.AminoValue),
		})
	}
	if opts.Memo != "" {
		fields = append(fields, output.Field{Key: "memo", Label: "Memo", Value: opts.Memo})
	}
	if opts.Fee != nil {
		fields = append(fields, output.Field{Key: "fee", Label: "Fee", Value: formatCoins(opts.Fee.Amount)})
		fields = append(fields, output.Field{Key: "gas", Label: "Gas Limit", Value: fmt.Sprint(opts.Fee.GasLimit)})
	} else {
		fields = append(fields, output.Field{Key: "fee", Label: "Fee", Value: "estimated"})
	}
	_ = fields.Render(w)
}

func formatCoins(coins []tx.Coin) string {
	s := ""
	for i, c := range coins {
		if i > 0 {
			s += ","
		}
		s += c.Amount + c.Denom
	}
	return s
}
