package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/output"
)

// chainsCmd lists the configured chains.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List configured chains",
	Long: `List every chain stationkey can sign for, with its coin type, address
prefix, fee denomination and LCD endpoint.

Built-in chains can be overridden and new ones added in the chains section
of the configuration file.`,
	Example: `  stationkey chains
  stationkey chains -o json`,
	Args: cobra.NoArgs,
	RunE: runChains,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	chainsCmd.GroupID = "config"
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	chains := cc.Registry.List()
	return cc.Fmt.EmitWith(w, chains, chainTable(chains))
}

func chainTable(chains []chain.Info) *output.Table {
	tbl := output.NewTable("CHAIN ID", "NAME", "COIN TYPE", "PREFIX", "DENOM", "LCD").AlignColumn(2, output.AlignRight)
	for _, info := range chains {
		tbl.AddRow(info.ChainID, info.Name, info.CoinType.String(), info.Prefix, info.Denom, info.LCD)
	}
	return tbl
}
