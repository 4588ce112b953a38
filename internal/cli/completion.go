package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for stationkey.

Besides commands and flags, the scripts complete stored wallet names for
'connect' and 'wallet unlock' and configured chain IDs for --chain.

Load the script in the current shell, or write it where your shell picks up
completions on start:

  source <(stationkey completion bash)
  stationkey completion zsh > "${fpath[1]}/_stationkey"
  stationkey completion fish > ~/.config/fish/completions/stationkey.fish
  stationkey completion powershell | Out-String | Invoke-Expression`,
	Example: `  stationkey completion bash
  stationkey completion zsh > "${fpath[1]}/_stationkey"`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	completionCmd.GroupID = "config"
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return cmd.Root().GenBashCompletionV2(w, true)
	case "zsh":
		return cmd.Root().GenZshCompletion(w)
	case "fish":
		return cmd.Root().GenFishCompletion(w, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(w)
	}
	return nil
}

// completeWalletNames offers stored wallet names for the first argument.
func completeWalletNames(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	cc := GetCmdContext(cmd)
	if len(args) > 0 || cc == nil || cc.Wallets == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	summaries, err := cc.Wallets.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []cobra.Completion
	for _, s := range summaries {
		if !strings.HasPrefix(s.Name, toComplete) {
			continue
		}
		desc := string(s.Kind)
		if s.Locked {
			desc += ", locked"
		}
		out = append(out, cobra.CompletionWithDesc(s.Name, desc))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeChainIDs offers the chain IDs of the registry.
func completeChainIDs(cmd *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	cc := GetCmdContext(cmd)
	if cc == nil || cc.Registry == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []cobra.Completion
	for _, info := range cc.Registry.List() {
		if strings.HasPrefix(info.ChainID, toComplete) {
			out = append(out, cobra.CompletionWithDesc(info.ChainID, info.Name))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeSignModes(_ *cobra.Command, _ []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	return []cobra.Completion{
		cobra.CompletionWithDesc("direct", "protobuf SignDoc"),
		cobra.CompletionWithDesc("amino", "legacy amino JSON"),
	}, cobra.ShellCompDirectiveNoFileComp
}
