package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/stationkey/internal/output"
)

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the stationkey version, the commit it was built from, and the Go runtime.`,
	Example: `  stationkey version
  stationkey version -o json`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	versionCmd.GroupID = "config"
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	fields := versionFields(buildInfo)
	if cc == nil {
		return fields.Render(w)
	}
	return cc.Fmt.Emit(w, fields)
}

func versionFields(info BuildInfo) output.Fields {
	info = info.withDefaults()
	return output.Fields{
		{Key: "version", Label: "Version", Value: info.Version},
		{Key: "commit", Label: "Commit", Value: info.Commit},
		{Key: "built", Label: "Built", Value: info.Date},
		{Key: "go", Label: "Go", Value: runtime.Version()},
		{Key: "platform", Label: "Platform", Value: runtime.GOOS + "/" + runtime.GOARCH},
	}
}
