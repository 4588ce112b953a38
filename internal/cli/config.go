package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/stationkey/internal/config"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify stationkey configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.stationkey/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  stationkey config init
  stationkey config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration, after environment variables and
flags have been applied.`,
	Example: `  stationkey config show
  stationkey config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation and the key names of the configuration file.`,
	Example: `  stationkey config get chains.phoenix-1.lcd
  stationkey config get network.timeout_seconds
  stationkey config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation and the key names of the configuration file.
The file is validated and written immediately.`,
	Example: `  stationkey config set chains.phoenix-1.lcd https://lcd.example.com
  stationkey config set hardware.default_transport bluetooth
  stationkey config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configPathCmd prints the configuration file path.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configPathCmd = &cobra.Command{
	Use:     "path",
	Short:   "Show the configuration file path",
	Long:    `Print the path of the configuration file stationkey reads.`,
	Example: `  stationkey config path`,
	Args:    cobra.NoArgs,
	RunE:    runConfigPath,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	configCmd.GroupID = "config"
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configGetCmd, configSetCmd, configPathCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	configPath := config.Path(cc.Cfg.GetHome())

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return stationerr.WithSuggestion(
			stationerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cc.Cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - chains.<chain-id>.lcd: LCD endpoint for each chain")
	outln(w, "  - hardware.default_transport: usb or bluetooth")
	outln(w, "  - network.timeout_seconds: LCD request timeout")
	outln(w, "  - output.default_format: Output format (text/json/auto)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	w := cmd.OutOrStdout()

	if cc.Fmt.IsJSON() {
		root, err := configNode(cc.Cfg)
		if err != nil {
			return err
		}
		var generic map[string]any
		if err := root.Decode(&generic); err != nil {
			return fmt.Errorf("converting config: %w", err)
		}
		return cc.Fmt.Emit(w, generic)
	}

	data, err := yaml.Marshal(cc.Cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	out(w, "%s", data)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)

	root, err := configNode(cc.Cfg)
	if err != nil {
		return err
	}
	node, err := lookupConfigPath(root, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if node.Kind == yaml.ScalarNode {
		outln(w, node.Value)
		return nil
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("encoding config value: %w", err)
	}
	out(w, "%s", data)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	path, value := args[0], args[1]
	configPath := config.Path(cc.Cfg.GetHome())

	current, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		current = config.Defaults()
		current.Home = cc.Cfg.Home
	}

	root, err := configNode(current)
	if err != nil {
		return err
	}
	node, err := lookupConfigPath(root, path)
	if err != nil {
		return err
	}
	if node.Kind != yaml.ScalarNode {
		return stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
			"path":   path,
			"reason": "not a single value",
		})
	}
	node.Value = value
	node.Tag = ""
	node.Style = 0

	var updated config.Config
	if err := root.Decode(&updated); err != nil {
		return stationerr.WithDetails(stationerr.ErrInvalidInput, map[string]string{
			"path":   path,
			"value":  value,
			"reason": err.Error(),
		})
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := config.Save(&updated, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	outln(cmd.OutOrStdout(), config.Path(cc.Cfg.GetHome()))
	return nil
}

// configNode returns c as a YAML mapping node keyed by file key names.
func configNode(c *config.Config) (*yaml.Node, error) {
	var doc yaml.Node
	if err := doc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return &doc, nil
}

// lookupConfigPath walks a dot-separated path through mapping nodes.
func lookupConfigPath(root *yaml.Node, path string) (*yaml.Node, error) {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	for _, key := range strings.Split(path, ".") {
		if node.Kind != yaml.MappingNode {
			return nil, unknownConfigPath(path)
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, unknownConfigPath(path)
		}
		node = next
	}
	return node, nil
}

func unknownConfigPath(path string) error {
	return stationerr.WithSuggestion(
		stationerr.WithDetails(stationerr.ErrNotFound, map[string]string{"path": path}),
		fmt.Sprintf("configuration path '%s' not found; see 'stationkey config show'", path),
	)
}
