package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/config"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/storage"
)

// Config command flags.
var configInitFlagForce bool

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Show the effective configuration",
	Long: `Show the configuration keyline runs with: defaults, then the config file,
then KEYLINE_* environment variables.

Examples:
  keyline config
  keyline config path
  keyline config init`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configPathCmd prints the config file location.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

// configInitCmd writes a config file with the default values.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitFlagForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultConfigPath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(ctx.Config)
	}
	data, err := ctx.Config.Marshal()
	if err != nil {
		return err
	}
	ctx.CLIFormatter().Muted("# " + configPath())
	ctx.Formatter.Print(string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := configPath()
	if ctx.IsJSON() {
		_, err := os.Stat(path)
		return ctx.Formatter.JSON(map[string]any{"path": path, "exists": err == nil})
	}
	ctx.Formatter.Println(path)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil && !configInitFlagForce {
		return errors.NewUserErrorWithField("config", path,
			"Config file already exists",
			"Use --force to overwrite it")
	}

	data, err := config.DefaultRuntimeConfig().Marshal()
	if err != nil {
		return err
	}
	if err := storage.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	if err := storage.SafeWrite(path, data, 0o600); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintResult("config init", 0, "Wrote "+path)
	}
	ctx.CLIFormatter().Success("Wrote " + path)
	return nil
}
