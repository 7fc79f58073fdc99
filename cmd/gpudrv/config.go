package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/gpudrv/internal/userconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gpudrv configuration",
	Long: `Manage gpudrv configuration settings.

Configuration is stored in /etc/gpudrv/config.toml, or in the file named
by GPUDRV_CONFIG.

Available settings:
  confirm_actions  Ask for confirmation before install and uninstall (true/false)
  log_file         Log file path
  log_max_size_mb  Rotate the log file after this many megabytes
  log_max_backups  Number of rotated log files to keep

Examples:
  gpudrv config get confirm_actions
  gpudrv config set log_max_size_mb 10
  gpudrv config list`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWithCode(runConfigGet(args[0], cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Writing the system-wide file needs root.

Examples:
  gpudrv config set confirm_actions false
  gpudrv config set log_file /var/log/gpudrv.log`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		exitWithCode(runConfigSet(args[0], args[1], cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitWithCode(runConfigList(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

func runConfigGet(key string, out, errOut io.Writer) int {
	cfg, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return ExitGeneral
	}

	value, ok := cfg.Get(key)
	if !ok {
		fmt.Fprintf(errOut, "Unknown config key: %s\n", key)
		fmt.Fprintf(errOut, "\nAvailable keys:\n")
		printAvailableKeys(errOut)
		return ExitUsage
	}

	fmt.Fprintln(out, value)
	return ExitSuccess
}

func runConfigSet(key, value string, out, errOut io.Writer) int {
	cfg, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return ExitGeneral
	}

	if err := cfg.Set(key, value); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		fmt.Fprintf(errOut, "\nAvailable keys:\n")
		printAvailableKeys(errOut)
		return ExitUsage
	}

	if err := cfg.Save(); err != nil {
		fmt.Fprintf(errOut, "Error saving config: %v\n", err)
		if errors.Is(err, fs.ErrPermission) {
			fmt.Fprintln(errOut, "Run it again with sudo.")
		}
		return ExitGeneral
	}

	fmt.Fprintf(out, "%s = %s\n", key, value)
	return ExitSuccess
}

func runConfigList(out, errOut io.Writer) int {
	cfg, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(errOut, "Error loading config: %v\n", err)
		return ExitGeneral
	}

	for _, k := range sortedKeys() {
		value, _ := cfg.Get(k)
		fmt.Fprintf(out, "%s = %s\n", k, value)
	}
	return ExitSuccess
}

func printAvailableKeys(w io.Writer) {
	keys := userconfig.AvailableKeys()
	for _, k := range sortedKeys() {
		fmt.Fprintf(w, "  %s - %s\n", k, keys[k])
	}
}

// sortedKeys returns the config keys in a stable order.
func sortedKeys() []string {
	var keys []string
	for k := range userconfig.AvailableKeys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}
