// Package cli provides the root command and CLI setup for codepick.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kyaoi/codepick/internal/app"
	"github.com/kyaoi/codepick/internal/ui"
)

const rootLongDescription = `codepick lists the files of a source code project through the
file-listing service and lets you choose which of them to use.

Code files are selected by default. Dependency and build folders such as
node_modules, .git and dist are left out of the tree entirely.

On exit the chosen project and files are printed as YAML or JSON.`

// runProgram runs the interactive program; tests replace it.
var runProgram = app.Run

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func init() {
	configureRootFlags(rootCmd)
	rootCmd.AddCommand(newPreviewCmd())
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "codepick [source-path]",
		Short:        "Pick project files to work with",
		Long:         rootLongDescription,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runRoot,
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(viper.GetString(outputFormatKey))
	if err != nil {
		return err
	}

	logger := configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
	loader, err := app.NewLoader(loaderConfig(logger))
	if err != nil {
		return err
	}

	var initialPath string
	if len(args) > 0 {
		initialPath = strings.TrimSpace(args[0])
	}

	outcome, err := runProgram(ui.State{
		Loader:         loader,
		InitialPath:    initialPath,
		RequestTimeout: viper.GetDuration(serverTimeoutKey),
		ConfigPath:     configPath(),
		ReloadPolicy:   reloadPolicy,
	})
	if err != nil {
		return err
	}
	logger.Info("program finished", "outcome", string(outcome.Kind), "files", len(outcome.Files))
	return writeOutcome(cmd.OutOrStdout(), format, outcome)
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP(serverFlagName, "s", viper.GetString(serverURLKey), "base URL of the file-listing service")
	bindFlagToConfig(flags.Lookup(serverFlagName), serverURLKey)

	flags.Duration(timeoutFlagName, viper.GetDuration(serverTimeoutKey), "timeout for each listing request")
	bindFlagToConfig(flags.Lookup(timeoutFlagName), serverTimeoutKey)

	flags.StringP(formatFlagName, "f", viper.GetString(outputFormatKey), "output format for the result (yaml or json)")
	bindFlagToConfig(flags.Lookup(formatFlagName), outputFormatKey)

	flags.BoolP(verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.String(logFileFlagName, viper.GetString(logFilenameKey), "path of the rotating log file")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.StringSlice(hardExcludeFlagName, viper.GetStringSlice(hardExcludeKey), "folder names removed from the tree")
	bindFlagToConfig(flags.Lookup(hardExcludeFlagName), hardExcludeKey)

	flags.StringSlice(softExcludeFlagName, viper.GetStringSlice(softExcludeKey), "folder names shown unchecked")
	bindFlagToConfig(flags.Lookup(softExcludeFlagName), softExcludeKey)

	flags.StringSlice(codeExtFlagName, viper.GetStringSlice(codeExtensionsKey), "file extensions selected by default")
	bindFlagToConfig(flags.Lookup(codeExtFlagName), codeExtensionsKey)

	flags.Int(cacheSizeFlagName, viper.GetInt(cacheSizeKey), "number of listings kept in memory (0 disables caching)")
	bindFlagToConfig(flags.Lookup(cacheSizeFlagName), cacheSizeKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
