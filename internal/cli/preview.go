package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kyaoi/codepick/internal/app"
)

func newPreviewCmd() *cobra.Command {
	var selectedOnly bool

	cmd := &cobra.Command{
		Use:   "preview <source-path>",
		Short: "Print the file tree of a project without starting the UI",
		Long: `Fetch the listing of a source path once and print it as a checkbox tree
with the default selection applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			loader, err := app.NewLoader(loaderConfig(logger))
			if err != nil {
				return err
			}
			return app.Preview(cmd.Context(), cmd.OutOrStdout(), loader, args[0], selectedOnly)
		},
	}
	cmd.Flags().BoolVar(&selectedOnly, selectedFlagName, false, "print only the paths selected by default")
	return cmd
}
