package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Init returns the command running the configuration wizard.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", handlers.DefaultConfigPath, "Where to write the configuration")

	return cmd
}
