package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Configure returns the command bootstrapping replication.
func Configure() *cobra.Command {
	var configPath, handoffPath string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Bootstrap replication and bind the listener",
		Long: `Configure the provisioned servers as a synchronously replicated pair
and wire the load balancer so clients always reach the primary.

Requires the handoff file written by provision.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Configure(cmd.Context(), configPath, handoffPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", handlers.DefaultConfigPath, "Path to configuration file")
	cmd.Flags().StringVar(&handoffPath, "handoff", handlers.DefaultHandoffPath, "Path to the handoff record")

	return cmd
}
