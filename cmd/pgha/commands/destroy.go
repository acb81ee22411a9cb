package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Destroy returns the command tearing down a run.
func Destroy() *cobra.Command {
	var configPath, handoffPath, runID string
	var purgeSecrets bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete all cloud resources of a run",
		Long: `Delete every resource a run created, in dependency order. Deletes are
idempotent; rerun after a partial failure to remove the leftovers.

The run is identified by the handoff record, or by --run-id when the
record is lost. Secrets survive unless --purge-secrets is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, handoffPath, runID, purgeSecrets)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", handlers.DefaultConfigPath, "Path to configuration file")
	cmd.Flags().StringVar(&handoffPath, "handoff", handlers.DefaultHandoffPath, "Path to the handoff record")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run to destroy when no handoff record exists")
	cmd.Flags().BoolVar(&purgeSecrets, "purge-secrets", false, "Also delete this run's secrets from the store")

	return cmd
}
