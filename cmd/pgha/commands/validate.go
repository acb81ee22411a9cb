package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Validate returns the command running the health checks.
func Validate() *cobra.Command {
	var configPath, handoffPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configured cluster from the outside",
		Long: `Run the post-configuration health checks: spread placement, probe
agents, load balancer wiring, synchronous replication and the client
path through the listener.

A check whose prerequisite is missing reports SKIP and does not fail
the run; --strict treats SKIP as failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.Context(), configPath, handoffPath, strict)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", handlers.DefaultConfigPath, "Path to configuration file")
	cmd.Flags().StringVar(&handoffPath, "handoff", handlers.DefaultHandoffPath, "Path to the handoff record")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat skipped checks as failures")

	return cmd
}
