package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Provision returns the command creating the cloud infrastructure.
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
//	PGHA_S3_ACCESS_KEY, PGHA_S3_SECRET_KEY: secret store credentials (required)
func Provision() *cobra.Command {
	var configPath, handoffPath, sshKeyPath, runID string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the cloud infrastructure for a new run",
		Long: `Create servers, network, firewall, placement group, volumes and the
secret store entries for a fresh run.

Every resource name carries a run ID, so provisioning never collides
with the leftovers of earlier runs. A fresh run generates a new ID;
when the handoff file already exists (or --run-id names an earlier
run), that run is resumed and existing resources are picked up instead
of duplicated. The resulting handoff file is the input for configure,
validate and failover.

Examples:
  pgha provision
  pgha provision -c production.yaml --handoff prod-handoff.env
  pgha provision --run-id ab12cd34`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath, handoffPath, sshKeyPath, runID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", handlers.DefaultConfigPath, "Path to configuration file")
	cmd.Flags().StringVar(&handoffPath, "handoff", handlers.DefaultHandoffPath, "Path for the handoff record")
	cmd.Flags().StringVar(&sshKeyPath, "ssh-key", handlers.DefaultSSHKeyPath, "Path for the generated admin SSH key")
	cmd.Flags().StringVar(&runID, "run-id", "", "Resume the run with this ID instead of generating a new one")

	return cmd
}
