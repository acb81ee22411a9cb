// Package commands defines the CLI command structure and flag bindings.
//
// Commands only parse arguments and flags; execution is delegated to
// the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Root returns the root command for the pgha CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pgha",
		Short: "Provision a two-node PostgreSQL HA cluster on Hetzner Cloud",
		Long: `pgha provisions, configures and validates a two-node synchronously
replicated PostgreSQL cluster on Hetzner Cloud: spread-placed servers
on a private network, a load balancer that routes clients to whichever
node currently answers as primary, and generated credentials in an
S3-compatible secret store.

The lifecycle is three stages connected by a handoff file:

  pgha provision   create the cloud infrastructure
  pgha configure   bootstrap replication and bind the listener
  pgha validate    check the result from the outside`,
	}

	cmd.PersistentFlags().StringVar(&handlers.MetricsAddr, "metrics-addr", "",
		"Expose Prometheus metrics on this address while the command runs")

	cmd.AddCommand(Init())
	cmd.AddCommand(Provision())
	cmd.AddCommand(Configure())
	cmd.AddCommand(Validate())
	cmd.AddCommand(Failover())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Version())

	return cmd
}
