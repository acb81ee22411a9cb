package commands

import (
	"github.com/spf13/cobra"

	"github.com/larsan/pgha/cmd/pgha/handlers"
)

// Failover returns the command swapping primary and standby.
func Failover() *cobra.Command {
	var configPath, handoffPath string
	var forced, acceptDataLoss bool

	cmd := &cobra.Command{
		Use:   "failover",
		Short: "Swap the primary and standby roles",
		Long: `Perform a role swap.

The default planned failover is lossless: it refuses to run unless the
standby is attached synchronously, demotes the old primary cleanly and
rejoins it as the new standby.

--forced promotes the surviving standby when the primary is gone.
Transactions the standby never received are lost, so --forced requires
--accept-data-loss.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Failover(cmd.Context(), configPath, handoffPath, forced, acceptDataLoss)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", handlers.DefaultConfigPath, "Path to configuration file")
	cmd.Flags().StringVar(&handoffPath, "handoff", handlers.DefaultHandoffPath, "Path to the handoff record")
	cmd.Flags().BoolVar(&forced, "forced", false, "Promote the surviving standby without the old primary")
	cmd.Flags().BoolVar(&acceptDataLoss, "accept-data-loss", false, "Confirm that forced failover may lose transactions")

	return cmd
}
