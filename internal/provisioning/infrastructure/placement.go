package infrastructure

import (
	"fmt"

	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

// ProvisionPlacementGroup ensures the spread placement group keeping
// the two nodes on separate physical hosts.
func (p *Provisioner) ProvisionPlacementGroup(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	name := naming.PlacementGroup(prefix)

	provisioning.LogResourceCreating(ctx.Observer, phase, "placement group", name)

	groupLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).Build()
	group, err := ctx.Infra.EnsurePlacementGroup(ctx, name, "spread", groupLabels)
	if err != nil {
		return fmt.Errorf("failed to ensure placement group: %w", err)
	}
	ctx.State.PlacementGroup = group
	provisioning.LogResourceCreated(ctx.Observer, phase, "placement group", name, fmt.Sprintf("%d", group.ID))
	return nil
}
