package infrastructure

import (
	"fmt"

	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

// ProvisionNetwork ensures the private network and the cluster subnet.
// The parent range itself is never added as a subnet; only the leaf
// subnet holding the nodes and the listener frontend is.
func (p *Provisioner) ProvisionNetwork(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	name := naming.Network(prefix)

	provisioning.LogResourceCreating(ctx.Observer, phase, "network", name)

	networkLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).Build()
	network, err := ctx.Infra.EnsureNetwork(ctx, name, ctx.Config.Network.IPv4CIDR, networkLabels)
	if err != nil {
		return fmt.Errorf("failed to ensure network: %w", err)
	}
	ctx.State.Network = network
	provisioning.LogResourceCreated(ctx.Observer, phase, "network", name, fmt.Sprintf("%d", network.ID))

	if err := ctx.Infra.EnsureSubnet(ctx, network, ctx.Config.Network.SubnetCIDR, ctx.Config.Network.Zone); err != nil {
		return fmt.Errorf("failed to ensure subnet: %w", err)
	}
	return nil
}
