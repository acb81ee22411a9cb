package infrastructure

import (
	"fmt"
	"net"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

// ProvisionFirewall ensures the cluster firewall. SSH is open to the
// world for the admin key; the database, replication and probe ports
// never leave the private subnet.
func (p *Provisioner) ProvisionFirewall(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	name := naming.Firewall(prefix)

	provisioning.LogResourceCreating(ctx.Observer, phase, "firewall", name)

	subnetNets := parseCIDRs([]string{ctx.Config.Network.SubnetCIDR})
	anywhere := parseCIDRs([]string{"0.0.0.0/0", "::/0"})

	rules := []hcloud.FirewallRule{
		{
			Description: hcloud.Ptr("SSH administration"),
			Direction:   hcloud.FirewallRuleDirectionIn,
			Protocol:    hcloud.FirewallRuleProtocolTCP,
			Port:        hcloud.Ptr(fmt.Sprintf("%d", config.SSHPort)),
			SourceIPs:   anywhere,
		},
		{
			Description: hcloud.Ptr("PostgreSQL clients and replication, private subnet only"),
			Direction:   hcloud.FirewallRuleDirectionIn,
			Protocol:    hcloud.FirewallRuleProtocolTCP,
			Port:        hcloud.Ptr(fmt.Sprintf("%d", config.PostgresPort)),
			SourceIPs:   subnetNets,
		},
		{
			Description: hcloud.Ptr("Primary health probe, load balancer subnet only"),
			Direction:   hcloud.FirewallRuleDirectionIn,
			Protocol:    hcloud.FirewallRuleProtocolTCP,
			Port:        hcloud.Ptr(fmt.Sprintf("%d", config.ProbePort)),
			SourceIPs:   subnetNets,
		},
	}

	firewallLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).Build()
	applyTo := labels.Selector(ctx.Config.ClusterName, ctx.RunID)

	firewall, err := ctx.Infra.EnsureFirewall(ctx, name, rules, firewallLabels, applyTo)
	if err != nil {
		return fmt.Errorf("failed to ensure firewall: %w", err)
	}
	ctx.State.Firewall = firewall
	provisioning.LogResourceCreated(ctx.Observer, phase, "firewall", name, fmt.Sprintf("%d", firewall.ID))
	return nil
}

// parseCIDRs parses CIDR strings into net.IPNet, skipping invalid
// entries.
func parseCIDRs(cidrs []string) []net.IPNet {
	var nets []net.IPNet
	for _, cidr := range cidrs {
		_, n, err := net.ParseCIDR(cidr)
		if err == nil {
			nets = append(nets, *n)
		}
	}
	return nets
}
