package cluster

import (
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

const loadBalancerType = "lb11"

// ConfigureLoadBalancer ensures the internal load balancer, its private
// frontend address, the health probe on the agent port, the database
// service, and both backend targets. Only the primary answers the
// probe, so the service routes every connection to exactly one node.
func (c *Configurator) ConfigureLoadBalancer(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	name := naming.LoadBalancer(prefix)

	provisioning.LogResourceCreating(ctx.Observer, phase, "load balancer", name)

	lbLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).Build()
	lb, err := ctx.Infra.EnsureLoadBalancer(ctx, name, ctx.Config.Location, loadBalancerType,
		hcloud.LoadBalancerAlgorithmTypeRoundRobin, lbLabels)
	if err != nil {
		return fmt.Errorf("failed to ensure load balancer: %w", err)
	}
	ctx.State.LoadBalancer = lb

	listenerIP, err := ctx.Config.ListenerIP()
	if err != nil {
		return err
	}
	network := ctx.State.Network
	if network == nil {
		network, err = ctx.Infra.GetNetwork(ctx, naming.Network(prefix))
		if err != nil {
			return err
		}
		if network == nil {
			return fmt.Errorf("network %s not found; run provision first", naming.Network(prefix))
		}
		ctx.State.Network = network
	}

	if err := ctx.Infra.AttachToNetwork(ctx, lb, network, net.ParseIP(listenerIP)); err != nil {
		return err
	}
	ctx.State.ListenerIP = listenerIP

	if err := ctx.Infra.ConfigureService(ctx, lb, databaseService()); err != nil {
		return err
	}

	selector := labels.Selector(ctx.Config.ClusterName, ctx.RunID)
	servers, err := ctx.Infra.GetServersByLabel(ctx, selector)
	if err != nil {
		return fmt.Errorf("failed to list backend servers: %w", err)
	}
	if len(servers) != 2 {
		return fmt.Errorf("selector %s matched %d servers, want 2; run provision first", selector, len(servers))
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })
	for _, server := range servers {
		if err := ctx.Infra.AddServerTarget(ctx, lb, server, true); err != nil {
			return fmt.Errorf("failed to add %s to backend pool: %w", server.Name, err)
		}
	}

	provisioning.LogResourceCreated(ctx.Observer, phase, "load balancer", name, fmt.Sprintf("%d", lb.ID))
	return nil
}

// databaseService maps the client port straight through, health-checked
// on the probe port rather than the database port. The check must be
// HTTP: the probe agent listens on both nodes and encodes the role in
// the status line (200 primary, 503 standby), so a plain TCP check
// would see two healthy targets. Proxy protocol stays off; the engine
// sees plain client connections.
func databaseService() hcloud.LoadBalancerAddServiceOpts {
	return hcloud.LoadBalancerAddServiceOpts{
		Protocol:        hcloud.LoadBalancerServiceProtocolTCP,
		ListenPort:      hcloud.Ptr(config.PostgresPort),
		DestinationPort: hcloud.Ptr(config.PostgresPort),
		Proxyprotocol:   hcloud.Ptr(false),
		HealthCheck: &hcloud.LoadBalancerAddServiceOptsHealthCheck{
			Protocol: hcloud.LoadBalancerServiceProtocolHTTP,
			Port:     hcloud.Ptr(config.ProbePort),
			Interval: hcloud.Ptr(5 * time.Second),
			Timeout:  hcloud.Ptr(3 * time.Second),
			Retries:  hcloud.Ptr(2),
			HTTP: &hcloud.LoadBalancerAddServiceOptsHealthCheckHTTP{
				Path:        hcloud.Ptr("/"),
				StatusCodes: []string{"2??"},
			},
		},
	}
}
