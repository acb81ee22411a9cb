package validate

import (
	"strconv"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/naming"
)

// checkPlacement verifies both servers ended up in the spread group, so
// a single host failure cannot take out the whole cluster.
func (c *Checker) checkPlacement(ctx *provisioning.Context) Result {
	const name = "placement"

	prefix := naming.Prefix(c.record.ClusterName, c.record.RunID)
	group, err := ctx.Infra.GetPlacementGroup(ctx, naming.PlacementGroup(prefix))
	if err != nil {
		return fail(name, "placement group lookup failed: %v", err)
	}
	if group == nil {
		return fail(name, "placement group %s not found", naming.PlacementGroup(prefix))
	}
	if group.Type != hcloud.PlacementGroupTypeSpread {
		return fail(name, "placement group %s has type %s, want spread", group.Name, group.Type)
	}
	if len(group.Servers) != 2 {
		return fail(name, "placement group %s holds %d servers, want 2", group.Name, len(group.Servers))
	}
	return pass(name, "both servers in spread group "+group.Name)
}

// checkFirewall verifies the run's firewall exists and carries inbound
// rules for every port the cluster depends on.
func (c *Checker) checkFirewall(ctx *provisioning.Context) Result {
	const name = "firewall"

	prefix := naming.Prefix(c.record.ClusterName, c.record.RunID)
	firewall, err := ctx.Infra.GetFirewall(ctx, naming.Firewall(prefix))
	if err != nil {
		return fail(name, "firewall lookup failed: %v", err)
	}
	if firewall == nil {
		return fail(name, "firewall %s not found", naming.Firewall(prefix))
	}
	for _, port := range []int{config.SSHPort, config.PostgresPort, config.ProbePort} {
		if !hasInboundRule(firewall, port) {
			return fail(name, "no inbound rule for port %d on %s", port, firewall.Name)
		}
	}
	return pass(name, "inbound rules for ssh, database and probe on "+firewall.Name)
}

func hasInboundRule(firewall *hcloud.Firewall, port int) bool {
	want := strconv.Itoa(port)
	for _, rule := range firewall.Rules {
		if rule.Direction == hcloud.FirewallRuleDirectionIn && rule.Port != nil && *rule.Port == want {
			return true
		}
	}
	return false
}

// checkVolumes verifies the data, WAL and temp volumes exist for both
// nodes and are attached to a server.
func (c *Checker) checkVolumes(ctx *provisioning.Context) Result {
	const name = "volumes"

	prefix := naming.Prefix(c.record.ClusterName, c.record.RunID)
	for _, role := range []string{config.NodeA, config.NodeB} {
		for _, kind := range []string{"data", "wal", "temp"} {
			volName := naming.Volume(prefix, role, kind)
			volume, err := ctx.Infra.GetVolume(ctx, volName)
			if err != nil {
				return fail(name, "volume lookup failed: %v", err)
			}
			if volume == nil {
				return fail(name, "volume %s not found", volName)
			}
			if volume.Server == nil {
				return fail(name, "volume %s is not attached to a server", volName)
			}
		}
	}
	return pass(name, "all six volumes attached")
}

// checkAgents verifies the probe agent is running on both nodes. A dead
// agent on the primary makes the listener go dark even though the
// database is fine.
func (c *Checker) checkAgents(ctx *provisioning.Context) Result {
	const name = "agents"

	if ctx.Remote == nil {
		return skip(name, "no SSH access configured")
	}

	for _, role := range []string{config.NodeA, config.NodeB} {
		out, err := ctx.Remote.Run(ctx, role, "systemctl is-active pgha-agent")
		if err != nil {
			return fail(name, "agent on %s: %v", role, err)
		}
		if state := strings.TrimSpace(out); state != "active" {
			return fail(name, "agent on %s is %s, want active", role, state)
		}
	}
	return pass(name, "pgha-agent active on both nodes")
}

// checkLoadBalancer verifies the listener endpoint: the database service
// on its port, the probe-based health check, both backend targets, and
// the private frontend address the handoff promised.
func (c *Checker) checkLoadBalancer(ctx *provisioning.Context) Result {
	const name = "load-balancer"

	prefix := naming.Prefix(c.record.ClusterName, c.record.RunID)
	lbName := c.record.LoadBalancerName
	if lbName == "" {
		lbName = naming.LoadBalancer(prefix)
	}

	lb, err := ctx.Infra.GetLoadBalancer(ctx, lbName)
	if err != nil {
		return fail(name, "load balancer lookup failed: %v", err)
	}
	if lb == nil {
		return fail(name, "load balancer %s not found", lbName)
	}

	service, ok := findService(lb, config.PostgresPort)
	if !ok {
		return fail(name, "no service on port %d", config.PostgresPort)
	}
	if service.DestinationPort != config.PostgresPort {
		return fail(name, "service forwards to port %d, want %d", service.DestinationPort, config.PostgresPort)
	}
	if service.HealthCheck.Port != config.ProbePort {
		return fail(name, "health check on port %d, want probe port %d", service.HealthCheck.Port, config.ProbePort)
	}
	if service.HealthCheck.Protocol != hcloud.LoadBalancerServiceProtocolHTTP {
		return fail(name, "health check protocol %s, want http; a tcp check marks the standby healthy too",
			service.HealthCheck.Protocol)
	}
	if len(lb.Targets) != 2 {
		return fail(name, "%d backend targets, want 2", len(lb.Targets))
	}
	if c.record.ListenerIP != "" {
		frontend := privateFrontendIP(lb)
		if frontend != c.record.ListenerIP {
			return fail(name, "frontend address %s, handoff says %s", frontend, c.record.ListenerIP)
		}
	}
	return pass(name, "service and both targets configured on "+lbName)
}

func findService(lb *hcloud.LoadBalancer, listenPort int) (hcloud.LoadBalancerService, bool) {
	for _, service := range lb.Services {
		if service.ListenPort == listenPort {
			return service, true
		}
	}
	return hcloud.LoadBalancerService{}, false
}

func privateFrontendIP(lb *hcloud.LoadBalancer) string {
	if len(lb.PrivateNet) == 0 {
		return ""
	}
	return lb.PrivateNet[0].IP.String()
}

// checkReplication verifies the pair's roles and replication health:
// exactly one primary, and its standby streaming synchronously within
// the configured lag threshold.
func (c *Checker) checkReplication(ctx *provisioning.Context) Result {
	const name = "replication"

	if ctx.Connect == nil {
		return skip(name, "no database connector configured")
	}
	user, password, err := c.credentials(ctx)
	if err != nil {
		return skip(name, "admin credentials unavailable: "+err.Error())
	}

	roles := map[string]string{
		config.NodeA: c.record.NodeAPrivateIP,
		config.NodeB: c.record.NodeBPrivateIP,
	}
	var primary provisioning.DatabaseAdmin
	var primaryRole string
	primaries := 0
	defer func() {
		if primary != nil {
			primary.Close()
		}
	}()

	for _, role := range []string{config.NodeA, config.NodeB} {
		admin, err := ctx.Connect(ctx, adminDSN(user, password, roles[role]))
		if err != nil {
			return fail(name, "connect to %s: %v", role, err)
		}
		inRecovery, err := admin.IsInRecovery(ctx)
		if err != nil {
			admin.Close()
			return fail(name, "recovery query on %s: %v", role, err)
		}
		if inRecovery {
			admin.Close()
			continue
		}
		primaries++
		if primary == nil {
			primary, primaryRole = admin, role
		} else {
			admin.Close()
		}
	}

	if primaries != 1 {
		return fail(name, "%d nodes claim the primary role, want 1", primaries)
	}

	standby, err := primary.SyncStandby(ctx)
	if err != nil {
		return fail(name, "standby query on %s: %v", primaryRole, err)
	}
	if standby == nil {
		return fail(name, "primary %s has no synchronous standby", primaryRole)
	}
	if !standby.Synchronous() {
		return fail(name, "standby %s is %s/%s, want streaming/sync",
			standby.ApplicationName, standby.State, standby.SyncState)
	}
	maxLag := ctx.Config.Postgres.MaxReplayLagBytes
	if standby.ReplayLagBytes > maxLag {
		return fail(name, "standby %s lags %d bytes, threshold %d",
			standby.ApplicationName, standby.ReplayLagBytes, maxLag)
	}
	return pass(name, primaryRole+" primary with synchronous standby "+standby.ApplicationName)
}

// checkListener verifies the client path end to end: a connection
// through the listener address must land on the primary.
func (c *Checker) checkListener(ctx *provisioning.Context) Result {
	const name = "listener"

	if ctx.Connect == nil {
		return skip(name, "no database connector configured")
	}
	if c.record.ListenerIP == "" {
		return skip(name, "no listener address in handoff record")
	}
	user, password, err := c.credentials(ctx)
	if err != nil {
		return skip(name, "admin credentials unavailable: "+err.Error())
	}

	admin, err := ctx.Connect(ctx, adminDSN(user, password, c.record.ListenerIP))
	if err != nil {
		return fail(name, "connect through %s: %v", c.record.ListenerIP, err)
	}
	defer admin.Close()

	inRecovery, err := admin.IsInRecovery(ctx)
	if err != nil {
		return fail(name, "recovery query through listener: %v", err)
	}
	if inRecovery {
		return fail(name, "listener %s routed to a standby", c.record.ListenerIP)
	}
	return pass(name, "listener "+c.record.ListenerIP+" routes to the primary")
}
