package infrastructure

import (
	"fmt"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/larsan/pgha/internal/config"
	hcloudplatform "github.com/larsan/pgha/internal/platform/hcloud"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

// ProvisionServers ensures both database servers exist, attached to the
// private network at their fixed addresses.
func (p *Provisioner) ProvisionServers(ctx *provisioning.Context) error {
	userData, err := renderUserData(ctx.Config)
	if err != nil {
		return err
	}

	for _, role := range []string{config.NodeA, config.NodeB} {
		if err := p.provisionServer(ctx, role, userData); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) provisionServer(ctx *provisioning.Context, role, userData string) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	name := naming.Server(prefix, role)

	privateIP, err := ctx.Config.NodePrivateIP(role)
	if err != nil {
		return err
	}

	existing, err := ctx.Infra.GetServerByName(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		provisioning.LogResourceCreating(ctx.Observer, phase, "server", name)

		var pgID *int64
		if ctx.State.PlacementGroup != nil {
			pgID = &ctx.State.PlacementGroup.ID
		}

		_, err = ctx.Infra.CreateServer(ctx, hcloudplatform.ServerCreateOpts{
			Name:       name,
			Image:      ctx.Config.Nodes.Image,
			ServerType: ctx.Config.Nodes.ServerType,
			Location:   ctx.Config.Location,
			SSHKeys:    []string{naming.SSHKey(prefix)},
			Labels: labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).
				WithRole(role).
				Build(),
			UserData:         userData,
			PlacementGroupID: pgID,
			NetworkID:        ctx.State.Network.ID,
			PrivateIP:        privateIP,
		})
		if err != nil {
			return fmt.Errorf("failed to create server %s: %w", name, err)
		}
	}

	server, err := p.waitForServerIPs(ctx, name)
	if err != nil {
		return err
	}

	ctx.State.ServerIDs[role] = server.ID
	ctx.State.PublicIPs[role] = server.PublicNet.IPv4.IP.String()
	ctx.State.PrivateIPs[role] = privateIP

	provisioning.LogResourceCreated(ctx.Observer, phase, "server", name, fmt.Sprintf("%d", server.ID))
	return nil
}

// waitForServerIPs polls until the server reports its public address.
func (p *Provisioner) waitForServerIPs(ctx *provisioning.Context, name string) (*hcloud.Server, error) {
	provisioning.LogWaiting(ctx.Observer, phase, "server address assignment", ctx.Timeouts.ServerIP)
	deadline := time.Now().Add(ctx.Timeouts.ServerIP)

	for {
		server, err := ctx.Infra.GetServerByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if server != nil && server.PublicNet.IPv4.IP != nil && !server.PublicNet.IPv4.IP.IsUnspecified() {
			return server, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("server %s did not report a public address within %v", name, ctx.Timeouts.ServerIP)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}
