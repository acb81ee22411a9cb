package infrastructure

import (
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

// volumeKinds maps volume kind names to their configured sizes.
func volumeKinds(cfg *config.Config) map[string]int {
	return map[string]int{
		"data": cfg.Nodes.Volumes.Data,
		"wal":  cfg.Nodes.Volumes.WAL,
		"temp": cfg.Nodes.Volumes.Temp,
	}
}

// ProvisionVolumes ensures the data, WAL and temp volumes for each node,
// attached to their server.
func (p *Provisioner) ProvisionVolumes(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	kinds := volumeKinds(ctx.Config)

	for _, role := range []string{config.NodeA, config.NodeB} {
		serverID, ok := ctx.State.ServerIDs[role]
		if !ok {
			return fmt.Errorf("no server provisioned for role %s", role)
		}

		// Deterministic order so re-runs log identically.
		for _, kind := range []string{"data", "wal", "temp"} {
			sizeGB := kinds[kind]
			name := naming.Volume(prefix, role, kind)

			provisioning.LogResourceCreating(ctx.Observer, phase, "volume", name)

			volumeLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).
				WithRole(role).
				With("kind", kind).
				Build()

			volume, err := ctx.Infra.EnsureVolume(ctx, name, sizeGB, serverID, volumeLabels)
			if err != nil {
				return fmt.Errorf("failed to ensure volume %s: %w", name, err)
			}
			ctx.State.Volumes[role] = append(ctx.State.Volumes[role], volume)
			provisioning.LogResourceCreated(ctx.Observer, phase, "volume", name, fmt.Sprintf("%d", volume.ID))
		}
	}
	return nil
}
