package cluster

import (
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/naming"
)

const slotName = "pgha_standby"

// ConfigureReplication bootstraps synchronous streaming replication:
// the primary is configured first, polled until it accepts replication
// connections, then the standby takes its base backup and joins. The
// poll replaces any fixed wait between the two steps; the standby never
// starts its backup against a primary that is not ready.
func (c *Configurator) ConfigureReplication(ctx *provisioning.Context) error {
	if ctx.Remote == nil {
		return fmt.Errorf("no remote executor configured")
	}
	if ctx.Connect == nil {
		return fmt.Errorf("no database connector configured")
	}

	params, err := c.scriptParams(ctx)
	if err != nil {
		return err
	}

	primaryScript, err := renderScript("primary", primaryScriptTemplate, params)
	if err != nil {
		return err
	}
	ctx.Observer.Printf("configuring %s as primary", config.NodeA)
	if _, err := ctx.Remote.Run(ctx, config.NodeA, remoteCommand(primaryScript)); err != nil {
		return fmt.Errorf("primary setup failed: %w", err)
	}

	primary, err := ctx.Connect(ctx, c.adminDSN(params, params.PrimaryIP))
	if err != nil {
		return fmt.Errorf("failed to connect to primary: %w", err)
	}
	defer primary.Close()

	provisioning.LogWaiting(ctx.Observer, phase, "primary accepting connections", ctx.Timeouts.PrimaryReady)
	if err := primary.WaitForPrimaryReady(ctx, ctx.Timeouts.PrimaryReady); err != nil {
		return err
	}

	standbyScript, err := renderScript("standby", standbyScriptTemplate, params)
	if err != nil {
		return err
	}
	ctx.Observer.Printf("configuring %s as standby of %s", config.NodeB, config.NodeA)
	if _, err := ctx.Remote.Run(ctx, config.NodeB, remoteCommand(standbyScript)); err != nil {
		return fmt.Errorf("standby setup failed: %w", err)
	}

	provisioning.LogWaiting(ctx.Observer, phase, "synchronous standby attachment", ctx.Timeouts.StandbySync)
	return primary.WaitForSyncStandby(ctx, ctx.Timeouts.StandbySync, ctx.Config.Postgres.MaxReplayLagBytes)
}

func (c *Configurator) scriptParams(ctx *provisioning.Context) (scriptParams, error) {
	primaryIP, ok := ctx.State.PrivateIPs[config.NodeA]
	if !ok {
		return scriptParams{}, fmt.Errorf("no private address recorded for %s", config.NodeA)
	}

	adminPassword, replicationPassword, err := c.loadCredentials(ctx)
	if err != nil {
		return scriptParams{}, err
	}

	return scriptParams{
		Version:             ctx.Config.Postgres.Version,
		Database:            ctx.Config.Postgres.Database,
		AdminUser:           ctx.Config.Postgres.AdminUser,
		AdminPassword:       adminPassword,
		ReplicationUser:     ctx.Config.Postgres.ReplicationUser,
		ReplicationPassword: replicationPassword,
		SlotName:            slotName,
		StandbyName:         config.NodeB,
		SubnetCIDR:          ctx.Config.Network.SubnetCIDR,
		PrimaryIP:           primaryIP,
		Port:                config.PostgresPort,
	}, nil
}

// loadCredentials prefers the in-memory state from a same-process
// provision run and falls back to the secret store, which is the
// normal path when configure runs as its own invocation.
func (c *Configurator) loadCredentials(ctx *provisioning.Context) (admin, replication string, err error) {
	if ctx.State.AdminPassword != "" && ctx.State.ReplicationPassword != "" {
		return ctx.State.AdminPassword, ctx.State.ReplicationPassword, nil
	}
	if ctx.Secrets == nil {
		return "", "", fmt.Errorf("no secret store configured and no credentials in state")
	}

	prefix := naming.SecretPrefix(ctx.Config.ClusterName, ctx.RunID)
	admin, err = ctx.Secrets.GetSecret(ctx, prefix+"/"+config.SecretAdminPassword)
	if err != nil {
		return "", "", fmt.Errorf("failed to load admin password: %w", err)
	}
	replication, err = ctx.Secrets.GetSecret(ctx, prefix+"/"+config.SecretReplicationPassword)
	if err != nil {
		return "", "", fmt.Errorf("failed to load replication password: %w", err)
	}
	return admin, replication, nil
}

func (c *Configurator) adminDSN(params scriptParams, host string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=disable",
		params.AdminUser, params.AdminPassword, host, params.Port)
}
