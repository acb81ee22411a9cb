package failover

import (
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	"github.com/larsan/pgha/internal/provisioning"
)

const phase = "failover"

// Orchestrator drives role swaps for the cluster a handoff record
// describes.
type Orchestrator struct {
	record *handoff.Record
}

// NewOrchestrator creates an orchestrator for the given handoff record.
func NewOrchestrator(record *handoff.Record) *Orchestrator {
	return &Orchestrator{record: record}
}

// Planned performs a lossless role swap. It refuses to run unless the
// standby is attached synchronously, then checkpoints and stops the
// primary, promotes the standby, re-points synchronous commit at the
// demoted node and rejoins it as the new standby.
func (o *Orchestrator) Planned(ctx *provisioning.Context) error {
	if ctx.Remote == nil {
		return fmt.Errorf("no remote executor configured")
	}
	if ctx.Connect == nil {
		return fmt.Errorf("no database connector configured")
	}

	creds, err := o.loadCredentials(ctx)
	if err != nil {
		return err
	}

	primaryRole, standbyRole, primary, standby, err := o.detectRoles(ctx, creds)
	if err != nil {
		return err
	}
	defer primary.Close()
	defer standby.Close()

	attached, err := primary.SyncStandby(ctx)
	if err != nil {
		return fmt.Errorf("failed to read standby state: %w", err)
	}
	if attached == nil || !attached.Synchronous() {
		return fmt.Errorf("standby is not attached synchronously; refusing planned failover")
	}

	ctx.Observer.Printf("swapping roles: %s -> standby, %s -> primary", primaryRole, standbyRole)

	if err := primary.Checkpoint(ctx); err != nil {
		return fmt.Errorf("checkpoint on %s failed: %w", primaryRole, err)
	}
	if _, err := ctx.Remote.Run(ctx, primaryRole, stopCommand(ctx.Config.Postgres.Version)); err != nil {
		return fmt.Errorf("failed to stop %s: %w", primaryRole, err)
	}

	if err := standby.Promote(ctx); err != nil {
		return fmt.Errorf("promotion of %s failed: %w", standbyRole, err)
	}
	provisioning.LogWaiting(ctx.Observer, phase, "promotion of "+standbyRole, ctx.Timeouts.Failover)
	if err := standby.WaitForPromotion(ctx, ctx.Timeouts.Failover); err != nil {
		return err
	}

	if _, err := ctx.Remote.Run(ctx, standbyRole, retargetCommand(primaryRole)); err != nil {
		return fmt.Errorf("failed to retarget synchronous commit on %s: %w", standbyRole, err)
	}

	rejoin, err := renderRejoinScript(rejoinParams{
		Version:             ctx.Config.Postgres.Version,
		NewPrimaryIP:        o.privateIP(standbyRole),
		Port:                config.PostgresPort,
		ReplicationUser:     ctx.Config.Postgres.ReplicationUser,
		ReplicationPassword: creds.replicationPassword,
		SelfName:            primaryRole,
	})
	if err != nil {
		return err
	}
	ctx.Observer.Printf("rejoining %s as standby of %s", primaryRole, standbyRole)
	if _, err := ctx.Remote.Run(ctx, primaryRole, remoteCommand(rejoin)); err != nil {
		return fmt.Errorf("rejoin of %s failed: %w", primaryRole, err)
	}

	provisioning.LogWaiting(ctx.Observer, phase, "synchronous standby attachment", ctx.Timeouts.StandbySync)
	if err := standby.WaitForSyncStandby(ctx, ctx.Timeouts.StandbySync, ctx.Config.Postgres.MaxReplayLagBytes); err != nil {
		return err
	}

	ctx.Observer.Printf("failover complete, %s is the primary", standbyRole)
	return nil
}

// Forced promotes the reachable standby without consulting the old
// primary. Transactions the standby never received are gone, so the
// caller must state that loss is acceptable.
func (o *Orchestrator) Forced(ctx *provisioning.Context, acceptDataLoss bool) error {
	if !acceptDataLoss {
		return fmt.Errorf("forced failover may lose committed transactions; re-run with --accept-data-loss")
	}
	if ctx.Remote == nil {
		return fmt.Errorf("no remote executor configured")
	}
	if ctx.Connect == nil {
		return fmt.Errorf("no database connector configured")
	}

	creds, err := o.loadCredentials(ctx)
	if err != nil {
		return err
	}

	survivorRole, survivor, err := o.findSurvivingStandby(ctx, creds)
	if err != nil {
		return err
	}
	defer survivor.Close()

	ctx.Observer.Printf("promoting %s, abandoning the old primary", survivorRole)

	if err := survivor.Promote(ctx); err != nil {
		return fmt.Errorf("promotion of %s failed: %w", survivorRole, err)
	}
	provisioning.LogWaiting(ctx.Observer, phase, "promotion of "+survivorRole, ctx.Timeouts.Failover)
	if err := survivor.WaitForPromotion(ctx, ctx.Timeouts.Failover); err != nil {
		return err
	}

	// Detach synchronous commit: with the peer gone, keeping it would
	// freeze every write until the peer returns.
	if _, err := ctx.Remote.Run(ctx, survivorRole, retargetCommand("")); err != nil {
		return fmt.Errorf("failed to detach synchronous commit on %s: %w", survivorRole, err)
	}

	ctx.Observer.Printf("forced failover complete, %s is the primary", survivorRole)
	return nil
}

// detectRoles connects to both nodes and classifies them. Exactly one
// primary and one standby must be present; both connections are handed
// to the caller.
func (o *Orchestrator) detectRoles(ctx *provisioning.Context, creds credentials) (
	primaryRole, standbyRole string, primary, standby provisioning.DatabaseAdmin, err error,
) {
	for _, role := range []string{config.NodeA, config.NodeB} {
		admin, err := ctx.Connect(ctx, o.adminDSN(creds, o.privateIP(role)))
		if err != nil {
			closeAll(primary, standby)
			return "", "", nil, nil, fmt.Errorf("connect to %s: %w", role, err)
		}
		inRecovery, err := admin.IsInRecovery(ctx)
		if err != nil {
			admin.Close()
			closeAll(primary, standby)
			return "", "", nil, nil, fmt.Errorf("recovery query on %s: %w", role, err)
		}
		switch {
		case inRecovery && standby == nil:
			standbyRole, standby = role, admin
		case !inRecovery && primary == nil:
			primaryRole, primary = role, admin
		default:
			admin.Close()
		}
	}
	if primary == nil || standby == nil {
		closeAll(primary, standby)
		return "", "", nil, nil, fmt.Errorf("cluster roles are ambiguous; expected one primary and one standby")
	}
	return primaryRole, standbyRole, primary, standby, nil
}

// findSurvivingStandby returns the reachable node that is still in
// recovery. A reachable primary means forced failover is the wrong
// tool.
func (o *Orchestrator) findSurvivingStandby(ctx *provisioning.Context, creds credentials) (string, provisioning.DatabaseAdmin, error) {
	var lastErr error
	for _, role := range []string{config.NodeA, config.NodeB} {
		admin, err := ctx.Connect(ctx, o.adminDSN(creds, o.privateIP(role)))
		if err != nil {
			lastErr = err
			continue
		}
		inRecovery, err := admin.IsInRecovery(ctx)
		if err != nil {
			admin.Close()
			lastErr = err
			continue
		}
		if !inRecovery {
			admin.Close()
			return "", nil, fmt.Errorf("%s is reachable and already primary; nothing to fail over", role)
		}
		return role, admin, nil
	}
	return "", nil, fmt.Errorf("no reachable standby found: %w", lastErr)
}

type credentials struct {
	adminUser           string
	adminPassword       string
	replicationPassword string
}

// loadCredentials prefers same-process state and falls back to the
// secret store at the prefix the handoff record names.
func (o *Orchestrator) loadCredentials(ctx *provisioning.Context) (credentials, error) {
	creds := credentials{adminUser: ctx.Config.Postgres.AdminUser}

	if ctx.State.AdminPassword != "" && ctx.State.ReplicationPassword != "" {
		creds.adminPassword = ctx.State.AdminPassword
		creds.replicationPassword = ctx.State.ReplicationPassword
		return creds, nil
	}
	if ctx.Secrets == nil {
		return credentials{}, fmt.Errorf("no secret store configured and no credentials in state")
	}
	prefix := o.record.SecretsPrefix
	if prefix == "" {
		return credentials{}, fmt.Errorf("handoff record has no secrets prefix")
	}

	var err error
	creds.adminPassword, err = ctx.Secrets.GetSecret(ctx, prefix+"/"+config.SecretAdminPassword)
	if err != nil {
		return credentials{}, fmt.Errorf("failed to load admin password: %w", err)
	}
	creds.replicationPassword, err = ctx.Secrets.GetSecret(ctx, prefix+"/"+config.SecretReplicationPassword)
	if err != nil {
		return credentials{}, fmt.Errorf("failed to load replication password: %w", err)
	}
	return creds, nil
}

func (o *Orchestrator) privateIP(role string) string {
	if role == config.NodeA {
		return o.record.NodeAPrivateIP
	}
	return o.record.NodeBPrivateIP
}

func (o *Orchestrator) adminDSN(creds credentials, host string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=disable",
		creds.adminUser, creds.adminPassword, host, config.PostgresPort)
}

func closeAll(admins ...provisioning.DatabaseAdmin) {
	for _, admin := range admins {
		if admin != nil {
			admin.Close()
		}
	}
}
