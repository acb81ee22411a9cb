package infrastructure

import (
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/keygen"
	"github.com/larsan/pgha/internal/util/naming"
)

const generatedPasswordLength = 32

// ProvisionSecrets creates the secret bucket, confirms it accepts
// writes, generates the cluster credentials and persists them. The
// write-access poll runs before any credential is stored so a slow
// bucket can never swallow a secret silently.
func (p *Provisioner) ProvisionSecrets(ctx *provisioning.Context) error {
	if ctx.Secrets == nil {
		return fmt.Errorf("no secret store configured")
	}

	provisioning.LogResourceCreating(ctx.Observer, phase, "secret bucket", ctx.Config.Secrets.Bucket)
	if err := ctx.Secrets.EnsureBucket(ctx); err != nil {
		return err
	}

	provisioning.LogWaiting(ctx.Observer, phase, "bucket write access", ctx.Timeouts.BucketAccess)
	if err := ctx.Secrets.ConfirmWriteAccess(ctx, ctx.Timeouts.BucketAccess); err != nil {
		return err
	}

	adminPassword, err := keygen.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return fmt.Errorf("failed to generate admin password: %w", err)
	}
	replicationPassword, err := keygen.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return fmt.Errorf("failed to generate replication password: %w", err)
	}

	prefix := naming.SecretPrefix(ctx.Config.ClusterName, ctx.RunID)
	secrets := map[string]string{
		config.SecretAdminUser:           ctx.Config.Postgres.AdminUser,
		config.SecretAdminPassword:       adminPassword,
		config.SecretReplicationPassword: replicationPassword,
	}
	for _, name := range []string{config.SecretAdminUser, config.SecretAdminPassword, config.SecretReplicationPassword} {
		key := prefix + "/" + name
		if err := ctx.Secrets.PutSecret(ctx, key, secrets[name]); err != nil {
			return fmt.Errorf("failed to store secret %s: %w", name, err)
		}
	}

	ctx.State.AdminPassword = adminPassword
	ctx.State.ReplicationPassword = replicationPassword

	provisioning.LogResourceCreated(ctx.Observer, phase, "secret bucket", ctx.Config.Secrets.Bucket, prefix)
	return nil
}
