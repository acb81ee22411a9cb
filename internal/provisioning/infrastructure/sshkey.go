package infrastructure

import (
	"fmt"

	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/keygen"
	"github.com/larsan/pgha/internal/util/labels"
	"github.com/larsan/pgha/internal/util/naming"
)

const sshKeyBits = 4096

// ProvisionSSHKey generates the per-run admin key pair and registers
// the public half with the cloud. The private half stays in state; the
// command handler persists it next to the hand-off record.
func (p *Provisioner) ProvisionSSHKey(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	name := naming.SSHKey(prefix)

	if len(ctx.State.SSHPrivateKey) == 0 {
		keyPair, err := keygen.GenerateRSAKeyPair(sshKeyBits)
		if err != nil {
			return fmt.Errorf("failed to generate ssh key pair: %w", err)
		}
		ctx.State.SSHPrivateKey = keyPair.PrivateKey
		ctx.State.SSHPublicKey = keyPair.PublicKey
	}

	provisioning.LogResourceCreating(ctx.Observer, phase, "ssh key", name)

	keyLabels := labels.NewBuilder(ctx.Config.ClusterName, ctx.RunID).Build()
	key, err := ctx.Infra.EnsureSSHKey(ctx, name, string(ctx.State.SSHPublicKey), keyLabels)
	if err != nil {
		return fmt.Errorf("failed to ensure ssh key: %w", err)
	}
	ctx.State.SSHKeyID = key.ID
	provisioning.LogResourceCreated(ctx.Observer, phase, "ssh key", name, fmt.Sprintf("%d", key.ID))
	return nil
}
