package destroy

import (
	"errors"
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/naming"
)

const phase = "destroy"

// Options controls optional teardown behavior.
type Options struct {
	// PurgeSecrets also removes this run's credentials from the secret
	// store and attempts to drop the bucket. Off by default: secrets
	// outlive infrastructure unless the operator says otherwise.
	PurgeSecrets bool
}

// Destroyer removes all cloud resources of one run.
type Destroyer struct {
	opts Options
}

// NewDestroyer creates a destroyer with the given options.
func NewDestroyer(opts Options) *Destroyer {
	return &Destroyer{opts: opts}
}

// Name implements the provisioning.Phase interface.
func (d *Destroyer) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface by tearing the
// cluster down.
func (d *Destroyer) Provision(ctx *provisioning.Context) error {
	return d.Destroy(ctx)
}

type step struct {
	kind   string
	name   string
	delete func(name string) error
}

// Destroy deletes every resource of the run, attachments before the
// things they attach to. Failures do not stop the teardown; all errors
// are collected so a rerun only has the leftovers to deal with.
func (d *Destroyer) Destroy(ctx *provisioning.Context) error {
	prefix := naming.Prefix(ctx.Config.ClusterName, ctx.RunID)
	var errs []error

	steps := []step{
		{"load balancer", naming.LoadBalancer(prefix), func(n string) error { return ctx.Infra.DeleteLoadBalancer(ctx, n) }},
		{"server", naming.Server(prefix, config.NodeA), func(n string) error { return ctx.Infra.DeleteServer(ctx, n) }},
		{"server", naming.Server(prefix, config.NodeB), func(n string) error { return ctx.Infra.DeleteServer(ctx, n) }},
	}
	for _, role := range []string{config.NodeA, config.NodeB} {
		for _, kind := range []string{"data", "wal", "temp"} {
			steps = append(steps, step{"volume", naming.Volume(prefix, role, kind),
				func(n string) error { return ctx.Infra.DeleteVolume(ctx, n) }})
		}
	}
	steps = append(steps,
		step{"placement group", naming.PlacementGroup(prefix), func(n string) error { return ctx.Infra.DeletePlacementGroup(ctx, n) }},
		step{"firewall", naming.Firewall(prefix), func(n string) error { return ctx.Infra.DeleteFirewall(ctx, n) }},
		step{"ssh key", naming.SSHKey(prefix), func(n string) error { return ctx.Infra.DeleteSSHKey(ctx, n) }},
		step{"network", naming.Network(prefix), func(n string) error { return ctx.Infra.DeleteNetwork(ctx, n) }},
	)

	for _, step := range steps {
		provisioning.LogResourceDeleting(ctx.Observer, phase, step.kind, step.name)
		if err := step.delete(step.name); err != nil {
			errs = append(errs, fmt.Errorf("delete %s %s: %w", step.kind, step.name, err))
			continue
		}
		provisioning.LogResourceDeleted(ctx.Observer, phase, step.kind, step.name)
	}

	if d.opts.PurgeSecrets {
		if err := d.purgeSecrets(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	ctx.Observer.Printf("run %s torn down", ctx.RunID)
	return nil
}

// purgeSecrets deletes this run's credentials. Dropping the bucket is
// attempted afterwards; it fails when other runs still keep secrets
// there, which is reported but does not fail the teardown.
func (d *Destroyer) purgeSecrets(ctx *provisioning.Context) error {
	if ctx.Secrets == nil {
		return fmt.Errorf("purge requested but no secret store configured")
	}

	secretPrefix := naming.SecretPrefix(ctx.Config.ClusterName, ctx.RunID)
	provisioning.LogResourceDeleting(ctx.Observer, phase, "secrets", secretPrefix)
	if err := ctx.Secrets.DeletePrefix(ctx, secretPrefix); err != nil {
		return fmt.Errorf("purge secrets under %s: %w", secretPrefix, err)
	}
	provisioning.LogResourceDeleted(ctx.Observer, phase, "secrets", secretPrefix)

	if err := ctx.Secrets.DeleteBucket(ctx); err != nil {
		ctx.Observer.Printf("bucket not removed (other runs may still use it): %v", err)
	}
	return nil
}
