package infrastructure

import (
	"fmt"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/provisioning"
	"github.com/larsan/pgha/internal/util/retry"
)

// RegisterAgents enables the management agent unit on each node. A
// fresh server may still be running cloud-init when we first reach it,
// so registration runs under the declared policy: 3 attempts, 30s
// initial backoff.
func (p *Provisioner) RegisterAgents(ctx *provisioning.Context) error {
	if ctx.Remote == nil {
		return fmt.Errorf("no remote executor configured")
	}

	for _, role := range []string{config.NodeA, config.NodeB} {
		if err := p.registerAgent(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) registerAgent(ctx *provisioning.Context, role string) error {
	observer := ctx.Observer.WithFields(map[string]string{"node": role})
	observer.Printf("waiting for %s to accept ssh connections", role)

	if err := ctx.Remote.WaitReady(ctx, role); err != nil {
		return fmt.Errorf("node %s never became reachable: %w", role, err)
	}

	policy := retry.Policy{
		MaxAttempts:  ctx.Timeouts.RegisterMaxAttempts,
		InitialDelay: ctx.Timeouts.RegisterInitialDelay,
		OnRetry: func(attempt int, err error) {
			observer.Printf("agent registration attempt %d on %s failed: %v", attempt, role, err)
		},
	}

	err := policy.Do(ctx, func() error {
		_, err := ctx.Remote.Run(ctx, role, "systemctl enable --now pgha-agent")
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to register agent on %s: %w", role, err)
	}

	observer.Printf("management agent registered on %s", role)
	return nil
}
