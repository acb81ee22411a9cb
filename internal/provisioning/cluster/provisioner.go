package cluster

import (
	"github.com/larsan/pgha/internal/provisioning"
)

const phase = "cluster"

// Configurator drives the configure stage against infrastructure an
// earlier provision run created.
type Configurator struct{}

// NewConfigurator creates a new cluster configurator.
func NewConfigurator() *Configurator {
	return &Configurator{}
}

// Name implements the provisioning.Phase interface.
func (c *Configurator) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface. The load
// balancer comes first so the probe starts watching as soon as the
// primary answers; the listener label is bound only after replication
// is healthy.
func (c *Configurator) Provision(ctx *provisioning.Context) error {
	if err := c.ConfigureLoadBalancer(ctx); err != nil {
		return err
	}
	if err := c.ConfigureReplication(ctx); err != nil {
		return err
	}
	return c.BindListener(ctx)
}
