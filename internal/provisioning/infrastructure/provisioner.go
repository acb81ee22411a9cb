package infrastructure

import (
	"github.com/larsan/pgha/internal/provisioning"
)

const phase = "infrastructure"

// Provisioner creates all infrastructure for one cluster run.
type Provisioner struct{}

// NewProvisioner creates a new infrastructure provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface. Order matters:
// servers need the network, key and placement group; volumes need the
// servers; the agent needs the secrets in place.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.ProvisionNetwork(ctx); err != nil {
		return err
	}
	if err := p.ProvisionFirewall(ctx); err != nil {
		return err
	}
	if err := p.ProvisionPlacementGroup(ctx); err != nil {
		return err
	}
	if err := p.ProvisionSSHKey(ctx); err != nil {
		return err
	}
	if err := p.ProvisionServers(ctx); err != nil {
		return err
	}
	if err := p.ProvisionVolumes(ctx); err != nil {
		return err
	}
	if err := p.ProvisionSecrets(ctx); err != nil {
		return err
	}
	return p.RegisterAgents(ctx)
}
