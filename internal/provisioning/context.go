package provisioning

import (
	"context"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/metrics"
	hcloudplatform "github.com/larsan/pgha/internal/platform/hcloud"
)

// Context wraps all dependencies and state needed by a lifecycle phase.
type Context struct {
	context.Context
	Config   *config.Config
	RunID    string
	State    *State
	Infra    hcloudplatform.InfrastructureManager
	Secrets  SecretStore
	Remote   RemoteExecutor
	Connect  AdminConnector
	Observer Observer
	Timeouts *config.Timeouts
	Metrics  *metrics.Recorder
}

// NewContext creates a lifecycle context with default observer and
// timeouts.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	runID string,
	infra hcloudplatform.InfrastructureManager,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		RunID:    runID,
		State:    NewState(),
		Infra:    infra,
		Observer: NewLogObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}
