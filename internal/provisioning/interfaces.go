// Package provisioning provides shared types and interfaces for the
// cluster lifecycle stages.
//
// The domain is organized into focused subpackages:
//   - infrastructure/: network, firewall, placement, servers, volumes, secrets
//   - cluster/: replication bootstrap, listener wiring
//   - validate/: post-configuration health checks
//
// This root package contains the phase pipeline, the shared state, and
// the interfaces the subpackages consume.
package provisioning

import (
	"context"
	"time"

	"github.com/larsan/pgha/internal/platform/postgres"
)

// Phase defines one step of a lifecycle stage.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the phase.
	Provision(ctx *Context) error
}

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...any)
}

// SecretStore persists cluster credentials outside the nodes.
// Implemented by internal/platform/s3.Client.
type SecretStore interface {
	// EnsureBucket creates the backing bucket if missing.
	EnsureBucket(ctx context.Context) error

	// ConfirmWriteAccess polls until the bucket accepts writes or the
	// timeout passes.
	ConfirmWriteAccess(ctx context.Context, timeout time.Duration) error

	PutSecret(ctx context.Context, key, value string) error
	GetSecret(ctx context.Context, key string) (string, error)
	ListSecrets(ctx context.Context, prefix string) ([]string, error)
	DeletePrefix(ctx context.Context, prefix string) error
	DeleteBucket(ctx context.Context) error
}

// RemoteExecutor runs commands on cluster nodes addressed by role.
// Implemented by internal/platform/ssh.Runner.
type RemoteExecutor interface {
	Run(ctx context.Context, host, command string) (string, error)
	WaitReady(ctx context.Context, host string) error
}

// DatabaseAdmin is the SQL admin surface of one database instance.
// Implemented by internal/platform/postgres.Admin.
type DatabaseAdmin interface {
	Ping(ctx context.Context) error
	IsInRecovery(ctx context.Context) (bool, error)
	ReplicationStatus(ctx context.Context) ([]postgres.ReplicaStatus, error)
	SyncStandby(ctx context.Context) (*postgres.ReplicaStatus, error)
	ReplayLagBytes(ctx context.Context) (int64, error)
	Checkpoint(ctx context.Context) error
	Promote(ctx context.Context) error
	WaitForPrimaryReady(ctx context.Context, timeout time.Duration) error
	WaitForSyncStandby(ctx context.Context, timeout time.Duration, maxLagBytes int64) error
	WaitForPromotion(ctx context.Context, timeout time.Duration) error
	Close()
}

// AdminConnector opens admin connections to database instances. The
// pipeline connects per node and per listener address, so it needs a
// factory rather than a single connection.
type AdminConnector func(ctx context.Context, dsn string) (DatabaseAdmin, error)
