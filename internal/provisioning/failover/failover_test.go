package failover

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsan/pgha/internal/config"
	"github.com/larsan/pgha/internal/handoff"
	hcloudplatform "github.com/larsan/pgha/internal/platform/hcloud"
	"github.com/larsan/pgha/internal/platform/postgres"
	"github.com/larsan/pgha/internal/provisioning"
)

type fakeAdmin struct {
	inRecovery    bool
	standby       *postgres.ReplicaStatus
	checkpointed  bool
	promoted      bool
	syncWaited    bool
	closed        bool
	checkpointErr error
}

func (f *fakeAdmin) Ping(context.Context) error                 { return nil }
func (f *fakeAdmin) IsInRecovery(context.Context) (bool, error) { return f.inRecovery, nil }
func (f *fakeAdmin) ReplicationStatus(context.Context) ([]postgres.ReplicaStatus, error) {
	return nil, nil
}
func (f *fakeAdmin) SyncStandby(context.Context) (*postgres.ReplicaStatus, error) {
	return f.standby, nil
}
func (f *fakeAdmin) ReplayLagBytes(context.Context) (int64, error) { return 0, nil }
func (f *fakeAdmin) Checkpoint(context.Context) error {
	f.checkpointed = true
	return f.checkpointErr
}
func (f *fakeAdmin) Promote(context.Context) error {
	f.promoted = true
	f.inRecovery = false
	return nil
}
func (f *fakeAdmin) WaitForPrimaryReady(context.Context, time.Duration) error { return nil }
func (f *fakeAdmin) WaitForSyncStandby(context.Context, time.Duration, int64) error {
	f.syncWaited = true
	return nil
}
func (f *fakeAdmin) WaitForPromotion(context.Context, time.Duration) error { return nil }
func (f *fakeAdmin) Close()                                                { f.closed = true }

type command struct {
	host string
	cmd  string
}

type fakeRemote struct {
	commands []command
}

func (f *fakeRemote) Run(_ context.Context, host, cmd string) (string, error) {
	f.commands = append(f.commands, command{host: host, cmd: cmd})
	return "", nil
}

func (f *fakeRemote) WaitReady(context.Context, string) error { return nil }

func testRecord() *handoff.Record {
	return &handoff.Record{
		ClusterName:    "pg",
		RunID:          "ab12cd34",
		NodeAName:      "pg-ab12cd34-node-a",
		NodeAPublicIP:  "203.0.113.10",
		NodeAPrivateIP: "10.70.1.11",
		NodeBName:      "pg-ab12cd34-node-b",
		NodeBPublicIP:  "203.0.113.11",
		NodeBPrivateIP: "10.70.1.12",
		SecretsPrefix:  "pg/ab12cd34",
	}
}

func testContext(t *testing.T, admins map[string]*fakeAdmin, unreachable map[string]bool) (*provisioning.Context, *fakeRemote) {
	t.Helper()

	cfg := &config.Config{
		ClusterName: "pg",
		Secrets: config.SecretsConfig{
			Endpoint: "https://fsn1.your-objectstorage.com",
			Bucket:   "pg-secrets",
		},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	ctx := provisioning.NewContext(context.Background(), cfg, "ab12cd34", &hcloudplatform.MockClient{})
	ctx.State.AdminPassword = "adminpw"
	ctx.State.ReplicationPassword = "replpw"

	ctx.Connect = func(_ context.Context, dsn string) (provisioning.DatabaseAdmin, error) {
		for host, admin := range admins {
			if !strings.Contains(dsn, "@"+host+":") {
				continue
			}
			if unreachable[host] {
				return nil, fmt.Errorf("dial %s: connection refused", host)
			}
			return admin, nil
		}
		return nil, fmt.Errorf("no fake admin for %s", dsn)
	}

	remote := &fakeRemote{}
	ctx.Remote = remote
	return ctx, remote
}

func syncStandby() *postgres.ReplicaStatus {
	return &postgres.ReplicaStatus{
		ApplicationName: config.NodeB,
		State:           "streaming",
		SyncState:       "sync",
	}
}

func TestPlanned_SwapsRoles(t *testing.T) {
	t.Parallel()

	primary := &fakeAdmin{standby: syncStandby()}
	standby := &fakeAdmin{inRecovery: true}
	ctx, remote := testContext(t, map[string]*fakeAdmin{
		"10.70.1.11": primary,
		"10.70.1.12": standby,
	}, nil)

	require.NoError(t, NewOrchestrator(testRecord()).Planned(ctx))

	assert.True(t, primary.checkpointed)
	assert.True(t, standby.promoted)
	assert.True(t, standby.syncWaited)
	assert.True(t, primary.closed)
	assert.True(t, standby.closed)

	require.Len(t, remote.commands, 3)
	assert.Equal(t, config.NodeA, remote.commands[0].host)
	assert.Contains(t, remote.commands[0].cmd, "systemctl stop postgresql@16-main")

	assert.Equal(t, config.NodeB, remote.commands[1].host)
	assert.Contains(t, remote.commands[1].cmd, "synchronous_standby_names = 'node-a'")

	assert.Equal(t, config.NodeA, remote.commands[2].host)
	assert.Contains(t, remote.commands[2].cmd, "pg_rewind")
	assert.Contains(t, remote.commands[2].cmd, "host=10.70.1.12")
	assert.Contains(t, remote.commands[2].cmd, "application_name=node-a")
}

func TestPlanned_RefusesAsyncStandby(t *testing.T) {
	t.Parallel()

	async := syncStandby()
	async.SyncState = "async"
	primary := &fakeAdmin{standby: async}
	ctx, remote := testContext(t, map[string]*fakeAdmin{
		"10.70.1.11": primary,
		"10.70.1.12": {inRecovery: true},
	}, nil)

	err := NewOrchestrator(testRecord()).Planned(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not attached synchronously")
	assert.False(t, primary.checkpointed)
	assert.Empty(t, remote.commands)
}

func TestPlanned_RefusesAmbiguousRoles(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext(t, map[string]*fakeAdmin{
		"10.70.1.11": {standby: syncStandby()},
		"10.70.1.12": {standby: syncStandby()},
	}, nil)

	err := NewOrchestrator(testRecord()).Planned(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestForced_RequiresExplicitDataLossConsent(t *testing.T) {
	t.Parallel()

	ctx, remote := testContext(t, nil, nil)

	err := NewOrchestrator(testRecord()).Forced(ctx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--accept-data-loss")
	assert.Empty(t, remote.commands)
}

func TestForced_PromotesSurvivor(t *testing.T) {
	t.Parallel()

	survivor := &fakeAdmin{inRecovery: true}
	ctx, remote := testContext(t, map[string]*fakeAdmin{
		"10.70.1.11": {},
		"10.70.1.12": survivor,
	}, map[string]bool{"10.70.1.11": true})

	require.NoError(t, NewOrchestrator(testRecord()).Forced(ctx, true))

	assert.True(t, survivor.promoted)
	require.Len(t, remote.commands, 1)
	assert.Equal(t, config.NodeB, remote.commands[0].host)
	assert.Contains(t, remote.commands[0].cmd, "synchronous_standby_names = ''")
}

func TestForced_RefusesWhenPrimaryReachable(t *testing.T) {
	t.Parallel()

	ctx, remote := testContext(t, map[string]*fakeAdmin{
		"10.70.1.11": {standby: syncStandby()},
		"10.70.1.12": {inRecovery: true},
	}, nil)

	err := NewOrchestrator(testRecord()).Forced(ctx, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already primary")
	assert.Empty(t, remote.commands)
}
